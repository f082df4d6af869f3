package main

import (
	"testing"

	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, int64(60*1000+1000+120), parseDuration("00:01:01.12"))
	assert.Equal(t, int64(60*60*1000+60*1000+1000+120), parseDuration("01:01:01.12"))
	assert.Equal(t, int64(60*1000+1000+120), parseDuration("1:01.12"))
	assert.Equal(t, int64(120), parseDuration("0:00.12"))
	assert.Equal(t, int64(120), parseDuration("00:00:00.12"))
}

func TestParseTimeLines(t *testing.T) {
	assert.Equal(t, int64(1230), parseDurationLine("\tElapsed (wall clock) time (h:mm:ss or m:ss): 0:01.23"))
	assert.Equal(t, float32(10), parseMemoryLine("\tMaximum resident set size (kbytes): 10240"))
	assert.Equal(t, int64(97), parseCpuPercentageLine("\tPercent of CPU this job got: 97%"))
}

func TestDescribe(t *testing.T) {
	requests := []service.Request{
		{
			Room:  "A",
			Shape: model.RoomShape{Rows: 5, Cols: 6},
			Branches: []service.BranchSerials{
				{Branch: "CSE", Start: 1, End: 15},
				{Branch: "ECE", Start: 1, End: 15},
			},
		},
		{
			Room:     "B",
			Shape:    model.RoomShape{Rows: 2, Cols: 3},
			Branches: []service.BranchSerials{{Branch: "CSE", Start: 16, End: 18}},
		},
	}

	test := describe("rooms.json", true, requests)

	assert.Equal(t, TestMetadata{
		Name:        "rooms.json",
		Satisfiable: true,
		Rooms:       2,
		Branches:    2,
		Students:    33,
		Seats:       36,
	}, test)
	assert.Equal(t, []string{"fast", "rooms.json", "true", "2", "2", "33", "36", "1230", "10.0", "97", "arranged"},
		toRecord(BenchmarkResult{Mode: model.Fast, Test: test, Duration: 1230, Memory: 10, CpuPercentage: 97, Result: arranged}))
}
