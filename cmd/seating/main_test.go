package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/internal/store"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseRanges(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		branches, err := parseRanges([]string{"CSE=1:15", "ECE=3:9"})

		require.NoError(t, err)
		assert.Equal(t, []service.BranchSerials{
			{Branch: "CSE", Start: 1, End: 15},
			{Branch: "ECE", Start: 3, End: 9},
		}, branches)
	})

	for _, value := range []string{"CSE", "CSE=1", "CSE=a:2", "CSE=1:b"} {
		t.Run(value, func(t *testing.T) {
			_, err := parseRanges([]string{value})
			assert.Error(t, err)
		})
	}

	t.Run("Repeated branch", func(t *testing.T) {
		_, err := parseRanges([]string{"CSE=1:3", "CSE=5:9"})
		assert.ErrorContains(t, err, "CSE")
	})
}

func TestArrangeExitCode(t *testing.T) {
	var code exitCode

	require.ErrorAs(t, arrangeExitCode(fmt.Errorf("room \"A\": %w", model.ErrNoValidArrangement)), &code)
	assert.Equal(t, exitCode(exitNoArrangement), code)

	require.ErrorAs(t, arrangeExitCode(fmt.Errorf("%w: no arrangement found within 1s", model.ErrSearchBudgetExceeded)), &code)
	assert.Equal(t, exitCode(exitNoArrangement), code)

	grid, err := model.NewGrid(model.RoomShape{Rows: 1, Cols: 2}, model.Grid4)
	require.NoError(t, err)
	require.ErrorAs(t, arrangeExitCode(model.VerifyArrangement(model.Arrangement{}, []model.Student{{Roll: 1, Branch: "A"}}, grid)), &code)
	assert.Equal(t, exitCode(exitVerificationFailed), code)

	other := errors.New("boom")
	assert.Equal(t, other, arrangeExitCode(other))
	assert.Equal(t, "exit status 10", exitCode(exitArranged).Error())
}

func TestWriteResultsJson(t *testing.T) {
	//** Arrange
	zapLogger = zaptest.NewLogger(t)
	outputFormat, outFile = "json", filepath.Join(t.TempDir(), "out.json")
	t.Cleanup(func() { zapLogger, outputFormat, outFile = nil, "text", "" })

	resultOf := func(id uuid.UUID, student model.Student) service.Result {
		return service.Result{Record: store.Record{
			ID:   id,
			Room: "A-101",
			Arrangement: model.Arrangement{
				Shape: model.RoomShape{Rows: 1, Cols: 2},
				Seats: []model.Seat{{Index: 0, Student: student, Occupied: true}, {Index: 1}},
			},
		}}
	}
	id := uuid.New()

	//** Act
	err := writeResults([]service.Result{
		resultOf(id, model.Student{Roll: 733001, Branch: "CSE"}),
		resultOf(uuid.Nil, model.Student{Roll: 733002, Branch: "CSE"}),
	})

	//** Assert
	require.NoError(t, err)
	output, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var rooms []roomOutput
	require.NoError(t, json.Unmarshal(output, &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "A-101", rooms[0].Room)
	assert.Equal(t, id.String(), rooms[0].ID)
	assert.Equal(t, "1601-22-733-001", rooms[0].Seats[0]["roll_number"])
	assert.Equal(t, "A-101", rooms[1].Room)
	assert.Empty(t, rooms[1].ID)
	assert.Equal(t, "1601-22-733-002", rooms[1].Seats[0]["roll_number"])
}
