package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/pkg/model"

	"github.com/samber/lo"
)

const (
	executablePath             = "../../bin/seating"
	satisfiableTestDirectory   = "../../test/requests/satisfiable/"
	unsatisfiableTestDirectory = "../../test/requests/unsatisfiable/"
	KB                         = 1024
)

type ResultType int

const (
	arranged ResultType = iota
	unsatisfiable
)

var (
	modes       = []model.Mode{model.Strict, model.Fast}
	resultTypes = map[ResultType]string{
		arranged:      "arranged",
		unsatisfiable: "unsatisfiable",
	}
)

type TestMetadata struct {
	Name        string
	Satisfiable bool
	Rooms       int
	Branches    int
	Students    uint64
	Seats       int
}

type BenchmarkResult struct {
	Mode          model.Mode
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
}

func main() {
	tests := getTests()
	results := make([]BenchmarkResult, 0, len(tests)*len(modes))

	for _, test := range tests {
		for _, mode := range modes {
			fmt.Printf("Benchmarking test \"%v\" with mode \"%v\"\n", test.Name, mode)

			duration, maxMemory, cpuPercentage, result := measure(mode, test)

			results = append(results, BenchmarkResult{
				Mode:          mode,
				Test:          test,
				Duration:      duration,
				Memory:        maxMemory,
				CpuPercentage: cpuPercentage,
				Result:        result,
			})
		}
	}

	toCsv(results)
}

func getTests() []TestMetadata {
	tests := make([]TestMetadata, 0)
	for _, tuple := range lo.Zip2([]string{satisfiableTestDirectory, unsatisfiableTestDirectory}, []bool{true, false}) {
		directory, satisfiable := tuple.A, tuple.B
		testFiles, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("cannot read directory: %v", err)
		}

		for _, file := range testFiles {
			filename := directory + file.Name()
			requests, err := service.RequestsFromJson(filename)
			if err != nil {
				log.Fatalf("cannot parse request file: %v", err)
			}
			tests = append(tests, describe(filename, satisfiable, requests))
		}
	}

	return tests
}

func describe(name string, satisfiable bool, requests []service.Request) TestMetadata {
	test := TestMetadata{
		Name:        name,
		Satisfiable: satisfiable,
		Rooms:       len(requests),
	}
	branches := make(map[model.Branch]bool)
	for _, request := range requests {
		for _, branch := range request.Branches {
			branches[branch.Branch] = true
			if branch.End >= branch.Start {
				test.Students += branch.End - branch.Start + 1
			}
		}
		test.Seats += request.Shape.TotalSeats()
	}
	test.Branches = len(branches)
	return test
}

func measure(mode model.Mode, test TestMetadata) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	command := "assign"
	if test.Rooms > 1 {
		command = "batch"
	}
	cmd := exec.Command("/usr/bin/time", "-v", executablePath, command, "--mode", mode.String(), "--file", test.Name, "--dry-run", "--format", "json", "--out", os.DevNull)
	cmd.Env = append(os.Environ(), "SEATING_IN_MEMORY=true", "SEATING_LOG_LEVEL=error")

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	if cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		log.Fatalf("an error occurred during the execution of \"seating\" at test \"%v\" using mode \"%v\": %v\n", test.Name, mode, stdErr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		result = unsatisfiable
	} else {
		result = arranged
	}
	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Mode", "Test", "Satisfiable", "Rooms", "Branches", "Students", "Seats", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		result.Mode.String(),
		result.Test.Name,
		fmt.Sprintf("%v", result.Test.Satisfiable),
		fmt.Sprintf("%d", result.Test.Rooms),
		fmt.Sprintf("%d", result.Test.Branches),
		fmt.Sprintf("%d", result.Test.Students),
		fmt.Sprintf("%d", result.Test.Seats),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%.1f", result.Memory),
		fmt.Sprintf("%d", result.CpuPercentage),
		resultTypes[result.Result],
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / KB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
