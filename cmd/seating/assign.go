package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/report"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	requestFile  string
	modeOverride string
	outputFormat string
	outFile      string
	dryRun       bool

	validFormats = []string{"text", "csv", "json"}
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Arrange a single room from a request file",
	Long: `Reads a request file holding one room and arranges it.

The request file uses the API body format:
  {
    "room_capacity": {"room_name": "A-101"},
    "branches": ["CSE", "ECE"],
    "roll_numbers": {"CSE": [1, 15], "ECE": [1, 15]}
  }

Exit status is 10 when the room was arranged, 20 when no valid arrangement
exists and 15 when the produced arrangement failed verification.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		requests, err := loadRequests(cmd)
		if err != nil {
			return err
		} else if len(requests) != 1 {
			return fmt.Errorf("%v holds %d requests; use \"seating batch\" for more than one room", requestFile, len(requests))
		}

		seatingService, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		result, err := seatingService.Generate(cmd.Context(), requests[0])
		if err != nil {
			return arrangeExitCode(err)
		}

		if err := writeResults([]service.Result{result}); err != nil {
			return err
		}
		return exitCode(exitArranged)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Arrange several rooms concurrently from a request file",
	Long: `Reads a request file holding an array of rooms and arranges all of them.
Rooms must have distinct names and must not share roll numbers.
Nothing is stored unless every room is arranged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		requests, err := loadRequests(cmd)
		if err != nil {
			return err
		}

		seatingService, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		results, err := seatingService.GenerateBatch(cmd.Context(), requests)
		if err != nil {
			return arrangeExitCode(err)
		}

		if err := writeResults(results); err != nil {
			return err
		}
		return exitCode(exitArranged)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{assignCmd, batchCmd} {
		cmd.Flags().StringVarP(&requestFile, "file", "f", "", "Path to the request file")
		cmd.Flags().StringVarP(&modeOverride, "mode", "m", "", "Override the mode of every request: \"strict\" or \"fast\"")
		cmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: \"text\", \"csv\" or \"json\"")
		cmd.Flags().StringVarP(&outFile, "out", "o", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Arrange without storing the result")
		cmd.MarkFlagRequired("file")
	}
}

func loadRequests(cmd *cobra.Command) ([]service.Request, error) {
	if !slices.Contains(validFormats, outputFormat) {
		return nil, fmt.Errorf("%v is not a valid format", outputFormat)
	}

	requests, err := service.RequestsFromJson(requestFile)
	if err != nil {
		return nil, fmt.Errorf("cannot parse request file: %v", err)
	}

	if cmd.Flags().Changed("mode") {
		mode, err := model.ParseMode(modeOverride)
		if err != nil {
			return nil, err
		}
		for i := range requests {
			requests[i].Mode = mode
		}
	}
	if dryRun {
		for i := range requests {
			requests[i].DryRun = true
		}
	}
	return requests, nil
}

// arrangeExitCode turns the failures that have a dedicated exit status into an exitCode
func arrangeExitCode(err error) error {
	switch {
	case errors.Is(err, model.ErrVerificationFailed):
		fmt.Fprintln(os.Stderr, err)
		return exitCode(exitVerificationFailed)
	case errors.Is(err, model.ErrNoValidArrangement):
		fmt.Fprintln(os.Stderr, err)
		return exitCode(exitNoArrangement)
	}
	return err
}

// roomOutput is one element of the JSON output. The ID is left out for dry runs
type roomOutput struct {
	Room  string           `json:"room"`
	ID    string           `json:"id,omitempty"`
	Seats []map[string]any `json:"seats"`
}

func writeResults(results []service.Result) error {
	var buffer bytes.Buffer
	switch outputFormat {
	case "json":
		rooms := lo.Map(results, func(result service.Result, _ int) roomOutput {
			output := roomOutput{Room: result.Record.Room, Seats: seatsOf(result.Record.Arrangement)}
			if result.Record.ID != uuid.Nil {
				output.ID = result.Record.ID.String()
			}
			return output
		})
		output, err := json.Marshal(rooms)
		if err != nil {
			return fmt.Errorf("an error occurred while building output json: %v", err)
		}
		buffer.Write(output)
		buffer.WriteByte('\n')
	case "csv":
		for _, result := range results {
			if err := report.WriteCSV(&buffer, result.Record.Arrangement, report.RollNumberLabel); err != nil {
				return err
			}
		}
	default:
		for _, result := range results {
			arrangement := result.Record.Arrangement
			title := fmt.Sprintf("Seating Arrangement for %v (%dx%d Classroom Layout)", result.Record.Room, arrangement.Shape.Rows, arrangement.Shape.Cols)
			if err := report.Render(&buffer, arrangement, title, report.SeatLabel); err != nil {
				return err
			}
		}
	}

	for _, result := range results {
		zapLogger.Debug("Room arranged",
			zap.String("room", result.Record.Room),
			zap.Stringer("id", result.Record.ID),
			zap.Duration("duration", result.Duration),
		)
	}

	if outFile == "" {
		_, err := os.Stdout.Write(buffer.Bytes())
		return err
	}
	if err := os.WriteFile(outFile, buffer.Bytes(), 0666); err != nil {
		return fmt.Errorf("an error occurred while writing to the output file: %v", err)
	}
	return nil
}

func seatsOf(arrangement model.Arrangement) []map[string]any {
	return lo.FilterMap(arrangement.Seats, func(seat model.Seat, _ int) (map[string]any, bool) {
		row, col := int(seat.Index)/arrangement.Shape.Cols, int(seat.Index)%arrangement.Shape.Cols
		return map[string]any{
			"seat":        seat.Index,
			"row":         row,
			"col":         col,
			"roll_number": roll.Format(seat.Student.Roll),
			"branch":      seat.Student.Branch,
		}, seat.Occupied
	})
}
