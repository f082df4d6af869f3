package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/report"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	checkRanges  []string
	reportFormat string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [roll-number]",
	Short: "Find the room a roll number was seated in",
	Long: `Searches every stored arrangement for the roll number.

Example:
  seating lookup 1601-22-733-015`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seatingService, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		room, err := seatingService.LookupRoom(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(room)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report roll numbers that are already seated",
	Long: `Checks roll ranges against every stored arrangement and prints the roll
numbers that are already seated, one per line.

Example:
  seating check --range CSE=1:15 --range ECE=1:15`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		branches, err := parseRanges(checkRanges)
		if err != nil {
			return err
		}

		seatingService, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		duplicates, err := seatingService.CheckDuplicates(cmd.Context(), branches)
		if err != nil {
			return err
		}
		if len(duplicates) == 0 {
			fmt.Println("No duplicates found")
			return nil
		}
		for _, canonical := range duplicates {
			fmt.Println(roll.Format(canonical))
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the most recently stored arrangement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seatingService, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		record, err := seatingService.Latest(cmd.Context())
		if err != nil {
			return err
		}

		arrangement := record.Arrangement
		switch reportFormat {
		case "csv":
			return report.WriteCSV(os.Stdout, arrangement, report.RollNumberLabel)
		case "text":
			title := fmt.Sprintf("Seating Arrangement for %v (%dx%d Classroom Layout)", record.Room, arrangement.Shape.Rows, arrangement.Shape.Cols)
			return report.Render(os.Stdout, arrangement, title, report.SeatLabel)
		}
		return fmt.Errorf("%v is not a valid format", reportFormat)
	},
}

func init() {
	checkCmd.Flags().StringArrayVarP(&checkRanges, "range", "r", nil, "Roll range as BRANCH=START:END; repeat for several branches")
	checkCmd.MarkFlagRequired("range")

	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format: \"text\" or \"csv\"")
}

// parseRanges reads BRANCH=START:END values
func parseRanges(values []string) ([]service.BranchSerials, error) {
	branches := make([]service.BranchSerials, 0, len(values))
	for _, value := range values {
		branch, bounds, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid range %q: expected BRANCH=START:END", value)
		}
		startStr, endStr, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("invalid range %q: expected BRANCH=START:END", value)
		}
		start, err := strconv.ParseUint(startStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q: %v", startStr, err)
		}
		end, err := strconv.ParseUint(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %v", endStr, err)
		}

		branches = append(branches, service.BranchSerials{Branch: model.Branch(branch), Start: start, End: end})
	}

	if duplicates := lo.FindDuplicatesBy(branches, func(b service.BranchSerials) model.Branch { return b.Branch }); len(duplicates) > 0 {
		return nil, fmt.Errorf("branch %v given more than once", duplicates[0].Branch)
	}
	return branches, nil
}
