// Package report renders seating arrangements as a text grid or as CSV
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
)

// Labeler turns an occupied seat into the text printed for it
type Labeler func(seat model.Seat) string

// RollLabel prints the plain integer roll
func RollLabel(seat model.Seat) string {
	return strconv.FormatUint(seat.Student.Roll, 10)
}

// RollNumberLabel prints the roll as a 1601-22-73X-YYY roll number
func RollNumberLabel(seat model.Seat) string {
	return roll.Format(seat.Student.Roll)
}

// SeatLabel prints the roll number followed by the branch
func SeatLabel(seat model.Seat) string {
	return fmt.Sprintf("%v (%v)", roll.Format(seat.Student.Roll), seat.Student.Branch)
}

var titleStyle = lipgloss.NewStyle().Bold(true)

// Render writes the arrangement as a row-major grid with one column per room column. Empty seats are left blank
func Render(w io.Writer, arrangement model.Arrangement, title string, label Labeler) error {
	if label == nil {
		label = RollLabel
	}

	headers := make([]string, 0, arrangement.Shape.Cols+1)
	headers = append(headers, "")
	for col := range arrangement.Shape.Cols {
		headers = append(headers, fmt.Sprintf("C%d", col+1))
	}

	grid := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)

	for row := range arrangement.Shape.Rows {
		cells := make([]string, 0, arrangement.Shape.Cols+1)
		cells = append(cells, fmt.Sprintf("R%d", row+1))
		for col := range arrangement.Shape.Cols {
			seat, ok := arrangement.At(row, col)
			if !ok || !seat.Occupied {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, label(seat))
		}
		grid.Row(cells...)
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
			return fmt.Errorf("cannot write report title: %v", err)
		}
	}
	if _, err := fmt.Fprintln(w, grid.String()); err != nil {
		return fmt.Errorf("cannot write report grid: %v", err)
	}
	_, err := fmt.Fprintf(w, "%d of %d seats occupied (%v)\n", arrangement.Occupied(), len(arrangement.Seats), arrangement.Mode)
	return err
}

// WriteCSV writes one record per seat in seat order
func WriteCSV(w io.Writer, arrangement model.Arrangement, label Labeler) error {
	if label == nil {
		label = RollLabel
	}

	writer := csv.NewWriter(w)

	header := []string{"Seat", "Row", "Column", "Roll", "Branch"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %v", err)
	}

	cols := max(arrangement.Shape.Cols, 1)
	for _, seat := range arrangement.Seats {
		record := []string{
			fmt.Sprintf("%d", seat.Index),
			fmt.Sprintf("%d", int(seat.Index)/cols+1),
			fmt.Sprintf("%d", int(seat.Index)%cols+1),
			"",
			"",
		}
		if seat.Occupied {
			record[3] = label(seat)
			record[4] = string(seat.Student.Branch)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %v", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
