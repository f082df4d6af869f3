package model

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var ErrVerificationFailed = errors.New("arrangement verification failed")

type verificationError struct {
	reason string
}

func (err verificationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrVerificationFailed, err.reason)
}

func (err verificationError) Is(target error) bool {
	return target == ErrVerificationFailed
}

// VerifyArrangement checks an arrangement against its roster and grid independently of how it was built. The adjacency rule is only enforced on strict arrangements
func VerifyArrangement(arrangement Arrangement, roster []Student, grid *Grid) error {
	return verify(arrangement, roster, grid, arrangement.Mode == Strict)
}

func verify(arrangement Arrangement, roster []Student, grid *Grid, checkAdjacency bool) error {
	//** Shape
	if arrangement.Shape != grid.Shape() || len(arrangement.Seats) != grid.TotalSeats() {
		return verificationError{reason: fmt.Sprintf("arrangement of %d seats (%dx%d) does not match a %dx%d room", len(arrangement.Seats), arrangement.Shape.Rows, arrangement.Shape.Cols, grid.Shape().Rows, grid.Shape().Cols)}
	}

	//** Completeness
	expected := lo.SliceToMap(roster, func(student Student) (uint64, Student) { return student.Roll, student })
	seated := make(map[uint64]bool, len(roster))
	for i, seat := range arrangement.Seats {
		if seat.Index != SeatIndex(i) {
			return verificationError{reason: fmt.Sprintf("seat %d is stored at position %d", seat.Index, i)}
		} else if !seat.Occupied {
			continue
		}

		student, ok := expected[seat.Student.Roll]
		if !ok || student != seat.Student {
			return verificationError{reason: fmt.Sprintf("seat %d holds %d (%v), who is not on the roster", i, seat.Student.Roll, seat.Student.Branch)}
		} else if seated[student.Roll] {
			return verificationError{reason: fmt.Sprintf("roll %d is seated more than once", student.Roll)}
		}
		seated[student.Roll] = true
	}
	if len(seated) != len(roster) {
		return verificationError{reason: fmt.Sprintf("%d of %d students are seated", len(seated), len(roster))}
	}

	//** Adjacency
	if !checkAdjacency {
		return nil
	}
	for i, seat := range arrangement.Seats {
		if !seat.Occupied {
			continue
		}
		for _, neighbor := range grid.Neighbors(SeatIndex(i)) {
			other := arrangement.Seats[neighbor]
			if other.Occupied && other.Student.Branch == seat.Student.Branch {
				return verificationError{reason: fmt.Sprintf("seats %d and %d are adjacent and both hold %v", i, neighbor, seat.Student.Branch)}
			}
		}
	}

	return nil
}

func checkCapacity(roster []Student, grid *Grid) error {
	if len(roster) > grid.TotalSeats() {
		return CapacityExceededError{Students: len(roster), Seats: grid.TotalSeats()}
	}
	return nil
}

// overcrowded reports whether some branch cannot fit even when spread over pairwise non-adjacent seats
func overcrowded(roster []Student, grid *Grid) bool {
	if len(roster) == 0 {
		return false
	}
	counts := lo.CountValuesBy(roster, func(student Student) Branch { return student.Branch })
	largest := lo.Max(lo.Values(counts))
	return largest > grid.IndependenceNumber()
}
