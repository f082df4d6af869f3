package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange     = errors.New("invalid roll range")
	ErrDuplicateRoll    = errors.New("duplicate roll number")
	ErrInvalidShape     = errors.New("invalid room shape")
	ErrCapacityExceeded = errors.New("not enough seats available")
	ErrUnknownMode      = errors.New("unknown seating mode")
	ErrUnknownAdjacency = errors.New("unknown adjacency")

	// ErrNoValidArrangement is returned when no placement satisfies the adjacency constraint, including when the search gives up
	ErrNoValidArrangement = errors.New("could not find a valid seating arrangement")

	// ErrSearchBudgetExceeded is the "gave up" case of ErrNoValidArrangement
	ErrSearchBudgetExceeded = error(searchBudgetError{})
)

type InvalidRangeError struct {
	Branch Branch
	Start  uint64
	End    uint64
}

func (err InvalidRangeError) Error() string {
	if err.Branch == "" {
		return fmt.Sprintf("%v: branch name is required for range [%d, %d]", ErrInvalidRange, err.Start, err.End)
	}
	return fmt.Sprintf("%v: start roll number for %v must be less than or equal to end roll number (%d > %d)", ErrInvalidRange, err.Branch, err.Start, err.End)
}

func (err InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

type DuplicateRollError struct {
	Roll uint64
}

func (err DuplicateRollError) Error() string {
	return fmt.Sprintf("%v: %d appears in more than one range", ErrDuplicateRoll, err.Roll)
}

func (err DuplicateRollError) Is(target error) bool {
	return target == ErrDuplicateRoll
}

type CapacityExceededError struct {
	Students int
	Seats    int
}

func (err CapacityExceededError) Error() string {
	return fmt.Sprintf("total students (%d) exceed room capacity (%d)", err.Students, err.Seats)
}

func (err CapacityExceededError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// Overflow is the number of students left without a seat
func (err CapacityExceededError) Overflow() int {
	return err.Students - err.Seats
}

type searchBudgetError struct {
}

func (err searchBudgetError) Error() string {
	return "search budget exceeded before finding a valid seating arrangement"
}

func (err searchBudgetError) Is(target error) bool {
	return target == ErrNoValidArrangement
}

type unknownModeError struct {
	name string
}

func (err unknownModeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownMode, err.name)
}

func (err unknownModeError) Is(target error) bool {
	return target == ErrUnknownMode
}
