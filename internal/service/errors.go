package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/samber/lo"
)

var ErrInvalidRequest = errors.New("invalid request")

type invalidRequestError struct {
	reason string
}

func (err invalidRequestError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidRequest, err.reason)
}

func (err invalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// DuplicateRollsError lists requested rolls that are already seated, or that appear more than once across a batch
type DuplicateRollsError struct {
	Rolls []uint64
}

func (err DuplicateRollsError) Error() string {
	return fmt.Sprintf("duplicate roll numbers detected: %v", strings.Join(lo.Map(err.Rolls, func(canonical uint64, _ int) string {
		return roll.Format(canonical)
	}), ", "))
}

func (err DuplicateRollsError) Is(target error) bool {
	return target == model.ErrDuplicateRoll
}
