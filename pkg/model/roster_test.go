package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRoster(t *testing.T) {
	t.Run("Branches keep the given order", func(t *testing.T) {
		//** Arrange
		ranges := []BranchRange{
			{Branch: "ECE", Start: 735004, End: 735006},
			{Branch: "CSE", Start: 733001, End: 733002},
		}

		//** Act
		roster, err := BuildRoster(ranges)

		//** Assert
		assert.Nil(t, err)
		assert.Equal(t, []Student{
			{Roll: 735004, Branch: "ECE"},
			{Roll: 735005, Branch: "ECE"},
			{Roll: 735006, Branch: "ECE"},
			{Roll: 733001, Branch: "CSE"},
			{Roll: 733002, Branch: "CSE"},
		}, roster)
	})

	t.Run("Single roll range", func(t *testing.T) {
		roster, err := BuildRoster([]BranchRange{{Branch: "IT", Start: 7, End: 7}})

		assert.Nil(t, err)
		assert.Equal(t, []Student{{Roll: 7, Branch: "IT"}}, roster)
	})

	t.Run("No branches", func(t *testing.T) {
		roster, err := BuildRoster(nil)

		assert.Nil(t, err)
		assert.Empty(t, roster)
	})

	t.Run("Start after end", func(t *testing.T) {
		_, err := BuildRoster([]BranchRange{
			{Branch: "CSE", Start: 1, End: 5},
			{Branch: "EEE", Start: 20, End: 10},
		})

		assert.True(t, errors.Is(err, ErrInvalidRange))
		var rangeErr InvalidRangeError
		assert.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, Branch("EEE"), rangeErr.Branch)
	})

	t.Run("Missing branch name", func(t *testing.T) {
		_, err := BuildRoster([]BranchRange{{Start: 1, End: 5}})

		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("Overlapping ranges", func(t *testing.T) {
		_, err := BuildRoster([]BranchRange{
			{Branch: "CSE", Start: 1, End: 5},
			{Branch: "ECE", Start: 5, End: 8},
		})

		assert.ErrorIs(t, err, ErrDuplicateRoll)
		assert.Equal(t, DuplicateRollError{Roll: 5}, err)
	})
}

func TestBranchOrder(t *testing.T) {
	roster := []Student{{1, "B"}, {2, "A"}, {3, "B"}, {4, "C"}, {5, "A"}}

	assert.Equal(t, []Branch{"B", "A", "C"}, branchOrder(roster))
}
