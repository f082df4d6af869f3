package model

import "github.com/samber/lo"

const maxRosterHint = 1 << 12

// BuildRoster expands every branch range into its students. Branches keep the given order and rolls within a branch are ascending
func BuildRoster(ranges []BranchRange) ([]Student, error) {
	total := uint64(0)
	for _, branchRange := range ranges {
		if branchRange.Branch == "" || branchRange.Start > branchRange.End {
			return nil, InvalidRangeError{Branch: branchRange.Branch, Start: branchRange.Start, End: branchRange.End}
		}
		total += branchRange.End - branchRange.Start + 1
	}

	roster := make([]Student, 0, min(total, maxRosterHint))
	seen := make(map[uint64]bool, min(total, maxRosterHint))
	for _, branchRange := range ranges {
		for roll := branchRange.Start; ; roll++ {
			if seen[roll] {
				return nil, DuplicateRollError{Roll: roll}
			}
			seen[roll] = true
			roster = append(roster, Student{Roll: roll, Branch: branchRange.Branch})

			// Stop on End itself so that End == math.MaxUint64 cannot wrap around
			if roll == branchRange.End {
				break
			}
		}
	}

	return roster, nil
}

// branchOrder returns the distinct branches of the roster in order of first appearance
func branchOrder(roster []Student) []Branch {
	return lo.Uniq(lo.Map(roster, func(student Student, _ int) Branch { return student.Branch }))
}
