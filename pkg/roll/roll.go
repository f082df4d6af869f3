// Package roll validates and formats college roll numbers of the form 1601-22-73X-YYY, where X selects the branch and YYY is the student's serial within it.
//
// Rolls are handled by the seating engine as canonical integers (branch code * 1000 + serial), which keeps them unique across branches and ordered like their serials within a branch.
package roll

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/limaJavier/seating/pkg/model"
	"github.com/samber/lo"
)

const (
	prefix    = "1601-22"
	MinSerial = 1
	MaxSerial = 320
)

const (
	Civil model.Branch = "Civil"
	CSE   model.Branch = "CSE"
	EEE   model.Branch = "EEE"
	ECE   model.Branch = "ECE"
	MECH  model.Branch = "MECH"
	IT    model.Branch = "IT"
)

var (
	ErrInvalidFormat  = errors.New("invalid format. Use 1601-22-73X-YYY (X: 2-7, YYY: 001-320)")
	ErrInvalidSerial  = errors.New("roll number must be between 001 and 320")
	ErrBranchMismatch = errors.New("branch code does not match the branch")
	ErrUnknownBranch  = errors.New("unknown branch")
)

var (
	pattern = regexp.MustCompile(`^1601-22-73[2-7]-[0-3][0-9][0-9]$`)

	branchCodes = map[model.Branch]uint64{
		Civil: 732,
		CSE:   733,
		EEE:   734,
		ECE:   735,
		MECH:  736,
		IT:    737,
	}
)

// Number is a validated roll number
type Number struct {
	Branch model.Branch
	Serial uint64
}

func (number Number) Canonical() uint64 {
	return branchCodes[number.Branch]*1000 + number.Serial
}

func (number Number) String() string {
	return fmt.Sprintf("%v-%d-%03d", prefix, branchCodes[number.Branch], number.Serial)
}

// Branches returns the known branches ordered by branch code
func Branches() []model.Branch {
	return []model.Branch{Civil, CSE, EEE, ECE, MECH, IT}
}

func Code(branch model.Branch) (uint64, bool) {
	code, ok := branchCodes[branch]
	return code, ok
}

// Validate parses a roll number string. When branch is not empty the roll's branch code must match it
func Validate(roll string, branch model.Branch) (Number, error) {
	if !pattern.MatchString(roll) {
		return Number{}, ErrInvalidFormat
	}

	parts := strings.Split(roll, "-")
	code, _ := strconv.ParseUint(parts[2], 10, 64)
	serial, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return Number{}, fmt.Errorf("roll number must be numeric: %w", err)
	}

	if branch != "" {
		expected, ok := branchCodes[branch]
		if !ok {
			return Number{}, fmt.Errorf("%w: %v", ErrUnknownBranch, branch)
		} else if expected != code {
			return Number{}, fmt.Errorf("%w: invalid branch code for %v. Must be %d", ErrBranchMismatch, branch, expected)
		}
	}

	if serial < MinSerial || serial > MaxSerial {
		return Number{}, ErrInvalidSerial
	}

	codeBranch, _ := lo.FindKey(branchCodes, code)
	return Number{Branch: codeBranch, Serial: serial}, nil
}

// Parse validates a roll number of any known branch
func Parse(roll string) (Number, error) {
	return Validate(roll, "")
}

// Canonical converts a branch serial into the canonical integer roll
func Canonical(branch model.Branch, serial uint64) (uint64, error) {
	code, ok := branchCodes[branch]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownBranch, branch)
	} else if serial < MinSerial || serial > MaxSerial {
		return 0, fmt.Errorf("%w: %v serial %d", ErrInvalidSerial, branch, serial)
	}
	return code*1000 + serial, nil
}

// FromCanonical is the inverse of Canonical
func FromCanonical(canonical uint64) (Number, error) {
	code, serial := canonical/1000, canonical%1000
	branch, ok := lo.FindKey(branchCodes, code)
	if !ok {
		return Number{}, fmt.Errorf("%w: code %d", ErrUnknownBranch, code)
	} else if serial < MinSerial || serial > MaxSerial {
		return Number{}, ErrInvalidSerial
	}
	return Number{Branch: branch, Serial: serial}, nil
}

// Format renders a canonical roll as a roll number string, falling back to the plain integer for rolls that are not canonical
func Format(canonical uint64) string {
	number, err := FromCanonical(canonical)
	if err != nil {
		return strconv.FormatUint(canonical, 10)
	}
	return number.String()
}

// Range converts a branch serial range into the engine's roll range, validating both ends
func Range(branch model.Branch, start, end uint64) (model.BranchRange, error) {
	canonicalStart, err := Canonical(branch, start)
	if err != nil {
		return model.BranchRange{}, fmt.Errorf("start roll number for %v: %w", branch, err)
	}
	canonicalEnd, err := Canonical(branch, end)
	if err != nil {
		return model.BranchRange{}, fmt.Errorf("end roll number for %v: %w", branch, err)
	}
	if start > end {
		return model.BranchRange{}, model.InvalidRangeError{Branch: branch, Start: start, End: end}
	}
	return model.BranchRange{Branch: branch, Start: canonicalStart, End: canonicalEnd}, nil
}
