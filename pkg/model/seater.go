package model

type Seater interface {
	// Assign places every student of the roster in the grid. Unfilled seats are left empty
	Assign(
		roster []Student,
		grid *Grid,
	) (arrangement Arrangement, err error)

	Verify(
		arrangement Arrangement,
		roster []Student,
		grid *Grid,
	) bool
}

type Options struct {
	// MaxBacktrackSteps bounds the strict search: once exceeded the search stops with ErrSearchBudgetExceeded. Zero means unbounded
	MaxBacktrackSteps uint64
}

func NewSeater(mode Mode, options Options) (Seater, error) {
	switch mode {
	case Strict:
		return NewStrictSeater(options.MaxBacktrackSteps), nil
	case Fast:
		return NewFastSeater(), nil
	}
	return nil, unknownModeError{name: mode.String()}
}
