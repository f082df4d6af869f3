package model

type strictSeater struct {
	maxBacktrackSteps uint64
}

func NewStrictSeater(maxBacktrackSteps uint64) Seater {
	return &strictSeater{
		maxBacktrackSteps: maxBacktrackSteps,
	}
}

func (seater *strictSeater) Assign(roster []Student, grid *Grid) (Arrangement, error) {
	//** Check capacity before any placement
	if err := checkCapacity(roster, grid); err != nil {
		return Arrangement{}, err
	}

	//** Reject rosters where a branch outnumbers the largest set of pairwise non-adjacent seats
	if overcrowded(roster, grid) {
		return Arrangement{}, ErrNoValidArrangement
	}

	//** Search
	search := &backtrackingSearch{
		chart:             newSeatingChart(grid, roster),
		maxBacktrackSteps: seater.maxBacktrackSteps,
	}
	placed, err := search.place(0)
	if err != nil {
		return Arrangement{}, err
	} else if !placed {
		return Arrangement{}, ErrNoValidArrangement
	}

	arrangement := search.chart.arrangement(Strict)
	arrangement.Backtracks = search.backtracks
	return arrangement, nil
}

func (seater *strictSeater) Verify(arrangement Arrangement, roster []Student, grid *Grid) bool {
	return verify(arrangement, roster, grid, true) == nil
}

// backtrackingSearch is the state of a single Assign call. Every placement is undone explicitly before trying the next seat, so nothing outlives the call
type backtrackingSearch struct {
	chart             *seatingChart
	maxBacktrackSteps uint64
	backtracks        uint64
}

// place seats the student at index and, recursively, every student after it. Students are taken in roster order and seats are tried in ascending order, which makes the result deterministic
func (search *backtrackingSearch) place(student int) (bool, error) {
	roster := search.chart.roster
	if student >= len(roster) {
		return true, nil // All students are seated
	}

	var evaluator predicateEvaluator = search.chart
	branch := roster[student].Branch
	for seat := range SeatIndex(search.chart.grid.TotalSeats()) {
		if !evaluator.Free(seat) || evaluator.Conflicts(seat, branch) {
			continue
		}

		search.chart.place(seat, student)
		placed, err := search.place(student + 1)
		if err != nil || placed {
			return placed, err
		}
		search.chart.clear(seat) // Backtrack

		search.backtracks++
		if search.maxBacktrackSteps > 0 && search.backtracks > search.maxBacktrackSteps {
			return false, ErrSearchBudgetExceeded
		}
	}

	return false, nil
}
