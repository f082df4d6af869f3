package model

type predicateEvaluator interface {
	// Checks whether no student sits on the seat
	Free(seat SeatIndex) bool

	// Checks whether a neighbor of the seat is taken by a student of the given branch
	Conflicts(seat SeatIndex, branch Branch) bool
}

const emptySeat = -1

// seatingChart holds, per seat, the roster index of the student sitting there or emptySeat
type seatingChart struct {
	grid   *Grid
	roster []Student
	seats  []int
}

func newSeatingChart(grid *Grid, roster []Student) *seatingChart {
	seats := make([]int, grid.TotalSeats())
	for i := range seats {
		seats[i] = emptySeat
	}
	return &seatingChart{
		grid:   grid,
		roster: roster,
		seats:  seats,
	}
}

func (chart *seatingChart) Free(seat SeatIndex) bool {
	return chart.seats[seat] == emptySeat
}

func (chart *seatingChart) Conflicts(seat SeatIndex, branch Branch) bool {
	for _, neighbor := range chart.grid.Neighbors(seat) {
		if student := chart.seats[neighbor]; student != emptySeat && chart.roster[student].Branch == branch {
			return true
		}
	}
	return false
}

func (chart *seatingChart) place(seat SeatIndex, student int) {
	chart.seats[seat] = student
}

func (chart *seatingChart) clear(seat SeatIndex) {
	chart.seats[seat] = emptySeat
}

func (chart *seatingChart) arrangement(mode Mode) Arrangement {
	arrangement := newEmptyArrangement(chart.grid.Shape(), mode)
	for seat, student := range chart.seats {
		if student != emptySeat {
			arrangement.Seats[seat].Student = chart.roster[student]
			arrangement.Seats[seat].Occupied = true
		}
	}
	return arrangement
}
