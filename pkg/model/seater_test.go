package model

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrid(t *testing.T, rows, cols int, adjacency Adjacency) *Grid {
	t.Helper()
	grid, err := NewGrid(RoomShape{Rows: rows, Cols: cols}, adjacency)
	require.NoError(t, err)
	return grid
}

func mustRoster(t *testing.T, ranges ...BranchRange) []Student {
	t.Helper()
	roster, err := BuildRoster(ranges)
	require.NoError(t, err)
	return roster
}

func TestStrictSeater(t *testing.T) {
	seater := NewStrictSeater(0)

	t.Run("Two branches fill a 5x6 room", func(t *testing.T) {
		//** Arrange
		grid := mustGrid(t, 5, 6, Grid4)
		roster := mustRoster(t,
			BranchRange{Branch: "CSE", Start: 733001, End: 733015},
			BranchRange{Branch: "ECE", Start: 735001, End: 735015},
		)

		//** Act
		arrangement, err := seater.Assign(roster, grid)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, 30, arrangement.Occupied())
		assert.Equal(t, Strict, arrangement.Mode)
		assert.True(t, seater.Verify(arrangement, roster, grid))
		assertNoAdjacentBranches(t, arrangement, grid)
	})

	t.Run("Capacity exceeded", func(t *testing.T) {
		//** Arrange
		grid := mustGrid(t, 5, 6, Grid4)
		roster := mustRoster(t,
			BranchRange{Branch: "Civil", Start: 732001, End: 732006},
			BranchRange{Branch: "CSE", Start: 733001, End: 733005},
			BranchRange{Branch: "EEE", Start: 734001, End: 734005},
			BranchRange{Branch: "ECE", Start: 735001, End: 735005},
			BranchRange{Branch: "MECH", Start: 736001, End: 736005},
			BranchRange{Branch: "IT", Start: 737001, End: 737005},
		)

		//** Act
		_, err := seater.Assign(roster, grid)

		//** Assert
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		var capacityErr CapacityExceededError
		require.True(t, errors.As(err, &capacityErr))
		assert.Equal(t, 1, capacityErr.Overflow())
		assert.Equal(t, "total students (31) exceed room capacity (30)", capacityErr.Error())
	})

	t.Run("Single branch cannot share a 2x2 room", func(t *testing.T) {
		grid := mustGrid(t, 2, 2, Grid4)
		roster := mustRoster(t, BranchRange{Branch: "IT", Start: 1, End: 4})

		_, err := seater.Assign(roster, grid)

		assert.ErrorIs(t, err, ErrNoValidArrangement)
		assert.NotErrorIs(t, err, ErrSearchBudgetExceeded)
	})

	t.Run("Opposite corners of a 2x2 room are not adjacent", func(t *testing.T) {
		grid := mustGrid(t, 2, 2, Grid4)
		roster := mustRoster(t, BranchRange{Branch: "IT", Start: 1, End: 2})

		arrangement, err := seater.Assign(roster, grid)

		require.NoError(t, err)
		assert.Equal(t, []Seat{
			{Index: 0, Student: Student{Roll: 1, Branch: "IT"}, Occupied: true},
			{Index: 1},
			{Index: 2},
			{Index: 3, Student: Student{Roll: 2, Branch: "IT"}, Occupied: true},
		}, arrangement.Seats)
	})

	t.Run("Empty roster", func(t *testing.T) {
		grid := mustGrid(t, 5, 6, Grid4)

		arrangement, err := seater.Assign(nil, grid)

		require.NoError(t, err)
		assert.Len(t, arrangement.Seats, 30)
		assert.Equal(t, 0, arrangement.Occupied())
		for i, seat := range arrangement.Seats {
			assert.Equal(t, SeatIndex(i), seat.Index)
		}
	})

	t.Run("Backtracking", func(t *testing.T) {
		//** Arrange
		// The first IT student takes seat 0, after which both CSE students cannot fit around seat 1; the search has to move IT to the middle
		grid := mustGrid(t, 1, 3, Grid4)
		roster := mustRoster(t,
			BranchRange{Branch: "IT", Start: 1, End: 1},
			BranchRange{Branch: "CSE", Start: 2, End: 3},
		)

		//** Act
		arrangement, err := seater.Assign(roster, grid)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, []Student{{Roll: 2, Branch: "CSE"}, {Roll: 1, Branch: "IT"}, {Roll: 3, Branch: "CSE"}}, arrangement.Students())
		assert.Equal(t, uint64(3), arrangement.Backtracks)
	})

	t.Run("Linear adjacency ignores rows", func(t *testing.T) {
		// With linear adjacency a 2x2 room is a path of four seats, so seats 0 and 2 are free to share a branch
		grid := mustGrid(t, 2, 2, Linear)
		roster := mustRoster(t, BranchRange{Branch: "IT", Start: 1, End: 2})

		arrangement, err := seater.Assign(roster, grid)

		require.NoError(t, err)
		assert.True(t, arrangement.Seats[0].Occupied)
		assert.True(t, arrangement.Seats[2].Occupied)
	})
}

func TestStrictSeaterBudget(t *testing.T) {
	grid := mustGrid(t, 1, 3, Grid4)
	roster := mustRoster(t,
		BranchRange{Branch: "IT", Start: 1, End: 1},
		BranchRange{Branch: "CSE", Start: 2, End: 3},
	)

	t.Run("Exceeded", func(t *testing.T) {
		_, err := NewStrictSeater(2).Assign(roster, grid)

		assert.ErrorIs(t, err, ErrSearchBudgetExceeded)
		assert.ErrorIs(t, err, ErrNoValidArrangement)
	})

	t.Run("Enough", func(t *testing.T) {
		arrangement, err := NewStrictSeater(3).Assign(roster, grid)

		require.NoError(t, err)
		assert.Equal(t, uint64(3), arrangement.Backtracks)
	})
}

func TestBacktrackingSearchExhaustion(t *testing.T) {
	// Run the search directly, skipping the early rejection, to make sure both agree
	grid := mustGrid(t, 2, 2, Grid4)
	roster := mustRoster(t, BranchRange{Branch: "IT", Start: 1, End: 3})
	search := &backtrackingSearch{chart: newSeatingChart(grid, roster)}

	placed, err := search.place(0)

	assert.Nil(t, err)
	assert.False(t, placed)
	assert.True(t, overcrowded(roster, grid))
	for seat := range SeatIndex(grid.TotalSeats()) {
		assert.True(t, search.chart.Free(seat), "seat %d must be cleared after backtracking", seat)
	}
}

func TestFastSeater(t *testing.T) {
	seater := NewFastSeater()

	t.Run("Three branches fill a 5x6 room", func(t *testing.T) {
		//** Arrange
		grid := mustGrid(t, 5, 6, Grid4)
		roster := mustRoster(t,
			BranchRange{Branch: "CSE", Start: 733001, End: 733010},
			BranchRange{Branch: "EEE", Start: 734001, End: 734010},
			BranchRange{Branch: "IT", Start: 737001, End: 737010},
		)

		//** Act
		arrangement, err := seater.Assign(roster, grid)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, Fast, arrangement.Mode)
		assert.Equal(t, 30, arrangement.Occupied())
		assert.True(t, seater.Verify(arrangement, roster, grid))
		assert.Equal(t, Student{Roll: 733001, Branch: "CSE"}, arrangement.Seats[0].Student)
		assert.Equal(t, Student{Roll: 734001, Branch: "EEE"}, arrangement.Seats[1].Student)
		assert.Equal(t, Student{Roll: 737001, Branch: "IT"}, arrangement.Seats[2].Student)
		assert.Equal(t, Student{Roll: 733002, Branch: "CSE"}, arrangement.Seats[3].Student)
	})

	t.Run("Uneven branches", func(t *testing.T) {
		grid := mustGrid(t, 2, 3, Grid4)
		roster := mustRoster(t,
			BranchRange{Branch: "CSE", Start: 1, End: 3},
			BranchRange{Branch: "ECE", Start: 10, End: 10},
		)

		arrangement, err := seater.Assign(roster, grid)

		require.NoError(t, err)
		assert.Equal(t, []Student{{1, "CSE"}, {10, "ECE"}, {2, "CSE"}, {3, "CSE"}}, arrangement.Students())
		assert.False(t, arrangement.Seats[4].Occupied)
		assert.False(t, arrangement.Seats[5].Occupied)
	})

	t.Run("Capacity exceeded", func(t *testing.T) {
		grid := mustGrid(t, 1, 2, Grid4)
		roster := mustRoster(t, BranchRange{Branch: "CSE", Start: 1, End: 3})

		_, err := seater.Assign(roster, grid)

		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("Empty roster", func(t *testing.T) {
		grid := mustGrid(t, 5, 6, Grid4)

		arrangement, err := seater.Assign([]Student{}, grid)

		require.NoError(t, err)
		assert.Equal(t, 0, arrangement.Occupied())
		assert.Len(t, arrangement.Seats, 30)
	})
}

func TestNewSeater(t *testing.T) {
	strict, err := NewSeater(Strict, Options{MaxBacktrackSteps: 10})
	require.NoError(t, err)
	assert.IsType(t, &strictSeater{}, strict)

	fast, err := NewSeater(Fast, Options{})
	require.NoError(t, err)
	assert.IsType(t, &fastSeater{}, fast)

	_, err = NewSeater(Mode(9), Options{})
	assert.ErrorIs(t, err, ErrUnknownMode)

	mode, err := ParseMode("fast")
	require.NoError(t, err)
	assert.Equal(t, Fast, mode)

	_, err = ParseMode("greedy")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSeaterProperties(t *testing.T) {
	random := rand.New(rand.NewSource(2024))
	branches := []Branch{"Civil", "CSE", "EEE", "ECE"}

	for i := range 60 {
		//** Arrange
		rows, cols := random.Intn(3)+1, random.Intn(4)+1
		adjacency := Adjacency(random.Intn(2))
		grid := mustGrid(t, rows, cols, adjacency)

		ranges := make([]BranchRange, 0)
		next := uint64(1)
		for _, branch := range branches[:random.Intn(len(branches))+1] {
			size := uint64(random.Intn(4))
			if size == 0 {
				continue
			}
			ranges = append(ranges, BranchRange{Branch: branch, Start: next, End: next + size - 1})
			next += size
		}
		roster := mustRoster(t, ranges...)

		for _, mode := range []Mode{Strict, Fast} {
			t.Run(fmt.Sprintf("%d/%v", i, mode), func(t *testing.T) {
				g := gomega.NewWithT(t)
				seater, err := NewSeater(mode, Options{MaxBacktrackSteps: 100_000})
				g.Expect(err).NotTo(gomega.HaveOccurred())

				//** Act
				first, err1 := seater.Assign(roster, grid)
				second, err2 := seater.Assign(roster, grid)

				//** Assert
				// Determinism
				assert.Equal(t, err1, err2)
				g.Expect(second).To(gomega.Equal(first))

				if len(roster) > grid.TotalSeats() {
					g.Expect(errors.Is(err1, ErrCapacityExceeded)).To(gomega.BeTrue())
					return
				} else if err1 != nil {
					g.Expect(mode).To(gomega.Equal(Strict))
					g.Expect(errors.Is(err1, ErrNoValidArrangement)).To(gomega.BeTrue())
					return
				}

				// Completeness
				g.Expect(first.Students()).To(gomega.ConsistOf(roster))
				g.Expect(seater.Verify(first, roster, grid)).To(gomega.BeTrue())
				g.Expect(VerifyArrangement(first, roster, grid)).To(gomega.Succeed())
				if mode == Strict {
					assertNoAdjacentBranches(t, first, grid)
				}
			})
		}
	}
}

func TestVerifyArrangement(t *testing.T) {
	grid := mustGrid(t, 1, 3, Grid4)
	roster := mustRoster(t,
		BranchRange{Branch: "IT", Start: 1, End: 1},
		BranchRange{Branch: "CSE", Start: 2, End: 3},
	)
	valid, err := NewStrictSeater(0).Assign(roster, grid)
	require.NoError(t, err)

	corrupt := func(change func(arrangement *Arrangement)) Arrangement {
		arrangement := valid
		arrangement.Seats = append([]Seat(nil), valid.Seats...)
		change(&arrangement)
		return arrangement
	}

	scenarios := map[string]Arrangement{
		"Adjacent branches": corrupt(func(arrangement *Arrangement) {
			arrangement.Seats[0].Student, arrangement.Seats[1].Student = arrangement.Seats[1].Student, arrangement.Seats[0].Student
		}),
		"Missing student": corrupt(func(arrangement *Arrangement) {
			arrangement.Seats[2] = Seat{Index: 2}
		}),
		"Foreign student": corrupt(func(arrangement *Arrangement) {
			arrangement.Seats[2].Student = Student{Roll: 99, Branch: "CSE"}
		}),
		"Duplicate student": corrupt(func(arrangement *Arrangement) {
			arrangement.Seats[2].Student = arrangement.Seats[0].Student
		}),
		"Wrong shape": corrupt(func(arrangement *Arrangement) {
			arrangement.Shape = RoomShape{Rows: 3, Cols: 1}
		}),
		"Shuffled seat index": corrupt(func(arrangement *Arrangement) {
			arrangement.Seats[1].Index = 2
		}),
	}

	assert.NoError(t, VerifyArrangement(valid, roster, grid))
	for name, arrangement := range scenarios {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, VerifyArrangement(arrangement, roster, grid), ErrVerificationFailed)
		})
	}

	t.Run("Fast arrangements skip adjacency", func(t *testing.T) {
		arrangement := scenarios["Adjacent branches"]
		arrangement.Mode = Fast

		assert.NoError(t, VerifyArrangement(arrangement, roster, grid))
		assert.False(t, NewStrictSeater(0).Verify(arrangement, roster, grid))
		assert.True(t, NewFastSeater().Verify(arrangement, roster, grid))
	})
}

func TestArrangementAt(t *testing.T) {
	grid := mustGrid(t, 2, 3, Grid4)
	roster := mustRoster(t, BranchRange{Branch: "CSE", Start: 1, End: 2}, BranchRange{Branch: "IT", Start: 3, End: 3})
	arrangement, err := NewStrictSeater(0).Assign(roster, grid)
	require.NoError(t, err)

	for seat := range SeatIndex(grid.TotalSeats()) {
		row, col := grid.Coordinate(seat)
		placed, ok := arrangement.At(row, col)
		assert.True(t, ok)
		assert.Equal(t, arrangement.Seats[seat], placed)
	}
	_, ok := arrangement.At(2, 0)
	assert.False(t, ok)
}

func assertNoAdjacentBranches(t *testing.T, arrangement Arrangement, grid *Grid) {
	t.Helper()
	for seat := range SeatIndex(grid.TotalSeats()) {
		if !arrangement.Seats[seat].Occupied {
			continue
		}
		for _, neighbor := range grid.Neighbors(seat) {
			if arrangement.Seats[neighbor].Occupied {
				assert.NotEqual(t, arrangement.Seats[seat].Student.Branch, arrangement.Seats[neighbor].Student.Branch, "seats %d and %d", seat, neighbor)
			}
		}
	}
}
