package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	scenarios := []struct {
		name      string
		shape     RoomShape
		adjacency Adjacency
		err       error
	}{
		{"EmptyRows", RoomShape{Rows: 0, Cols: 6}, Grid4, ErrInvalidShape},
		{"EmptyCols", RoomShape{Rows: 5, Cols: 0}, Grid4, ErrInvalidShape},
		{"NegativeRows", RoomShape{Rows: -1, Cols: 3}, Linear, ErrInvalidShape},
		{"TooManyRows", RoomShape{Rows: MaxDimension + 1, Cols: 1}, Grid4, ErrInvalidShape},
		{"HugeCols", RoomShape{Rows: 1, Cols: 1 << 30}, Linear, ErrInvalidShape},
		{"OverflowingSeats", RoomShape{Rows: math.MaxInt, Cols: 2}, Grid4, ErrInvalidShape},
		{"Largest", RoomShape{Rows: MaxDimension, Cols: MaxDimension}, Grid4, nil},
		{"UnknownAdjacency", RoomShape{Rows: 2, Cols: 2}, Adjacency(42), ErrUnknownAdjacency},
		{"Valid", RoomShape{Rows: 5, Cols: 6}, Grid4, nil},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			grid, err := NewGrid(scenario.shape, scenario.adjacency)
			if scenario.err != nil {
				assert.ErrorIs(t, err, scenario.err)
				assert.Nil(t, grid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, scenario.shape.TotalSeats(), grid.TotalSeats())
		})
	}
}

func TestGridNeighbors(t *testing.T) {
	t.Run("Four directions", func(t *testing.T) {
		//** Arrange
		// 5x6 room, seats numbered row by row:
		//  0  1  2  3  4  5
		//  6  7  8  9 10 11
		// 12 13 14 15 16 17
		// 18 19 20 21 22 23
		// 24 25 26 27 28 29
		grid, err := NewGrid(RoomShape{Rows: 5, Cols: 6}, Grid4)
		require.NoError(t, err)

		//** Act & Assert
		assert.Equal(t, []SeatIndex{1, 6}, grid.Neighbors(0))
		assert.Equal(t, []SeatIndex{4, 11}, grid.Neighbors(5))
		assert.Equal(t, []SeatIndex{5, 10, 17}, grid.Neighbors(11))
		assert.Equal(t, []SeatIndex{8, 13, 15, 20}, grid.Neighbors(14))
		assert.Equal(t, []SeatIndex{23, 28}, grid.Neighbors(29))
		assert.False(t, grid.Adjacent(5, 6)) // Last seat of a row and first of the next one
		assert.False(t, grid.Adjacent(0, 7)) // Diagonal
		assert.True(t, grid.Adjacent(20, 14))
	})

	t.Run("Linear", func(t *testing.T) {
		grid, err := NewGrid(RoomShape{Rows: 2, Cols: 3}, Linear)
		require.NoError(t, err)

		assert.Equal(t, []SeatIndex{1}, grid.Neighbors(0))
		assert.Equal(t, []SeatIndex{1, 3}, grid.Neighbors(2))
		assert.Equal(t, []SeatIndex{2, 4}, grid.Neighbors(3))
		assert.Equal(t, []SeatIndex{4}, grid.Neighbors(5))
		assert.False(t, grid.Adjacent(0, 3))
	})

	t.Run("Single seat", func(t *testing.T) {
		grid, err := NewGrid(RoomShape{Rows: 1, Cols: 1}, Grid4)
		require.NoError(t, err)

		assert.Empty(t, grid.Neighbors(0))
	})

	t.Run("Adjacency is symmetric", func(t *testing.T) {
		for _, adjacency := range []Adjacency{Grid4, Linear} {
			grid, err := NewGrid(RoomShape{Rows: 4, Cols: 7}, adjacency)
			require.NoError(t, err)

			for seat := range SeatIndex(grid.TotalSeats()) {
				for _, neighbor := range grid.Neighbors(seat) {
					assert.True(t, grid.Adjacent(neighbor, seat), "%v: %d -> %d", adjacency, neighbor, seat)
				}
			}
		}
	})
}

func TestGridCoordinates(t *testing.T) {
	grid, err := NewGrid(RoomShape{Rows: 5, Cols: 6}, Grid4)
	require.NoError(t, err)

	for seat := range SeatIndex(grid.TotalSeats()) {
		row, col := grid.Coordinate(seat)
		assert.True(t, grid.InBounds(row, col))
		assert.Equal(t, seat, grid.Index(row, col))
	}

	row, col := grid.Coordinate(13)
	assert.Equal(t, 2, row)
	assert.Equal(t, 1, col)
	assert.False(t, grid.InBounds(5, 0))
	assert.False(t, grid.InBounds(0, -1))
}

func TestIndependenceNumber(t *testing.T) {
	scenarios := []struct {
		shape     RoomShape
		adjacency Adjacency
		expected  int
	}{
		{RoomShape{Rows: 1, Cols: 1}, Grid4, 1},
		{RoomShape{Rows: 1, Cols: 2}, Grid4, 1},
		{RoomShape{Rows: 2, Cols: 2}, Grid4, 2},
		{RoomShape{Rows: 3, Cols: 3}, Grid4, 5},
		{RoomShape{Rows: 5, Cols: 6}, Grid4, 15},
		{RoomShape{Rows: 1, Cols: 5}, Grid4, 3},
		{RoomShape{Rows: 2, Cols: 3}, Linear, 3},
		{RoomShape{Rows: 3, Cols: 3}, Linear, 5},
	}

	for _, scenario := range scenarios {
		grid, err := NewGrid(scenario.shape, scenario.adjacency)
		require.NoError(t, err)

		assert.Equal(t, scenario.expected, grid.IndependenceNumber(), "%dx%d %v", scenario.shape.Rows, scenario.shape.Cols, scenario.adjacency)
	}
}

func TestParseAdjacency(t *testing.T) {
	adjacency, ok := ParseAdjacency("linear")
	assert.True(t, ok)
	assert.Equal(t, Linear, adjacency)

	_, ok = ParseAdjacency("diagonal")
	assert.False(t, ok)
}
