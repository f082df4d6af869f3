package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// MaxDimension bounds the rows and the cols of a room
const MaxDimension = 100

// Adjacency selects which seats count as neighbours
type Adjacency int

const (
	// Grid4 makes seats adjacent when they share a row or a column and are one step apart (left, right, front and back)
	Grid4 Adjacency = iota
	// Linear makes seats adjacent when they are consecutive in the flattened seat list. Consecutive seats across a row boundary are adjacent too
	Linear
)

var adjacencyNames = map[Adjacency]string{
	Grid4:  "grid",
	Linear: "linear",
}

func (adjacency Adjacency) String() string {
	if name, ok := adjacencyNames[adjacency]; ok {
		return name
	}
	return "unknown"
}

func ParseAdjacency(name string) (Adjacency, bool) {
	return lo.FindKey(adjacencyNames, name)
}

// Grid is an immutable model of the room's seats and their neighbour relation
type Grid struct {
	shape     RoomShape
	adjacency Adjacency
	neighbors [][]SeatIndex // Sorted ascending per seat

	independenceOnce   sync.Once
	independenceNumber int
}

func NewGrid(shape RoomShape, adjacency Adjacency) (*Grid, error) {
	if shape.Rows <= 0 || shape.Cols <= 0 {
		return nil, fmt.Errorf("%w: room must have at least one row and one column, got %dx%d", ErrInvalidShape, shape.Rows, shape.Cols)
	} else if shape.Rows > MaxDimension || shape.Cols > MaxDimension {
		return nil, fmt.Errorf("%w: room can have at most %d rows and %d cols, got %dx%d", ErrInvalidShape, MaxDimension, MaxDimension, shape.Rows, shape.Cols)
	} else if _, ok := adjacencyNames[adjacency]; !ok {
		return nil, ErrUnknownAdjacency
	}

	grid := &Grid{
		shape:     shape,
		adjacency: adjacency,
		neighbors: make([][]SeatIndex, shape.TotalSeats()),
	}

	// Offsets are (row, col) steps; Linear is handled apart since it ignores row boundaries
	offsets := [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	for seat := range grid.neighbors {
		neighbors := make([]SeatIndex, 0, 4)
		if adjacency == Linear {
			if seat > 0 {
				neighbors = append(neighbors, SeatIndex(seat-1))
			}
			if seat < shape.TotalSeats()-1 {
				neighbors = append(neighbors, SeatIndex(seat+1))
			}
		} else {
			row, col := grid.Coordinate(SeatIndex(seat))
			for _, offset := range offsets {
				neighborRow, neighborCol := row+offset[0], col+offset[1]
				if grid.InBounds(neighborRow, neighborCol) {
					neighbors = append(neighbors, grid.Index(neighborRow, neighborCol))
				}
			}
		}
		slices.Sort(neighbors)
		grid.neighbors[seat] = neighbors
	}

	return grid, nil
}

func (grid *Grid) Shape() RoomShape {
	return grid.shape
}

func (grid *Grid) Adjacency() Adjacency {
	return grid.adjacency
}

func (grid *Grid) TotalSeats() int {
	return grid.shape.TotalSeats()
}

// Neighbors returns the seats adjacent to seat in ascending order. The returned slice must not be modified
func (grid *Grid) Neighbors(seat SeatIndex) []SeatIndex {
	return grid.neighbors[seat]
}

func (grid *Grid) Adjacent(seat1, seat2 SeatIndex) bool {
	_, found := slices.BinarySearch(grid.neighbors[seat1], seat2)
	return found
}

func (grid *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < grid.shape.Rows && col >= 0 && col < grid.shape.Cols
}

func (grid *Grid) Index(row, col int) SeatIndex {
	return SeatIndex(row*grid.shape.Cols + col)
}

func (grid *Grid) Coordinate(seat SeatIndex) (row, col int) {
	return int(seat) / grid.shape.Cols, int(seat) % grid.shape.Cols
}

// IndependenceNumber returns the size of the largest set of seats where no two seats are adjacent, i.e. the largest number of students of a single branch the room can hold.
// Both adjacency models are bipartite (seats split by parity), so by König's theorem it equals the number of seats minus the size of a maximum matching
func (grid *Grid) IndependenceNumber() int {
	grid.independenceOnce.Do(func() {
		grid.independenceNumber = grid.computeIndependenceNumber()
	})
	return grid.independenceNumber
}

func (grid *Grid) computeIndependenceNumber() int {
	even, odd := make([]any, 0), make([]any, 0)
	for seat := range grid.TotalSeats() {
		if grid.parity(SeatIndex(seat)) == 0 {
			even = append(even, SeatIndex(seat))
		} else {
			odd = append(odd, SeatIndex(seat))
		}
	}
	if len(even) == 0 || len(odd) == 0 {
		return grid.TotalSeats()
	}

	neighbors := func(evenAny any, oddAny any) (bool, error) {
		return grid.Adjacent(evenAny.(SeatIndex), oddAny.(SeatIndex)), nil
	}

	graph, err := bipartitegraph.NewBipartiteGraph(even, odd, neighbors)
	if err != nil {
		// neighbors never fails, hence neither does the graph construction
		panic(err)
	}

	return grid.TotalSeats() - len(graph.LargestMatching())
}

// parity colors the seats so that adjacent seats always get different colors
func (grid *Grid) parity(seat SeatIndex) int {
	if grid.adjacency == Linear {
		return int(seat) % 2
	}
	row, col := grid.Coordinate(seat)
	return (row + col) % 2
}
