package model

type Branch string

type Student struct {
	Roll   uint64
	Branch Branch
}

// BranchRange is an inclusive roll range of a single branch. Ranges are kept in a slice since the order in which branches are given determines the roster order
type BranchRange struct {
	Branch Branch
	Start  uint64
	End    uint64
}

type RoomShape struct {
	Rows int
	Cols int
}

func (shape RoomShape) TotalSeats() int {
	return shape.Rows * shape.Cols
}

type SeatIndex int

type Mode int

const (
	// Strict places students by backtracking so that no two adjacent seats hold the same branch
	Strict Mode = iota
	// Fast fills seats round-robin across branches without any adjacency guarantee
	Fast
)

var modeNames = map[Mode]string{
	Strict: "strict",
	Fast:   "fast",
}

func (mode Mode) String() string {
	if name, ok := modeNames[mode]; ok {
		return name
	}
	return "unknown"
}

func ParseMode(name string) (Mode, error) {
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return 0, unknownModeError{name: name}
}

type Seat struct {
	Index    SeatIndex
	Student  Student
	Occupied bool
}

type Arrangement struct {
	Shape      RoomShape
	Mode       Mode
	Seats      []Seat
	Backtracks uint64 // Number of undone placements during a strict search
}

func newEmptyArrangement(shape RoomShape, mode Mode) Arrangement {
	seats := make([]Seat, shape.TotalSeats())
	for i := range seats {
		seats[i].Index = SeatIndex(i)
	}
	return Arrangement{
		Shape: shape,
		Mode:  mode,
		Seats: seats,
	}
}

// At returns the seat placed at (row, col)
func (arrangement Arrangement) At(row, col int) (Seat, bool) {
	if row < 0 || row >= arrangement.Shape.Rows || col < 0 || col >= arrangement.Shape.Cols {
		return Seat{}, false
	}
	return arrangement.Seats[row*arrangement.Shape.Cols+col], true
}

func (arrangement Arrangement) Occupied() int {
	occupied := 0
	for _, seat := range arrangement.Seats {
		if seat.Occupied {
			occupied++
		}
	}
	return occupied
}

// Students returns the seated students in ascending seat order
func (arrangement Arrangement) Students() []Student {
	students := make([]Student, 0, len(arrangement.Seats))
	for _, seat := range arrangement.Seats {
		if seat.Occupied {
			students = append(students, seat.Student)
		}
	}
	return students
}
