package model

import "github.com/samber/lo"

// fastSeater fills seats in ascending order taking one student per branch in turn. It runs in O(seats) but gives no guarantee about adjacent branches
type fastSeater struct{}

func NewFastSeater() Seater {
	return &fastSeater{}
}

func (seater *fastSeater) Assign(roster []Student, grid *Grid) (Arrangement, error) {
	if err := checkCapacity(roster, grid); err != nil {
		return Arrangement{}, err
	}

	branches := branchOrder(roster)
	queues := lo.GroupBy(roster, func(student Student) Branch { return student.Branch })

	arrangement := newEmptyArrangement(grid.Shape(), Fast)
	seat := 0
	for seat < len(roster) {
		for _, branch := range branches {
			if len(queues[branch]) == 0 {
				continue
			}
			arrangement.Seats[seat].Student = queues[branch][0]
			arrangement.Seats[seat].Occupied = true
			queues[branch] = queues[branch][1:]
			seat++
		}
	}

	return arrangement, nil
}

func (seater *fastSeater) Verify(arrangement Arrangement, roster []Student, grid *Grid) bool {
	return verify(arrangement, roster, grid, false) == nil
}
