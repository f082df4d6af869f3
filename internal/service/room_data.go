package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RollBounds holds the first and last full roll numbers of a branch, such as 1601-22-733-001
type RollBounds struct {
	StartRoll string `json:"startRoll"`
	EndRoll   string `json:"endRoll"`
}

// RoomData is a room form as submitted by the client, kept for later arrangement
type RoomData struct {
	RoomCapacity int                         `json:"roomCapacity"`
	SelectedRoom string                      `json:"selectedRoom"`
	BranchData   map[model.Branch]RollBounds `json:"branchData"`
}

// SaveRoomData validates every branch's roll bounds and stores the form unchanged
func (service *seatingService) SaveRoomData(ctx context.Context, data RoomData) (uuid.UUID, error) {
	if err := validateRoomData(data); err != nil {
		return uuid.Nil, err
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("cannot encode room data: %v", err)
	}

	id, err := service.store.SaveRaw(ctx, bytes)
	storeOperationsTotal.WithLabelValues("save_raw", resultLabel(err)).Inc()
	if err != nil {
		return uuid.Nil, err
	}

	service.logger.Info("Saved room data", zap.String("id", id.String()), zap.String("room", data.SelectedRoom), zap.Int("branches", len(data.BranchData)))
	return id, nil
}

func validateRoomData(data RoomData) error {
	branches := lo.Keys(data.BranchData)
	slices.Sort(branches)

	for _, branch := range branches {
		bounds := data.BranchData[branch]
		if bounds.StartRoll == "" || bounds.EndRoll == "" {
			return invalidRequestError{reason: fmt.Sprintf("missing roll numbers for %v", branch)}
		}

		start, err := roll.Validate(bounds.StartRoll, branch)
		if err != nil {
			return fmt.Errorf("start roll number for %v: %w", branch, err)
		}
		end, err := roll.Validate(bounds.EndRoll, branch)
		if err != nil {
			return fmt.Errorf("end roll number for %v: %w", branch, err)
		}

		if start.Serial > end.Serial {
			return invalidRequestError{reason: fmt.Sprintf("start roll number for %v must be less than or equal to end roll number", branch)}
		}
	}
	return nil
}
