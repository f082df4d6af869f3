package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/seating/internal/config"
	"github.com/limaJavier/seating/internal/store"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Shape             model.RoomShape
	Adjacency         model.Adjacency
	MaxBacktrackSteps uint64
	// AssignTimeout bounds a single assignment. Zero disables the bound
	AssignTimeout    time.Duration
	Workers          int
	RejectDuplicates bool
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Shape:             cfg.Shape(),
		Adjacency:         cfg.AdjacencyPolicy(),
		MaxBacktrackSteps: cfg.MaxBacktrackSteps,
		AssignTimeout:     cfg.AssignTimeout,
		Workers:           cfg.Workers,
		RejectDuplicates:  cfg.RejectDuplicates,
	}
}

type Result struct {
	// Record holds the stored arrangement. Its ID is uuid.Nil for dry runs
	Record   store.Record
	Roster   []model.Student
	Duration time.Duration
}

type SeatingService interface {
	Generate(ctx context.Context, request Request) (Result, error)
	GenerateBatch(ctx context.Context, requests []Request) ([]Result, error)
	CheckDuplicates(ctx context.Context, branches []BranchSerials) ([]uint64, error)
	LookupRoom(ctx context.Context, rollNumber string) (string, error)
	Latest(ctx context.Context) (store.Record, error)
	SaveRoomData(ctx context.Context, data RoomData) (uuid.UUID, error)
}

type seatingService struct {
	store     store.ArrangementStore
	options   Options
	logger    *zap.Logger
	newSeater func(mode model.Mode, options model.Options) (model.Seater, error)
}

func NewSeatingService(arrangementStore store.ArrangementStore, options Options, logger *zap.Logger) SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	options.Workers = max(options.Workers, 1)
	return &seatingService{
		store:     arrangementStore,
		options:   options,
		logger:    logger,
		newSeater: model.NewSeater,
	}
}

// Generate arranges a single room: rolls are validated and expanded into a roster, seated, verified and finally stored
func (service *seatingService) Generate(ctx context.Context, request Request) (Result, error) {
	start := time.Now()
	logger := service.logger.With(zap.String("room", request.Room), zap.Stringer("mode", request.Mode))

	roster, grid, err := service.prepare(request)
	if err != nil {
		return Result{}, err
	}

	if service.options.RejectDuplicates {
		duplicates, err := service.seated(ctx, roster)
		if err != nil {
			return Result{}, err
		} else if len(duplicates) > 0 {
			logger.Info("Rejected duplicate roll numbers", zap.Int("duplicates", len(duplicates)))
			return Result{}, DuplicateRollsError{Rolls: duplicates}
		}
	}

	arrangement, err := service.assign(ctx, request.Mode, roster, grid)
	assignmentsTotal.WithLabelValues(request.Mode.String(), resultLabel(err)).Inc()
	assignmentDuration.WithLabelValues(request.Mode.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Info("Could not arrange room", zap.Int("students", len(roster)), zap.Error(err))
		return Result{}, err
	}
	if request.Mode == model.Strict {
		backtracksPerAssignment.Observe(float64(arrangement.Backtracks))
	}

	if err := model.VerifyArrangement(arrangement, roster, grid); err != nil {
		logger.Error("Arrangement failed verification", zap.Error(err))
		return Result{}, err
	}

	result := Result{
		Record: store.Record{Room: request.Room, Arrangement: arrangement},
		Roster: roster,
	}
	if !request.DryRun {
		record, err := service.store.Save(ctx, request.Room, arrangement)
		storeOperationsTotal.WithLabelValues("save", resultLabel(err)).Inc()
		if err != nil {
			return Result{}, err
		}
		result.Record = record
	}
	result.Duration = time.Since(start)

	logger.Info("Arranged room",
		zap.String("id", result.Record.ID.String()),
		zap.Int("students", len(roster)),
		zap.Int("seats", grid.TotalSeats()),
		zap.Uint64("backtracks", arrangement.Backtracks),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// GenerateBatch arranges several rooms concurrently. Rosters must be disjoint across the batch and room names unique, and results keep the order of the requests.
// Nothing is stored unless every room is arranged
func (service *seatingService) GenerateBatch(ctx context.Context, requests []Request) ([]Result, error) {
	//** Disjointness
	if rooms := lo.FindDuplicates(lo.Map(requests, func(request Request, _ int) string { return request.Room })); len(rooms) > 0 {
		return nil, invalidRequestError{reason: fmt.Sprintf("rooms listed more than once: %v", rooms)}
	}

	counts := make(map[uint64]int)
	for _, request := range requests {
		roster, _, err := service.prepare(request)
		if err != nil {
			return nil, fmt.Errorf("room \"%v\": %w", request.Room, err)
		}
		for _, student := range roster {
			counts[student.Roll]++
		}
	}
	duplicates := lo.Keys(lo.PickBy(counts, func(_ uint64, count int) bool { return count > 1 }))
	if len(duplicates) > 0 {
		slices.Sort(duplicates)
		return nil, DuplicateRollsError{Rolls: duplicates}
	}

	//** Arrangement
	results := make([]Result, len(requests))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(service.options.Workers)
	for i, request := range requests {
		request.DryRun = true
		group.Go(func() error {
			result, err := service.Generate(groupCtx, request)
			if err != nil {
				return fmt.Errorf("room \"%v\": %w", request.Room, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	//** Storage
	indices := lo.FilterMap(requests, func(request Request, i int) (int, bool) { return i, !request.DryRun })
	if len(indices) == 0 {
		return results, nil
	}
	records, err := service.store.SaveAll(ctx, lo.Map(indices, func(i int, _ int) store.RoomArrangement {
		return store.RoomArrangement{Room: requests[i].Room, Arrangement: results[i].Record.Arrangement}
	}))
	storeOperationsTotal.WithLabelValues("save_all", resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	for j, i := range indices {
		results[i].Record = records[j]
	}

	service.logger.Info("Stored batch", zap.Int("rooms", len(records)))
	return results, nil
}

// CheckDuplicates returns the requested rolls that are already seated, in ascending order
func (service *seatingService) CheckDuplicates(ctx context.Context, branches []BranchSerials) ([]uint64, error) {
	ranges, err := Ranges(branches)
	if err != nil {
		return nil, err
	}
	roster, err := model.BuildRoster(ranges)
	if err != nil {
		return nil, err
	}
	return service.seated(ctx, roster)
}

func (service *seatingService) LookupRoom(ctx context.Context, rollNumber string) (string, error) {
	number, err := roll.Parse(rollNumber)
	if err != nil {
		return "", err
	}

	room, err := service.store.FindByRoll(ctx, number.Canonical())
	storeOperationsTotal.WithLabelValues("find_by_roll", resultLabel(err)).Inc()
	return room, err
}

func (service *seatingService) Latest(ctx context.Context) (store.Record, error) {
	record, err := service.store.Latest(ctx)
	storeOperationsTotal.WithLabelValues("latest", resultLabel(err)).Inc()
	return record, err
}

func (service *seatingService) prepare(request Request) ([]model.Student, *model.Grid, error) {
	if request.Room == "" {
		return nil, nil, invalidRequestError{reason: "room name is required"}
	}

	ranges, err := Ranges(request.Branches)
	if err != nil {
		return nil, nil, err
	}
	roster, err := model.BuildRoster(ranges)
	if err != nil {
		return nil, nil, err
	}

	shape := request.Shape
	if shape == (model.RoomShape{}) {
		shape = service.options.Shape
	}
	grid, err := model.NewGrid(shape, service.options.Adjacency)
	if err != nil {
		return nil, nil, err
	}
	return roster, grid, nil
}

func (service *seatingService) seated(ctx context.Context, roster []model.Student) ([]uint64, error) {
	stored, err := service.store.AllRolls(ctx)
	storeOperationsTotal.WithLabelValues("all_rolls", resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	duplicates := lo.FilterMap(roster, func(student model.Student, _ int) (uint64, bool) {
		_, ok := stored[student.Roll]
		return student.Roll, ok
	})
	slices.Sort(duplicates)
	return duplicates, nil
}

// assign runs the seater under the configured time bound. An expired bound is reported as an exhausted search budget
func (service *seatingService) assign(ctx context.Context, mode model.Mode, roster []model.Student, grid *model.Grid) (model.Arrangement, error) {
	seater, err := service.newSeater(mode, model.Options{MaxBacktrackSteps: service.options.MaxBacktrackSteps})
	if err != nil {
		return model.Arrangement{}, err
	}

	if service.options.AssignTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, service.options.AssignTimeout)
		defer cancel()
	}

	type outcome struct {
		arrangement model.Arrangement
		err         error
	}
	done := make(chan outcome, 1)
	go func() {
		arrangement, err := seater.Assign(roster, grid)
		done <- outcome{arrangement: arrangement, err: err}
	}()

	select {
	case result := <-done:
		return result.arrangement, result.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.Arrangement{}, fmt.Errorf("%w: no arrangement found within %v", model.ErrSearchBudgetExceeded, service.options.AssignTimeout)
		}
		return model.Arrangement{}, ctx.Err()
	}
}
