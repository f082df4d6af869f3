package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/limaJavier/seating/internal/service"
	"github.com/limaJavier/seating/internal/store"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/report"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type RoomCapacity struct {
	RoomName string `json:"room_name" validate:"required,max=100"`
}

// GenerateSeatingRequest represents the request body for arranging a room. Branches are seated in the order they are listed
type GenerateSeatingRequest struct {
	RoomCapacity RoomCapacity        `json:"room_capacity"`
	Rows         int                 `json:"rows,omitempty" validate:"omitempty,min=1,max=100"`
	Cols         int                 `json:"cols,omitempty" validate:"omitempty,min=1,max=100"`
	Mode         string              `json:"mode,omitempty" validate:"omitempty,oneof=strict fast"`
	Branches     []string            `json:"branches" validate:"required,min=1,dive,branch"`
	RollNumbers  map[string][]uint64 `json:"roll_numbers" validate:"required,min=1,dive,keys,branch,endkeys,len=2"`
	DryRun       bool                `json:"dry_run,omitempty"`
}

type CheckRollNumbersRequest struct {
	RollNumbers map[string][]uint64 `json:"roll_numbers" validate:"required,min=1,dive,keys,branch,endkeys,len=2"`
}

type LookupRoomRequest struct {
	RollNumber string `json:"roll_number" validate:"required,rollnumber"`
}

type BranchRollData struct {
	StartRoll string `json:"startRoll"`
	EndRoll   string `json:"endRoll"`
}

// SaveSeatingDataRequest is a room form kept for later arrangement. Rolls are full roll numbers such as 1601-22-733-001
type SaveSeatingDataRequest struct {
	RoomCapacity int                       `json:"roomCapacity" validate:"min=0"`
	SelectedRoom string                    `json:"selectedRoom" validate:"required,max=100"`
	BranchData   map[string]BranchRollData `json:"branchData" validate:"required,min=1,dive,keys,branch,endkeys"`
}

type SaveSeatingDataResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type SeatResponse struct {
	Seat       int    `json:"seat"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	RollNumber string `json:"roll_number"`
	Branch     string `json:"branch"`
}

type SeatingResponse struct {
	Message       string         `json:"message,omitempty"`
	ArrangementID string         `json:"arrangement_id,omitempty"`
	Room          string         `json:"room"`
	Rows          int            `json:"rows"`
	Cols          int            `json:"cols"`
	Mode          string         `json:"mode"`
	Backtracks    uint64         `json:"backtracks"`
	SeatingPlan   []SeatResponse `json:"seating_plan"`
}

type CheckRollNumbersResponse struct {
	HasDuplicates bool     `json:"has_duplicates"`
	Duplicates    []string `json:"duplicates,omitempty"`
}

type LookupRoomResponse struct {
	Room string `json:"room"`
}

// SeatingHandler handles seating-related HTTP requests
type SeatingHandler struct {
	service service.SeatingService
	logger  *zap.Logger
}

func NewSeatingHandler(seatingService service.SeatingService, logger *zap.Logger) *SeatingHandler {
	return &SeatingHandler{
		service: seatingService,
		logger:  logger,
	}
}

// GenerateSeating handles POST /api/generate-seating
func (h *SeatingHandler) GenerateSeating(w http.ResponseWriter, r *http.Request) {
	var req GenerateSeatingRequest
	if !h.decode(w, r, &req) {
		return
	}

	request, err := service.ProcessRawRequest(service.RawRequest{
		RoomCapacity: service.RawRoomCapacity{RoomName: req.RoomCapacity.RoomName},
		Rows:         req.Rows,
		Cols:         req.Cols,
		Mode:         req.Mode,
		Branches:     req.Branches,
		RollNumbers:  req.RollNumbers,
		DryRun:       req.DryRun,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.service.Generate(r.Context(), request)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	response := toSeatingResponse(result.Record)
	response.Message = "Seating arrangement generated successfully!"
	respondJSON(w, http.StatusOK, response)
}

// CheckRollNumbers handles POST /api/check-roll-numbers
func (h *SeatingHandler) CheckRollNumbers(w http.ResponseWriter, r *http.Request) {
	var req CheckRollNumbersRequest
	if !h.decode(w, r, &req) {
		return
	}

	branches := lo.Keys(req.RollNumbers)
	slices.Sort(branches)
	serials := lo.Map(branches, func(branch string, _ int) service.BranchSerials {
		return service.BranchSerials{
			Branch: model.Branch(branch),
			Start:  req.RollNumbers[branch][0],
			End:    req.RollNumbers[branch][1],
		}
	})

	duplicates, err := h.service.CheckDuplicates(r.Context(), serials)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckRollNumbersResponse{
		HasDuplicates: len(duplicates) > 0,
		Duplicates:    lo.Map(duplicates, func(canonical uint64, _ int) string { return roll.Format(canonical) }),
	})
}

// LookupRoom handles POST /api/lookup-room
func (h *SeatingHandler) LookupRoom(w http.ResponseWriter, r *http.Request) {
	var req LookupRoomRequest
	if !h.decode(w, r, &req) {
		return
	}

	room, err := h.service.LookupRoom(r.Context(), req.RollNumber)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, LookupRoomResponse{Room: room})
}

// SaveSeatingData handles POST /api/save-seating-data
func (h *SeatingHandler) SaveSeatingData(w http.ResponseWriter, r *http.Request) {
	var req SaveSeatingDataRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.service.SaveRoomData(r.Context(), service.RoomData{
		RoomCapacity: req.RoomCapacity,
		SelectedRoom: req.SelectedRoom,
		BranchData: lo.MapEntries(req.BranchData, func(branch string, data BranchRollData) (model.Branch, service.RollBounds) {
			return model.Branch(branch), service.RollBounds{StartRoll: data.StartRoll, EndRoll: data.EndRoll}
		}),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, SaveSeatingDataResponse{Message: "Room data saved successfully!", ID: id.String()})
}

// LatestSeating handles GET /api/seating/latest
func (h *SeatingHandler) LatestSeating(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Latest(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toSeatingResponse(record))
}

// LatestReport handles GET /api/seating/latest/report?format=text|csv and its alias GET /api/download-seating-pdf
func (h *SeatingHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "csv" {
		respondError(w, r, h.logger, fmt.Errorf("%w: unknown report format \"%v\"", errValidation, format))
		return
	}

	record, err := h.service.Latest(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var buffer bytes.Buffer
	if format == "csv" {
		err = report.WriteCSV(&buffer, record.Arrangement, report.RollNumberLabel)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": fmt.Sprintf("seating_arrangement_%v.csv", record.Room),
		}))
	} else {
		title := fmt.Sprintf("Seating Arrangement for %v (%dx%d Classroom Layout)", record.Room, record.Arrangement.Shape.Rows, record.Arrangement.Shape.Cols)
		err = report.Render(&buffer, record.Arrangement, title, report.SeatLabel)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func (h *SeatingHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, r, h.logger, fmt.Errorf("%w: invalid request body: %v", errValidation, err))
		return false
	}
	if err := validateStruct(req); err != nil {
		respondError(w, r, h.logger, err)
		return false
	}
	return true
}

func toSeatingResponse(record store.Record) SeatingResponse {
	arrangement := record.Arrangement
	cols := max(arrangement.Shape.Cols, 1)

	response := SeatingResponse{
		Room:        record.Room,
		Rows:        arrangement.Shape.Rows,
		Cols:        arrangement.Shape.Cols,
		Mode:        arrangement.Mode.String(),
		Backtracks:  arrangement.Backtracks,
		SeatingPlan: make([]SeatResponse, 0, len(arrangement.Seats)),
	}
	if record.ID != uuid.Nil {
		response.ArrangementID = record.ID.String()
	}

	for _, seat := range arrangement.Seats {
		seatResponse := SeatResponse{
			Seat: int(seat.Index),
			Row:  int(seat.Index) / cols,
			Col:  int(seat.Index) % cols,
		}
		if seat.Occupied {
			seatResponse.RollNumber = roll.Format(seat.Student.Roll)
			seatResponse.Branch = string(seat.Student.Branch)
		}
		response.SeatingPlan = append(response.SeatingPlan, seatResponse)
	}
	return response
}
