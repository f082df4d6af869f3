package service

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/limaJavier/seating/pkg/model"
	"github.com/limaJavier/seating/pkg/roll"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// BranchSerials is an inclusive range of roll serials (001-320) of a branch
type BranchSerials struct {
	Branch model.Branch
	Start  uint64
	End    uint64
}

type Request struct {
	Room string
	// Shape defaults to the configured room when zero
	Shape    model.RoomShape
	Mode     model.Mode
	Branches []BranchSerials
	// DryRun arranges the room without storing the result
	DryRun bool
}

type RawRoomCapacity struct {
	RoomName string `mapstructure:"room_name"`
}

// RawRequest mirrors the JSON accepted by the API and the request files
type RawRequest struct {
	RoomCapacity RawRoomCapacity     `mapstructure:"room_capacity"`
	Rows         int                 `mapstructure:"rows"`
	Cols         int                 `mapstructure:"cols"`
	Mode         string              `mapstructure:"mode"`
	Branches     []string            `mapstructure:"branches"`
	RollNumbers  map[string][]uint64 `mapstructure:"roll_numbers"`
	DryRun       bool                `mapstructure:"dry_run"`
}

// ProcessRawRequest orders the roll ranges by the branch list, which is the order students are seated in
func ProcessRawRequest(raw RawRequest) (Request, error) {
	request := Request{
		Room:   raw.RoomCapacity.RoomName,
		Shape:  model.RoomShape{Rows: raw.Rows, Cols: raw.Cols},
		DryRun: raw.DryRun,
	}

	if raw.Mode != "" {
		mode, err := model.ParseMode(raw.Mode)
		if err != nil {
			return Request{}, invalidRequestError{reason: err.Error()}
		}
		request.Mode = mode
	}

	if duplicates := lo.FindDuplicates(raw.Branches); len(duplicates) > 0 {
		return Request{}, invalidRequestError{reason: fmt.Sprintf("branches listed more than once: %v", duplicates)}
	}

	unlisted := lo.Without(lo.Keys(raw.RollNumbers), raw.Branches...)
	if len(unlisted) > 0 {
		slices.Sort(unlisted)
		return Request{}, invalidRequestError{reason: fmt.Sprintf("roll numbers given for branches that are not listed: %v", unlisted)}
	}

	for _, branch := range raw.Branches {
		serials, ok := raw.RollNumbers[branch]
		if !ok {
			return Request{}, invalidRequestError{reason: fmt.Sprintf("missing roll numbers for %v", branch)}
		} else if len(serials) != 2 {
			return Request{}, invalidRequestError{reason: fmt.Sprintf("roll numbers for %v must be a [start, end] pair", branch)}
		}
		request.Branches = append(request.Branches, BranchSerials{
			Branch: model.Branch(branch),
			Start:  serials[0],
			End:    serials[1],
		})
	}

	return request, nil
}

func DecodeRequest(input map[string]any) (Request, error) {
	var raw RawRequest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return Request{}, err
	}
	if err := decoder.Decode(input); err != nil {
		return Request{}, invalidRequestError{reason: err.Error()}
	}
	return ProcessRawRequest(raw)
}

// RequestsFromJson reads a request file holding either a single request object or an array of them
func RequestsFromJson(file string) ([]Request, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var inputJson any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, err
	}

	var inputs []map[string]any
	switch value := inputJson.(type) {
	case map[string]any:
		inputs = []map[string]any{value}
	case []any:
		for i, element := range value {
			input, ok := element.(map[string]any)
			if !ok {
				return nil, invalidRequestError{reason: fmt.Sprintf("request %d is not an object", i)}
			}
			inputs = append(inputs, input)
		}
	default:
		return nil, invalidRequestError{reason: "a request file must hold an object or an array of objects"}
	}

	requests := make([]Request, 0, len(inputs))
	for i, input := range inputs {
		request, err := DecodeRequest(input)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// Ranges converts the branch serials into canonical roll ranges
func Ranges(branches []BranchSerials) ([]model.BranchRange, error) {
	ranges := make([]model.BranchRange, 0, len(branches))
	for _, branch := range branches {
		branchRange, err := roll.Range(branch.Branch, branch.Start, branch.End)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, branchRange)
	}
	return ranges, nil
}
