package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/limaJavier/seating/pkg/model"
	"github.com/samber/lo"
)

const (
	arrangementPrefix = "arrangement/"
	rollPrefix        = "roll/"
	rawPrefix         = "raw/"
	latestKey         = "latest"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrRollTaken = errors.New("roll number is already seated")
)

// RollTakenError reports a roll that is already part of a stored arrangement
type RollTakenError struct {
	Roll uint64
	Room string
}

func (err RollTakenError) Error() string {
	return fmt.Sprintf("roll %d is already seated in room \"%v\"", err.Roll, err.Room)
}

func (err RollTakenError) Is(target error) bool {
	return target == ErrRollTaken
}

type Record struct {
	ID          uuid.UUID
	Room        string
	CreatedAt   time.Time
	Arrangement model.Arrangement
}

type RoomArrangement struct {
	Room        string
	Arrangement model.Arrangement
}

type rollEntry struct {
	ID   uuid.UUID
	Room string
}

// ArrangementStore persists generated arrangements and indexes them by roll. A roll can belong to at most one stored arrangement
type ArrangementStore interface {
	Save(ctx context.Context, room string, arrangement model.Arrangement) (Record, error)
	SaveAll(ctx context.Context, arrangements []RoomArrangement) ([]Record, error)
	SaveRaw(ctx context.Context, data []byte) (uuid.UUID, error)
	GetRaw(ctx context.Context, id uuid.UUID) ([]byte, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	Latest(ctx context.Context) (Record, error)
	FindByRoll(ctx context.Context, roll uint64) (string, error)
	AllRolls(ctx context.Context) (map[uint64]struct{}, error)
	Close() error
}

type badgerStore struct {
	db  *badger.DB
	gc  *gcRunner
	now func() time.Time
}

func Open(cfg Config) (ArrangementStore, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	store := &badgerStore{db: db, now: time.Now}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		store.gc = startGC(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
	}
	return store, nil
}

func OpenInMemory() (ArrangementStore, error) {
	return Open(InMemoryConfig())
}

func (store *badgerStore) Close() error {
	if store.gc != nil {
		store.gc.stop()
	}
	return store.db.Close()
}

// Save stores the arrangement under a new ID and indexes every seated roll. Rolls are read inside the same transaction, so two concurrent saves sharing a roll cannot both commit
func (store *badgerStore) Save(ctx context.Context, room string, arrangement model.Arrangement) (Record, error) {
	records, err := store.SaveAll(ctx, []RoomArrangement{{Room: room, Arrangement: arrangement}})
	if err != nil {
		return Record{}, err
	}
	return records[0], nil
}

// SaveAll stores every arrangement in a single transaction: either all of them are committed or none is. The last one becomes the latest arrangement
func (store *badgerStore) SaveAll(ctx context.Context, arrangements []RoomArrangement) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	} else if len(arrangements) == 0 {
		return nil, nil
	}

	createdAt := store.now().UTC()
	records := lo.Map(arrangements, func(arrangement RoomArrangement, _ int) Record {
		return Record{
			ID:          uuid.New(),
			Room:        arrangement.Room,
			CreatedAt:   createdAt,
			Arrangement: arrangement.Arrangement,
		}
	})

	var room string
	err := store.db.Update(func(txn *badger.Txn) error {
		for _, record := range records {
			room = record.Room
			if err := putRecord(txn, record); err != nil {
				return err
			}
		}
		return txn.Set([]byte(latestKey), []byte(records[len(records)-1].ID.String()))
	})
	if errors.Is(err, badger.ErrConflict) {
		return nil, fmt.Errorf("cannot save arrangement for room \"%v\": %w by a concurrent save", room, ErrRollTaken)
	} else if err != nil {
		return nil, fmt.Errorf("cannot save arrangement for room \"%v\": %w", room, err)
	}

	return records, nil
}

func putRecord(txn *badger.Txn, record Record) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("cannot encode arrangement: %v", err)
	}
	entryBytes, err := json.Marshal(rollEntry{ID: record.ID, Room: record.Room})
	if err != nil {
		return fmt.Errorf("cannot encode roll entry: %v", err)
	}

	for _, student := range record.Arrangement.Students() {
		key := rollKey(student.Roll)
		item, err := txn.Get(key)
		if err == nil {
			var entry rollEntry
			if err := item.Value(func(value []byte) error { return json.Unmarshal(value, &entry) }); err != nil {
				return err
			}
			return RollTakenError{Roll: student.Roll, Room: entry.Room}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(key, entryBytes); err != nil {
			return err
		}
	}

	return txn.Set(arrangementKey(record.ID), recordBytes)
}

// SaveRaw keeps a submitted room form as is, under a new ID
func (store *badgerStore) SaveRaw(ctx context.Context, data []byte) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("context cancelled: %w", err)
	}

	id := uuid.New()
	err := store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rawKey(id), data)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("cannot save room data: %w", err)
	}
	return id, nil
}

func (store *badgerStore) GetRaw(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var data []byte
	err := store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rawKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: room data %v", ErrNotFound, id)
		} else if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (store *badgerStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("context cancelled: %w", err)
	}

	var record Record
	err := store.db.View(func(txn *badger.Txn) error {
		var err error
		record, err = getRecord(txn, id)
		return err
	})
	return record, err
}

// Latest returns the most recently saved arrangement
func (store *badgerStore) Latest(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("context cancelled: %w", err)
	}

	var record Record
	err := store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(latestKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: no arrangement has been saved", ErrNotFound)
		} else if err != nil {
			return err
		}

		var id uuid.UUID
		err = item.Value(func(value []byte) error {
			id, err = uuid.ParseBytes(value)
			return err
		})
		if err != nil {
			return fmt.Errorf("corrupted latest arrangement ID: %v", err)
		}

		record, err = getRecord(txn, id)
		return err
	})
	return record, err
}

// FindByRoll returns the room the roll is seated in
func (store *badgerStore) FindByRoll(ctx context.Context, roll uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	var entry rollEntry
	err := store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rollKey(roll))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: roll %d", ErrNotFound, roll)
		} else if err != nil {
			return err
		}
		return item.Value(func(value []byte) error { return json.Unmarshal(value, &entry) })
	})
	return entry.Room, err
}

// AllRolls returns every roll seated in any stored arrangement
func (store *badgerStore) AllRolls(ctx context.Context) (map[uint64]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	rolls := make(map[uint64]struct{})
	err := store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(rollPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			roll, err := parseRollKey(it.Item().Key())
			if err != nil {
				return err
			}
			rolls[roll] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rolls, nil
}

func getRecord(txn *badger.Txn, id uuid.UUID) (Record, error) {
	item, err := txn.Get(arrangementKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, fmt.Errorf("%w: arrangement %v", ErrNotFound, id)
	} else if err != nil {
		return Record{}, err
	}

	var record Record
	err = item.Value(func(value []byte) error { return json.Unmarshal(value, &record) })
	if err != nil {
		return Record{}, fmt.Errorf("cannot decode arrangement %v: %v", id, err)
	}
	return record, nil
}

func arrangementKey(id uuid.UUID) []byte {
	return []byte(arrangementPrefix + id.String())
}

func rawKey(id uuid.UUID) []byte {
	return []byte(rawPrefix + id.String())
}

// Rolls are zero padded so that keys sort like the numbers they hold
func rollKey(roll uint64) []byte {
	return fmt.Appendf(nil, "%v%020d", rollPrefix, roll)
}

func parseRollKey(key []byte) (uint64, error) {
	digits, ok := strings.CutPrefix(string(key), rollPrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected roll key \"%s\"", key)
	}
	return strconv.ParseUint(digits, 10, 64)
}

// Rolls lists the keys of a roll set in ascending order
func Rolls(set map[uint64]struct{}) []uint64 {
	rolls := lo.Keys(set)
	slices.Sort(rolls)
	return rolls
}
