// Package storage archives games in a BadgerDB database.
//
// Each game is a JSON record under "game/<uuid>" holding its PGN export and
// the cursor it was saved at, so a restored session resumes where it left off.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrGameNotFound is returned for an unknown game ID.
var ErrGameNotFound = errors.New("game not found")

// Storage keys
const (
	gamePrefix  = "game/"
	keyLastGame = "last_game"
)

// Record is an archived game.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PGN       string    `json:"pgn"`
	FEN       string    `json:"fen"`    // position at the cursor
	Cursor    int       `json:"cursor"` // -1 for the initial position
	Moves     int       `json:"moves"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Archive wraps BadgerDB for game storage. It is safe for concurrent use.
type Archive struct {
	db     *badger.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (or creates) the archive in dir. A nil logger disables logging.
func Open(dir string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger.Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", dir, err)
	}

	logger.Debug("archive opened", zap.String("dir", dir))
	return &Archive{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

// Save stores rec. A record without an ID gets a fresh one; the stored
// record is returned with ID and timestamps filled in.
func (a *Archive) Save(rec Record) (Record, error) {
	now := a.now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		rec.CreatedAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(gameKey(rec.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyLastGame), []byte(rec.ID))
	})
	if err != nil {
		a.logger.Error("failed to save game", zap.Error(err), zap.String("game_id", rec.ID))
		return Record{}, err
	}

	a.logger.Info("game saved",
		zap.String("game_id", rec.ID),
		zap.String("name", rec.Name),
		zap.Int("moves", rec.Moves),
		zap.Int("cursor", rec.Cursor),
	)
	return rec, nil
}

// Get loads the record with the given ID.
func (a *Archive) Get(id string) (Record, error) {
	var rec Record
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// List returns every record, most recently updated first.
func (a *Archive) List() ([]Record, error) {
	var recs []Record
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
	})
	return recs, nil
}

// Delete removes the record with the given ID.
func (a *Archive) Delete(id string) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(id)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		} else if err != nil {
			return err
		}
		if err := txn.Delete(gameKey(id)); err != nil {
			return err
		}

		last, err := txn.Get([]byte(keyLastGame))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		lastID, err := last.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(lastID) == id {
			return txn.Delete([]byte(keyLastGame))
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Info("game deleted", zap.String("game_id", id))
	return nil
}

// Last returns the most recently saved record; ok is false when the
// archive has none.
func (a *Archive) Last() (rec Record, ok bool, err error) {
	var id string
	err = a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLastGame))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil || id == "" {
		return Record{}, false, err
	}

	rec, err = a.Get(id)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// badgerLogger routes badger's log output to zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
