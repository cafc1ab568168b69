package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrSkipSave may be returned by an Update mutation to finish without writing
var ErrSkipSave = errors.New("skip save")

// DB loads and saves whole collections on top of a Backend.
// Every access to a collection holds that collection's mutex, so the
// load-mutate-save cycle of Update is never interleaved with another one.
type DB struct {
	backend Backend
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[Collection]*sync.Mutex
}

// New creates a DB over backend
func New(backend Backend, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		backend: backend,
		logger:  logger,
		locks:   make(map[Collection]*sync.Mutex),
	}
}

// Close closes the underlying backend
func (db *DB) Close() error {
	return db.backend.Close()
}

func (db *DB) lock(c Collection) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()

	l, ok := db.locks[c]
	if !ok {
		l = &sync.Mutex{}
		db.locks[c] = l
	}
	return l
}

// Load decodes collection c into dst.
// A missing or unparseable document is replaced by the collection's empty
// document, which is then decoded into dst.
func (db *DB) Load(ctx context.Context, c Collection, dst any) error {
	l := db.lock(c)
	l.Lock()
	defer l.Unlock()

	return db.load(ctx, c, dst)
}

// Save overwrites collection c with v
func (db *DB) Save(ctx context.Context, c Collection, v any) error {
	l := db.lock(c)
	l.Lock()
	defer l.Unlock()

	return db.save(ctx, c, v)
}

// Update loads collection c into dst, runs mutate and saves dst back.
// If mutate returns ErrSkipSave nothing is written and Update returns nil;
// any other error aborts the cycle and is returned unchanged.
func (db *DB) Update(ctx context.Context, c Collection, dst any, mutate func() error) error {
	l := db.lock(c)
	l.Lock()
	defer l.Unlock()

	if err := db.load(ctx, c, dst); err != nil {
		return err
	}

	if err := mutate(); err != nil {
		if errors.Is(err, ErrSkipSave) {
			return nil
		}
		return err
	}

	return db.save(ctx, c, dst)
}

func (db *DB) load(ctx context.Context, c Collection, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := db.backend.Read(ctx, c)
	if errors.Is(err, ErrNotExist) {
		return db.reset(ctx, c, dst)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		db.logger.Warn("Unparseable collection document, resetting to empty",
			zap.String("collection", string(c)),
			zap.Error(err),
		)
		return db.reset(ctx, c, dst)
	}

	return nil
}

// reset persists the empty document for c and decodes it into dst
func (db *DB) reset(ctx context.Context, c Collection, dst any) error {
	empty := c.EmptyDocument()
	if err := db.backend.Write(ctx, c, empty); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", c, err)
	}
	if err := json.Unmarshal(empty, dst); err != nil {
		return fmt.Errorf("failed to decode empty %s document: %w", c, err)
	}
	return nil
}

func (db *DB) save(ctx context.Context, c Collection, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", c, err)
	}

	return db.backend.Write(ctx, c, data)
}
