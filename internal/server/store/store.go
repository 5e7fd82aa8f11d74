// Package store is the single persistence primitive. It keeps identities,
// vaults and the activity log as one JSON document and serializes every
// load-modify-save cycle behind one mutex.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
)

// ErrAbsent is returned by a Medium that has never been written.
var ErrAbsent = errors.New("document absent")

// Medium is where the serialized document lives.
type Medium interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, body []byte) error
}

// Option configures a Store.
type Option func(*Store)

// WithSaveObserver registers a callback receiving the duration of every
// successful save.
func WithSaveObserver(fn func(time.Duration)) Option {
	return func(s *Store) { s.observeSave = fn }
}

// WithoutSerialization disables the global lock. Only the lost-update
// regression test uses it.
func WithoutSerialization() Option {
	return func(s *Store) { s.serialize = false }
}

type Store struct {
	medium      Medium
	mu          sync.Mutex
	serialize   bool
	observeSave func(time.Duration)
}

func New(m Medium, opts ...Option) *Store {
	s := &Store{medium: m, serialize: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lock() {
	if s.serialize {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if s.serialize {
		s.mu.Unlock()
	}
}

func (s *Store) load(ctx context.Context) (*models.Document, error) {
	body, err := s.medium.Read(ctx)
	if errors.Is(err, ErrAbsent) {
		return models.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", common.ErrCorruptDocument)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptDocument, err)
	}
	doc.Normalize()
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc *models.Document) error {
	doc.Normalize()
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	start := time.Now()
	if err := s.medium.Write(ctx, body); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if s.observeSave != nil {
		s.observeSave(time.Since(start))
	}
	return nil
}

// Load returns a private copy of the current document. An absent medium
// yields an empty document; an undecodable one fails with
// common.ErrCorruptDocument.
func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	s.lock()
	defer s.unlock()
	return s.load(ctx)
}

// Save replaces the whole document.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	s.lock()
	defer s.unlock()
	return s.save(ctx, doc)
}

// Update runs one load-modify-save cycle. Nothing is written when fn returns
// an error. fn must not call back into the Store.
func (s *Store) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.lock()
	defer s.unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, doc)
}

// View runs fn against a consistent copy of the document.
func (s *Store) View(ctx context.Context, fn func(doc *models.Document) error) error {
	doc, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// Snapshot returns the normalized JSON encoding of the current document.
func (s *Store) Snapshot(ctx context.Context) ([]byte, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return body, nil
}
