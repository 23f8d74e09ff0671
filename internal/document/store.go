package document

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// RecordKey is the key under which the whole collection is persisted
const RecordKey = "documind_scans"

// Store keeps the ordered collection of scanned documents, most recent
// first, in lockstep with its persisted copy.
type Store struct {
	kv   KV
	mu   sync.RWMutex
	docs []ScannedDocument
}

// NewStore creates a Store backed by kv. Call LoadAll to read history.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadAll reads the persisted collection. Missing or corrupt data yields an
// empty collection; it never fails.
func (s *Store) LoadAll() []ScannedDocument {
	docs := s.read()

	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()

	return clone(docs)
}

func (s *Store) read() []ScannedDocument {
	data, err := s.kv.Get(RecordKey)
	if err != nil {
		slog.Warn("Failed to load history", "error", err)
		return []ScannedDocument{}
	}
	if len(data) == 0 {
		return []ScannedDocument{}
	}

	var docs []ScannedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		slog.Warn("Discarding unreadable history", "error", err, "size", len(data))
		return []ScannedDocument{}
	}
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			slog.Warn("Discarding incompatible history", "error", err)
			return []ScannedDocument{}
		}
	}
	if docs == nil {
		docs = []ScannedDocument{}
	}
	return docs
}

// SaveAll overwrites the persisted collection with docs
func (s *Store) SaveAll(docs []ScannedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(clone(docs))
}

// saveLocked writes docs and, only once the write succeeded, makes them the
// in-memory collection
func (s *Store) saveLocked(docs []ScannedDocument) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshaling documents: %w", err)
	}
	if err := s.kv.Set(RecordKey, data); err != nil {
		return fmt.Errorf("saving documents: %w", err)
	}
	s.docs = docs
	return nil
}

// Prepend adds a newly created document at the front of the collection
func (s *Store) Prepend(doc ScannedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]ScannedDocument, 0, len(s.docs)+1)
	next = append(next, doc)
	next = append(next, s.docs...)
	return s.saveLocked(next)
}

// Update applies fn to the document with the given ID and persists the result
func (s *Store) Update(id string, fn func(*ScannedDocument)) (ScannedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.docs)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		fn(&next[i])
		updated := next[i]
		if err := s.saveLocked(next); err != nil {
			return ScannedDocument{}, err
		}
		return updated, nil
	}
	return ScannedDocument{}, fmt.Errorf("document not found: %s", id)
}

// Get retrieves a document by ID
func (s *Store) Get(id string) (ScannedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d, true
		}
	}
	return ScannedDocument{}, false
}

// List returns all documents, most recent first
func (s *Store) List() []ScannedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.docs)
}

func clone(docs []ScannedDocument) []ScannedDocument {
	out := make([]ScannedDocument, len(docs))
	copy(out, docs)
	return out
}
