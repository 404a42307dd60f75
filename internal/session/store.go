package session

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"resync/internal/models"
)

// ErrSessionNotFound is returned when a session id has never been seen (or
// was cleared). Callers decide whether that is an error or an empty result.
var ErrSessionNotFound = errors.New("session not found")

// State is everything scoped to one caller-supplied session id. The lock
// serializes chat turns and uploads touching the same session; different
// sessions never contend.
type State struct {
	ID      string
	Papers  []models.PaperRecord
	History []models.ChatMessage

	mu sync.Mutex
}

func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

// Store maps session ids to their state. Implementations must be safe for
// concurrent use; state lives for the process lifetime only.
type Store interface {
	// CreateOrGet returns the session's state, creating it with empty papers
	// and a system-prompt-seeded history if absent. Idempotent.
	CreateOrGet(sessionID string) *State

	// Get returns the state or ErrSessionNotFound. Unlike CreateOrGet it
	// keeps "unknown session" distinguishable from "known, zero papers".
	Get(sessionID string) (*State, error)

	// AddPaper appends a paper record, creating the session if absent, and
	// returns the paper's id (its position in the session).
	AddPaper(sessionID string, rec models.PaperRecord) int

	// ListPapers returns summaries in upload order; empty for unknown ids.
	ListPapers(sessionID string) []models.PaperSummary

	// Clear removes papers and history together. No-op for unknown ids.
	Clear(sessionID string)
}

// MemoryStore keeps sessions in a go-cache map. With idleTTL zero sessions
// never expire; otherwise a session untouched for idleTTL is evicted.
type MemoryStore struct {
	sessions     *cache.Cache
	systemPrompt string
	createMu     sync.Mutex
}

func NewMemoryStore(systemPrompt string, idleTTL time.Duration) *MemoryStore {
	exp := cache.NoExpiration
	if idleTTL > 0 {
		exp = idleTTL
	}
	return &MemoryStore{
		sessions:     cache.New(exp, 10*time.Minute),
		systemPrompt: systemPrompt,
	}
}

func (s *MemoryStore) CreateOrGet(sessionID string) *State {
	if x, ok := s.sessions.Get(sessionID); ok {
		return x.(*State)
	}
	s.createMu.Lock()
	defer s.createMu.Unlock()
	if x, ok := s.sessions.Get(sessionID); ok {
		return x.(*State)
	}
	st := &State{
		ID: sessionID,
		History: []models.ChatMessage{
			{Role: models.RoleSystem, Content: s.systemPrompt},
		},
	}
	s.sessions.Set(sessionID, st, cache.DefaultExpiration)
	return st
}

func (s *MemoryStore) Get(sessionID string) (*State, error) {
	if x, ok := s.sessions.Get(sessionID); ok {
		return x.(*State), nil
	}
	return nil, ErrSessionNotFound
}

func (s *MemoryStore) AddPaper(sessionID string, rec models.PaperRecord) int {
	st := s.CreateOrGet(sessionID)
	st.Lock()
	defer st.Unlock()
	st.Papers = append(st.Papers, rec)
	// Re-set to refresh the idle expiration.
	s.sessions.Set(sessionID, st, cache.DefaultExpiration)
	return len(st.Papers) - 1
}

func (s *MemoryStore) ListPapers(sessionID string) []models.PaperSummary {
	st, err := s.Get(sessionID)
	if err != nil {
		return nil
	}
	st.Lock()
	defer st.Unlock()
	out := make([]models.PaperSummary, 0, len(st.Papers))
	for i, p := range st.Papers {
		out = append(out, models.PaperSummary{
			PaperID:    i,
			Filename:   p.Filename,
			UploadTime: p.UploadTime.Format(models.UploadTimeLayout),
		})
	}
	return out
}

func (s *MemoryStore) Clear(sessionID string) {
	s.sessions.Delete(sessionID)
}
