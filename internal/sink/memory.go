package sink

import (
	"context"
	"sync"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
)

// Published is one recorded publication.
type Published struct {
	SessionID string
	Kind      string // start, event, end or cancel
	BattleID  string
	Event     combat.BattleEvent
	State     *combat.BattleState
}

// MemorySink records every publication in order. Recorded states are clones
// taken at publication time.
//
// MemorySink is safe for concurrent use.
type MemorySink struct {
	mu  sync.Mutex
	log []Published
	// Err, when set, is returned from every publication after recording it.
	Err error
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) record(p Published) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, p)
	return m.Err
}

func (m *MemorySink) PublishStart(_ context.Context, sessionID string, state *combat.BattleState) error {
	return m.record(Published{SessionID: sessionID, Kind: "start", BattleID: state.ID, State: state.Clone()})
}

func (m *MemorySink) PublishEvent(_ context.Context, sessionID string, state *combat.BattleState, ev combat.BattleEvent) error {
	return m.record(Published{SessionID: sessionID, Kind: "event", BattleID: state.ID, Event: ev, State: state.Clone()})
}

func (m *MemorySink) PublishEnd(_ context.Context, sessionID string, state *combat.BattleState) error {
	return m.record(Published{SessionID: sessionID, Kind: "end", BattleID: state.ID, State: state.Clone()})
}

func (m *MemorySink) PublishCancel(_ context.Context, sessionID string, state *combat.BattleState) error {
	return m.record(Published{SessionID: sessionID, Kind: "cancel", BattleID: state.ID, State: state.Clone()})
}

// All returns a copy of every publication so far.
func (m *MemorySink) All() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Published(nil), m.log...)
}

// Events returns the recorded events for sessionID in order.
func (m *MemorySink) Events(sessionID string) []combat.BattleEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []combat.BattleEvent
	for _, p := range m.log {
		if p.SessionID == sessionID && p.Kind == "event" {
			out = append(out, p.Event)
		}
	}
	return out
}

// Count returns how many publications of kind were recorded.
func (m *MemorySink) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.log {
		if p.Kind == kind {
			n++
		}
	}
	return n
}
