// Package session owns the per-user working state of the MVK classification
// page: the selected company, its loaded scenario, and the control-criteria
// confirmation list. State is ephemeral — rebuilt on every company selection,
// discarded on expiry, never persisted.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baltlens/registry-cli/internal/mvk"
)

// State is one user session's classification working set.
type State struct {
	ID       string
	Regcode  string
	Baseline mvk.CompanyType
	Scenario *mvk.Scenario
	Criteria *mvk.CriteriaList
	Own      mvk.Totals

	loadedAt time.Time
}

// Classification is the derived view served to the portal front-end.
type Classification struct {
	Regcode       string                `json:"regcode"`
	BaselineType  mvk.CompanyType       `json:"baseline_type"`
	EffectiveType mvk.CompanyType       `json:"effective_type"`
	HasUnknown    bool                  `json:"has_unknown"`
	Criteria      []mvk.ControlCriteria `json:"criteria"`
	Totals        mvk.Totals            `json:"totals"`
	SizeClass     mvk.SizeClass         `json:"size_class"`
}

// Manager holds all live sessions behind one lock. Individual operations are
// short and synchronous; there is no background work per session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a session manager. Sessions idle longer than ttl are
// removed by Sweep.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*State),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new empty session and returns its ID.
func (m *Manager) Create() string {
	id := uuid.New().String()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &State{ID: id, loadedAt: m.now()}
	return id
}

// Select installs a freshly loaded scenario for a company, replacing any
// previous working set. Callers do not cancel an in-flight scenario load
// when the user switches companies, so a slower earlier response can arrive
// after a later selection; last write wins here, matching the page's
// original behavior.
func (m *Manager) Select(sessionID, regcode string, scenario *mvk.Scenario, own mvk.Totals) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	s.Regcode = regcode
	s.Scenario = scenario
	s.Own = own
	s.loadedAt = m.now()
	if scenario == nil {
		// Failed load clears the working set entirely.
		s.Baseline = ""
		s.Criteria = nil
		return true
	}
	s.Baseline = scenario.CompanyType
	s.Criteria = mvk.BuildCriteria(scenario)
	return true
}

// Clear empties a session's working set (fetch failure path).
func (m *Manager) Clear(sessionID string) bool {
	return m.Select(sessionID, "", nil, mvk.Totals{})
}

// Update routes one confirmation change to the session's criteria list.
// Returns false only when the session does not exist; unknown entity keys
// remain a defined no-op inside the list.
func (m *Manager) Update(sessionID, regcode string, field mvk.Field, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	s.loadedAt = m.now()
	s.Criteria.Update(regcode, field, value)
	return true
}

// Classification derives the current view for a session. Effective type and
// unknown flags are recomputed fresh on every call.
func (m *Manager) Classification(sessionID string) (Classification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.Scenario == nil {
		return Classification{}, ok
	}
	totals := mvk.AggregateTotals(s.Scenario, s.Own)
	return Classification{
		Regcode:       s.Regcode,
		BaselineType:  s.Baseline,
		EffectiveType: s.Criteria.EffectiveType(s.Baseline),
		HasUnknown:    s.Criteria.HasUnknown(),
		Criteria:      s.Criteria.Records(),
		Totals:        totals,
		SizeClass:     mvk.ClassifySize(totals),
	}, true
}

// Sweep drops sessions idle past the TTL and reports how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for id, s := range m.sessions {
		if s.loadedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
