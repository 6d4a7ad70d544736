package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/internal/cartline"
	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/internal/shortcut"
	"github.com/vittoria-dev/menu-engine/pkg/config"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/metrics"
)

// Manager is the registry of open customization sessions. It loads
// catalog sections on open, tracks the single "active" session the
// keyboard automaton is scoped to, and drives commits.
type Manager struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*Machine
	active    uuid.UUID
	automaton *shortcut.Automaton

	catalog   catalog.Provider
	committer *Committer
	limits    Limits
	maxOpen   int
	idleTTL   time.Duration
	metrics   *metrics.EngineMetrics
	log       *logger.Logger
}

// NewManager wires the session registry.
func NewManager(provider catalog.Provider, committer *Committer, cfg config.SessionConfig, m *metrics.EngineMetrics, log *logger.Logger) *Manager {
	limits := Limits{MaxNoteLen: cfg.MaxNoteLen, MaxQuantity: cfg.MaxQuantity}
	return &Manager{
		sessions:  make(map[uuid.UUID]*Machine),
		catalog:   provider,
		committer: committer,
		limits:    limits,
		maxOpen:   cfg.MaxOpen,
		idleTTL:   cfg.IdleTTL,
		metrics:   m,
		log:       log,
	}
}

// Open starts a new session over productID. The catalog sections are
// loaded outside the lock; a slow catalog never blocks other sessions.
// The product itself is required, but a section that fails to load does
// not refuse the session: it opens degraded with that section disabled
// until a later access reloads it.
func (mgr *Manager) Open(ctx context.Context, productID uuid.UUID, operatorID string) (*Machine, error) {
	product, err := mgr.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	var missing missingSections
	sizes, err := mgr.catalog.GetSizes(ctx, productID)
	if err != nil {
		missing.sizes = true
		mgr.warnSectionDown(ctx, productID, "sizes")
	}
	included, err := mgr.catalog.GetIncludedIngredients(ctx, productID)
	if err != nil {
		missing.included = true
		mgr.warnSectionDown(ctx, productID, "included")
	}
	extras, err := mgr.catalog.GetExtraIngredients(ctx, productID)
	if err != nil {
		missing.extras = true
		mgr.warnSectionDown(ctx, productID, "extras")
	}

	machine, err := NewMachine(uuid.New(), operatorID, product, sizes, included, extras, mgr.limits)
	if err != nil {
		return nil, err
	}
	machine.missing = missing

	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if mgr.maxOpen > 0 && len(mgr.sessions) >= mgr.maxOpen {
		return nil, errors.New(errors.CodeConflict, "too many open sessions")
	}
	mgr.sessions[machine.ID()] = machine
	mgr.metrics.SetSessionsOpen(len(mgr.sessions))
	if mgr.log != nil {
		mgr.log.Info(mgr.log.WithSessionID(mgr.log.WithProductID(ctx, productID.String()), machine.ID().String()), "customization session opened")
	}
	return machine, nil
}

// Get returns an open session, first retrying any catalog sections
// that failed to load when it was opened.
func (mgr *Manager) Get(ctx context.Context, sessionID uuid.UUID) (*Machine, error) {
	mgr.mu.Lock()
	machine, err := mgr.getLocked(sessionID)
	mgr.mu.Unlock()
	if err != nil {
		return nil, err
	}
	mgr.reloadMissingSections(ctx, machine)
	return machine, nil
}

// reloadMissingSections retries the catalog sections a degraded session
// is missing. A section that still fails stays disabled; the next
// access tries again.
func (mgr *Manager) reloadMissingSections(ctx context.Context, machine *Machine) {
	missing := machine.sectionsMissing()
	if !missing.any() {
		return
	}
	productID := machine.Product().ID
	if missing.sizes {
		if sizes, err := mgr.catalog.GetSizes(ctx, productID); err == nil {
			machine.restoreSizes(sizes)
		}
	}
	if missing.included {
		if included, err := mgr.catalog.GetIncludedIngredients(ctx, productID); err == nil {
			machine.restoreIncluded(included)
			mgr.rebindAutomaton(machine)
		}
	}
	if missing.extras {
		if extras, err := mgr.catalog.GetExtraIngredients(ctx, productID); err == nil {
			machine.restoreExtras(extras)
		}
	}
}

// rebindAutomaton rebuilds the shortcut automaton when the active
// session's included ingredients arrive after activation.
func (mgr *Manager) rebindAutomaton(machine *Machine) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if mgr.active == machine.ID() {
		mgr.automaton = shortcut.New(machine.IncludedIngredients(), machine)
	}
}

func (mgr *Manager) warnSectionDown(ctx context.Context, productID uuid.UUID, section string) {
	if mgr.log == nil {
		return
	}
	ctx = mgr.log.WithProductID(ctx, productID.String())
	mgr.log.Warn(mgr.log.WithField(ctx, "section", section), "catalog section failed to load, session opens degraded")
}

func (mgr *Manager) getLocked(sessionID uuid.UUID) (*Machine, error) {
	machine, ok := mgr.sessions[sessionID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "session not found")
	}
	return machine, nil
}

// Activate scopes the keyboard automaton to one session, rebuilding it
// over that session's included ingredients. Switching the active session
// never alters either machine's internal state.
func (mgr *Manager) Activate(sessionID uuid.UUID) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	machine, err := mgr.getLocked(sessionID)
	if err != nil {
		return err
	}
	if mgr.active == sessionID && mgr.automaton != nil {
		return nil
	}
	mgr.active = sessionID
	mgr.automaton = shortcut.New(machine.IncludedIngredients(), machine)
	return nil
}

// ActiveSessionID returns the session the automaton is scoped to.
func (mgr *Manager) ActiveSessionID() uuid.UUID {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.active
}

// PressKey feeds one letter to the active session's automaton.
func (mgr *Manager) PressKey(sessionID uuid.UUID, letter rune) (shortcut.Result, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if _, err := mgr.getLocked(sessionID); err != nil {
		return shortcut.Result{}, err
	}
	if mgr.active != sessionID || mgr.automaton == nil {
		// Keystrokes for a session that is no longer active are stale
		// input and are discarded rather than applied.
		return shortcut.Result{}, errors.New(errors.CodeStateConflict, "session is not the active session")
	}
	return mgr.automaton.Press(letter)
}

// EscapeKey resets the active session's automaton prefix.
func (mgr *Manager) EscapeKey(sessionID uuid.UUID) (shortcut.Result, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if _, err := mgr.getLocked(sessionID); err != nil {
		return shortcut.Result{}, err
	}
	if mgr.active != sessionID || mgr.automaton == nil {
		return shortcut.Result{}, errors.New(errors.CodeStateConflict, "session is not the active session")
	}
	return mgr.automaton.Escape(), nil
}

// Commit finalizes a session as a simple line, or as a split when
// splitWith names a second open session. Either way the involved
// sessions leave the registry on success and on an availability abort.
func (mgr *Manager) Commit(ctx context.Context, sessionID uuid.UUID, splitWith *uuid.UUID) (*cartline.Item, error) {
	mgr.mu.Lock()
	machine, err := mgr.getLocked(sessionID)
	if err != nil {
		mgr.mu.Unlock()
		return nil, err
	}
	var second *Machine
	if splitWith != nil {
		second, err = mgr.getLocked(*splitWith)
		if err != nil {
			mgr.mu.Unlock()
			return nil, err
		}
	}
	mgr.mu.Unlock()

	mgr.reloadMissingSections(ctx, machine)
	if second != nil {
		mgr.reloadMissingSections(ctx, second)
	}

	var item *cartline.Item
	if second != nil {
		item, err = mgr.committer.CommitSplit(ctx, machine, second)
	} else {
		item, err = mgr.committer.Commit(ctx, machine)
	}

	// Terminal machines leave the registry whether the commit landed or
	// the gate cancelled them. Validation failures keep the session open
	// for correction.
	mgr.mu.Lock()
	mgr.removeTerminalLocked(sessionID)
	if splitWith != nil {
		mgr.removeTerminalLocked(*splitWith)
	}
	mgr.metrics.SetSessionsOpen(len(mgr.sessions))
	mgr.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return item, nil
}

func (mgr *Manager) removeTerminalLocked(sessionID uuid.UUID) {
	machine, ok := mgr.sessions[sessionID]
	if !ok || !machine.State().IsTerminal() {
		return
	}
	delete(mgr.sessions, sessionID)
	if mgr.active == sessionID {
		mgr.active = uuid.Nil
		mgr.automaton = nil
	}
}

// Cancel discards an open session.
func (mgr *Manager) Cancel(sessionID uuid.UUID) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	machine, err := mgr.getLocked(sessionID)
	if err != nil {
		return err
	}
	machine.Cancel()
	mgr.removeTerminalLocked(sessionID)
	mgr.metrics.SetSessionsOpen(len(mgr.sessions))
	return nil
}

// OpenCount reports the number of live sessions.
func (mgr *Manager) OpenCount() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.sessions)
}

// PruneIdle cancels sessions untouched for longer than the idle TTL.
// It returns the number of sessions dropped.
func (mgr *Manager) PruneIdle(now time.Time) int {
	if mgr.idleTTL <= 0 {
		return 0
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	dropped := 0
	for id, machine := range mgr.sessions {
		if now.Sub(machine.UpdatedAt()) <= mgr.idleTTL {
			continue
		}
		machine.Cancel()
		mgr.removeTerminalLocked(id)
		dropped++
	}
	if dropped > 0 {
		mgr.metrics.SetSessionsOpen(len(mgr.sessions))
	}
	return dropped
}

// RunPruner cancels idle sessions on a fixed cadence until ctx ends.
func (mgr *Manager) RunPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if dropped := mgr.PruneIdle(now); dropped > 0 && mgr.log != nil {
				mgr.log.Info(mgr.log.WithField(ctx, "dropped", dropped), "idle sessions pruned")
			}
		}
	}
}
