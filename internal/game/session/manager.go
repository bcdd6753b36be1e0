package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/game/registry"
	"github.com/cory-johannsen/wasteland/internal/game/roll"
)

var (
	// ErrAlreadyOnline is returned by Join for an owner already present.
	ErrAlreadyOnline = errors.New("player already online")
	// ErrOffline is returned for an owner that has not joined.
	ErrOffline = errors.New("player not online")
)

// Player is one online player.
type Player struct {
	// Owner identifies the player and owns at most one character.
	Owner uuid.UUID
	// Name is the player's account name, used in logs.
	Name string
	// Location groups players for Local announcements.
	Location string
	Inbox    *Inbox
}

// Manager tracks online players and their locations. Joining loads the
// player's character into the registry and leaving unloads it.
//
// All methods are safe for concurrent use.
type Manager struct {
	// lifecycle serializes Join and Leave so a character load never lands
	// after the owner has already left.
	lifecycle sync.Mutex
	mu        sync.RWMutex
	players   map[uuid.UUID]*Player
	locations map[string]map[uuid.UUID]bool

	registry *registry.Registry
	engine   *roll.Engine
	logger   *zap.Logger
}

// NewManager creates an empty Manager.
//
// Precondition: reg, engine and logger must be non-nil.
func NewManager(reg *registry.Registry, engine *roll.Engine, logger *zap.Logger) *Manager {
	if reg == nil || engine == nil || logger == nil {
		panic("session: NewManager precondition violated: registry, engine and logger must be non-nil")
	}
	return &Manager{
		players:   make(map[uuid.UUID]*Player),
		locations: make(map[string]map[uuid.UUID]bool),
		registry:  reg,
		engine:    engine,
		logger:    logger,
	}
}

// Join marks owner online at location and loads their character, if any.
//
// Postcondition: Returns the Player, or ErrAlreadyOnline.
func (m *Manager) Join(ctx context.Context, owner uuid.UUID, name, location string) (*Player, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if _, exists := m.players[owner]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOnline, name)
	}
	p := &Player{Owner: owner, Name: name, Location: location, Inbox: NewInbox(owner, DefaultInboxSize)}
	m.players[owner] = p
	m.enter(owner, location)
	m.mu.Unlock()

	// A player without a character may still be online; they create one later.
	_, loaded := m.registry.LoadCharacter(ctx, owner)
	m.logger.Info("player joined",
		zap.String("player", name),
		zap.Stringer("owner", owner),
		zap.Bool("character_loaded", loaded))
	return p, nil
}

// Leave marks owner offline, closes their inbox and unloads their character.
//
// Postcondition: Returns ErrOffline if owner is not online.
func (m *Manager) Leave(owner uuid.UUID) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	p, exists := m.players[owner]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOffline, owner)
	}
	m.exit(owner, p.Location)
	delete(m.players, owner)
	m.mu.Unlock()

	_ = p.Inbox.Close()
	m.registry.UnloadCharacter(owner)
	m.logger.Info("player left", zap.String("player", p.Name), zap.Stringer("owner", owner))
	return nil
}

// Move changes the location of an online player.
//
// Postcondition: Returns the previous location, or ErrOffline.
func (m *Manager) Move(owner uuid.UUID, location string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[owner]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrOffline, owner)
	}
	old := p.Location
	m.exit(owner, old)
	p.Location = location
	m.enter(owner, location)
	return old, nil
}

// enter and exit maintain the location sets. Callers hold m.mu.
func (m *Manager) enter(owner uuid.UUID, location string) {
	if m.locations[location] == nil {
		m.locations[location] = make(map[uuid.UUID]bool)
	}
	m.locations[location][owner] = true
}

func (m *Manager) exit(owner uuid.UUID, location string) {
	if set, ok := m.locations[location]; ok {
		delete(set, owner)
		if len(set) == 0 {
			delete(m.locations, location)
		}
	}
}

// Player returns the online player for owner.
func (m *Manager) Player(owner uuid.UUID) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[owner]
	return p, ok
}

// PlayersAt returns the owners present at location, sorted.
func (m *Manager) PlayersAt(location string) []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedOwners(m.locations[location])
}

// Online returns every online owner, sorted. Pass it to
// registry.LoadCharacters after a restart.
func (m *Manager) Online() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := make(map[uuid.UUID]bool, len(m.players))
	for owner := range m.players {
		set[owner] = true
	}
	return sortedOwners(set)
}

// Count returns the number of online players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

func sortedOwners(set map[uuid.UUID]bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for owner := range set {
		out = append(out, owner)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Announce delivers msg from owner to the audience selected by v: owner
// alone, everyone at owner's location, or everyone online.
//
// Postcondition: Returns the number of inboxes the message reached, or
// ErrOffline. Full or closed inboxes are skipped and logged.
func (m *Manager) Announce(owner uuid.UUID, msg string, v roll.Visibility) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, ok := m.players[owner]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrOffline, owner)
	}
	var audience []*Player
	switch v {
	case roll.Private:
		audience = []*Player{from}
	case roll.Local:
		for id := range m.locations[from.Location] {
			audience = append(audience, m.players[id])
		}
	case roll.Global:
		for _, p := range m.players {
			audience = append(audience, p)
		}
	}

	delivered := 0
	for _, p := range audience {
		if err := p.Inbox.Push(msg); err != nil {
			m.logger.Warn("dropping announcement", zap.String("player", p.Name), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered, nil
}
