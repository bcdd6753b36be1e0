// Package registry owns the lifecycle of loaded characters: creation from a
// staged builder, load and unload, possession, abandonment and deletion.
//
// Every operation runs under one mutex, so the owner index, the name index
// and the backing store change together as seen by any other caller.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

var (
	// ErrNoBuilder is returned by CreateCharacter when no builder is staged for the owner.
	ErrNoBuilder = errors.New("no character builder staged")
	// ErrNotOwner is returned when an owner-scoped operation finds no owned character.
	ErrNotOwner = errors.New("owner has no character")
	// ErrAlreadyOwner is returned when creating a character for an owner that already has one.
	ErrAlreadyOwner = errors.New("owner already has a character")
	// ErrNameTaken is returned when creating a character whose name is already stored.
	ErrNameTaken = errors.New("character name already exists")
)

// Store persists character records by lowercase name and owner mappings by
// owner id string. Missing entries are reported as storage.ErrNotFound.
type Store interface {
	Character(ctx context.Context, key string) (*character.Record, error)
	HasCharacter(ctx context.Context, key string) (bool, error)
	PutCharacter(ctx context.Context, key string, r *character.Record) error
	DeleteCharacter(ctx context.Context, key string) error
	CharacterKeys(ctx context.Context) ([]string, error)
	OwnedCharacter(ctx context.Context, owner string) (string, error)
	PutOwner(ctx context.Context, owner, name string) error
	DeleteOwner(ctx context.Context, owner string) error
}

// Registry indexes loaded characters by owner and by lowercase name.
//
// Invariant: a character is in byOwner iff it is in byName, and its owner is
// the byOwner key.
type Registry struct {
	mu       sync.Mutex
	store    Store
	logger   *zap.Logger
	byOwner  map[uuid.UUID]*character.Character
	byName   map[string]*character.Character
	builders map[uuid.UUID]*character.Builder
}

// New returns an empty Registry persisting through store.
//
// Precondition: store and logger must be non-nil.
func New(store Store, logger *zap.Logger) *Registry {
	if store == nil || logger == nil {
		panic("registry: New precondition violated: store and logger must be non-nil")
	}
	return &Registry{
		store:    store,
		logger:   logger,
		byOwner:  make(map[uuid.UUID]*character.Character),
		byName:   make(map[string]*character.Character),
		builders: make(map[uuid.UUID]*character.Builder),
	}
}

// read loads and validates the stored character named name. A record whose
// name does not match its key is malformed.
func (r *Registry) read(ctx context.Context, name string) (*character.Character, error) {
	key := character.Key(name)
	rec, err := r.store.Character(ctx, key)
	if err != nil {
		return nil, err
	}
	if character.Key(rec.Name) != key {
		return nil, fmt.Errorf("%w: %q stored under %q", character.ErrMalformedRecord, rec.Name, key)
	}
	return character.FromRecord(rec)
}

// readLogged is read with every failure other than a plain miss logged.
func (r *Registry) readLogged(ctx context.Context, name string) (*character.Character, bool) {
	c, err := r.read(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to load character", zap.String("character", name), zap.Error(err))
		}
		return nil, false
	}
	return c, true
}

// ownedName returns the name of the stored character owned by owner. An owner
// mapping whose record is missing or owned by someone else is ignored.
func (r *Registry) ownedName(ctx context.Context, owner uuid.UUID) (string, bool) {
	name, err := r.store.OwnedCharacter(ctx, owner.String())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to look up owner", zap.Stringer("owner", owner), zap.Error(err))
		}
		return "", false
	}
	rec, err := r.store.Character(ctx, character.Key(name))
	if err != nil || rec.OwnerID != owner.String() {
		return "", false
	}
	return name, true
}

func (r *Registry) index(owner uuid.UUID, c *character.Character) {
	r.byOwner[owner] = c
	r.byName[c.Key()] = c
}

// unindex drops the instance loaded under c's key, which may not be c itself,
// from both indices.
func (r *Registry) unindex(c *character.Character) {
	loaded, ok := r.byName[c.Key()]
	if !ok {
		return
	}
	delete(r.byName, c.Key())
	for owner, indexed := range r.byOwner {
		if indexed == loaded {
			delete(r.byOwner, owner)
		}
	}
}

// LoadCharacter loads the character owned by owner into the indices,
// recomputing and re-persisting its derived fields. An already loaded
// character is returned as is.
//
// Postcondition: Returns (nil, false) if owner has no character or its record
// cannot be read; read failures are logged, never returned.
func (r *Registry) LoadCharacter(ctx context.Context, owner uuid.UUID) (*character.Character, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx, owner)
}

func (r *Registry) loadLocked(ctx context.Context, owner uuid.UUID) (*character.Character, bool) {
	if c, ok := r.byOwner[owner]; ok {
		return c, true
	}

	name, err := r.store.OwnedCharacter(ctx, owner.String())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to look up owner", zap.Stringer("owner", owner), zap.Error(err))
		}
		return nil, false
	}

	c, ok := r.readLogged(ctx, name)
	if !ok {
		return nil, false
	}
	if stored, owned := c.Owner(); !owned || stored != owner {
		r.logger.Warn("owner mapping does not match character record",
			zap.String("character", name), zap.Stringer("owner", owner))
		return nil, false
	}
	if loaded, ok := r.byName[c.Key()]; ok {
		// Indices disagree with storage; keep the loaded instance.
		r.logger.Warn("character already loaded under another owner", zap.String("character", loaded.Name()))
		return nil, false
	}

	c.UpdateRadiationResistance()
	if err := r.store.PutCharacter(ctx, c.Key(), c.ToRecord()); err != nil {
		r.logger.Warn("failed to re-save loaded character", zap.String("character", name), zap.Error(err))
	}
	r.index(owner, c)
	r.logger.Debug("character loaded", zap.String("character", c.Name()), zap.Stringer("owner", owner))
	return c, true
}

// LoadCharacters loads the character of every owner in owners, e.g. players
// already online at startup.
//
// Postcondition: Returns the number of owners with a loaded character.
func (r *Registry) LoadCharacters(ctx context.Context, owners []uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, owner := range owners {
		if _, ok := r.loadLocked(ctx, owner); ok {
			n++
		}
	}
	return n
}

// LoadOfflineCharacter reads the named character without indexing it or
// checking its owner. A loaded character is returned from the index instead.
//
// Postcondition: Returns (nil, false) if the character does not exist or cannot be read.
func (r *Registry) LoadOfflineCharacter(ctx context.Context, name string) (*character.Character, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byName[character.Key(name)]; ok {
		return c, true
	}
	return r.readLogged(ctx, name)
}

// UnloadCharacter drops owner's character from the indices and discards any
// staged builder. Unloading an owner with nothing loaded is a no-op.
func (r *Registry) UnloadCharacter(owner uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.builders, owner)
	if c, ok := r.byOwner[owner]; ok {
		r.unindex(c)
		r.logger.Debug("character unloaded", zap.String("character", c.Name()), zap.Stringer("owner", owner))
	}
}

// SaveCharacter persists the current state of c.
func (r *Registry) SaveCharacter(ctx context.Context, c *character.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.PutCharacter(ctx, c.Key(), c.ToRecord()); err != nil {
		return fmt.Errorf("saving character %q: %w", c.Name(), err)
	}
	return nil
}

// AddCharacterBuilder stages b for owner, replacing any builder already staged.
func (r *Registry) AddCharacterBuilder(owner uuid.UUID, b *character.Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[owner] = b
}

// CharacterBuilder returns the builder staged for owner.
func (r *Registry) CharacterBuilder(owner uuid.UUID) (*character.Builder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.builders[owner]
	return b, ok
}

// CreateCharacter materializes the builder staged for owner, persists the new
// character and its owner mapping, and indexes it.
//
// Postcondition: On success the builder is discarded. On failure storage, the
// indices and the staged builder are unchanged, and the error wraps
// ErrNoBuilder, ErrAlreadyOwner, ErrNameTaken, character.ErrIncomplete or a
// storage error.
func (r *Registry) CreateCharacter(ctx context.Context, owner uuid.UUID) (*character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.builders[owner]
	if !ok {
		return nil, ErrNoBuilder
	}
	if _, ok := r.byOwner[owner]; ok {
		return nil, ErrAlreadyOwner
	}
	if name, ok := r.ownedName(ctx, owner); ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyOwner, name)
	}

	c, err := b.Build()
	if err != nil {
		return nil, err
	}
	exists, err := r.store.HasCharacter(ctx, c.Key())
	if err != nil {
		return nil, fmt.Errorf("checking character %q: %w", c.Name(), err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, c.Name())
	}

	c.Possess(owner)
	if err := r.store.PutCharacter(ctx, c.Key(), c.ToRecord()); err != nil {
		return nil, fmt.Errorf("saving character %q: %w", c.Name(), err)
	}
	if err := r.store.PutOwner(ctx, owner.String(), c.Name()); err != nil {
		if rbErr := r.store.DeleteCharacter(ctx, c.Key()); rbErr != nil {
			r.logger.Error("failed to roll back character creation",
				zap.String("character", c.Name()), zap.Error(rbErr))
		}
		return nil, fmt.Errorf("saving owner of %q: %w", c.Name(), err)
	}

	delete(r.builders, owner)
	r.index(owner, c)
	r.logger.Debug("character created", zap.String("character", c.Name()), zap.Stringer("owner", owner))
	return c, nil
}

// DeleteCharacter unindexes the character named like c and deletes its record
// and owner mapping. The owner is taken from the stored record, so a stale c
// still removes the current owner's mapping.
//
// Postcondition: No character under c's key is loaded, even if a storage step fails.
func (r *Registry) DeleteCharacter(ctx context.Context, c *character.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	owner := ""
	rec, err := r.store.Character(ctx, key)
	switch {
	case err == nil:
		owner = rec.OwnerID
	case !errors.Is(err, storage.ErrNotFound):
		r.logger.Warn("failed to read character before delete", zap.String("character", c.Name()), zap.Error(err))
	}

	r.unindex(c)
	if err := r.store.DeleteCharacter(ctx, key); err != nil {
		return fmt.Errorf("deleting character %q: %w", c.Name(), err)
	}
	if owner != "" {
		r.deleteOwnerOf(ctx, owner, key)
	}
	r.logger.Debug("character deleted", zap.String("character", c.Name()))
	return nil
}

// deleteOwnerOf removes owner's mapping if it still names key. A failure is
// logged; a leftover mapping points at a missing record and is ignored on load.
func (r *Registry) deleteOwnerOf(ctx context.Context, owner, key string) {
	name, err := r.store.OwnedCharacter(ctx, owner)
	if err != nil || character.Key(name) != key {
		return
	}
	if err := r.store.DeleteOwner(ctx, owner); err != nil {
		r.logger.Warn("failed to delete owner mapping",
			zap.String("character", key), zap.String("owner", owner), zap.Error(err))
	}
}

// PossessCharacter gives the stored, unowned character named name to owner.
// The stored record decides; in-memory state is not consulted for the target.
//
// Postcondition: Returns (nil, false) with nothing changed if owner already
// has a character, or the target is missing, unreadable or owned.
func (r *Registry) PossessCharacter(ctx context.Context, owner uuid.UUID, name string) (*character.Character, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byOwner[owner]; ok {
		return nil, false
	}
	if _, ok := r.ownedName(ctx, owner); ok {
		return nil, false
	}
	c, ok := r.readLogged(ctx, name)
	if !ok {
		return nil, false
	}
	if _, owned := c.Owner(); owned {
		return nil, false
	}

	c.Possess(owner)
	if err := r.store.PutCharacter(ctx, c.Key(), c.ToRecord()); err != nil {
		r.logger.Warn("failed to save possessed character", zap.String("character", c.Name()), zap.Error(err))
		return nil, false
	}
	if err := r.store.PutOwner(ctx, owner.String(), c.Name()); err != nil {
		r.logger.Warn("failed to save owner of possessed character", zap.String("character", c.Name()), zap.Error(err))
		c.Abandon()
		if rbErr := r.store.PutCharacter(ctx, c.Key(), c.ToRecord()); rbErr != nil {
			r.logger.Error("failed to roll back possession", zap.String("character", c.Name()), zap.Error(rbErr))
		}
		return nil, false
	}

	r.index(owner, c)
	r.logger.Debug("character possessed", zap.String("character", c.Name()), zap.Stringer("owner", owner))
	return c, true
}

// AbandonCharacter clears the owner of owner's loaded character and persists
// it unowned. The character leaves the indices before its owner is cleared.
//
// Postcondition: Returns the unowned character, or ErrNotOwner if owner has no
// loaded character. On a save failure the character is restored and re-indexed.
func (r *Registry) AbandonCharacter(ctx context.Context, owner uuid.UUID) (*character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byOwner[owner]
	if !ok {
		return nil, ErrNotOwner
	}
	r.unindex(c)
	c.Abandon()
	if err := r.store.PutCharacter(ctx, c.Key(), c.ToRecord()); err != nil {
		c.Possess(owner)
		r.index(owner, c)
		return nil, fmt.Errorf("saving abandoned character %q: %w", c.Name(), err)
	}
	if err := r.store.DeleteOwner(ctx, owner.String()); err != nil {
		// The record is unowned, so the stale mapping is ignored on load.
		r.logger.Warn("failed to delete owner mapping",
			zap.String("character", c.Name()), zap.Stringer("owner", owner), zap.Error(err))
	}
	r.logger.Debug("character abandoned", zap.String("character", c.Name()), zap.Stringer("owner", owner))
	return c, nil
}

// IsOwner reports whether owner has a loaded character.
func (r *Registry) IsOwner(owner uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byOwner[owner]
	return ok
}

// IsCharacter reports whether a character named name is stored, loaded or not.
func (r *Registry) IsCharacter(ctx context.Context, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok, err := r.store.HasCharacter(ctx, character.Key(name))
	if err != nil {
		r.logger.Warn("failed to check character", zap.String("character", name), zap.Error(err))
		return false
	}
	return ok
}

// IsLoaded reports whether the character named name is loaded.
func (r *Registry) IsLoaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byName[character.Key(name)]
	return ok
}

// CanPossess reports whether the character named name is stored and unowned.
func (r *Registry) CanPossess(ctx context.Context, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.readLogged(ctx, name)
	if !ok {
		return false
	}
	_, owned := c.Owner()
	return !owned
}

// CharacterByOwner returns owner's loaded character.
func (r *Registry) CharacterByOwner(owner uuid.UUID) (*character.Character, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byOwner[owner]
	return c, ok
}

// CharacterByName returns the loaded character named name, ignoring case.
// Stored but unloaded characters are not found.
func (r *Registry) CharacterByName(name string) (*character.Character, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byName[character.Key(name)]
	return c, ok
}

// Characters returns every loaded character ordered by key.
func (r *Registry) Characters() []*character.Character {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*character.Character, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// CharacterNames returns the names of every loaded character in key order.
func (r *Registry) CharacterNames() []string {
	chars := r.Characters()
	names := make([]string, len(chars))
	for i, c := range chars {
		names[i] = c.Name()
	}
	return names
}

// ExistingCharacters returns the key of every stored character, loaded or not.
func (r *Registry) ExistingCharacters(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys, err := r.store.CharacterKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return keys, nil
}
