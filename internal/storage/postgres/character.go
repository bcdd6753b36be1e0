package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// ErrNameClaimed is returned by PutOwner when another owner holds a live claim on the name.
var ErrNameClaimed = errors.New("character name already claimed by another owner")

// CharacterStore persists character records as JSONB documents keyed by
// lowercase name, with owner mappings in a separate table.
type CharacterStore struct {
	db *pgxpool.Pool
}

// NewCharacterStore creates a CharacterStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewCharacterStore(db *pgxpool.Pool) *CharacterStore {
	return &CharacterStore{db: db}
}

// Character loads the record stored under key.
//
// Postcondition: Returns storage.ErrNotFound if no row exists, or a decode
// error if the stored document is malformed.
func (s *CharacterStore) Character(ctx context.Context, key string) (*character.Record, error) {
	var r character.Record
	err := s.db.QueryRow(ctx,
		`SELECT document FROM characters WHERE key = $1`, key,
	).Scan(&r)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying character %q: %w", key, err)
	}
	return &r, nil
}

// HasCharacter reports whether a row exists under key.
func (s *CharacterStore) HasCharacter(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM characters WHERE key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking character %q: %w", key, err)
	}
	return exists, nil
}

// PutCharacter upserts r under key.
func (s *CharacterStore) PutCharacter(ctx context.Context, key string, r *character.Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO characters (key, name, owner_id, document)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4)
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name,
		    owner_id = EXCLUDED.owner_id,
		    document = EXCLUDED.document,
		    updated_at = NOW()`,
		key, r.Name, r.OwnerID, r,
	)
	if err != nil {
		return fmt.Errorf("saving character %q: %w", key, err)
	}
	return nil
}

// DeleteCharacter removes the row under key. Deleting a missing key is not an error.
func (s *CharacterStore) DeleteCharacter(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM characters WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting character %q: %w", key, err)
	}
	return nil
}

// CharacterKeys returns every stored key in sorted order.
func (s *CharacterStore) CharacterKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key FROM characters ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning character keys: %w", err)
	}
	return keys, nil
}

// OwnedCharacter returns the character name mapped to owner.
//
// Postcondition: Returns storage.ErrNotFound if owner has no mapping.
func (s *CharacterStore) OwnedCharacter(ctx context.Context, owner string) (string, error) {
	var name string
	err := s.db.QueryRow(ctx,
		`SELECT character_name FROM character_owners WHERE owner_id = $1::uuid`, owner,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("querying owner %s: %w", owner, err)
	}
	return name, nil
}

// PutOwner maps owner to the character name. A mapping from another owner
// whose character record is missing or no longer owned by that owner is stale
// and is replaced in the same transaction.
//
// Postcondition: Returns ErrNameClaimed if a different owner whose record
// still names them already maps to name.
func (s *CharacterStore) PutOwner(ctx context.Context, owner, name string) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM character_owners o
			WHERE o.character_name = $2
			  AND o.owner_id <> $1::uuid
			  AND NOT EXISTS (
			      SELECT 1 FROM characters c
			      WHERE c.key = lower(o.character_name) AND c.owner_id = o.owner_id)`,
			owner, name,
		); err != nil {
			return fmt.Errorf("clearing stale owners of %q: %w", name, err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO character_owners (owner_id, character_name)
			VALUES ($1::uuid, $2)
			ON CONFLICT (owner_id) DO UPDATE SET character_name = EXCLUDED.character_name`,
			owner, name,
		)
		return err
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %q", ErrNameClaimed, name)
		}
		return fmt.Errorf("saving owner %s: %w", owner, err)
	}
	return nil
}

// DeleteOwner removes the mapping for owner. Deleting a missing mapping is not an error.
func (s *CharacterStore) DeleteOwner(ctx context.Context, owner string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM character_owners WHERE owner_id = $1::uuid`, owner); err != nil {
		return fmt.Errorf("deleting owner %s: %w", owner, err)
	}
	return nil
}
