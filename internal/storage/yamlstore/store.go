// Package yamlstore persists character records as YAML files: characters.yml
// holds one section per lowercase character name and players.yml maps owner
// identities to character names.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

const (
	// CharactersFile is the file name of the character sections.
	CharactersFile = "characters.yml"
	// PlayersFile is the file name of the owner index.
	PlayersFile = "players.yml"
)

// Store is a file-backed character store. Sections are decoded on access so
// one malformed character does not prevent reading the others.
//
// All methods are safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	dir        string
	characters map[string]*yaml.Node // key → raw section
	owners     map[string]string     // owner id → character name
}

// Open loads the store rooted at dir, creating dir if it does not exist.
//
// Postcondition: Returns a Store or an error if either file exists but is not a YAML mapping.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir %q: %w", dir, err)
	}
	s := &Store{dir: dir}

	charNodes, err := readSections(filepath.Join(dir, CharactersFile))
	if err != nil {
		return nil, err
	}
	s.characters = charNodes

	ownerNodes, err := readSections(filepath.Join(dir, PlayersFile))
	if err != nil {
		return nil, err
	}
	s.owners = make(map[string]string, len(ownerNodes))
	for owner, node := range ownerNodes {
		var name string
		if err := node.Decode(&name); err != nil {
			return nil, fmt.Errorf("%s: owner %q: %w", PlayersFile, owner, err)
		}
		s.owners[owner] = name
	}
	return s, nil
}

// readSections splits a top-level YAML mapping into its raw values. A missing
// or empty file yields no sections.
func readSections(path string) (map[string]*yaml.Node, error) {
	sections := make(map[string]*yaml.Node)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sections, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return sections, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing %s: top level is not a mapping", path)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		sections[root.Content[i].Value] = root.Content[i+1]
	}
	return sections, nil
}

// writeSections replaces path with a mapping of sections in key order.
func writeSections(path string, sections map[string]*yaml.Node) error {
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			sections[k],
		)
	}
	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func (s *Store) flushCharacters() error {
	return writeSections(filepath.Join(s.dir, CharactersFile), s.characters)
}

func (s *Store) flushOwners() error {
	sections := make(map[string]*yaml.Node, len(s.owners))
	for owner, name := range s.owners {
		sections[owner] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
	}
	return writeSections(filepath.Join(s.dir, PlayersFile), sections)
}

// Character decodes the section stored under key.
//
// Postcondition: Returns storage.ErrNotFound if there is no such section, or a
// decode error if the section is malformed.
func (s *Store) Character(ctx context.Context, key string) (*character.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.characters[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	var r character.Record
	if err := node.Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", key, err)
	}
	return &r, nil
}

// HasCharacter reports whether a section exists under key.
func (s *Store) HasCharacter(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.characters[key]
	return ok, nil
}

// PutCharacter writes r under key, replacing any previous section.
func (s *Store) PutCharacter(ctx context.Context, key string, r *character.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var node yaml.Node
	if err := node.Encode(r); err != nil {
		return fmt.Errorf("encoding character %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.characters[key]
	s.characters[key] = &node
	if err := s.flushCharacters(); err != nil {
		if had {
			s.characters[key] = prev
		} else {
			delete(s.characters, key)
		}
		return err
	}
	return nil
}

// DeleteCharacter removes the section under key. Deleting a missing key is not an error.
func (s *Store) DeleteCharacter(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.characters[key]
	if !had {
		return nil
	}
	delete(s.characters, key)
	if err := s.flushCharacters(); err != nil {
		s.characters[key] = prev
		return err
	}
	return nil
}

// CharacterKeys returns every stored key in sorted order.
func (s *Store) CharacterKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.characters))
	for k := range s.characters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// OwnedCharacter returns the character name mapped to owner.
//
// Postcondition: Returns storage.ErrNotFound if owner has no mapping.
func (s *Store) OwnedCharacter(ctx context.Context, owner string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.owners[owner]
	if !ok {
		return "", storage.ErrNotFound
	}
	return name, nil
}

// PutOwner maps owner to the character name.
func (s *Store) PutOwner(ctx context.Context, owner, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.owners[owner]
	s.owners[owner] = name
	if err := s.flushOwners(); err != nil {
		if had {
			s.owners[owner] = prev
		} else {
			delete(s.owners, owner)
		}
		return err
	}
	return nil
}

// DeleteOwner removes the mapping for owner. Deleting a missing mapping is not an error.
func (s *Store) DeleteOwner(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.owners[owner]
	if !had {
		return nil
	}
	delete(s.owners, owner)
	if err := s.flushOwners(); err != nil {
		s.owners[owner] = prev
		return err
	}
	return nil
}
