package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/wasteland/internal/scripting"
)

// ArmorSlot is a body slot an armor piece is equipped into.
type ArmorSlot string

const (
	SlotHead  ArmorSlot = "head"
	SlotChest ArmorSlot = "chest"
	SlotLegs  ArmorSlot = "legs"
	SlotFeet  ArmorSlot = "feet"
)

// ArmorSlots returns the four slots that make up a full armor set.
func ArmorSlots() []ArmorSlot {
	return []ArmorSlot{SlotHead, SlotChest, SlotLegs, SlotFeet}
}

// blockFunction is the global Lua function an armor script must define.
const blockFunction = "can_block"

// ArmorMaterial defines how a full set of one armor material blocks damage.
//
// A material blocks a damage type when the block roll reaches the threshold in
// Block. If Script is set it defines can_block(damage_type, roll) and replaces
// the threshold table.
type ArmorMaterial struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Block       map[string]int `yaml:"block"`
	Script      string         `yaml:"script"`

	predicate *scripting.Predicate
}

// Validate reports an error if the material is missing required fields or
// names an unknown damage type.
//
// Postcondition: Returns nil iff the material is well-formed.
func (a *ArmorMaterial) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	for key, threshold := range a.Block {
		if _, ok := ParseDamageType(key); !ok {
			errs = append(errs, fmt.Errorf("block: unknown damage type %q", key))
		}
		if threshold < 1 {
			errs = append(errs, fmt.Errorf("block.%s must be >= 1, got %d", key, threshold))
		}
	}
	if len(a.Block) == 0 && a.Script == "" {
		errs = append(errs, errors.New("one of block or script must be set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor material %q validation failed: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// compile binds the material's Lua predicate, if any.
func (a *ArmorMaterial) compile() error {
	if a.Script == "" || a.predicate != nil {
		return nil
	}
	p, err := scripting.CompilePredicate(blockFunction, a.Script, 0)
	if err != nil {
		return fmt.Errorf("armor material %q: %w", a.ID, err)
	}
	a.predicate = p
	return nil
}

// CanBlock reports whether a block roll of roll stops damage of type dt.
//
// Postcondition: A damage type with no threshold and no script is never blocked.
// A script runtime error counts as not blocked and is returned.
func (a *ArmorMaterial) CanBlock(dt DamageType, roll int) (bool, error) {
	if a.predicate != nil {
		return a.predicate.Call(dt.Key(), roll)
	}
	threshold, ok := a.Block[dt.Key()]
	if !ok {
		return false, nil
	}
	return roll >= threshold, nil
}

// ArmorCatalog indexes armor materials by ID.
type ArmorCatalog struct {
	materials map[string]*ArmorMaterial
}

// NewArmorCatalog validates and indexes defs, compiling any scripts.
//
// Precondition: no two defs may share an ID.
// Postcondition: Returns a catalog or the first validation/compile error.
func NewArmorCatalog(defs []*ArmorMaterial) (*ArmorCatalog, error) {
	c := &ArmorCatalog{materials: make(map[string]*ArmorMaterial, len(defs))}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		id := strings.ToLower(def.ID)
		if _, dup := c.materials[id]; dup {
			return nil, fmt.Errorf("duplicate armor material %q", def.ID)
		}
		if err := def.compile(); err != nil {
			return nil, err
		}
		c.materials[id] = def
	}
	return c, nil
}

// DefaultArmorCatalog returns the built-in armor materials.
func DefaultArmorCatalog() *ArmorCatalog {
	c, err := NewArmorCatalog(DefaultArmorMaterials())
	if err != nil {
		panic(fmt.Sprintf("building default armor catalog: %v", err))
	}
	return c
}

// DefaultArmorMaterials returns fresh copies of the built-in armor materials.
func DefaultArmorMaterials() []*ArmorMaterial {
	return []*ArmorMaterial{
		{
			ID: "leather", Name: "Leather Armor",
			Block: map[string]int{"ballistic": 19, "energy": 20, "fire": 18, "melee": 15},
		},
		{
			ID: "metal", Name: "Metal Armor",
			Block: map[string]int{"ballistic": 16, "energy": 18, "explosive": 20, "fire": 17, "melee": 12},
		},
		{
			ID: "combat", Name: "Combat Armor",
			Block: map[string]int{"ballistic": 13, "energy": 16, "explosive": 18, "fire": 15, "melee": 13},
		},
		{
			ID: "power", Name: "Power Armor",
			Block: map[string]int{"ballistic": 9, "energy": 12, "explosive": 14, "fire": 11, "melee": 8},
		},
	}
}

// Material returns the material with the given ID, ignoring case.
func (c *ArmorCatalog) Material(id string) (*ArmorMaterial, bool) {
	m, ok := c.materials[strings.ToLower(id)]
	return m, ok
}

// IDs returns the sorted material IDs.
func (c *ArmorCatalog) IDs() []string {
	ids := make([]string, 0, len(c.materials))
	for id := range c.materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadArmorMaterials reads all .yaml/.yml files in dir, one material per file.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all parsed materials (not yet validated) or a non-nil error.
func LoadArmorMaterials(dir string) ([]*ArmorMaterial, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	materials := make([]*ArmorMaterial, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var m ArmorMaterial
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing armor file %s: %w", path, err)
		}
		materials = append(materials, &m)
	}
	return materials, nil
}

// LoadArmorCatalog loads and indexes the materials in dir. An empty dir
// argument yields the built-in catalog.
func LoadArmorCatalog(dir string) (*ArmorCatalog, error) {
	if dir == "" {
		return DefaultArmorCatalog(), nil
	}
	defs, err := LoadArmorMaterials(dir)
	if err != nil {
		return nil, err
	}
	return NewArmorCatalog(defs)
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
