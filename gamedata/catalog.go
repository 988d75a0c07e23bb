package gamedata

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
)

//go:embed data/*.csv
var defaultData embed.FS

// ErrNotFound is returned when a table has no row with the requested name.
var ErrNotFound = errors.New("not found")

// Table file names inside a data directory.
const (
	CreaturesFile   = "creatures.csv"
	IngredientsFile = "ingredients.csv"
	BerriesFile     = "berries.csv"
	SkillsFile      = "skills.csv"
)

// Catalog is an indexed, read-only set of game tables.
type Catalog struct {
	creatures   map[string]Creature
	ingredients map[string]Ingredient
	berries     map[string]Berry
	skills      map[string]Skill
}

// Default loads the tables embedded in the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded data: %w", err)
	}
	return Load(sub)
}

// LoadDir loads the tables from a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load loads the four tables from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	creatures, err := readTable[Creature](fsys, CreaturesFile)
	if err != nil {
		return nil, err
	}
	ingredients, err := readTable[Ingredient](fsys, IngredientsFile)
	if err != nil {
		return nil, err
	}
	berries, err := readTable[Berry](fsys, BerriesFile)
	if err != nil {
		return nil, err
	}
	skills, err := readTable[Skill](fsys, SkillsFile)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		creatures:   make(map[string]Creature, len(creatures)),
		ingredients: make(map[string]Ingredient, len(ingredients)),
		berries:     make(map[string]Berry, len(berries)),
		skills:      make(map[string]Skill, len(skills)),
	}
	for _, r := range creatures {
		c.creatures[r.Name] = r
	}
	for _, r := range ingredients {
		c.ingredients[r.Name] = r
	}
	for _, r := range berries {
		c.berries[r.Name] = r
	}
	for _, r := range skills {
		c.skills[r.Name] = r
	}
	return c, nil
}

func readTable[T any](fsys fs.FS, name string) ([]T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	var rows []T
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return rows, nil
}

// Creature returns the creature with the given name.
func (c *Catalog) Creature(name string) (Creature, error) {
	cr, ok := c.creatures[name]
	if !ok {
		return Creature{}, fmt.Errorf("creature %q: %w", name, ErrNotFound)
	}
	return cr, nil
}

// Creatures returns every creature sorted by name.
func (c *Catalog) Creatures() []Creature {
	out := make([]Creature, 0, len(c.creatures))
	for _, cr := range c.creatures {
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Ingredient returns the ingredient with the given name.
func (c *Catalog) Ingredient(name string) (Ingredient, bool) {
	in, ok := c.ingredients[name]
	return in, ok
}

// Berry returns the berry with the given name.
func (c *Catalog) Berry(name string) (Berry, bool) {
	b, ok := c.berries[name]
	return b, ok
}

// Skill returns the skill with the given name.
func (c *Catalog) Skill(name string) (Skill, bool) {
	s, ok := c.skills[name]
	return s, ok
}
