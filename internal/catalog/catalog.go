// Package catalog holds the static lookup data the bot replies with: the
// language list, placeholder images, and the selectable menu options
// partitioned by catalog and group.
//
// A Catalog is loaded once at startup and never mutated afterwards; every
// accessor returns a copy so callers cannot alter shared state.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// CardCount is the number of cards in the multi-group menu.
const CardCount = 4

//go:embed catalog.yaml
var defaultData []byte

// Option is one selectable menu entry.
type Option struct {
	Name    string `yaml:"name"`
	Value   string `yaml:"value"`
	Catalog string `yaml:"catalog"`
	Group   string `yaml:"group"`
}

// Language is a supported display language.
type Language struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// Card describes one bubble of the multi-group menu: which option group it
// lists and its hero image.
type Card struct {
	Group string `yaml:"group"`
	Image string `yaml:"image"`
	Size  string `yaml:"size"`
}

// Menu configures the two flex menus.
type Menu struct {
	Title     string `yaml:"title"`
	Catalog   string `yaml:"catalog"`
	HeroImage string `yaml:"hero_image"`
	HeroLink  string `yaml:"hero_link"`
	Cards     []Card `yaml:"cards"`
}

// Catalog is the immutable set of static data.
type Catalog struct {
	languages []Language
	images    []string
	options   []Option
	menu      Menu
}

type file struct {
	Languages         []Language `yaml:"languages"`
	PlaceholderImages []string   `yaml:"placeholder_images"`
	Options           []Option   `yaml:"options"`
	Menu              Menu       `yaml:"menu"`
}

// Default returns the built-in catalog. It panics if the embedded data is
// invalid, which can only happen through a broken build.
func Default() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing: %w", err)
	}
	c := &Catalog{
		languages: f.Languages,
		images:    f.PlaceholderImages,
		options:   f.Options,
		menu:      f.Menu,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	if len(c.images) == 0 {
		errs = append(errs, errors.New("catalog: at least one placeholder image is required"))
	}
	for i, o := range c.options {
		if o.Name == "" || o.Value == "" {
			errs = append(errs, fmt.Errorf("catalog: options[%d]: name and value are required", i))
		}
		if o.Catalog == "" || o.Group == "" {
			errs = append(errs, fmt.Errorf("catalog: options[%d]: catalog and group are required", i))
		}
	}
	if c.menu.Catalog == "" {
		errs = append(errs, errors.New("catalog: menu.catalog is required"))
	}
	if len(c.menu.Cards) != CardCount {
		errs = append(errs, fmt.Errorf("catalog: menu.cards: got %d cards, want %d", len(c.menu.Cards), CardCount))
	}
	for i, card := range c.menu.Cards {
		if card.Group == "" || card.Image == "" {
			errs = append(errs, fmt.Errorf("catalog: menu.cards[%d]: group and image are required", i))
		}
	}
	return errors.Join(errs...)
}

// Languages returns the language list in declaration order.
func (c *Catalog) Languages() []Language {
	return slices.Clone(c.languages)
}

// PlaceholderImages returns the placeholder image URLs in declaration order.
func (c *Catalog) PlaceholderImages() []string {
	return slices.Clone(c.images)
}

// Options returns every option in declaration order.
func (c *Catalog) Options() []Option {
	return slices.Clone(c.options)
}

// InCatalog returns the options of the given catalog, in declaration order.
func (c *Catalog) InCatalog(name string) []Option {
	return c.filter(func(o Option) bool { return o.Catalog == name })
}

// InGroup returns the options of the given group, in declaration order.
func (c *Catalog) InGroup(name string) []Option {
	return c.filter(func(o Option) bool { return o.Group == name })
}

// Menu returns the menu settings.
func (c *Catalog) Menu() Menu {
	m := c.menu
	m.Cards = slices.Clone(c.menu.Cards)
	return m
}

func (c *Catalog) filter(keep func(Option) bool) []Option {
	var out []Option
	for _, o := range c.options {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
