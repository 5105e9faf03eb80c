package haste

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_table.yaml
var defaultTableYAML []byte

// Entry is one haste-bearing item or gem.
type Entry struct {
	ID     int    `yaml:"id" json:"id"`
	Rating int    `yaml:"rating" json:"rating"`
	Name   string `yaml:"name" json:"name"`
}

type tableFile struct {
	Items []Entry `yaml:"items"`
	Gems  []Entry `yaml:"gems"`
}

// Table maps item and gem ids to their spell haste rating.
type Table struct {
	Items map[int]Entry
	Gems  map[int]Entry
}

// DefaultTable returns the built-in haste table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultTableYAML)
}

// LoadTable reads a haste table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read haste table %s: %w", path, err)
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ParseTable decodes a haste table. Duplicate ids are rejected.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse haste table: %w", err)
	}

	items, err := index("item", file.Items)
	if err != nil {
		return nil, err
	}
	gems, err := index("gem", file.Gems)
	if err != nil {
		return nil, err
	}

	return &Table{Items: items, Gems: gems}, nil
}

func index(kind string, entries []Entry) (map[int]Entry, error) {
	out := make(map[int]Entry, len(entries))
	for _, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("%s entry %q has invalid id %d", kind, e.Name, e.ID)
		}
		if e.Rating < 0 {
			return nil, fmt.Errorf("%s %d has negative rating", kind, e.ID)
		}
		if _, dup := out[e.ID]; dup {
			return nil, fmt.Errorf("duplicate %s id %d", kind, e.ID)
		}
		out[e.ID] = e
	}
	return out, nil
}

// Gem is a socketed gem on a gear item.
type Gem struct {
	ID int `json:"id"`
}

// GearItem is one equipped item as reported by the log source.
type GearItem struct {
	ID   int   `json:"id"`
	Gems []Gem `json:"gems,omitempty"`
}

// Line is one haste contribution in a Breakdown.
type Line struct {
	ID     int    `json:"id"`
	Rating int    `json:"rating"`
	Name   string `json:"name"`
	Gem    bool   `json:"gem,omitempty"`
}

// Breakdown is the haste summed across a gear snapshot.
type Breakdown struct {
	Total        int    `json:"total"`
	Items        int    `json:"items"`
	Gems         int    `json:"gems"`
	Lines        []Line `json:"lines,omitempty"`
	MissingItems []int  `json:"missingItems,omitempty"`
	MissingGems  []int  `json:"missingGems,omitempty"`
}

// GearHaste sums haste across items and their gems. Empty slots (id 0) are
// skipped; ids absent from the table are listed as missing.
func GearHaste(gear []GearItem, table *Table) Breakdown {
	var b Breakdown

	for _, item := range gear {
		if item.ID == 0 {
			continue
		}

		if e, ok := table.Items[item.ID]; ok {
			if e.Rating > 0 {
				b.Items += e.Rating
				b.Lines = append(b.Lines, Line{ID: e.ID, Rating: e.Rating, Name: e.Name})
			}
		} else {
			b.MissingItems = append(b.MissingItems, item.ID)
		}

		for _, gem := range item.Gems {
			if gem.ID == 0 {
				continue
			}
			e, ok := table.Gems[gem.ID]
			if !ok {
				b.MissingGems = append(b.MissingGems, gem.ID)
				continue
			}
			if e.Rating > 0 {
				b.Gems += e.Rating
				b.Lines = append(b.Lines, Line{ID: e.ID, Rating: e.Rating, Name: e.Name, Gem: true})
			}
		}
	}

	b.Total = b.Items + b.Gems
	return b
}
