package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/haste"
)

// ReportFixture is the on-disk shape of one exported participant run
type ReportFixture struct {
	ReportCode  string                    `json:"reportCode"`
	Fight       combatlog.Fight           `json:"fight"`
	Actors      []combatlog.Actor         `json:"actors"`
	Participant string                    `json:"participant"`
	Tanks       []int                     `json:"tanks,omitempty"`
	Phase       int                       `json:"phase,omitempty"`
	HasteRating *float64                  `json:"hasteRating,omitempty"`
	Gear        []haste.GearItem          `json:"gear,omitempty"`
	Healing     []analysis.AbilityHealing `json:"healing,omitempty"`
	TotalHPS    float64                   `json:"totalHps,omitempty"`
	Healers     []analysis.Healer         `json:"healers,omitempty"`
	Abilities   []Ability                 `json:"abilities,omitempty"`
	Events      []combatlog.RawEvent      `json:"events"`
}

// Ability is an ability name exported with the report
type Ability struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Adapter serves analysis inputs from JSON fixtures
type Adapter struct {
	fixtures map[string]*ReportFixture
}

// NewAdapter creates a new fixture adapter
func NewAdapter() *Adapter {
	return &Adapter{
		fixtures: make(map[string]*ReportFixture),
	}
}

// LoadFixture loads a report fixture from a JSON file
func (a *Adapter) LoadFixture(name string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	var fixture ReportFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}

	if fixture.ReportCode == "" {
		fixture.ReportCode = name
	}
	if fixture.Participant == "" {
		return fmt.Errorf("fixture %s names no participant", path)
	}

	a.fixtures[name] = &fixture
	return nil
}

// LoadDirectory loads every *.json file in dir, keyed by file name without
// extension, and returns the keys in sorted order
func (a *Adapter) LoadDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		if err := a.LoadFixture(name, filepath.Join(dir, e.Name())); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// SetFixture directly sets a fixture (useful for testing)
func (a *Adapter) SetFixture(name string, fixture *ReportFixture) {
	a.fixtures[name] = fixture
}

// Names lists the loaded fixtures in sorted order
func (a *Adapter) Names() []string {
	names := make([]string, 0, len(a.fixtures))
	for name := range a.fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Input builds the analysis input of a fixture. Events tagged with another
// fight are dropped before normalization.
func (a *Adapter) Input(name string) (analysis.Input, error) {
	fixture, exists := a.fixtures[name]
	if !exists {
		return analysis.Input{}, fmt.Errorf("fixture not found: %s", name)
	}

	raw := make([]combatlog.RawEvent, 0, len(fixture.Events))
	for _, ev := range fixture.Events {
		if ev.Fight != 0 && fixture.Fight.ID != 0 && ev.Fight != fixture.Fight.ID {
			continue
		}
		raw = append(raw, ev)
	}

	return analysis.Input{
		ReportCode:  fixture.ReportCode,
		Fight:       fixture.Fight,
		Actors:      fixture.Actors,
		Participant: fixture.Participant,
		TankIDs:     fixture.Tanks,
		Events:      combatlog.Normalize(raw),
		HasteRating: fixture.HasteRating,
		Gear:        fixture.Gear,
		Healing:     fixture.Healing,
		TotalHPS:    fixture.TotalHPS,
		Healers:     fixture.Healers,
		Phase:       fixture.Phase,
	}, nil
}

// AbilityNames returns the ability names exported with a fixture
func (a *Adapter) AbilityNames(name string) map[int]string {
	fixture, exists := a.fixtures[name]
	if !exists || len(fixture.Abilities) == 0 {
		return nil
	}
	names := make(map[int]string, len(fixture.Abilities))
	for _, ab := range fixture.Abilities {
		names[ab.ID] = ab.Name
	}
	return names
}
