package rotation

import (
	"fmt"
	"strings"
)

// Category is the role a cast plays in a rotation.
type Category int

const (
	CategoryNone Category = iota
	CategoryRotationStart
	CategoryOtherTank
	CategoryInstant
	CategoryRegrowth
)

var categoryNames = map[Category]string{
	CategoryNone:          "none",
	CategoryRotationStart: "rotation-start",
	CategoryOtherTank:     "lifebloom-on-other-tank",
	CategoryInstant:       "instant",
	CategoryRegrowth:      "regrowth",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Abbr is the notation token for the category. Casts on the other tank count
// as LB.
func (c Category) Abbr() string {
	switch c {
	case CategoryRotationStart, CategoryOtherTank:
		return "LB"
	case CategoryInstant:
		return "I"
	case CategoryRegrowth:
		return "RG"
	default:
		return ""
	}
}

// Counted reports whether the category contributes to a section's notation.
func (c Category) Counted() bool {
	return c != CategoryNone
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	for cat, name := range categoryNames {
		if name == s {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", s)
}

// Well-known ability ids.
const (
	Lifebloom        = 33763
	Rejuvenation     = 26982
	TreeOfLife       = 33891
	Swiftmend        = 18562
	NaturesSwiftness = 17116
	Innervate        = 29166
)

// RegrowthRanks maps regrowth ability ids to their rank label.
var RegrowthRanks = map[int]string{
	26980: "Rank 10",
	9858:  "Rank 9",
	9857:  "Rank 8",
	9856:  "Rank 7",
	9750:  "Rank 6",
	8941:  "Rank 5",
}

var (
	rebirthRanks     = []int{26994, 20748, 20747, 20742, 20739, 20484}
	healingTouchRank = []int{26979, 26978, 25297, 9889, 9888, 9758, 8903, 6778, 5189, 5188, 5187, 5186, 5185}
	restoreMana      = []int{28499, 17531, 27869, 16666}
)

// AbilityTable classifies casts by ability id.
type AbilityTable struct {
	// Tracked is the buff-granting ability whose target decides rotation starts.
	Tracked int
	// Instants are always counted as instant casts.
	Instants map[int]bool
	// Regrowth lists every rank of the heal-over-time cast.
	Regrowth map[int]bool
	// CancelledCast abilities targeted at the environment stand in for a
	// cancelled regrowth.
	CancelledCast map[int]bool
	// Excluded abilities are dropped before classification.
	Excluded map[int]bool
}

// NewAbilityTable builds a table from id lists.
func NewAbilityTable(tracked int, instants, regrowth, cancelled, excluded []int) AbilityTable {
	return AbilityTable{
		Tracked:       tracked,
		Instants:      set(instants),
		Regrowth:      set(regrowth),
		CancelledCast: set(cancelled),
		Excluded:      set(excluded),
	}
}

// DefaultAbilities returns the restoration druid table.
func DefaultAbilities() AbilityTable {
	regrowth := make([]int, 0, len(RegrowthRanks))
	for id := range RegrowthRanks {
		regrowth = append(regrowth, id)
	}

	excluded := append([]int{}, healingTouchRank...)
	excluded = append(excluded, restoreMana...)

	return NewAbilityTable(
		Lifebloom,
		[]int{Rejuvenation, TreeOfLife, Swiftmend, NaturesSwiftness, Innervate},
		regrowth,
		rebirthRanks,
		excluded,
	)
}

func set(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// untracked classifies every ability except the tracked one. Both classifier
// strategies share it.
func (t AbilityTable) untracked(c Cast) (Category, string) {
	switch {
	case t.Instants[c.AbilityID]:
		return CategoryInstant, ""
	case t.Regrowth[c.AbilityID]:
		return CategoryRegrowth, ""
	case t.CancelledCast[c.AbilityID] && c.TargetEnvironment:
		// A resurrect aimed at the environment is how the log records a
		// regrowth cast that was cancelled.
		return CategoryRegrowth, "cancelled cast"
	default:
		return CategoryNone, ""
	}
}
