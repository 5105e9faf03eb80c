package rotation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/tanks"
)

// preset returns casts unchanged so tests can drive the fold with fixed
// categories.
type preset struct{}

func (preset) Classify(c Cast, _ View) Cast { return c }

func cast(t float64, cat Category) Cast {
	return Cast{Timestamp: int64(t * 1000), Time: t, Category: cat, TargetID: 10}
}

var defaultRules = Rules{TimeoutSeconds: 5.5, IdleBatch: DefaultIdleBatch}

func TestFoldRotationStartClosesPrevious(t *testing.T) {
	casts := []Cast{
		cast(0, CategoryRotationStart),
		cast(2, CategoryInstant),
		cast(8, CategoryRotationStart),
	}

	sections, open, classified := Fold(casts, preset{}, defaultRules)

	require.Len(t, sections, 1)
	assert.Equal(t, 0.0, sections[0].Start)
	assert.Equal(t, 8.0, sections[0].End)
	assert.Equal(t, Counts{RotationStart: 1, Instant: 1}, sections[0].Counts)
	assert.Equal(t, ClosureRotationStart, sections[0].Closure)
	assert.Equal(t, "Rotation #1", sections[0].Label)

	assert.Equal(t, 8.0, open.Start)
	assert.Equal(t, Counts{RotationStart: 1}, open.Counts)
	assert.True(t, open.InRotation)
	assert.Len(t, classified, 3)
}

func TestFoldIdleBatch(t *testing.T) {
	mix := []Category{CategoryInstant, CategoryRegrowth, CategoryNone, CategoryInstant, CategoryRegrowth}

	var casts []Cast
	for i, cat := range mix {
		casts = append(casts, cast(float64(i), cat))
	}

	t.Run("five casts flush as one section", func(t *testing.T) {
		sections, _ := Segment(casts, preset{}, defaultRules)
		require.Len(t, sections, 1)
		assert.Len(t, sections[0].Casts, 5)
		assert.Equal(t, KindIdle, sections[0].Kind)
	})

	t.Run("sixth cast closes the batch", func(t *testing.T) {
		six := append(append([]Cast{}, casts...), cast(5, CategoryInstant))

		sections, open, _ := Fold(six, preset{}, defaultRules)
		require.Len(t, sections, 1)
		assert.Equal(t, ClosureIdleBatch, sections[0].Closure)
		assert.Len(t, sections[0].Casts, 5)
		assert.Equal(t, Counts{Instant: 2, Regrowth: 2}, sections[0].Counts)
		assert.Equal(t, 5.0, open.Start)
		assert.Equal(t, 1, open.SinceClosure)
	})
}

func TestFoldTimeout(t *testing.T) {
	casts := []Cast{
		cast(0, CategoryRotationStart),
		cast(2, CategoryInstant),
		cast(5.5, CategoryRegrowth),
		cast(6, CategoryInstant),
	}

	sections, open, _ := Fold(casts, preset{}, defaultRules)

	require.Len(t, sections, 1)
	assert.Equal(t, ClosureTimeout, sections[0].Closure)
	assert.Equal(t, 5.5, sections[0].End)
	assert.Equal(t, Counts{RotationStart: 1, Instant: 1}, sections[0].Counts)

	assert.False(t, open.InRotation)
	assert.Equal(t, Counts{Regrowth: 1, Instant: 1}, open.Counts)
	assert.Equal(t, 2, open.SinceClosure)
}

func TestFoldRotationStartOnEmptySection(t *testing.T) {
	casts := []Cast{
		cast(0, CategoryNone),
		cast(1, CategoryRotationStart),
	}

	sections, open, _ := Fold(casts, preset{}, defaultRules)
	assert.Empty(t, sections)
	assert.Equal(t, 1.0, open.Start)
}

func TestSegmentEmpty(t *testing.T) {
	sections, classified := Segment(nil, preset{}, defaultRules)
	assert.Empty(t, sections)
	assert.Empty(t, classified)
}

func TestSegmentEndOfRun(t *testing.T) {
	casts := []Cast{
		cast(0, CategoryRotationStart),
		cast(1.5, CategoryInstant),
		cast(3, CategoryRegrowth),
	}

	sections, _ := Segment(casts, preset{}, defaultRules)
	require.Len(t, sections, 1)
	assert.Equal(t, ClosureEndOfRun, sections[0].Closure)
	assert.Equal(t, 3.0, sections[0].End)
	assert.Equal(t, "1LB 1I 1RG", sections[0].Notation())
}

func randomStream(seed int64, n int) []Cast {
	rng := rand.New(rand.NewSource(seed))
	cats := []Category{CategoryRotationStart, CategoryInstant, CategoryRegrowth, CategoryNone, CategoryInstant}

	casts := make([]Cast, 0, n)
	t := 0.0
	for i := 0; i < n; i++ {
		t += float64(rng.Intn(4000)) / 1000
		casts = append(casts, cast(t, cats[rng.Intn(len(cats))]))
	}
	return casts
}

func TestSegmentDeterministic(t *testing.T) {
	casts := randomStream(7, 300)

	first, _ := Segment(casts, preset{}, defaultRules)
	second, _ := Segment(casts, preset{}, defaultRules)

	assert.Equal(t, first, second)
}

func TestSegmentInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		sections, classified := Segment(randomStream(seed, 200), preset{}, defaultRules)
		require.Len(t, classified, 200)

		for i, s := range sections {
			if s.Counts.RotationStart > 1 {
				t.Errorf("seed %d: section %d has %d rotation starts", seed, i, s.Counts.RotationStart)
			}
			if s.End < s.Start {
				t.Errorf("seed %d: section %d ends before it starts", seed, i)
			}
			if i > 0 && sections[i-1].End > s.Start {
				t.Errorf("seed %d: sections %d and %d overlap", seed, i-1, i)
			}
		}
	}
}

func TestIdentified(t *testing.T) {
	sections := []Section{
		{Counts: Counts{RotationStart: 1}},
		{Counts: Counts{Instant: 1}},
		{Counts: Counts{}},
		{Counts: Counts{OtherTank: 1}},
		{Counts: Counts{RotationStart: 1, Instant: 1}},
		{Counts: Counts{Regrowth: 1}},
		{Counts: Counts{Instant: 2}},
	}

	got := Identified(sections)

	require.Len(t, got, 4)
	assert.Equal(t, "0LB 0I 0RG", got[0].Notation())
	assert.Equal(t, "1LB 1I 0RG", got[1].Notation())
	assert.Equal(t, "0LB 0I 1RG", got[2].Notation())
	assert.Equal(t, "0LB 2I 0RG", got[3].Notation())
	assert.Len(t, sections, 7)
}

func TestUncountedIdleBatchCountsTowardPatterns(t *testing.T) {
	var casts []Cast
	for i := 0; i < 6; i++ {
		casts = append(casts, cast(float64(i), CategoryNone))
	}
	casts = append(casts, cast(10, CategoryRotationStart), cast(11, CategoryInstant))

	sections, _ := Segment(casts, preset{}, defaultRules)
	require.Len(t, sections, 2)
	assert.Equal(t, "0LB 0I 0RG", sections[0].Notation())
	assert.Equal(t, ClosureIdleBatch, sections[0].Closure)
	assert.Equal(t, "1LB 1I 0RG", sections[1].Notation())

	summary := Aggregate(Identified(sections))
	assert.Equal(t, 2, summary.Total)
	assert.InDelta(t, 50.0, summary.TankRotationPercent, 1e-9)
	assert.False(t, summary.RotatingOnTank)
}

func TestCollect(t *testing.T) {
	roster := combatlog.NewRoster([]combatlog.Actor{
		{ID: 10, Name: "Tank", Type: "Player"},
		{ID: 90, Name: "Environment", Type: "Environment"},
	})
	fight := combatlog.Fight{Start: 1000, End: 60000}

	events := []combatlog.Event{
		{Timestamp: 2000, Kind: combatlog.KindCast, AbilityID: Lifebloom, TargetID: 10},
		{Timestamp: 2500, Kind: combatlog.KindCast, AbilityID: 26979, TargetID: 10},
		{Timestamp: 3000, Kind: combatlog.KindDamage, AbilityID: 1, TargetID: 10},
		{Timestamp: 4000, Kind: combatlog.KindCast, AbilityID: 26994, TargetID: combatlog.EnvironmentID},
		{Timestamp: 5000, Kind: combatlog.KindCast, AbilityID: 26994, TargetID: 90},
	}

	casts := Collect(events, DefaultAbilities(), roster, fight)

	require.Len(t, casts, 3)
	assert.Equal(t, 1.0, casts[0].Time)
	assert.False(t, casts[0].TargetEnvironment)
	assert.True(t, casts[1].TargetEnvironment)
	assert.True(t, casts[2].TargetEnvironment)
}

func TestStandardClassifier(t *testing.T) {
	timeline := tanks.FromSwings([]tanks.Swing{
		{Timestamp: 0, TankID: 10},
		{Timestamp: 5000, TankID: 11},
	})
	c := NewStandardClassifier(DefaultAbilities(), timeline)

	tests := []struct {
		name     string
		cast     Cast
		expected Category
		note     string
	}{
		{"tracked on active tank", Cast{Timestamp: 1000, AbilityID: Lifebloom, TargetID: 10}, CategoryRotationStart, ""},
		{"tracked on previous tank", Cast{Timestamp: 6000, AbilityID: Lifebloom, TargetID: 10}, CategoryInstant, ""},
		{"tracked on raid member", Cast{Timestamp: 6000, AbilityID: Lifebloom, TargetID: 30}, CategoryInstant, ""},
		{"instant", Cast{Timestamp: 1000, AbilityID: Swiftmend, TargetID: 30}, CategoryInstant, ""},
		{"regrowth rank", Cast{Timestamp: 1000, AbilityID: 9858, TargetID: 30}, CategoryRegrowth, ""},
		{"cancelled cast", Cast{Timestamp: 1000, AbilityID: 26994, TargetID: -1, TargetEnvironment: true}, CategoryRegrowth, "cancelled cast"},
		{"resurrect on player", Cast{Timestamp: 1000, AbilityID: 26994, TargetID: 30}, CategoryNone, ""},
		{"unknown ability", Cast{Timestamp: 1000, AbilityID: 1, TargetID: 30}, CategoryNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.cast, View{})
			assert.Equal(t, tt.expected, got.Category)
			assert.Equal(t, tt.note, got.Note)
		})
	}
}

func TestStandardClassifierUnknownTank(t *testing.T) {
	timeline := tanks.FromSwings([]tanks.Swing{{Timestamp: 5000, TankID: 10}})
	c := NewStandardClassifier(DefaultAbilities(), timeline)

	got := c.Classify(Cast{Timestamp: 1000, AbilityID: Lifebloom, TargetID: 10}, View{})
	assert.Equal(t, CategoryInstant, got.Category)
	assert.Zero(t, got.ActiveTankID)
}

func TestMultiTankSegment(t *testing.T) {
	roster := []tanks.Tank{{ID: 10}, {ID: 11}}
	c := NewMultiTankClassifier(DefaultAbilities(), roster, 7.0)

	lb := func(t float64, target int) Cast {
		return Cast{Timestamp: int64(t * 1000), Time: t, AbilityID: Lifebloom, TargetID: target}
	}
	casts := []Cast{
		lb(0, 10),
		lb(2, 11),
		lb(3, 10),
		lb(4, 11),
		lb(4.5, 20),
		lb(11, 11),
	}

	sections, classified := Segment(casts, c, Rules{TimeoutSeconds: 10})

	cats := make([]Category, 0, len(classified))
	for _, cc := range classified {
		cats = append(cats, cc.Category)
	}
	assert.Equal(t, []Category{
		CategoryRotationStart,
		CategoryOtherTank,
		CategoryRotationStart,
		CategoryOtherTank,
		CategoryInstant,
		CategoryRotationStart,
	}, cats)

	require.Len(t, sections, 3)
	assert.Equal(t, "2LB 0I 0RG", sections[0].Notation())
	assert.Equal(t, "2LB 1I 0RG", sections[1].Notation())
	assert.Equal(t, 11, classified[5].ActiveTankID)

	identified := Identified(sections)
	assert.Len(t, identified, 2)
}

func TestCategoryText(t *testing.T) {
	text, err := CategoryOtherTank.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "lifebloom-on-other-tank", string(text))

	var c Category
	require.NoError(t, c.UnmarshalText([]byte("regrowth")))
	assert.Equal(t, CategoryRegrowth, c)
	assert.Error(t, c.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "LB", CategoryOtherTank.Abbr())
}
