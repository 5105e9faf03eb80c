package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/haste"
	"github.com/samijaber1/bloomwatch/internal/phase"
	"github.com/samijaber1/bloomwatch/internal/profile"
	"github.com/samijaber1/bloomwatch/internal/rotation"
	"github.com/samijaber1/bloomwatch/internal/tanks"
	"github.com/samijaber1/bloomwatch/internal/uptime"
)

// Analyzer runs the rotation analysis for one participant and encounter at a
// time. It holds only read-only tables and may be shared across goroutines.
type Analyzer struct {
	profiles *profile.Set
	table    *haste.Table
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyzer creates an analyzer. A nil logger disables logging.
func NewAnalyzer(profiles *profile.Set, table *haste.Table, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		profiles: profiles,
		table:    table,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze runs one analysis. Unresolvable actors fail the run with an error
// matching combatlog.ErrMissingActor; empty event windows only add notes.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := phase.Validate(in.Phase); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", in.ReportCode, err)
	}

	prof := a.profiles.For(in.Fight.EncounterID)
	roster := combatlog.NewRoster(in.Actors)

	participantID, ok := roster.Lookup(in.Participant)
	if !ok {
		return nil, fmt.Errorf("analyze %s: %w", in.ReportCode,
			&combatlog.MissingActorError{Role: "participant", Name: in.Participant})
	}

	log := a.logger.With(
		zap.String("report", in.ReportCode),
		zap.Int("fight", in.Fight.ID),
		zap.String("participant", in.Participant),
		zap.String("profile", prof.Metadata.ID),
	)

	result := &Result{
		RunID:         uuid.New().String(),
		CreatedAt:     a.now().UTC(),
		ReportCode:    in.ReportCode,
		Fight:         in.Fight,
		Participant:   in.Participant,
		ParticipantID: participantID,
		Profile:       prof.Metadata.ID,
		Phase:         in.Phase,
	}

	result.Window = a.window(in, prof, roster, result)
	events := combatlog.InWindow(in.Events, result.Window)
	if result.Window.End < in.Fight.End {
		// the split belongs to the phase it opens
		events = combatlog.Before(events, result.Window.End)
	}

	own := combatlog.Filter(events, func(ev combatlog.Event) bool {
		return ev.SourceID == participantID
	})
	table := prof.AbilityTable()

	result.Uptime = uptime.Compute(own, table.Tracked, result.Window)
	if len(result.Uptime.Raw) == 0 {
		result.Notes = append(result.Notes, "no tracked buff applications in window")
	}
	if result.Uptime.Orphans > 0 {
		log.Debug("buff removals without an open instance", zap.Int("orphans", result.Uptime.Orphans))
	}

	classifier, err := a.resolveTanks(in, prof, roster, events, table, result)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", in.ReportCode, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Policy, result.Haste = a.timeoutPolicy(in, prof)

	casts := rotation.Collect(own, table, roster, in.Fight)
	if len(casts) == 0 {
		result.Notes = append(result.Notes, "no casts by participant in window")
	}

	result.Sections, result.Casts = rotation.Segment(casts, classifier, prof.Rules(result.Policy.RotationTimeoutSeconds))
	result.Rotations = rotation.Identified(result.Sections)
	result.Summary = rotation.Aggregate(result.Rotations)

	// healing totals are per fight, so a phase window still divides by the
	// whole fight
	result.HPS = ComputeHPS(in.Healing, in.Fight.Duration(), in.TotalHPS, table.Tracked)
	if result.Window != in.Fight.Window() && len(in.Healing) > 0 {
		result.Notes = append(result.Notes, "healing totals cover the whole fight; HPS uses the fight duration")
	}
	result.Buffs = DetectBuffs(events, participantID)
	result.Composition = ComposeHealers(in.Healers)

	log.Info("analysis complete",
		zap.String("run_id", result.RunID),
		zap.Int("casts", len(result.Casts)),
		zap.Int("sections", len(result.Sections)),
		zap.Int("rotations", len(result.Rotations)),
		zap.Float64("uptime_percent", result.Uptime.Percent),
		zap.Float64("timeout_seconds", result.Policy.RotationTimeoutSeconds),
		zap.String("timeout_source", result.Policy.Source),
		zap.Bool("rotating_on_tank", result.Summary.RotatingOnTank),
	)

	return result, nil
}

// window picks the query window for the requested phase. Encounters without
// phases, or whose boundary cannot be found, are analysed as a whole.
func (a *Analyzer) window(in Input, prof *profile.Profile, roster *combatlog.Roster, result *Result) combatlog.Window {
	if !prof.MultiPhase() {
		if in.Phase != 0 {
			result.Notes = append(result.Notes, fmt.Sprintf("encounter has no phases; phase %d ignored", in.Phase))
		}
		return in.Fight.Window()
	}

	bossID, _ := roster.Lookup(prof.Spec.Phases.SecondaryBoss)
	boundary := phase.Detect(in.Events, bossID, in.Fight)
	result.Boundary = &boundary

	if !boundary.Detected {
		result.Notes = append(result.Notes, "phase boundary not detected: "+boundary.Reason)
	}
	return phase.Windows(in.Fight, boundary, in.Phase)
}

// resolveTanks fills the tank roster and picks the classifier strategy for
// the run.
func (a *Analyzer) resolveTanks(in Input, prof *profile.Profile, roster *combatlog.Roster, events []combatlog.Event, table rotation.AbilityTable, result *Result) (rotation.Classifier, error) {
	quotas := prof.QuotasFor(in.Phase)

	if len(quotas) > 0 {
		bossQuotas := make([]tanks.BossQuota, 0, len(quotas))
		for _, q := range quotas {
			id, ok := roster.Lookup(q.Boss)
			if !ok {
				return nil, &combatlog.MissingActorError{Role: "boss", Name: q.Boss}
			}
			bossQuotas = append(bossQuotas, tanks.BossQuota{BossID: id, Tanks: q.Tanks})
		}

		resolved, err := tanks.ResolveByAttribution(events, roster, bossQuotas)
		if err != nil {
			return nil, err
		}
		if len(resolved) == 0 {
			result.Notes = append(result.Notes, "no boss damage in window; no tanks attributed")
		}

		ids := make([]int, 0, len(resolved))
		for _, t := range resolved {
			ids = append(ids, t.ID)
		}
		result.TankMode = TankModeAttribution
		result.Tanks = resolved
		result.Swings = tanks.Build(events, roster, ids).Swings()

		return rotation.NewMultiTankClassifier(table, resolved, prof.Policy().BuffDuration), nil
	}

	for _, id := range in.TankIDs {
		if !roster.Has(id) {
			return nil, &combatlog.MissingActorError{Role: "tank", ID: id}
		}
	}

	timeline := tanks.Build(events, roster, in.TankIDs)
	if timeline.Len() == 0 {
		result.Notes = append(result.Notes, "no melee swings on tanks in window")
	}

	result.TankMode = TankModeTimeline
	result.Tanks = timeline.Tanks()
	result.Swings = timeline.Swings()

	return rotation.NewStandardClassifier(table, timeline), nil
}

// timeoutPolicy resolves the rotation timeout from the recorded haste stat,
// falling back to gear haste and finally to the configured constant.
func (a *Analyzer) timeoutPolicy(in Input, prof *profile.Profile) (haste.TimeoutPolicy, *haste.Breakdown) {
	cfg := prof.Policy()

	if in.HasteRating != nil {
		return haste.NewPolicy(cfg, *in.HasteRating, true), nil
	}

	if len(in.Gear) > 0 && a.table != nil {
		b := haste.GearHaste(in.Gear, a.table)
		return haste.NewPolicy(cfg, float64(b.Total), true), &b
	}

	return haste.NewPolicy(cfg, 0, false), nil
}
