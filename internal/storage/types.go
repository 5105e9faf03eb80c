package storage

import (
	"context"
	"time"

	"github.com/samijaber1/bloomwatch/internal/analysis"
)

// AnalysisStorage defines the interface for persisting analysis results
type AnalysisStorage interface {
	// SaveAnalysis persists a result, replacing any earlier run for the same
	// report, fight, participant and phase
	SaveAnalysis(ctx context.Context, result *analysis.Result) error

	// HasReport reports whether a run for the key is already stored
	HasReport(ctx context.Context, key RunKey) (bool, error)

	// GetAnalysis retrieves a full result by run id; nil when absent
	GetAnalysis(ctx context.Context, runID string) (*analysis.Result, error)

	// ListAnalyses retrieves run summaries with optional filtering
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisSummary, error)

	// Stats aggregates over every stored run
	Stats(ctx context.Context) (*Stats, error)

	// TopPatterns ranks rotation notations across stored runs
	TopPatterns(ctx context.Context, limit int) ([]PatternStat, error)

	// Close closes the storage connection
	Close() error
}

// RunKey identifies one participant's run on one fight
type RunKey struct {
	ReportCode  string
	FightID     int
	Participant string
	Phase       int
}

// KeyOf returns the key of a result
func KeyOf(r *analysis.Result) RunKey {
	return RunKey{
		ReportCode:  r.ReportCode,
		FightID:     r.Fight.ID,
		Participant: r.Participant,
		Phase:       r.Phase,
	}
}

// AnalysisFilter defines filtering options for run listings
type AnalysisFilter struct {
	ReportCode     string
	Participant    string
	EncounterID    int
	Phase          *int
	RotatingOnTank *bool
	Limit          int
	Offset         int
}

// AnalysisSummary is one row of a run listing
type AnalysisSummary struct {
	RunID               string    `json:"runId"`
	ReportCode          string    `json:"reportCode"`
	FightID             int       `json:"fightId"`
	EncounterID         int       `json:"encounterId"`
	EncounterName       string    `json:"encounterName"`
	Participant         string    `json:"participant"`
	Phase               int       `json:"phase"`
	Kill                bool      `json:"kill"`
	DurationSeconds     float64   `json:"durationSeconds"`
	UptimePercent       float64   `json:"uptimePercent"`
	LifebloomHPS        float64   `json:"lifebloomHps"`
	TotalHPS            float64   `json:"totalHps"`
	TimeoutSeconds      float64   `json:"timeoutSeconds"`
	TimeoutSource       string    `json:"timeoutSource"`
	Sections            int       `json:"sections"`
	Rotations           int       `json:"rotations"`
	TopPattern          string    `json:"topPattern,omitempty"`
	TankRotationPercent float64   `json:"tankRotationPercent"`
	RotatingOnTank      bool      `json:"rotatingOnTank"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Stats aggregates over stored runs
type Stats struct {
	Analyses              int     `json:"analyses"`
	Reports               int     `json:"reports"`
	Participants          int     `json:"participants"`
	AvgUptimePercent      float64 `json:"avgUptimePercent"`
	AvgTankRotationPct    float64 `json:"avgTankRotationPercent"`
	RotatingOnTank        int     `json:"rotatingOnTank"`
	RotatingOnTankPercent float64 `json:"rotatingOnTankPercent"`
}

// PatternStat is a notation ranked across runs
type PatternStat struct {
	Notation string `json:"notation"`
	Count    int    `json:"count"`
	Runs     int    `json:"runs"`
}
