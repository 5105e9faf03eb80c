package api

import (
	"github.com/samijaber1/bloomwatch/internal/storage"
)

// AnalysisListResponse is a page of stored runs
type AnalysisListResponse struct {
	Analyses []storage.AnalysisSummary `json:"analyses"`
	Total    int                       `json:"total"`
}

// TopPatternsResponse ranks notations across stored runs
type TopPatternsResponse struct {
	Patterns []storage.PatternStat `json:"patterns"`
}

// ProfileListResponse lists the loaded encounter profiles
type ProfileListResponse struct {
	Profiles []ProfileSummary `json:"profiles"`
}

// ProfileSummary contains summary information about a profile
type ProfileSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	EncounterID     int     `json:"encounterId"`
	MultiPhase      bool    `json:"multiPhase"`
	FallbackTimeout float64 `json:"fallbackTimeout"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Ready          bool     `json:"ready"`
	ProfilesLoaded int      `json:"profilesLoaded"`
	Analyses       int      `json:"analyses"`
	Reasons        []string `json:"reasons,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
