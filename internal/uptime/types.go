package uptime

// Interval is a half-open [Start, End) span in milliseconds
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Duration returns End - Start
func (i Interval) Duration() int64 {
	return i.End - i.Start
}

// Result is the uptime of one buff over one observation window
type Result struct {
	Raw      []Interval `json:"-"`
	Merged   []Interval `json:"merged,omitempty"`
	UptimeMs int64      `json:"uptimeMs"`
	WindowMs int64      `json:"windowMs"`
	Percent  float64    `json:"percent"`
	// Orphans counts remove events that had no open instance
	Orphans int `json:"orphans,omitempty"`
}
