package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- One row per analysed participant run
CREATE TABLE IF NOT EXISTS analyses (
	run_id TEXT PRIMARY KEY,
	report_code TEXT NOT NULL,
	fight_id INTEGER NOT NULL,
	encounter_id INTEGER NOT NULL,
	encounter_name TEXT NOT NULL,
	participant TEXT NOT NULL,
	phase INTEGER NOT NULL DEFAULT 0,
	kill BOOLEAN NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL,
	uptime_percent REAL NOT NULL,
	lifebloom_hps REAL NOT NULL,
	total_hps REAL NOT NULL,
	timeout_seconds REAL NOT NULL,
	timeout_source TEXT NOT NULL,
	section_count INTEGER NOT NULL,
	rotation_count INTEGER NOT NULL,
	top_pattern TEXT NOT NULL DEFAULT '',
	tank_rotation_percent REAL NOT NULL,
	rotating_on_tank BOOLEAN NOT NULL DEFAULT 0,
	result_json TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (report_code, fight_id, participant, phase)
);

CREATE INDEX IF NOT EXISTS idx_analyses_participant ON analyses(participant);
CREATE INDEX IF NOT EXISTS idx_analyses_encounter ON analyses(encounter_id, phase);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);

-- Every section of a run, identified or not
CREATE TABLE IF NOT EXISTS sections (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	label TEXT NOT NULL,
	kind TEXT NOT NULL,
	start_seconds REAL NOT NULL,
	end_seconds REAL NOT NULL,
	rotation_start INTEGER NOT NULL,
	other_tank INTEGER NOT NULL,
	instant INTEGER NOT NULL,
	regrowth INTEGER NOT NULL,
	closure TEXT NOT NULL,
	PRIMARY KEY (run_id, idx),
	FOREIGN KEY (run_id) REFERENCES analyses(run_id) ON DELETE CASCADE
);

-- Ranked pattern table of a run
CREATE TABLE IF NOT EXISTS patterns (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	notation TEXT NOT NULL,
	count INTEGER NOT NULL,
	percent REAL NOT NULL,
	PRIMARY KEY (run_id, rank),
	FOREIGN KEY (run_id) REFERENCES analyses(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_patterns_notation ON patterns(notation);
`
