// Package store mirrors the merged profile table into SQLite so commands can
// start from the cache without re-reading the raw dataset files, and persists
// bulk scoring runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/query"
)

// SQLiteStore implements the snapshot cache using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at path and configures WAL mode. The
// parent directory is created if missing.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create dir %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Nullable columns keep the unknown/zero distinction the profiles carry in
// memory: NULL round-trips to a nil field, never to a zero.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id        INTEGER PRIMARY KEY CHECK (id = 1),
	version   INTEGER NOT NULL,
	loaded_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	bbl               TEXT PRIMARY KEY,
	address           TEXT NOT NULL DEFAULT '',
	zip_code          TEXT NOT NULL DEFAULT '',
	borough           TEXT NOT NULL DEFAULT '',
	owner_name        TEXT NOT NULL DEFAULT '',
	owner_type        TEXT NOT NULL DEFAULT '',
	building_class    TEXT NOT NULL DEFAULT '',
	energy_grade      TEXT NOT NULL DEFAULT '',
	building_area     REAL,
	office_area       REAL,
	occupancy_percent REAL,
	site_eui          REAL,
	energy_star_score REAL,
	peak_demand_kw    REAL,
	floors            INTEGER,
	year_built        INTEGER,
	meter_count       INTEGER,
	has_vav           INTEGER,
	has_dcv           INTEGER,
	has_bms           INTEGER
);

CREATE TABLE IF NOT EXISTS bulk_runs (
	id         TEXT PRIMARY KEY,
	addresses  TEXT NOT NULL,
	results    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_profiles_energy_grade ON profiles(energy_grade);
CREATE INDEX IF NOT EXISTS idx_bulk_runs_created_at ON bulk_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the cached table with snap inside one transaction.
// The cache is never patched in place; a reader opening the file sees either
// the old table or the new one.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *profile.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles`); err != nil {
		return eris.Wrap(err, "sqlite: clear profiles")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO profiles (
			bbl, address, zip_code, borough, owner_name, owner_type,
			building_class, energy_grade, building_area, office_area,
			occupancy_percent, site_eui, energy_star_score, peak_demand_kw,
			floors, year_built, meter_count, has_vav, has_dcv, has_bms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, p := range snap.All() {
		_, err := stmt.ExecContext(ctx,
			string(p.BBL), p.Address, p.ZipCode, p.Borough, p.OwnerName, p.OwnerType,
			p.BuildingClass, p.EnergyGrade, nullFloat(p.BuildingArea), nullFloat(p.OfficeArea),
			nullFloat(p.OccupancyPercent), nullFloat(p.SiteEUI), nullFloat(p.EnergyStarScore),
			nullFloat(p.PeakDemandKW), nullInt(p.Floors), nullInt(p.YearBuilt),
			nullInt(p.MeterCount), nullBool(p.HasVAV), nullBool(p.HasDCV), nullBool(p.HasBMS),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert profile %s", p.BBL)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, version, loaded_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET version = excluded.version, loaded_at = excluded.loaded_at`,
		snap.Version, snap.LoadedAt,
	); err != nil {
		return eris.Wrap(err, "sqlite: update meta")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit snapshot")
}

// LoadSnapshot rebuilds a snapshot from the cache. Returns (nil, nil) when
// the cache has never been written.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*profile.Snapshot, error) {
	var version int64
	var loadedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT version, loaded_at FROM snapshot_meta WHERE id = 1`,
	).Scan(&version, &loadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: read meta")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT bbl, address, zip_code, borough, owner_name, owner_type,
		       building_class, energy_grade, building_area, office_area,
		       occupancy_percent, site_eui, energy_star_score, peak_demand_kw,
		       floors, year_built, meter_count, has_vav, has_dcv, has_bms
		FROM profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: read profiles")
	}
	defer rows.Close() //nolint:errcheck

	table := make(map[profile.BBL]*profile.BuildingProfile)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		table[p.BBL] = p
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate profiles")
	}

	snap := profile.NewSnapshot(table, version)
	snap.LoadedAt = loadedAt
	return snap, nil
}

func scanProfile(rows *sql.Rows) (*profile.BuildingProfile, error) {
	var p profile.BuildingProfile
	var bbl string
	var buildingArea, officeArea, occupancy, siteEUI, starScore, peakDemand sql.NullFloat64
	var floors, yearBuilt, meterCount, hasVAV, hasDCV, hasBMS sql.NullInt64

	err := rows.Scan(
		&bbl, &p.Address, &p.ZipCode, &p.Borough, &p.OwnerName, &p.OwnerType,
		&p.BuildingClass, &p.EnergyGrade, &buildingArea, &officeArea,
		&occupancy, &siteEUI, &starScore, &peakDemand,
		&floors, &yearBuilt, &meterCount, &hasVAV, &hasDCV, &hasBMS,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan profile")
	}

	p.BBL = profile.BBL(bbl)
	p.BuildingArea = floatPtr(buildingArea)
	p.OfficeArea = floatPtr(officeArea)
	p.OccupancyPercent = floatPtr(occupancy)
	p.SiteEUI = floatPtr(siteEUI)
	p.EnergyStarScore = floatPtr(starScore)
	p.PeakDemandKW = floatPtr(peakDemand)
	p.Floors = intPtr(floors)
	p.YearBuilt = intPtr(yearBuilt)
	p.MeterCount = intPtr(meterCount)
	p.HasVAV = boolPtr(hasVAV)
	p.HasDCV = boolPtr(hasDCV)
	p.HasBMS = boolPtr(hasBMS)
	return &p, nil
}

// BulkRun is one persisted bulk scoring invocation.
type BulkRun struct {
	ID        string             `json:"id"`
	Addresses []string           `json:"addresses"`
	Results   []query.BulkResult `json:"results"`
	CreatedAt time.Time          `json:"created_at"`
}

// SaveBulkRun persists one bulk scoring run and returns its record.
func (s *SQLiteStore) SaveBulkRun(ctx context.Context, addresses []string, results []query.BulkResult) (*BulkRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	addrJSON, err := json.Marshal(addresses)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal addresses")
	}
	resultJSON, err := json.Marshal(results)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal results")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bulk_runs (id, addresses, results, created_at) VALUES (?, ?, ?, ?)`,
		id, string(addrJSON), string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert bulk run")
	}

	return &BulkRun{ID: id, Addresses: addresses, Results: results, CreatedAt: now}, nil
}

// GetBulkRun loads one run by id.
func (s *SQLiteStore) GetBulkRun(ctx context.Context, id string) (*BulkRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, addresses, results, created_at FROM bulk_runs WHERE id = ?`, id)

	var r BulkRun
	var addrJSON, resultJSON string
	err := row.Scan(&r.ID, &addrJSON, &resultJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("bulk run not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan bulk run")
	}
	if err := json.Unmarshal([]byte(addrJSON), &r.Addresses); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal addresses")
	}
	if err := json.Unmarshal([]byte(resultJSON), &r.Results); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal results")
	}
	return &r, nil
}

// ListBulkRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListBulkRuns(ctx context.Context, limit int) ([]BulkRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, addresses, results, created_at FROM bulk_runs
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list bulk runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []BulkRun
	for rows.Next() {
		var r BulkRun
		var addrJSON, resultJSON string
		if err := rows.Scan(&r.ID, &addrJSON, &resultJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan bulk run")
		}
		if err := json.Unmarshal([]byte(addrJSON), &r.Addresses); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal addresses")
		}
		if err := json.Unmarshal([]byte(resultJSON), &r.Results); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal results")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list bulk runs iterate")
}

// nullable column helpers

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullBool(p *bool) any {
	if p == nil {
		return nil
	}
	if *p {
		return 1
	}
	return 0
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func boolPtr(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Int64 != 0
	return &b
}
