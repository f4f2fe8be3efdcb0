// Package persistence archives generated worlds in SQLite.
package persistence

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/toroid/internal/atlas"
	"github.com/talgya/toroid/internal/biome"
	"github.com/talgya/toroid/internal/feature"
	"github.com/talgya/toroid/internal/world"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		grid_rows INTEGER NOT NULL,
		grid_cols INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		config_json TEXT NOT NULL,
		stats_json TEXT NOT NULL,
		reports_json TEXT NOT NULL,
		politics_json TEXT NOT NULL,
		elevation BLOB NOT NULL,
		biome_grid_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS biomes (
		run_id INTEGER NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		altitude TEXT NOT NULL,
		moisture TEXT NOT NULL,
		temperature_json TEXT NOT NULL,
		region_id TEXT,
		cells INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS sites (
		run_id INTEGER NOT NULL,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		anchor_row INTEGER NOT NULL,
		anchor_col INTEGER NOT NULL,
		size INTEGER NOT NULL,
		context_json TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS features (
		run_id INTEGER NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		anchor_row INTEGER NOT NULL,
		anchor_col INTEGER NOT NULL,
		size INTEGER NOT NULL,
		biome_id TEXT NOT NULL,
		placeholder_type TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS paths (
		run_id INTEGER NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		cells_json TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_features_type ON features(run_id, type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one archived generation run.
type Run struct {
	ID        int64  `db:"id" json:"id"`
	Seed      string `db:"seed" json:"seed"`
	Rows      int    `db:"grid_rows" json:"rows"`
	Cols      int    `db:"grid_cols" json:"cols"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	StatsJSON string `db:"stats_json" json:"-"`

	Stats atlas.Stats `db:"-" json:"stats"`
}

// SaveRun archives every layer of w in one transaction and returns the
// new run id.
func (db *DB) SaveRun(w *atlas.World) (int64, error) {
	stats := w.Stats()
	slog.Info("archiving run", "seed", w.Config.Seed, "features", stats.Features, "paths", stats.Rivers+stats.Roads)

	configJSON, err := json.Marshal(w.Config)
	if err != nil {
		return 0, fmt.Errorf("marshal config: %w", err)
	}
	statsJSON, _ := json.Marshal(stats)
	reportsJSON, _ := json.Marshal(w.Reports)
	politicsJSON, _ := json.Marshal(w.Politics)
	var grid biome.Grid
	if w.Biomes != nil {
		grid = w.Biomes.Grid
	}
	gridJSON, _ := json.Marshal(grid)

	tx, err := db.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO runs
		(seed, grid_rows, grid_cols, created_at, config_json, stats_json, reports_json,
		 politics_json, elevation, biome_grid_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.Config.Seed, w.Config.Rows, w.Config.Cols, time.Now().UTC().Format(time.RFC3339),
		string(configJSON), string(statsJSON), string(reportsJSON),
		string(politicsJSON), encodeFloats(w.Terrain.Elevation), string(gridJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	if w.Biomes != nil {
		counts := w.Biomes.Grid.Counts()
		for _, b := range w.Biomes.Biomes {
			tempJSON, _ := json.Marshal(b.Temperature)
			_, err := tx.Exec(`INSERT INTO biomes
				(run_id, id, name, type, altitude, moisture, temperature_json, region_id, cells)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, b.ID, b.Name, string(b.Type), b.Altitude.String(), b.Moisture.String(),
				string(tempJSON), b.RegionID, counts[b.ID],
			)
			if err != nil {
				return 0, fmt.Errorf("insert biome %s: %w", b.Name, err)
			}
		}
	}

	for _, p := range w.Placeholders {
		ctxJSON, _ := json.Marshal(p.Context)
		_, err := tx.Exec(`INSERT INTO sites
			(run_id, id, type, anchor_row, anchor_col, size, context_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, p.ID, p.Type.String(), p.Anchor.Row, p.Anchor.Col, p.Size, string(ctxJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("insert site %s: %w", p.ID, err)
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO features
		(run_id, id, name, type, description, anchor_row, anchor_col, size, biome_id, placeholder_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, f := range w.Features.Features() {
		_, err := stmt.Exec(runID, f.ID, f.Name, string(f.Type), f.Description,
			f.Anchor.Row, f.Anchor.Col, f.Size, f.BiomeID, f.PlaceholderType)
		if err != nil {
			return 0, fmt.Errorf("insert feature %s: %w", f.Name, err)
		}
	}

	for _, paths := range [][]feature.Path{w.Rivers, w.Roads} {
		for _, p := range paths {
			cellsJSON, _ := json.Marshal(p.Cells)
			_, err := tx.Exec(`INSERT INTO paths
				(run_id, id, name, type, from_id, to_id, cells_json)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				runID, p.ID, p.Name, string(p.Type), p.From, p.To, string(cellsJSON),
			)
			if err != nil {
				return 0, fmt.Errorf("insert path %s: %w", p.Name, err)
			}
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		"last_run_id", strconv.FormatInt(runID, 10)); err != nil {
		return 0, fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Info("run archived", "run", runID)
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, grid_rows, grid_cols, created_at, stats_json FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if err := json.Unmarshal([]byte(runs[i].StatsJSON), &runs[i].Stats); err != nil {
			return nil, fmt.Errorf("decode stats of run %d: %w", runs[i].ID, err)
		}
	}
	return runs, nil
}

type featureRow struct {
	ID              string `db:"id"`
	Name            string `db:"name"`
	Type            string `db:"type"`
	Description     string `db:"description"`
	AnchorRow       int    `db:"anchor_row"`
	AnchorCol       int    `db:"anchor_col"`
	Size            int    `db:"size"`
	BiomeID         string `db:"biome_id"`
	PlaceholderType string `db:"placeholder_type"`
}

// RunFeatures returns the footprint features of a run in insertion order.
func (db *DB) RunFeatures(runID int64) ([]feature.Feature, error) {
	var rows []featureRow
	err := db.conn.Select(&rows, `SELECT id, name, type, description, anchor_row, anchor_col,
		size, biome_id, placeholder_type FROM features WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	out := make([]feature.Feature, len(rows))
	for i, r := range rows {
		out[i] = feature.Feature{
			ID:              r.ID,
			Name:            r.Name,
			Type:            feature.ParseType(r.Type),
			Description:     r.Description,
			Anchor:          world.Cell{Row: r.AnchorRow, Col: r.AnchorCol},
			Size:            r.Size,
			BiomeID:         r.BiomeID,
			PlaceholderType: r.PlaceholderType,
		}
	}
	return out, nil
}

type pathRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Type      string `db:"type"`
	FromID    string `db:"from_id"`
	ToID      string `db:"to_id"`
	CellsJSON string `db:"cells_json"`
}

// RunPaths returns the rivers and roads of a run, rivers first.
func (db *DB) RunPaths(runID int64, cellW, cellH float64) ([]feature.Path, error) {
	var rows []pathRow
	err := db.conn.Select(&rows,
		"SELECT id, name, type, from_id, to_id, cells_json FROM paths WHERE run_id = ? ORDER BY rowid", runID)
	if err != nil {
		return nil, err
	}
	out := make([]feature.Path, 0, len(rows))
	for _, r := range rows {
		var cells []world.Cell
		if err := json.Unmarshal([]byte(r.CellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("decode path %s: %w", r.Name, err)
		}
		p := feature.NewPath(r.ID, r.Name, feature.ParseType(r.Type), cells, cellW, cellH)
		p.From, p.To = r.FromID, r.ToID
		out = append(out, p)
	}
	return out, nil
}

// RunElevation returns the normalized elevation field of a run.
func (db *DB) RunElevation(runID int64) ([]float64, error) {
	var blob []byte
	if err := db.conn.Get(&blob, "SELECT elevation FROM runs WHERE id = ?", runID); err != nil {
		return nil, err
	}
	return decodeFloats(blob)
}

// SaveMeta stores a key-value pair in archive metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func encodeFloats(vs []float64) []byte {
	buf := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("float blob has %d bytes", len(buf))
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out, nil
}
