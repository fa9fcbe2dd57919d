// Package persistence provides SQLite-based storage for village checkpoints:
// agents, their rumor ledgers, the event log and run metadata.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/gossip"
)

// Metadata keys.
const (
	MetaRunID     = "run_id"
	MetaSeed      = "seed"
	MetaLastTick  = "last_tick"
	metaEventTick = "events_saved_through"
)

// DB wraps a SQLite connection for checkpoint storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; a second connection would only contend for the lock.
	conn.SetMaxOpenConns(1)

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
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		agent_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledgers (
		agent_id INTEGER PRIMARY KEY,
		records INTEGER NOT NULL,
		snapshot_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_agents_alive ON agents(alive);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveWorld writes a checkpoint in one transaction. Agents and ledgers are
// fully replaced; events newer than the last save are appended.
func (db *DB) SaveWorld(ctx context.Context, cp engine.Checkpoint) error {
	slog.Info("saving world state", "tick", cp.Tick, "agents", len(cp.Agents))

	savedThrough, err := db.metaUint(ctx, metaEventTick)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveAgents(ctx, tx, cp); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	if err := saveLedgers(ctx, tx, cp); err != nil {
		return fmt.Errorf("save ledgers: %w", err)
	}
	var fresh []engine.Event
	for _, e := range cp.Events {
		if e.Tick > savedThrough {
			fresh = append(fresh, e)
		}
	}
	if err := saveEvents(ctx, tx, fresh); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	meta := map[string]string{
		MetaRunID:     cp.RunID,
		MetaSeed:      strconv.FormatInt(cp.Seed, 10),
		MetaLastTick:  strconv.FormatUint(cp.Tick, 10),
		metaEventTick: strconv.FormatUint(max(cp.Tick, savedThrough), 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world state saved", "tick", cp.Tick, "events", len(fresh))
	return nil
}

func saveAgents(ctx context.Context, tx *sqlx.Tx, cp engine.Checkpoint) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO agents
		(id, name, pos_q, pos_r, alive, agent_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range cp.Agents {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode agent %d: %w", a.ID, err)
		}
		alive := 0
		if a.Alive {
			alive = 1
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Name, a.Position.Q, a.Position.R, alive, string(data)); err != nil {
			return fmt.Errorf("insert agent %d: %w", a.ID, err)
		}
	}
	return nil
}

func saveLedgers(ctx context.Context, tx *sqlx.Tx, cp engine.Checkpoint) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM ledgers"); err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, "INSERT INTO ledgers (agent_id, records, snapshot_json) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for id, snap := range cp.Ledgers {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode ledger %d: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, len(snap.Records), string(data)); err != nil {
			return fmt.Errorf("insert ledger %d: %w", id, err)
		}
	}
	return nil
}

func saveEvents(ctx context.Context, tx *sqlx.Tx, events []engine.Event) error {
	for _, e := range events {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return sql.ErrNoRows.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func (db *DB) metaUint(ctx context.Context, key string) (uint64, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	return n, nil
}

// HasWorldState reports whether a checkpoint has been saved.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM agents"); err != nil {
		return false
	}
	return count > 0
}

// SavedRun is the identity and clock of the last checkpoint.
type SavedRun struct {
	RunID string
	Seed  int64
	Tick  uint64
}

// LoadRun reads the metadata of the last checkpoint.
func (db *DB) LoadRun(ctx context.Context) (SavedRun, error) {
	var run SavedRun
	runID, err := db.GetMeta(MetaRunID)
	if err != nil {
		return run, fmt.Errorf("load run id: %w", err)
	}
	run.RunID = runID

	seed, err := db.GetMeta(MetaSeed)
	if err != nil {
		return run, fmt.Errorf("load seed: %w", err)
	}
	if run.Seed, err = strconv.ParseInt(seed, 10, 64); err != nil {
		return run, fmt.Errorf("parse seed: %w", err)
	}

	if run.Tick, err = db.metaUint(ctx, MetaLastTick); err != nil {
		return run, err
	}
	return run, nil
}

// LoadAgents rebuilds every saved agent with its ledger. Agents whose ledger
// is missing or unreadable start with an empty one; malformed ledger entries
// are skipped. Returns the agents in ID order and the number of entries
// dropped.
func (db *DB) LoadAgents(ctx context.Context, tuning gossip.Tuning) ([]*agents.Agent, int, error) {
	var rows []struct {
		ID   uint64 `db:"id"`
		JSON string `db:"agent_json"`
	}
	if err := db.conn.SelectContext(ctx, &rows, "SELECT id, agent_json FROM agents ORDER BY id"); err != nil {
		return nil, 0, fmt.Errorf("load agents: %w", err)
	}

	var ledgers []struct {
		AgentID uint64 `db:"agent_id"`
		JSON    string `db:"snapshot_json"`
	}
	if err := db.conn.SelectContext(ctx, &ledgers, "SELECT agent_id, snapshot_json FROM ledgers"); err != nil {
		return nil, 0, fmt.Errorf("load ledgers: %w", err)
	}
	snapshots := make(map[uint64]string, len(ledgers))
	for _, l := range ledgers {
		snapshots[l.AgentID] = l.JSON
	}

	out := make([]*agents.Agent, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		a := &agents.Agent{}
		if err := json.Unmarshal([]byte(row.JSON), a); err != nil {
			return nil, dropped, fmt.Errorf("decode agent %d: %w", row.ID, err)
		}

		a.Ledger = gossip.NewLedger(tuning)
		if raw, ok := snapshots[row.ID]; ok {
			var snap gossip.Snapshot
			if err := json.Unmarshal([]byte(raw), &snap); err != nil {
				slog.Warn("unreadable ledger, starting empty", "agent", row.ID, "error", err)
			} else {
				var n int
				a.Ledger, n = gossip.Restore(snap, tuning)
				dropped += n
			}
		}
		out = append(out, a)
	}

	if dropped > 0 {
		slog.Warn("dropped malformed ledger entries", "count", dropped)
	}
	return out, dropped, nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
