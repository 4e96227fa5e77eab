// Package store is the default durable persistence boundary: named
// co-occurrence snapshots and trace records with their encoded vectors,
// in a single SQLite file. The core value packages never touch disk; this
// is the layer the agent runtime calls when it decides to persist.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MeshRepublic/kudzu-sub001/pkg/cooccur"
	"github.com/MeshRepublic/kudzu-sub001/pkg/hrr"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

// SQLiteStore persists memory state in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate memory database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS traces (
		id TEXT PRIMARY KEY,
		origin TEXT NOT NULL,
		purpose TEXT NOT NULL,
		hologram TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		vector BLOB,
		recency INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_traces_purpose ON traces(purpose);
	CREATE INDEX IF NOT EXISTS idx_traces_hologram ON traces(hologram, recency);

	CREATE TABLE IF NOT EXISTS context_states (
		name TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveTrace upserts a trace (JSON body) with its encoded vector under the
// named hologram. vec may be nil when the trace has not been encoded yet.
func (s *SQLiteStore) SaveTrace(hologram string, t trace.Trace, vec hrr.Vector) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}

	var blob []byte
	if vec != nil {
		if blob, err = vec.MarshalBinary(); err != nil {
			return fmt.Errorf("marshal vector: %w", err)
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO traces (id, origin, purpose, hologram, body, vector, recency)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			body = excluded.body,
			vector = excluded.vector,
			recency = excluded.recency
	`, t.ID, t.Origin, t.Purpose, hologram, string(body), blob, int64(t.Recency()))
	return err
}

// LoadTrace returns a trace and its vector by ID. The vector is nil when
// none was stored. A missing ID returns sql.ErrNoRows.
func (s *SQLiteStore) LoadTrace(id string) (trace.Trace, hrr.Vector, error) {
	var body string
	var blob []byte
	err := s.db.QueryRow(`SELECT body, vector FROM traces WHERE id = ?`, id).
		Scan(&body, &blob)
	if err != nil {
		return trace.Trace{}, nil, err
	}
	return decodeRow(body, blob)
}

// ListTraces returns up to limit traces for a hologram, most recent (by
// clock recency) first, with their vectors.
func (s *SQLiteStore) ListTraces(hologram string, limit int) ([]trace.Trace, []hrr.Vector, error) {
	rows, err := s.db.Query(`
		SELECT body, vector FROM traces
		WHERE hologram = ?
		ORDER BY recency DESC, created_at DESC
		LIMIT ?
	`, hologram, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var traces []trace.Trace
	var vectors []hrr.Vector
	for rows.Next() {
		var body string
		var blob []byte
		if err := rows.Scan(&body, &blob); err != nil {
			return nil, nil, err
		}
		t, v, err := decodeRow(body, blob)
		if err != nil {
			return nil, nil, err
		}
		traces = append(traces, t)
		vectors = append(vectors, v)
	}
	return traces, vectors, rows.Err()
}

// HologramCount is one row of the per-hologram trace census.
type HologramCount struct {
	Name   string
	Traces int
}

// Holograms returns the distinct hologram names in the store with their
// trace counts, largest first.
func (s *SQLiteStore) Holograms() ([]HologramCount, error) {
	rows, err := s.db.Query(`
		SELECT hologram, COUNT(*) FROM traces
		GROUP BY hologram
		ORDER BY COUNT(*) DESC, hologram ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HologramCount
	for rows.Next() {
		var hc HologramCount
		if err := rows.Scan(&hc.Name, &hc.Traces); err != nil {
			return nil, err
		}
		out = append(out, hc)
	}
	return out, rows.Err()
}

// DeleteTrace removes a trace record. Deletion here is an external policy
// call; the in-memory substrate never deletes traces itself.
func (s *SQLiteStore) DeleteTrace(id string) error {
	_, err := s.db.Exec(`DELETE FROM traces WHERE id = ?`, id)
	return err
}

// SaveContext persists a co-occurrence state verbatim under a name.
func (s *SQLiteStore) SaveContext(name string, state *cooccur.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal context state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO context_states (name, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, name, string(data), time.Now())
	return err
}

// LoadContext restores a named co-occurrence state. A missing name returns
// a fresh empty state rather than an error, so first runs need no setup.
func (s *SQLiteStore) LoadContext(name string) (*cooccur.State, error) {
	var data string
	err := s.db.QueryRow(`SELECT state FROM context_states WHERE name = ?`, name).
		Scan(&data)
	if err == sql.ErrNoRows {
		return cooccur.New(), nil
	}
	if err != nil {
		return nil, err
	}

	state := cooccur.New()
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, fmt.Errorf("unmarshal context state: %w", err)
	}
	if state.TokenCounts == nil {
		state.TokenCounts = map[string]int64{}
	}
	if state.CoOccurrence == nil {
		state.CoOccurrence = map[string]map[string]float64{}
	}
	return state, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeRow(body string, blob []byte) (trace.Trace, hrr.Vector, error) {
	var t trace.Trace
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return trace.Trace{}, nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	var v hrr.Vector
	if len(blob) > 0 {
		if err := v.UnmarshalBinary(blob); err != nil {
			return trace.Trace{}, nil, fmt.Errorf("unmarshal vector: %w", err)
		}
	}
	return t, v, nil
}
