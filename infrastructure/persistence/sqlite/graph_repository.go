package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mediagraph/application/dto"
	"mediagraph/application/ports"
	"mediagraph/domain/core/valueobjects"
	appErrors "mediagraph/pkg/errors"
	"mediagraph/pkg/utils"
)

// GraphRepository stores each graph as one row with JSON node and edge columns
type GraphRepository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at dbPath. ":memory:" gives a private database.
func New(dbPath string) (*GraphRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &GraphRepository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

func (r *GraphRepository) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS graphs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		nodes JSON NOT NULL DEFAULT '[]',
		edges JSON NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Close releases the database
func (r *GraphRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database is reachable
func (r *GraphRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create stores a new, empty graph
func (r *GraphRepository) Create(ctx context.Context, id valueobjects.GraphID, name string) (*ports.GraphRecord, error) {
	now := r.now().UTC()
	stamp := utils.FormatTimestamp(now)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO graphs (id, name, nodes, edges, created_at, updated_at)
		VALUES (?, ?, '[]', '[]', ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id.String(), name, stamp, stamp)
	if err != nil {
		return nil, appErrors.NewDatabaseError("create graph", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, appErrors.NewConflictError("graph already exists")
	}

	return &ports.GraphRecord{
		ID:        id,
		Name:      name,
		Nodes:     []dto.Node{},
		Edges:     []dto.Edge{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Get retrieves a graph with its content
func (r *GraphRepository) Get(ctx context.Context, id valueobjects.GraphID) (*ports.GraphRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, nodes, edges, created_at, updated_at
		FROM graphs WHERE id = ?
	`, id.String())

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFoundError("graph")
	}
	if err != nil {
		return nil, appErrors.NewDatabaseError("get graph", err)
	}
	return record, nil
}

// List returns every graph in creation order, without content.
// Insertion order is the rowid; the timestamp text does not sort reliably.
func (r *GraphRepository) List(ctx context.Context) ([]ports.GraphRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM graphs ORDER BY rowid
	`)
	if err != nil {
		return nil, appErrors.NewDatabaseError("list graphs", err)
	}
	defer rows.Close()

	var out []ports.GraphRecord
	for rows.Next() {
		var id, name, createdAt, updatedAt string
		if err := rows.Scan(&id, &name, &createdAt, &updatedAt); err != nil {
			return nil, appErrors.NewDatabaseError("scan graph", err)
		}
		rec := ports.GraphRecord{ID: valueobjects.GraphID(id), Name: name}
		rec.CreatedAt, _ = utils.ParseTimestamp(createdAt)
		rec.UpdatedAt, _ = utils.ParseTimestamp(updatedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewDatabaseError("list graphs", err)
	}
	return out, nil
}

// Replace swaps the content of an existing graph
func (r *GraphRepository) Replace(ctx context.Context, id valueobjects.GraphID, nodes []dto.Node, edges []dto.Edge) (time.Time, error) {
	if nodes == nil {
		nodes = []dto.Node{}
	}
	if edges == nil {
		edges = []dto.Edge{}
	}
	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to marshal edges: %w", err)
	}

	now := r.now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE graphs SET nodes = ?, edges = ?, updated_at = ? WHERE id = ?
	`, string(nodesJSON), string(edgesJSON), utils.FormatTimestamp(now), id.String())
	if err != nil {
		return time.Time{}, appErrors.NewDatabaseError("replace graph", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return time.Time{}, appErrors.NewNotFoundError("graph")
	}
	return now, nil
}

func scanRecord(row *sql.Row) (*ports.GraphRecord, error) {
	var (
		id, name, createdAt, updatedAt string
		nodesJSON, edgesJSON           string
	)
	if err := row.Scan(&id, &name, &nodesJSON, &edgesJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record := &ports.GraphRecord{ID: valueobjects.GraphID(id), Name: name}
	if err := json.Unmarshal([]byte(nodesJSON), &record.Nodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(edgesJSON), &record.Edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}
	record.CreatedAt, _ = utils.ParseTimestamp(createdAt)
	record.UpdatedAt, _ = utils.ParseTimestamp(updatedAt)
	return record, nil
}
