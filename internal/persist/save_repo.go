package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/deephold/server/internal/world"
)

// SaveRepo stores world snapshots as JSONB rows, one row per save name
// (upsert). Snapshots are plain data by contract, so the whole world
// round-trips through a single document.
type SaveRepo struct {
	db *DB
}

func NewSaveRepo(db *DB) *SaveRepo {
	return &SaveRepo{db: db}
}

// SaveInfo is one row of the save listing.
type SaveInfo struct {
	Name      string
	Tick      uint64
	Seed      uint64
	CreatedAt time.Time
}

// Put upserts a snapshot under the given save name.
func (r *SaveRepo) Put(ctx context.Context, name string, snap *world.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO saves (name, tick, seed, data)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET tick = EXCLUDED.tick, seed = EXCLUDED.seed,
		     data = EXCLUDED.data, created_at = now()`,
		name, int64(snap.Tick), int64(snap.Seed), raw,
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Get loads a snapshot by save name. Missing fields in rows written by
// older builds are handled downstream: world.Restore backfills defaults.
func (r *SaveRepo) Get(ctx context.Context, name string) (*world.Snapshot, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT data FROM saves WHERE name = $1`, name,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("save %s: not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	var snap world.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &snap, nil
}

// List returns all saves, newest first.
func (r *SaveRepo) List(ctx context.Context) ([]SaveInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, tick, seed, created_at FROM saves ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var out []SaveInfo
	for rows.Next() {
		var info SaveInfo
		var tick, seed int64
		if err := rows.Scan(&info.Name, &tick, &seed, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan save row: %w", err)
		}
		info.Tick = uint64(tick)
		info.Seed = uint64(seed)
		out = append(out, info)
	}
	return out, rows.Err()
}
