package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"taskdeck-cli/internal/model"

	"github.com/google/uuid"
)

func (s Store) appendActivitySQLite(ctx context.Context, actorID, typ, entityID string, payload any) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO project_activity(id, ts_unixms, actor_id, type, entity_id, payload_json) VALUES(?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UTC().UnixMilli(), strings.TrimSpace(actorID), strings.TrimSpace(typ), strings.TrimSpace(entityID), string(raw))
	return err
}

// ReadActivity returns activity records in chronological order. limit <= 0
// returns all; otherwise the newest `limit` records (still oldest-first
// within the returned window).
func ReadActivity(dir string, limit int) ([]model.Activity, error) {
	return readActivity(dir, "", limit)
}

// ReadActivityForEntity filters by entity id.
func ReadActivityForEntity(dir, entityID string, limit int) ([]model.Activity, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Activity{}, nil
	}
	return readActivity(dir, entityID, limit)
}

func readActivity(dir, entityID string, limit int) ([]model.Activity, error) {
	ctx := context.Background()
	st := Store{Dir: dir}
	db, err := st.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, ts_unixms, actor_id, type, entity_id, payload_json FROM project_activity`
	args := []any{}
	if entityID != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	q += ` ORDER BY ts_unixms DESC, id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var (
			a       model.Activity
			tsMs    int64
			payload string
		)
		if err := rows.Scan(&a.ID, &tsMs, &a.ActorID, &a.Type, &a.EntityID, &payload); err != nil {
			return nil, err
		}
		a.TS = time.UnixMilli(tsMs).UTC()
		var v any
		if err := json.Unmarshal([]byte(payload), &v); err == nil {
			a.Payload = v
		} else {
			a.Payload = payload
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-limit query, chronological result.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []model.Activity{}
	}
	return out, nil
}
