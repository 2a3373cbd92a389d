package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// snapshotRowID — снапшот всегда один, строка с фиксированным id.
const snapshotRowID = 1

// SnapshotRepository хранит документ состояния в таблице points_snapshots.
type SnapshotRepository struct {
	db DB
}

// NewSnapshotRepository создаёт репозиторий снапшотов.
func NewSnapshotRepository(db DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load возвращает сохранённый документ или nil, если строки ещё нет.
func (r *SnapshotRepository) Load(ctx context.Context) ([]byte, error) {
	var doc string
	err := r.db.QueryRow(ctx,
		`SELECT document::text FROM points_snapshots WHERE id = $1`, snapshotRowID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения снапшота: %w", err)
	}
	return []byte(doc), nil
}

// Save перезаписывает документ одним запросом (upsert).
// Запрос либо применяется целиком, либо не применяется вовсе.
func (r *SnapshotRepository) Save(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO points_snapshots (id, document, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, snapshotRowID, string(data)); err != nil {
		return fmt.Errorf("ошибка записи снапшота: %w", err)
	}
	return nil
}
