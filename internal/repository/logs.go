package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

func (r *Repository) InsertLog(entry *domain.LogEntry) error {
	query := `
		INSERT INTO logs (id, usuario_id, acao, entidade, registro_id, detalhes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	args := []any{entry.ID, entry.UserID, entry.Acao, entry.Entidade, entry.RegistroID, entry.Detalhes}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLogs(limit, offset int) ([]*domain.LogEntry, error) {
	query := `
		SELECT id, usuario_id, acao, entidade, registro_id, detalhes, created_at
		FROM logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.LogEntry{}
	for rows.Next() {
		entry := &domain.LogEntry{}
		dst := []any{&entry.ID, &entry.UserID, &entry.Acao, &entry.Entidade, &entry.RegistroID, &entry.Detalhes, &entry.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
