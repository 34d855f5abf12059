package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

func (r *Repository) GetUserByID(id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT username, password_hash, nome_completo, email, tipo, ativo, ranking, max_plantoes_mes, created_at, version
		FROM usuarios WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.Ranking, &user.MaxPlantoesMes, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlantonistaNotFound
		}
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	query := `
		SELECT id, password_hash, nome_completo, email, tipo, ativo, ranking, max_plantoes_mes, created_at, version
		FROM usuarios WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	dst := []any{&user.ID, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.Ranking, &user.MaxPlantoesMes, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlantonistaNotFound
		}
		return nil, err
	}

	return user, nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	query := `
		INSERT INTO usuarios (id, username, password_hash, nome_completo, email, tipo, max_plantoes_mes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ativo, ranking, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.MaxPlantoesMes == 0 {
		user.MaxPlantoesMes = r.cfg.Escolha.MaxPlantoesMes
	}

	args := []any{user.ID, user.Username, user.PasswordHash, user.FullName, user.Email, user.Role, user.MaxPlantoesMes}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.IsActive, &user.Ranking, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE usuarios
		SET
			nome_completo = $1,
			email = $2,
			tipo = $3,
			ativo = $4,
			max_plantoes_mes = $5,
			password_hash = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{user.FullName, user.Email, user.Role, user.IsActive, user.MaxPlantoesMes, user.PasswordHash, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPlantonistaNotFound
		}
		return err
	}

	return nil
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	query := `
		SELECT id, username, password_hash, nome_completo, email, tipo, ativo, ranking, max_plantoes_mes, created_at, version
		FROM usuarios
		ORDER BY nome_completo
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.Ranking, &user.MaxPlantoesMes, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
