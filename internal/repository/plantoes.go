package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// colunas com a contagem de alocações confirmadas embutida, para que o
// cliente nunca precise derivar a ocupação localmente
const plantaoColumns = `
	p.id, p.data, p.turno, p.status, p.max_plantonistas, p.observacoes,
	(SELECT COUNT(*) FROM alocacoes a WHERE a.plantao_id = p.id AND a.status = 'confirmado') AS vagas_ocupadas,
	p.created_at, p.updated_at, p.version
`

func scanPlantao(row interface{ Scan(...any) error }) (*domain.Plantao, error) {
	p := &domain.Plantao{}
	dst := []any{&p.ID, &p.Date, &p.Turno, &p.Status, &p.MaxPlantonistas, &p.Observacoes, &p.VagasOcupadas, &p.CreatedAt, &p.UpdatedAt, &p.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetPlantaoByID(id uuid.UUID) (*domain.Plantao, error) {
	query := `SELECT ` + plantaoColumns + ` FROM plantoes p WHERE p.id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p, err := scanPlantao(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlantaoNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *Repository) GetPlantoesByPeriodo(inicio, fim time.Time) ([]*domain.Plantao, error) {
	query := `
		SELECT ` + plantaoColumns + `
		FROM plantoes p
		WHERE p.data >= $1 AND p.data <= $2
		ORDER BY p.data, p.turno
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, inicio, fim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plantoes := []*domain.Plantao{}
	for rows.Next() {
		p, err := scanPlantao(rows)
		if err != nil {
			return nil, err
		}
		plantoes = append(plantoes, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// carregar as alocações confirmadas de cada plantão do período
	if err := r.loadAlocacoes(plantoes, inicio, fim); err != nil {
		return nil, err
	}

	return plantoes, nil
}

func (r *Repository) GetPlantoesDisponiveis(inicio, fim time.Time) ([]*domain.Plantao, error) {
	query := `
		SELECT ` + plantaoColumns + `
		FROM plantoes p
		WHERE p.data >= $1 AND p.data <= $2
		  AND p.status IN ('disponivel', 'reservado')
		ORDER BY p.data, p.turno
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, inicio, fim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plantoes := []*domain.Plantao{}
	for rows.Next() {
		p, err := scanPlantao(rows)
		if err != nil {
			return nil, err
		}
		// o status pode estar defasado em relação à contagem; só o que
		// ainda tem vaga interessa aqui
		if p.VagasOcupadas < p.MaxPlantonistas {
			plantoes = append(plantoes, p)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plantoes, nil
}

// GerarPlantoesDoMes cria os plantões de manhã e tarde de todos os dias do
// mês, pulando domingos e os pares (data, turno) que já existem.
func (r *Repository) GerarPlantoesDoMes(ano, mes, maxPlantonistas int) (criados, existentes int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO plantoes (id, data, turno, status, max_plantonistas)
		VALUES ($1, $2, $3, 'disponivel', $4)
		ON CONFLICT (data, turno) DO NOTHING
	`

	primeiro := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)
	for dia := primeiro; dia.Month() == time.Month(mes); dia = dia.AddDate(0, 0, 1) {
		if dia.Weekday() == time.Sunday {
			continue
		}
		for _, turno := range []domain.Turno{domain.TurnoManha, domain.TurnoTarde} {
			res, err := tx.ExecContext(ctx, query, uuid.New(), dia, turno, maxPlantonistas)
			if err != nil {
				return 0, 0, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, 0, err
			}
			if n == 0 {
				existentes++
			} else {
				criados++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}

	return criados, existentes, nil
}

func (r *Repository) UpdatePlantao(p *domain.Plantao) error {
	query := `
		UPDATE plantoes
		SET
			status = $1,
			max_plantonistas = $2,
			observacoes = $3,
			updated_at = now(),
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING updated_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{p.Status, p.MaxPlantonistas, p.Observacoes, p.ID, p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.UpdatedAt, &p.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPlantaoNotFound
		}
		return err
	}

	return nil
}

func (r *Repository) DeletePlantao(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var temAlocacoes bool
	query := `SELECT EXISTS (SELECT 1 FROM alocacoes WHERE plantao_id = $1)`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&temAlocacoes); err != nil {
		return err
	}
	if temAlocacoes {
		return domain.ErrPlantaoComAlocacoes
	}

	res, err := r.dbpool.ExecContext(ctx, `DELETE FROM plantoes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPlantaoNotFound
	}

	return nil
}

func (r *Repository) loadAlocacoes(plantoes []*domain.Plantao, inicio, fim time.Time) error {
	if len(plantoes) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Plantao, len(plantoes))
	for _, p := range plantoes {
		byID[p.ID] = p
	}

	query := `
		SELECT a.id, a.plantao_id, a.plantonista_id, a.status, a.tipo, a.confirmado_em, a.created_at
		FROM alocacoes a
		JOIN plantoes p ON p.id = a.plantao_id
		WHERE p.data >= $1 AND p.data <= $2 AND a.status = 'confirmado'
		ORDER BY a.confirmado_em
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, inicio, fim)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a := &domain.Alocacao{}
		dst := []any{&a.ID, &a.PlantaoID, &a.PlantonistaID, &a.Status, &a.Tipo, &a.ConfirmadoEm, &a.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return err
		}
		if p := byID[a.PlantaoID]; p != nil {
			p.Alocacoes = append(p.Alocacoes, a)
		}
	}

	return rows.Err()
}
