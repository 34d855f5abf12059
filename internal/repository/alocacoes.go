package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// CriarAlocacao é a primitiva atômica "ler capacidade e inserir
// condicionalmente": a linha do plantão é travada com FOR UPDATE, de modo que
// a contagem de vagas e a inserção executam como uma unidade serializável por
// plantão. Escolhas concorrentes no mesmo plantão se enfileiram no lock da
// linha; plantões diferentes seguem em paralelo.
func (r *Repository) CriarAlocacao(plantaoID, plantonistaID uuid.UUID, tipo domain.AlocacaoTipo) (*domain.Alocacao, *domain.Plantao, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	p := &domain.Plantao{ID: plantaoID}
	query := `
		SELECT data, turno, status, max_plantonistas, observacoes, created_at, updated_at, version
		FROM plantoes
		WHERE id = $1
		FOR UPDATE
	`
	dst := []any{&p.Date, &p.Turno, &p.Status, &p.MaxPlantonistas, &p.Observacoes, &p.CreatedAt, &p.UpdatedAt, &p.Version}
	if err := tx.QueryRowContext(ctx, query, plantaoID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrPlantaoNotFound
		}
		return nil, nil, err
	}

	// re-verificação de duplicidade dentro da transação
	var duplicada bool
	query = `
		SELECT EXISTS (
			SELECT 1 FROM alocacoes
			WHERE plantao_id = $1 AND plantonista_id = $2 AND status <> 'cancelado'
		)
	`
	if err := tx.QueryRowContext(ctx, query, plantaoID, plantonistaID).Scan(&duplicada); err != nil {
		return nil, nil, err
	}
	if duplicada {
		return nil, nil, domain.ErrAlocacaoDuplicada
	}

	// re-verificação de vagas dentro da transação
	var ocupadas int
	query = `SELECT COUNT(*) FROM alocacoes WHERE plantao_id = $1 AND status = 'confirmado'`
	if err := tx.QueryRowContext(ctx, query, plantaoID).Scan(&ocupadas); err != nil {
		return nil, nil, err
	}
	if ocupadas >= p.MaxPlantonistas {
		return nil, nil, domain.ErrPlantaoLotado
	}

	a := &domain.Alocacao{
		ID:            uuid.New(),
		PlantaoID:     plantaoID,
		PlantonistaID: plantonistaID,
		Status:        domain.AlocacaoConfirmada,
		Tipo:          tipo,
	}
	query = `
		INSERT INTO alocacoes (id, plantao_id, plantonista_id, status, tipo, confirmado_em)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING confirmado_em, created_at
	`
	args := []any{a.ID, a.PlantaoID, a.PlantonistaID, a.Status, a.Tipo}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&a.ConfirmadoEm, &a.CreatedAt); err != nil {
		return nil, nil, err
	}

	p.VagasOcupadas = ocupadas + 1
	p.Status = domain.StatusForOccupancy(p.VagasOcupadas, p.MaxPlantonistas)
	query = `
		UPDATE plantoes
		SET status = $1, updated_at = now(), version = version + 1
		WHERE id = $2
		RETURNING updated_at, version
	`
	if err := tx.QueryRowContext(ctx, query, p.Status, plantaoID).Scan(&p.UpdatedAt, &p.Version); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return a, p, nil
}

// CancelarAlocacao marca a alocação como cancelada e libera uma vaga,
// recalculando o status do plantão sob o mesmo lock de linha usado na escolha.
func (r *Repository) CancelarAlocacao(alocacaoID uuid.UUID) (*domain.Alocacao, *domain.Plantao, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	a := &domain.Alocacao{ID: alocacaoID}
	query := `
		SELECT plantao_id, plantonista_id, status, tipo, confirmado_em, created_at
		FROM alocacoes WHERE id = $1
	`
	dst := []any{&a.PlantaoID, &a.PlantonistaID, &a.Status, &a.Tipo, &a.ConfirmadoEm, &a.CreatedAt}
	if err := tx.QueryRowContext(ctx, query, alocacaoID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrAlocacaoNotFound
		}
		return nil, nil, err
	}
	if a.Status != domain.AlocacaoConfirmada {
		return nil, nil, domain.ErrAlocacaoNotFound
	}

	p := &domain.Plantao{ID: a.PlantaoID}
	query = `
		SELECT data, turno, status, max_plantonistas, observacoes, created_at, updated_at, version
		FROM plantoes
		WHERE id = $1
		FOR UPDATE
	`
	dst = []any{&p.Date, &p.Turno, &p.Status, &p.MaxPlantonistas, &p.Observacoes, &p.CreatedAt, &p.UpdatedAt, &p.Version}
	if err := tx.QueryRowContext(ctx, query, a.PlantaoID).Scan(dst...); err != nil {
		return nil, nil, err
	}

	query = `UPDATE alocacoes SET status = 'cancelado' WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, alocacaoID); err != nil {
		return nil, nil, err
	}
	a.Status = domain.AlocacaoCancelada

	var ocupadas int
	query = `SELECT COUNT(*) FROM alocacoes WHERE plantao_id = $1 AND status = 'confirmado'`
	if err := tx.QueryRowContext(ctx, query, a.PlantaoID).Scan(&ocupadas); err != nil {
		return nil, nil, err
	}

	p.VagasOcupadas = ocupadas
	p.Status = domain.StatusForOccupancy(ocupadas, p.MaxPlantonistas)
	query = `
		UPDATE plantoes
		SET status = $1, updated_at = now(), version = version + 1
		WHERE id = $2
		RETURNING updated_at, version
	`
	if err := tx.QueryRowContext(ctx, query, p.Status, a.PlantaoID).Scan(&p.UpdatedAt, &p.Version); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return a, p, nil
}

func (r *Repository) GetAlocacaoByID(id uuid.UUID) (*domain.Alocacao, error) {
	query := `
		SELECT plantao_id, plantonista_id, status, tipo, confirmado_em, created_at
		FROM alocacoes WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	a := &domain.Alocacao{ID: id}
	dst := []any{&a.PlantaoID, &a.PlantonistaID, &a.Status, &a.Tipo, &a.ConfirmadoEm, &a.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlocacaoNotFound
		}
		return nil, err
	}

	return a, nil
}

// GetAlocacaoConfirmada localiza a alocação confirmada de um plantonista em um
// plantão específico (usada na remoção pelo gestor).
func (r *Repository) GetAlocacaoConfirmada(plantaoID, plantonistaID uuid.UUID) (*domain.Alocacao, error) {
	query := `
		SELECT id, status, tipo, confirmado_em, created_at
		FROM alocacoes
		WHERE plantao_id = $1 AND plantonista_id = $2 AND status = 'confirmado'
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	a := &domain.Alocacao{PlantaoID: plantaoID, PlantonistaID: plantonistaID}
	dst := []any{&a.ID, &a.Status, &a.Tipo, &a.ConfirmadoEm, &a.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, plantaoID, plantonistaID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlocacaoNotFound
		}
		return nil, err
	}

	return a, nil
}

func (r *Repository) HasAlocacao(plantaoID, plantonistaID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alocacoes
			WHERE plantao_id = $1 AND plantonista_id = $2 AND status <> 'cancelado'
		)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var existe bool
	if err := r.dbpool.QueryRowContext(ctx, query, plantaoID, plantonistaID).Scan(&existe); err != nil {
		return false, err
	}

	return existe, nil
}

// HasAlocacaoNoDia verifica se o plantonista já tem plantão confirmado em
// qualquer turno do mesmo dia (manhã + tarde não é permitido).
func (r *Repository) HasAlocacaoNoDia(plantonistaID uuid.UUID, dia time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM alocacoes a
			JOIN plantoes p ON p.id = a.plantao_id
			WHERE a.plantonista_id = $1 AND a.status = 'confirmado' AND p.data = $2
		)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var existe bool
	if err := r.dbpool.QueryRowContext(ctx, query, plantonistaID, dia).Scan(&existe); err != nil {
		return false, err
	}

	return existe, nil
}

// CountAlocacoesNoMes conta os plantões confirmados do plantonista no mês de
// referência (limite mensal de plantões).
func (r *Repository) CountAlocacoesNoMes(plantonistaID uuid.UUID, ref time.Time) (int, error) {
	inicio := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	fim := inicio.AddDate(0, 1, 0)

	query := `
		SELECT COUNT(*)
		FROM alocacoes a
		JOIN plantoes p ON p.id = a.plantao_id
		WHERE a.plantonista_id = $1 AND a.status = 'confirmado'
		  AND p.data >= $2 AND p.data < $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var total int
	if err := r.dbpool.QueryRowContext(ctx, query, plantonistaID, inicio, fim).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

// GetMinhasAlocacoes lista as alocações futuras (não canceladas) do
// plantonista, com o plantão embutido.
func (r *Repository) GetMinhasAlocacoes(plantonistaID uuid.UUID, apartirDe time.Time) ([]*domain.Alocacao, error) {
	query := `
		SELECT
			a.id, a.plantao_id, a.status, a.tipo, a.confirmado_em, a.created_at,
			p.data, p.turno, p.status, p.max_plantonistas, p.observacoes, p.created_at, p.updated_at, p.version
		FROM alocacoes a
		JOIN plantoes p ON p.id = a.plantao_id
		WHERE a.plantonista_id = $1 AND a.status <> 'cancelado' AND p.data >= $2
		ORDER BY p.data, p.turno
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, plantonistaID, apartirDe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alocacoes := []*domain.Alocacao{}
	for rows.Next() {
		a := &domain.Alocacao{PlantonistaID: plantonistaID, Plantao: &domain.Plantao{}}
		p := a.Plantao
		dst := []any{
			&a.ID, &a.PlantaoID, &a.Status, &a.Tipo, &a.ConfirmadoEm, &a.CreatedAt,
			&p.Date, &p.Turno, &p.Status, &p.MaxPlantonistas, &p.Observacoes, &p.CreatedAt, &p.UpdatedAt, &p.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		p.ID = a.PlantaoID
		alocacoes = append(alocacoes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alocacoes, nil
}
