package repository

import (
	"context"
	"time"

	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// GetRanking retorna o ranking do mês de referência, do primeiro para o
// último colocado. A fórmula de pontuação é calculada fora deste serviço;
// aqui apenas lemos o total consolidado.
func (r *Repository) GetRanking(mesReferencia time.Time) ([]*domain.RankingEntry, error) {
	query := `
		SELECT u.id, u.nome_completo, pt.pontos
		FROM pontuacoes pt
		JOIN usuarios u ON u.id = pt.plantonista_id
		WHERE pt.mes_referencia = $1 AND u.ativo
		ORDER BY pt.pontos DESC, u.nome_completo
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	mes := time.Date(mesReferencia.Year(), mesReferencia.Month(), 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.dbpool.QueryContext(ctx, query, mes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.RankingEntry{}
	for rows.Next() {
		entry := &domain.RankingEntry{}
		if err := rows.Scan(&entry.PlantonistaID, &entry.FullName, &entry.Pontos); err != nil {
			return nil, err
		}
		entry.Posicao = len(entries) + 1
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// RecalcularRanking consolida a posição de cada plantonista em
// usuarios.ranking a partir dos pontos do mês de referência.
func (r *Repository) RecalcularRanking(mesReferencia time.Time) error {
	query := `
		UPDATE usuarios u
		SET ranking = sub.posicao
		FROM (
			SELECT plantonista_id, ROW_NUMBER() OVER (ORDER BY pontos DESC) AS posicao
			FROM pontuacoes
			WHERE mes_referencia = $1
		) sub
		WHERE u.id = sub.plantonista_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	mes := time.Date(mesReferencia.Year(), mesReferencia.Month(), 1, 0, 0, 0, 0, time.UTC)
	if _, err := r.dbpool.ExecContext(ctx, query, mes); err != nil {
		return err
	}

	return nil
}
