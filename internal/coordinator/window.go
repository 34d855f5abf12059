package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// JanelaEscolha decide quando a escolha de um plantão está liberada para um
// plantonista:
//
//   - mês corrente: sempre liberado;
//   - mês seguinte: libera no dia de abertura; no próprio dia de abertura os
//     top N do ranking entram escalonados, uma hora por posição a partir da
//     hora de início (1º às 08:00, 2º às 09:00, ...);
//   - meses além do seguinte: fechado.
//
// A posição no ranking é cacheada no redis; sem redis (ou com ele fora do
// ar) a posição vem do próprio usuário.
type JanelaEscolha struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewJanelaEscolha(cfg *config.Config, rdb *redis.Client) *JanelaEscolha {
	return &JanelaEscolha{cfg: cfg, rdb: rdb}
}

func (j *JanelaEscolha) Liberada(ctx context.Context, user *domain.User, dataPlantao, agora time.Time) (bool, error) {
	mesPlantao := time.Date(dataPlantao.Year(), dataPlantao.Month(), 1, 0, 0, 0, 0, agora.Location())
	mesAtual := time.Date(agora.Year(), agora.Month(), 1, 0, 0, 0, 0, agora.Location())

	switch {
	case mesPlantao.Equal(mesAtual):
		return true, nil

	case mesPlantao.Equal(mesAtual.AddDate(0, 1, 0)):
		abertura := time.Date(agora.Year(), agora.Month(), j.cfg.Escolha.DiaAbertura, 0, 0, 0, 0, agora.Location())
		if agora.Before(abertura) {
			return false, nil
		}
		// a restrição por posição vale só no dia de abertura; do dia
		// seguinte em diante vira corrida livre
		if agora.Day() != j.cfg.Escolha.DiaAbertura {
			return true, nil
		}
		pos := j.posicao(ctx, user)
		if pos >= 1 && pos <= j.cfg.Escolha.TopComRestricao {
			liberaAs := j.cfg.Escolha.HoraInicio + pos - 1
			if agora.Hour() < liberaAs {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, nil
	}
}

// posicao resolve a posição do plantonista no ranking, com cache no redis.
func (j *JanelaEscolha) posicao(ctx context.Context, user *domain.User) int {
	if j.rdb == nil {
		return user.Ranking
	}

	key := fmt.Sprintf("ranking_pos_%s", user.ID)
	val, err := j.rdb.Get(ctx, key).Result()
	if err == nil {
		if pos, convErr := strconv.Atoi(val); convErr == nil {
			return pos
		}
	} else if err != redis.Nil {
		slog.Debug("falha ao consultar ranking no redis", "error", err)
		return user.Ranking
	}

	ttl := time.Duration(j.cfg.Redis.RankingTTL) * time.Second
	if err := j.rdb.Set(ctx, key, user.Ranking, ttl).Err(); err != nil {
		slog.Debug("falha ao cachear ranking no redis", "error", err)
	}
	return user.Ranking
}
