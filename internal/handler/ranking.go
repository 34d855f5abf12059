package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	mes := time.Now()
	if v := r.URL.Query().Get("mes"); v != "" {
		parsed, err := time.Parse("2006-01", v)
		if err != nil {
			h.errorResponse(w, r, "mês inválido, use AAAA-MM")
			return
		}
		mes = parsed
	}

	entries, err := h.repository.GetRanking(mes)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "ranking obtido com sucesso", entries)
}

func (h *Handler) RecalcularRanking(w http.ResponseWriter, r *http.Request) {
	mes := time.Now()
	if v := r.URL.Query().Get("mes"); v != "" {
		parsed, err := time.Parse("2006-01", v)
		if err != nil {
			h.errorResponse(w, r, "mês inválido, use AAAA-MM")
			return
		}
		mes = parsed
	}

	if err := h.repository.RecalcularRanking(mes); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.refreshRankingCache(r)
	h.coordinator.PublicarRankingAtualizado()

	h.successResponse(w, r, "ranking recalculado com sucesso", nil)
}

// refreshRankingCache regrava as posições no redis para que a janela de
// escolha enxergue o ranking novo sem esperar o TTL.
func (h *Handler) refreshRankingCache(r *http.Request) {
	if h.redisClient == nil {
		return
	}

	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	ttl := time.Duration(h.config.Redis.RankingTTL) * time.Second
	for _, u := range users {
		key := fmt.Sprintf("ranking_pos_%s", u.ID)
		if err := h.redisClient.Set(ctx, key, u.Ranking, ttl).Err(); err != nil {
			h.logInternalServerError(r, err)
			return
		}
	}
}
