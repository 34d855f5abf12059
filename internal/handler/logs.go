package handler

import (
	"net/http"
	"strconv"
)

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 500 {
			h.errorResponse(w, r, "limit inválido")
			return
		}
		limit = parsed
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.errorResponse(w, r, "offset inválido")
			return
		}
		offset = parsed
	}

	entries, err := h.repository.GetLogs(limit, offset)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "logs obtidos com sucesso", entries)
}
