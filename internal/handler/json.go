package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("erro interno do servidor", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "erro interno do servidor", http.StatusInternalServerError)
	}
}

type Response struct {
	Sucesso  bool   `json:"sucesso"`
	Mensagem string `json:"mensagem"`
	Dados    any    `json:"dados"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Sucesso:  false,
		Mensagem: msg,
		Dados:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Sucesso:  false,
		Mensagem: "erro interno do servidor",
		Dados:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Sucesso:  true,
		Mensagem: msg,
		Dados:    data,
	})
}

// erros de negócio cuja mensagem vai direto para o usuário
var businessErrors = []error{
	domain.ErrPlantaoNotFound,
	domain.ErrPlantonistaNotFound,
	domain.ErrAlocacaoNotFound,
	domain.ErrPlantaoLotado,
	domain.ErrAlocacaoDuplicada,
	domain.ErrPlantaoPassado,
	domain.ErrPlantaoIndisponivel,
	domain.ErrDoisTurnosNoDia,
	domain.ErrLimiteMensal,
	domain.ErrForaDaJanela,
	domain.ErrCancelamentoTardio,
	domain.ErrForbidden,
	domain.ErrPlantaoComAlocacoes,
}

// domainError responde erros de negócio com a própria mensagem e trata o
// restante como erro interno.
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, known := range businessErrors {
		if errors.Is(err, known) {
			h.errorResponse(w, r, known.Error())
			return
		}
	}
	h.internalServerError(w, r, err)
}
