package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// periodo lê o intervalo inicio/fim da query string; sem parâmetros, o mês
// corrente inteiro.
func (h *Handler) periodo(r *http.Request) (time.Time, time.Time, error) {
	agora := time.Now()
	inicio := time.Date(agora.Year(), agora.Month(), 1, 0, 0, 0, 0, time.UTC)
	fim := inicio.AddDate(0, 1, -1)

	if v := r.URL.Query().Get("inicio"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("data inicial inválida, use AAAA-MM-DD")
		}
		inicio = parsed
	}
	if v := r.URL.Query().Get("fim"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("data final inválida, use AAAA-MM-DD")
		}
		fim = parsed
	}
	if fim.Before(inicio) {
		return time.Time{}, time.Time{}, errors.New("a data final não pode ser anterior à inicial")
	}

	return inicio, fim, nil
}

func (h *Handler) GetPlantoes(w http.ResponseWriter, r *http.Request) {
	inicio, fim, err := h.periodo(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	plantoes, err := h.repository.GetPlantoesByPeriodo(inicio, fim)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantões obtidos com sucesso", plantoes)
}

func (h *Handler) GetPlantao(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PlantaoCtx).(*domain.Plantao)
	h.successResponse(w, r, "plantão obtido com sucesso", p)
}

func (h *Handler) GetPlantoesDisponiveis(w http.ResponseWriter, r *http.Request) {
	inicio, fim, err := h.periodo(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	plantoes, err := h.repository.GetPlantoesDisponiveis(inicio, fim)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantões disponíveis obtidos com sucesso", plantoes)
}

func (h *Handler) GetPlantoesDoMes(w http.ResponseWriter, r *http.Request) {
	ano, errAno := strconv.Atoi(chi.URLParam(r, "ano"))
	mes, errMes := strconv.Atoi(chi.URLParam(r, "mes"))
	if errAno != nil || errMes != nil || mes < 1 || mes > 12 {
		h.errorResponse(w, r, "ano ou mês inválido")
		return
	}

	inicio := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)
	fim := inicio.AddDate(0, 1, -1)

	plantoes, err := h.repository.GetPlantoesByPeriodo(inicio, fim)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantões do mês obtidos com sucesso", plantoes)
}

func (h *Handler) GetMeusPlantoes(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	apartirDe := time.Now().AddDate(0, -1, 0)
	if v := r.URL.Query().Get("apartir_de"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.errorResponse(w, r, "data inválida, use AAAA-MM-DD")
			return
		}
		apartirDe = parsed
	}

	alocacoes, err := h.repository.GetMinhasAlocacoes(myInfo.ID, apartirDe)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "suas alocações obtidas com sucesso", alocacoes)
}

func (h *Handler) GerarPlantoesDoMes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ano             int `json:"ano" validate:"required,min=2024"`
		Mes             int `json:"mes" validate:"required,min=1,max=12"`
		MaxPlantonistas int `json:"max_plantonistas" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.MaxPlantonistas == 0 {
		req.MaxPlantonistas = h.config.Escolha.MaxPlantonistas
	}

	criados, existentes, err := h.repository.GerarPlantoesDoMes(req.Ano, req.Mes, req.MaxPlantonistas)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantões do mês gerados com sucesso", map[string]int{
		"criados":    criados,
		"existentes": existentes,
	})
}

func (h *Handler) UpdatePlantao(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxPlantonistas *int    `json:"max_plantonistas" validate:"omitempty,min=1"`
		Observacoes     *string `json:"observacoes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	p := r.Context().Value(PlantaoCtx).(*domain.Plantao)

	if req.MaxPlantonistas != nil {
		if *req.MaxPlantonistas < p.VagasOcupadas {
			h.errorResponse(w, r, "o novo limite de vagas não pode ser menor que a ocupação atual")
			return
		}
		p.MaxPlantonistas = *req.MaxPlantonistas
		p.Status = domain.StatusForOccupancy(p.VagasOcupadas, p.MaxPlantonistas)
	}
	if req.Observacoes != nil {
		p.Observacoes = *req.Observacoes
	}

	if err := h.repository.UpdatePlantao(p); err != nil {
		switch {
		case errors.Is(err, domain.ErrPlantaoNotFound):
			h.errorResponse(w, r, "o plantão foi alterado por outra pessoa, tente novamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.hub.Publish(domain.RoomPlantonistas, domain.PlantaoUpdated{Plantao: p, Timestamp: time.Now()})

	h.successResponse(w, r, "plantão atualizado com sucesso", p)
}

func (h *Handler) DeletePlantao(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PlantaoCtx).(*domain.Plantao)

	if err := h.repository.DeletePlantao(p.ID); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantão removido com sucesso", nil)
}

func (h *Handler) EscolherPlantao(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(PlantaoCtx).(*domain.Plantao)
	sub, err := uuid.Parse(r.Context().Value(SubCtxKey).(string))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	aloc, err := h.coordinator.Escolher(r.Context(), p.ID, sub)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantão escolhido com sucesso", aloc)
}

func (h *Handler) AtribuirPlantonista(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlantonistaID string `json:"plantonista_id" validate:"required,uuid"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	p := r.Context().Value(PlantaoCtx).(*domain.Plantao)
	gestorID, err := uuid.Parse(r.Context().Value(SubCtxKey).(string))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	plantonistaID := uuid.MustParse(req.PlantonistaID)

	aloc, err := h.coordinator.Atribuir(r.Context(), p.ID, plantonistaID, gestorID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	// notificação por email é melhor esforço; a alocação já foi gravada
	h.enviarEmailAtribuicao(r, p, plantonistaID, gestorID)

	h.successResponse(w, r, "plantonista atribuído com sucesso", aloc)
}

func (h *Handler) CancelarAlocacao(w http.ResponseWriter, r *http.Request) {
	alocacaoID, err := uuid.Parse(chi.URLParam(r, "alocacaoID"))
	if err != nil {
		h.errorResponse(w, r, "ID de alocação inválido")
		return
	}
	sub, err := uuid.Parse(r.Context().Value(SubCtxKey).(string))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.coordinator.Cancelar(r.Context(), alocacaoID, sub); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "alocação cancelada com sucesso", nil)
}

func (h *Handler) RemoverAlocacao(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlantonistaID string `json:"plantonista_id" validate:"required,uuid"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	p := r.Context().Value(PlantaoCtx).(*domain.Plantao)
	gestorID, err := uuid.Parse(r.Context().Value(SubCtxKey).(string))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	plantonistaID := uuid.MustParse(req.PlantonistaID)

	if err := h.coordinator.RemoverAlocacao(r.Context(), p.ID, plantonistaID, gestorID); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.enviarEmailRemocao(r, p, plantonistaID, gestorID)

	h.successResponse(w, r, "alocação removida com sucesso", nil)
}

func (h *Handler) enviarEmailAtribuicao(r *http.Request, p *domain.Plantao, plantonistaID, gestorID uuid.UUID) {
	plantonista, err := h.repository.GetUserByID(plantonistaID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}
	gestor, err := h.repository.GetUserByID(gestorID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	h.publishMail(r, domain.MailMessage{
		Type: "atribuicao",
		To:   plantonista.Email,
		Data: domain.AtribuicaoMailData{
			FullName: plantonista.FullName,
			Data:     p.Date.Format("02/01/2006"),
			Turno:    string(p.Turno),
			Gestor:   gestor.FullName,
		},
	})
}

func (h *Handler) enviarEmailRemocao(r *http.Request, p *domain.Plantao, plantonistaID, gestorID uuid.UUID) {
	plantonista, err := h.repository.GetUserByID(plantonistaID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}
	gestor, err := h.repository.GetUserByID(gestorID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	h.publishMail(r, domain.MailMessage{
		Type: "remocao",
		To:   plantonista.Email,
		Data: domain.RemocaoMailData{
			FullName: plantonista.FullName,
			Data:     p.Date.Format("02/01/2006"),
			Turno:    string(p.Turno),
			Gestor:   gestor.FullName,
		},
	})
}

// publishMail envia a mensagem para a fila de email; falha aqui só gera log.
func (h *Handler) publishMail(r *http.Request, msg domain.MailMessage) {
	if h.mailChannel == nil {
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		h.logInternalServerError(r, err)
	}
}
