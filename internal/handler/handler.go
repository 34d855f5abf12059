package handler

import (
	"github.com/go-chi/chi/v5"
	pt_br "github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pt_br_translations "github.com/go-playground/validator/v10/translations/pt_BR"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/coordinator"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
	"github.com/veloce-dev/plantao-manager/backend/internal/realtime"
	"github.com/veloce-dev/plantao-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	coordinator *coordinator.Coordinator
	hub         *realtime.Hub
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, coord *coordinator.Coordinator, hub *realtime.Hub, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	ptBR := pt_br.New()
	uni := ut.New(ptBR, ptBR)
	trans, _ := uni.GetTranslator("pt_BR")
	if err := pt_br_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		coordinator: coord,
		hub:         hub,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// autenticação
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// todas as rotas abaixo exigem login
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		// websocket de eventos em tempo real
		r.Get("/ws", realtime.Handler(h.config, h.hub))

		r.With(h.myInfo).Get("/meu-perfil", h.GetMeuPerfil)

		r.Route("/usuarios", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Get("/", h.GetAllUsers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Get("/", h.GetUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
			})
		})

		r.Route("/plantoes", func(r chi.Router) {
			r.Get("/", h.GetPlantoes)
			r.Get("/disponiveis", h.GetPlantoesDisponiveis)
			r.With(h.myInfo).Get("/meus-plantoes", h.GetMeusPlantoes)
			r.Get("/mes/{ano}/{mes}", h.GetPlantoesDoMes)
			r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Post("/gerar-mes", h.GerarPlantoesDoMes)
			r.Delete("/cancelar/{alocacaoID}", h.CancelarAlocacao)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.plantao)
				r.Get("/", h.GetPlantao)
				r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Patch("/", h.UpdatePlantao)
				r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Delete("/", h.DeletePlantao)
				r.Post("/escolher", h.EscolherPlantao)
				r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Post("/atribuir", h.AtribuirPlantonista)
				r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Delete("/remover-alocacao", h.RemoverAlocacao)
			})
		})

		r.Route("/ranking", func(r chi.Router) {
			r.Get("/", h.GetRanking)
			r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Post("/recalcular", h.RecalcularRanking)
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleGestor, domain.RoleAdmin})).Get("/logs", h.GetLogs)
	})
}
