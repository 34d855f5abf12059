// Package seed insere dados de demonstração para desenvolvimento local.
package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
	"github.com/veloce-dev/plantao-manager/backend/internal/repository"
	"github.com/veloce-dev/plantao-manager/backend/internal/utils"
)

func SeedUsuarios(repo *repository.Repository, cfg *config.Config, n int) {
	cnt := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("não foi possível gerar usuário aleatório", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateUser(user); err != nil {
			slog.Error("não foi possível inserir o usuário", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("usuários inseridos", slog.Int("count", cnt))
}

func SeedPlantoes(repo *repository.Repository, cfg *config.Config, ano, mes int) {
	criados, existentes, err := repo.GerarPlantoesDoMes(ano, mes, cfg.Escolha.MaxPlantonistas)
	if err != nil {
		slog.Error("não foi possível gerar os plantões do mês", slog.String("error", err.Error()))
		return
	}

	slog.Info("plantões do mês gerados", slog.Int("criados", criados), slog.Int("existentes", existentes))
}

// SeedAlocacoes sorteia plantonistas para os plantões do mês. As regras de
// capacidade continuam valendo; tentativas num plantão cheio só geram log.
func SeedAlocacoes(repo *repository.Repository, ano, mes, n int) {
	inicio := time.Date(ano, time.Month(mes), 1, 0, 0, 0, 0, time.UTC)
	fim := inicio.AddDate(0, 1, -1)

	plantoes, err := repo.GetPlantoesByPeriodo(inicio, fim)
	if err != nil {
		slog.Error("não foi possível listar os plantões do mês", slog.String("error", err.Error()))
		return
	}
	if len(plantoes) == 0 {
		slog.Error("não há plantões no mês, gere-os primeiro")
		return
	}

	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("não foi possível listar os usuários", slog.String("error", err.Error()))
		return
	}
	plantonistas := []*domain.User{}
	for _, u := range users {
		if u.Role == domain.RolePlantonista && u.IsActive {
			plantonistas = append(plantonistas, u)
		}
	}
	if len(plantonistas) == 0 {
		slog.Error("não há plantonistas ativos, insira usuários primeiro")
		return
	}

	cnt := 0
	for i := 0; i < n; i++ {
		p := plantoes[rand.Intn(len(plantoes))]
		u := plantonistas[rand.Intn(len(plantonistas))]

		if _, _, err := repo.CriarAlocacao(p.ID, u.ID, domain.AlocacaoEscolha); err != nil {
			slog.Debug("alocação sorteada recusada", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("alocações inseridas", slog.Int("count", cnt))
}

// SeedDemo monta um ambiente completo: usuários, plantões do mês corrente e
// do seguinte, e algumas alocações.
func SeedDemo(repo *repository.Repository, cfg *config.Config) {
	agora := time.Now()
	proximo := agora.AddDate(0, 1, 0)

	SeedUsuarios(repo, cfg, 12)
	SeedPlantoes(repo, cfg, agora.Year(), int(agora.Month()))
	SeedPlantoes(repo, cfg, proximo.Year(), int(proximo.Month()))
	SeedAlocacoes(repo, agora.Year(), int(agora.Month()), 30)
}
