// Package coordinator implementa o protocolo de escolha de vagas: toda
// mutação de alocação passa por aqui, que valida as regras de negócio,
// delega a parte atômica ao repositório e, somente após o commit, publica os
// eventos de domínio no barramento.
package coordinator

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

// Store é o recorte do repositório que o coordenador consome. CriarAlocacao e
// CancelarAlocacao são as primitivas atômicas por plantão: a verificação de
// capacidade e a escrita executam como uma unidade serializável.
type Store interface {
	GetUserByID(id uuid.UUID) (*domain.User, error)
	GetPlantaoByID(id uuid.UUID) (*domain.Plantao, error)
	GetAlocacaoByID(id uuid.UUID) (*domain.Alocacao, error)
	GetAlocacaoConfirmada(plantaoID, plantonistaID uuid.UUID) (*domain.Alocacao, error)
	HasAlocacao(plantaoID, plantonistaID uuid.UUID) (bool, error)
	HasAlocacaoNoDia(plantonistaID uuid.UUID, dia time.Time) (bool, error)
	CountAlocacoesNoMes(plantonistaID uuid.UUID, ref time.Time) (int, error)
	CriarAlocacao(plantaoID, plantonistaID uuid.UUID, tipo domain.AlocacaoTipo) (*domain.Alocacao, *domain.Plantao, error)
	CancelarAlocacao(alocacaoID uuid.UUID) (*domain.Alocacao, *domain.Plantao, error)
	InsertLog(entry *domain.LogEntry) error
}

// Publisher entrega eventos para a sala sem bloquear o caminho da mutação.
type Publisher interface {
	Publish(room string, ev domain.Event)
}

type Coordinator struct {
	cfg    *config.Config
	store  Store
	bus    Publisher
	janela *JanelaEscolha

	// now é injetável nos testes
	now func() time.Time
}

func New(cfg *config.Config, store Store, bus Publisher, janela *JanelaEscolha) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		store:  store,
		bus:    bus,
		janela: janela,
		now:    time.Now,
	}
}

// Escolher processa a auto-escolha de um plantonista. As pré-condições são
// verificadas fora da transação; capacidade e duplicidade são re-verificadas
// dentro dela, então escolhas concorrentes nunca estouram as vagas.
func (c *Coordinator) Escolher(ctx context.Context, plantaoID, plantonistaID uuid.UUID) (*domain.Alocacao, error) {
	user, err := c.store.GetUserByID(plantonistaID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RolePlantonista || !user.IsActive {
		return nil, domain.ErrForbidden
	}

	plantao, err := c.store.GetPlantaoByID(plantaoID)
	if err != nil {
		return nil, err
	}

	agora := c.now()
	if plantao.Date.Before(dateOnly(agora)) {
		return nil, domain.ErrPlantaoPassado
	}
	if plantao.Status != domain.PlantaoDisponivel && plantao.Status != domain.PlantaoReservado {
		return nil, domain.ErrPlantaoIndisponivel
	}

	if dup, err := c.store.HasAlocacao(plantaoID, plantonistaID); err != nil {
		return nil, err
	} else if dup {
		return nil, domain.ErrAlocacaoDuplicada
	}

	if ocupado, err := c.store.HasAlocacaoNoDia(plantonistaID, plantao.Date); err != nil {
		return nil, err
	} else if ocupado {
		return nil, domain.ErrDoisTurnosNoDia
	}

	noMes, err := c.store.CountAlocacoesNoMes(plantonistaID, plantao.Date)
	if err != nil {
		return nil, err
	}
	limite := user.MaxPlantoesMes
	if limite == 0 {
		limite = c.cfg.Escolha.MaxPlantoesMes
	}
	if noMes >= limite {
		return nil, domain.ErrLimiteMensal
	}

	liberada, err := c.janela.Liberada(ctx, user, plantao.Date, agora)
	if err != nil {
		return nil, err
	}
	if !liberada {
		return nil, domain.ErrForaDaJanela
	}

	aloc, atualizado, err := c.store.CriarAlocacao(plantaoID, plantonistaID, domain.AlocacaoEscolha)
	if err != nil {
		return nil, err
	}

	c.audit(plantonistaID, "escolher_plantao", "alocacoes", aloc.ID.String(), map[string]any{
		"plantao_id": plantaoID.String(),
		"data":       plantao.Date.Format("2006-01-02"),
		"turno":      plantao.Turno,
	})
	c.publishMutacao(aloc, atualizado)

	return aloc, nil
}

// Atribuir é a atribuição manual por um gestor: ignora a janela de ranking e
// o limite mensal, mas continua sujeita ao invariante de capacidade.
func (c *Coordinator) Atribuir(ctx context.Context, plantaoID, plantonistaID, gestorID uuid.UUID) (*domain.Alocacao, error) {
	gestor, err := c.store.GetUserByID(gestorID)
	if err != nil {
		return nil, err
	}
	if !gestor.Role.IsGestor() {
		return nil, domain.ErrForbidden
	}

	if _, err := c.store.GetUserByID(plantonistaID); err != nil {
		return nil, err
	}
	plantao, err := c.store.GetPlantaoByID(plantaoID)
	if err != nil {
		return nil, err
	}

	if dup, err := c.store.HasAlocacao(plantaoID, plantonistaID); err != nil {
		return nil, err
	} else if dup {
		return nil, domain.ErrAlocacaoDuplicada
	}

	if ocupado, err := c.store.HasAlocacaoNoDia(plantonistaID, plantao.Date); err != nil {
		return nil, err
	} else if ocupado {
		return nil, domain.ErrDoisTurnosNoDia
	}

	aloc, atualizado, err := c.store.CriarAlocacao(plantaoID, plantonistaID, domain.AlocacaoAtribuida)
	if err != nil {
		return nil, err
	}

	c.audit(gestorID, "atribuir_plantonista", "alocacoes", aloc.ID.String(), map[string]any{
		"plantao_id":     plantaoID.String(),
		"plantonista_id": plantonistaID.String(),
	})
	c.publishMutacao(aloc, atualizado)

	return aloc, nil
}

// Cancelar transita a alocação para cancelada, liberando uma vaga. Um
// plantonista só cancela a própria alocação (e nunca no dia do plantão);
// gestores cancelam qualquer uma.
func (c *Coordinator) Cancelar(ctx context.Context, alocacaoID, byID uuid.UUID) error {
	by, err := c.store.GetUserByID(byID)
	if err != nil {
		return err
	}

	aloc, err := c.store.GetAlocacaoByID(alocacaoID)
	if err != nil {
		return err
	}
	if aloc.Status != domain.AlocacaoConfirmada {
		return domain.ErrAlocacaoNotFound
	}

	if !by.Role.IsGestor() {
		if aloc.PlantonistaID != byID {
			return domain.ErrForbidden
		}
		plantao, err := c.store.GetPlantaoByID(aloc.PlantaoID)
		if err != nil {
			return err
		}
		if !plantao.Date.After(dateOnly(c.now())) {
			return domain.ErrCancelamentoTardio
		}
	}

	_, atualizado, err := c.store.CancelarAlocacao(alocacaoID)
	if err != nil {
		return err
	}

	c.audit(byID, "cancelar_alocacao", "alocacoes", alocacaoID.String(), map[string]any{
		"plantao_id": aloc.PlantaoID.String(),
	})
	c.publishPlantao(atualizado)

	return nil
}

// RemoverAlocacao é a remoção dura por um gestor: semanticamente um
// cancelamento feito em nome de outro plantonista.
func (c *Coordinator) RemoverAlocacao(ctx context.Context, plantaoID, plantonistaID, gestorID uuid.UUID) error {
	gestor, err := c.store.GetUserByID(gestorID)
	if err != nil {
		return err
	}
	if !gestor.Role.IsGestor() {
		return domain.ErrForbidden
	}

	aloc, err := c.store.GetAlocacaoConfirmada(plantaoID, plantonistaID)
	if err != nil {
		return err
	}

	_, atualizado, err := c.store.CancelarAlocacao(aloc.ID)
	if err != nil {
		return err
	}

	c.audit(gestorID, "remover_alocacao", "alocacoes", aloc.ID.String(), map[string]any{
		"plantao_id":     plantaoID.String(),
		"plantonista_id": plantonistaID.String(),
	})
	c.publishPlantao(atualizado)

	return nil
}

// PublicarRankingAtualizado avisa os clientes que o ranking mudou; cada um
// refaz a própria consulta (o payload não carrega o ranking).
func (c *Coordinator) PublicarRankingAtualizado() {
	c.bus.Publish(domain.RoomPlantonistas, domain.RankingUpdated{Timestamp: c.now()})
}

// publishMutacao publica os eventos de uma escolha/atribuição bem-sucedida.
// Sempre depois do commit; nunca em tentativas que falharam.
func (c *Coordinator) publishMutacao(aloc *domain.Alocacao, plantao *domain.Plantao) {
	ts := c.now()
	c.bus.Publish(domain.RoomPlantonistas, domain.AlocacaoCreated{Alocacao: aloc, Timestamp: ts})
	c.bus.Publish(domain.RoomPlantonistas, domain.PlantaoUpdated{Plantao: plantao, Timestamp: ts})
}

func (c *Coordinator) publishPlantao(plantao *domain.Plantao) {
	c.bus.Publish(domain.RoomPlantonistas, domain.PlantaoUpdated{Plantao: plantao, Timestamp: c.now()})
}

// audit registra a ação no log; falha de auditoria não falha a operação.
func (c *Coordinator) audit(userID uuid.UUID, acao, entidade, registroID string, detalhes map[string]any) {
	raw, err := json.Marshal(detalhes)
	if err != nil {
		raw = nil
	}
	entry := &domain.LogEntry{
		UserID:     userID,
		Acao:       acao,
		Entidade:   entidade,
		RegistroID: registroID,
		Detalhes:   raw,
	}
	if err := c.store.InsertLog(entry); err != nil {
		slog.Warn("falha ao registrar log de auditoria", "acao", acao, "error", err)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
