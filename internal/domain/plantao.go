package domain

import (
	"time"

	"github.com/google/uuid"
)

type Turno string

const (
	TurnoManha Turno = "manha"
	TurnoTarde Turno = "tarde"
)

type PlantaoStatus string

const (
	// PlantaoDisponivel: ainda há vagas livres.
	PlantaoDisponivel PlantaoStatus = "disponivel"
	// PlantaoReservado: parcialmente preenchido, ainda com vagas.
	PlantaoReservado PlantaoStatus = "reservado"
	// PlantaoConfirmado: todas as vagas ocupadas.
	PlantaoConfirmado PlantaoStatus = "confirmado"
)

// Plantao é a unidade agendável: uma dupla (data, turno) com capacidade
// limitada de plantonistas. O invariante de capacidade
// (vagas ocupadas <= max_plantonistas) é garantido pelo repositório.
type Plantao struct {
	ID              uuid.UUID     `json:"id"`
	Date            time.Time     `json:"data"`
	Turno           Turno         `json:"turno"`
	Status          PlantaoStatus `json:"status"`
	MaxPlantonistas int           `json:"max_plantonistas"`
	Observacoes     string        `json:"observacoes"`
	// VagasOcupadas é derivado (contagem de alocações confirmadas);
	// preenchido pelas consultas, nunca fonte de verdade no cliente.
	VagasOcupadas int         `json:"vagas_ocupadas"`
	Alocacoes     []*Alocacao `json:"alocacoes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Version       int32       `json:"-"`
}

// StatusForOccupancy calcula o status do plantão a partir da ocupação.
func StatusForOccupancy(ocupadas, max int) PlantaoStatus {
	switch {
	case ocupadas >= max:
		return PlantaoConfirmado
	case ocupadas > 0:
		return PlantaoReservado
	default:
		return PlantaoDisponivel
	}
}

type AlocacaoStatus string

const (
	AlocacaoPendente   AlocacaoStatus = "pendente"
	AlocacaoConfirmada AlocacaoStatus = "confirmado"
	AlocacaoCancelada  AlocacaoStatus = "cancelado"
)

type AlocacaoTipo string

const (
	// AlocacaoEscolha: o próprio plantonista escolheu o plantão.
	AlocacaoEscolha AlocacaoTipo = "escolha"
	// AlocacaoAtribuida: um gestor atribuiu o plantonista manualmente.
	AlocacaoAtribuida AlocacaoTipo = "atribuido"
)

// Alocacao vincula um plantonista a uma vaga de um plantão.
// Um plantonista possui no máximo uma alocação não cancelada por plantão.
type Alocacao struct {
	ID            uuid.UUID      `json:"id"`
	PlantaoID     uuid.UUID      `json:"plantao_id"`
	PlantonistaID uuid.UUID      `json:"plantonista_id"`
	Status        AlocacaoStatus `json:"status"`
	Tipo          AlocacaoTipo   `json:"tipo"`
	ConfirmadoEm  time.Time      `json:"confirmado_em"`
	CreatedAt     time.Time      `json:"created_at"`
	// Plantao é preenchido apenas em consultas que fazem o join.
	Plantao *Plantao `json:"plantao,omitempty"`
}
