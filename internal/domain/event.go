package domain

import "time"

// EventKind são os nomes dos eventos no contrato do websocket.
// Os valores fazem parte da compatibilidade de fio com os clientes.
type EventKind string

const (
	EventPlantaoUpdated  EventKind = "plantao_updated"
	EventAlocacaoCreated EventKind = "alocacao_created"
	EventRankingUpdated  EventKind = "ranking_updated"
)

// Event é o fato imutável publicado após uma mutação bem-sucedida.
// União fechada: apenas os tipos abaixo implementam a interface.
type Event interface {
	Kind() EventKind
	isEvent()
}

type PlantaoUpdated struct {
	Plantao   *Plantao  `json:"plantao"`
	Timestamp time.Time `json:"timestamp"`
}

type AlocacaoCreated struct {
	Alocacao  *Alocacao `json:"alocacao"`
	Timestamp time.Time `json:"timestamp"`
}

type RankingUpdated struct {
	Timestamp time.Time `json:"timestamp"`
}

func (PlantaoUpdated) Kind() EventKind  { return EventPlantaoUpdated }
func (AlocacaoCreated) Kind() EventKind { return EventAlocacaoCreated }
func (RankingUpdated) Kind() EventKind  { return EventRankingUpdated }

func (PlantaoUpdated) isEvent()  {}
func (AlocacaoCreated) isEvent() {}
func (RankingUpdated) isEvent()  {}

// RoomPlantonistas é a sala de broadcast que todos os clientes entram
// após o handshake.
const RoomPlantonistas = "plantonistas"
