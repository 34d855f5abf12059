package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePlantonista Role = "plantonista"
	RoleGestor      Role = "gestor"
	RoleAdmin       Role = "admin"
)

// IsGestor indica se o papel tem poderes de gestão (atribuir/remover alocações,
// gerar plantões, consultar logs).
func (r Role) IsGestor() bool {
	return r == RoleGestor || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"nome_completo"`
	Email        string    `json:"email"`
	Role         Role      `json:"tipo"`
	IsActive     bool      `json:"ativo"`
	// Ranking é a posição no ranking de meritocracia (1 = primeiro lugar).
	// Zero significa que o plantonista ainda não foi ranqueado.
	Ranking        int       `json:"ranking"`
	MaxPlantoesMes int       `json:"max_plantoes_mes"`
	CreatedAt      time.Time `json:"created_at"`
	Version        int32     `json:"-"`
}

// RankingEntry é uma linha do ranking mensal exibido aos plantonistas.
type RankingEntry struct {
	PlantonistaID uuid.UUID `json:"plantonista_id"`
	FullName      string    `json:"nome_completo"`
	Posicao       int       `json:"posicao"`
	Pontos        float64   `json:"pontos"`
}
