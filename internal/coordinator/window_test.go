package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/domain"
)

func janelaTeste() *JanelaEscolha {
	cfg := &config.Config{}
	cfg.Escolha.DiaAbertura = 25
	cfg.Escolha.HoraInicio = 8
	cfg.Escolha.TopComRestricao = 10
	return NewJanelaEscolha(cfg, nil)
}

func plantonistaComRanking(pos int) *domain.User {
	return &domain.User{ID: uuid.New(), Role: domain.RolePlantonista, IsActive: true, Ranking: pos}
}

func TestJanelaMesCorrenteSempreAberta(t *testing.T) {
	j := janelaTeste()
	u := plantonistaComRanking(1)

	agora := time.Date(2025, time.March, 2, 0, 30, 0, 0, time.UTC)
	plantao := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	ok, err := j.Liberada(context.Background(), u, plantao, agora)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJanelaMesSeguinteAntesDaAbertura(t *testing.T) {
	j := janelaTeste()
	u := plantonistaComRanking(0)

	agora := time.Date(2025, time.March, 24, 23, 59, 0, 0, time.UTC)
	plantao := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	ok, err := j.Liberada(context.Background(), u, plantao, agora)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJanelaDiaDaAberturaEscalonaTopDez(t *testing.T) {
	j := janelaTeste()
	plantao := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		nome    string
		ranking int
		hora    int
		quer    bool
	}{
		{"primeiro às 08h pode", 1, 8, true},
		{"primeiro às 07h ainda não", 1, 7, false},
		{"terceiro às 09h ainda não", 3, 9, false},
		{"terceiro às 10h pode", 3, 10, true},
		{"décimo às 17h pode", 10, 17, true},
		{"décimo às 16h ainda não", 10, 16, false},
		{"décimo primeiro entra na abertura", 11, 0, true},
		{"não ranqueado entra na abertura", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			agora := time.Date(2025, time.March, 25, tc.hora, 15, 0, 0, time.UTC)
			ok, err := j.Liberada(context.Background(), plantonistaComRanking(tc.ranking), plantao, agora)
			require.NoError(t, err)
			assert.Equal(t, tc.quer, ok)
		})
	}
}

func TestJanelaDepoisDoDiaDeAberturaSemEscalonamento(t *testing.T) {
	j := janelaTeste()
	u := plantonistaComRanking(1)

	// dia 26 de madrugada: o escalonamento valeu só no dia 25
	agora := time.Date(2025, time.March, 26, 1, 0, 0, 0, time.UTC)
	plantao := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)

	ok, err := j.Liberada(context.Background(), u, plantao, agora)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJanelaMesesAlemDoSeguinteFechados(t *testing.T) {
	j := janelaTeste()
	u := plantonistaComRanking(0)

	agora := time.Date(2025, time.March, 26, 12, 0, 0, 0, time.UTC)
	plantao := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	ok, err := j.Liberada(context.Background(), u, plantao, agora)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJanelaViradaDeAno(t *testing.T) {
	j := janelaTeste()
	u := plantonistaComRanking(0)

	agora := time.Date(2025, time.December, 26, 12, 0, 0, 0, time.UTC)
	plantao := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	ok, err := j.Liberada(context.Background(), u, plantao, agora)
	require.NoError(t, err)
	assert.True(t, ok)
}
