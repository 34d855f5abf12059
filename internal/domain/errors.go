package domain

import "errors"

// Erros de negócio retornados pelo coordenador e pelo repositório.
// As mensagens são exibidas diretamente ao usuário no envelope de resposta.
var (
	ErrPlantaoNotFound     = errors.New("plantão não encontrado")
	ErrPlantonistaNotFound = errors.New("plantonista não encontrado")
	ErrAlocacaoNotFound    = errors.New("alocação não encontrada")

	ErrPlantaoLotado       = errors.New("plantão sem vagas disponíveis")
	ErrAlocacaoDuplicada   = errors.New("plantonista já está alocado neste plantão")
	ErrPlantaoPassado      = errors.New("não é possível escolher plantões de datas passadas")
	ErrPlantaoIndisponivel = errors.New("plantão não está disponível")
	ErrDoisTurnosNoDia     = errors.New("não é permitido fazer dois plantões no mesmo dia")
	ErrLimiteMensal        = errors.New("limite de plantões no mês atingido")
	ErrForaDaJanela        = errors.New("a escolha ainda não está liberada para a sua posição no ranking")
	ErrCancelamentoTardio  = errors.New("não é possível cancelar plantões do dia atual ou de datas passadas")

	ErrForbidden           = errors.New("sem permissão para executar esta ação")
	ErrPlantaoComAlocacoes = errors.New("não é possível deletar plantão com alocações")
)
