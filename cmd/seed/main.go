package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/veloce-dev/plantao-manager/backend/internal/config"
	"github.com/veloce-dev/plantao-manager/backend/internal/repository"
	"github.com/veloce-dev/plantao-manager/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var ano int
	var mes int

	agora := time.Now()
	flag.IntVar(&op, "op", 0, "operação (1: inserir usuários aleatórios, 2: gerar plantões do mês, 3: sortear alocações, 4: ambiente demo completo)")
	flag.IntVar(&n, "n", 5, "quantidade de registros")
	flag.IntVar(&ano, "ano", agora.Year(), "ano de referência")
	flag.IntVar(&mes, "mes", int(agora.Month()), "mês de referência")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("não foi possível carregar a configuração", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("não foi possível criar o pool de conexões", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("não foi possível conectar ao banco de dados", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("nenhuma operação informada")
	case 1:
		if n <= 0 {
			slog.Error("informe uma quantidade válida de usuários")
		} else {
			seed.SeedUsuarios(repo, cfg, n)
		}
	case 2:
		if mes < 1 || mes > 12 {
			slog.Error("informe um mês válido")
		} else {
			seed.SeedPlantoes(repo, cfg, ano, mes)
		}
	case 3:
		if n <= 0 || mes < 1 || mes > 12 {
			slog.Error("informe quantidade e mês válidos")
		} else {
			seed.SeedAlocacoes(repo, ano, mes, n)
		}
	case 4:
		seed.SeedDemo(repo, cfg)
	default:
		slog.Error("operação inválida")
	}
}
