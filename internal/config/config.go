package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 dias, em segundos
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		// RankingTTL é por quanto tempo a posição de ranking de um
		// plantonista fica em cache antes de recarregar do banco.
		RankingTTL int `env:"RANKING_TTL" envDefault:"300"`
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		// UserDomain é o domínio usado nos emails gerados pelo seed.
		UserDomain string `env:"USER_DOMAIN" envDefault:"plantao.example.com.br"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	Realtime struct {
		// HeartbeatTimeout é o silêncio máximo (em segundos) antes de
		// considerar a conexão meio-aberta e derrubá-la.
		HeartbeatTimeout int `env:"HEARTBEAT_TIMEOUT" envDefault:"20"`
		WriteTimeout     int `env:"WRITE_TIMEOUT" envDefault:"3"`
		// Tamanho do buffer de saída por sessão; sessões que o enchem
		// são descartadas para não travar o broadcast.
		SessionBuffer int `env:"SESSION_BUFFER" envDefault:"16"`
	} `envPrefix:"REALTIME_"`
	Escolha struct {
		// DiaAbertura é o dia do mês em que abre a escolha para o mês
		// seguinte.
		DiaAbertura int `env:"DIA_ABERTURA" envDefault:"25"`
		// HoraInicio é a hora em que o 1º colocado pode escolher; cada
		// posição seguinte do top N libera uma hora depois.
		HoraInicio       int `env:"HORA_INICIO" envDefault:"8"`
		TopComRestricao  int `env:"TOP_COM_RESTRICAO" envDefault:"10"`
		MaxPlantonistas  int `env:"MAX_PLANTONISTAS" envDefault:"2"`
		MaxPlantoesMes   int `env:"MAX_PLANTOES_MES" envDefault:"10"`
	} `envPrefix:"ESCOLHA_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"Administrador"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"plantao123"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	// em desenvolvimento as variáveis vêm de um .env; em produção ele não
	// existe e o load falha em silêncio
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// Retornar apenas o primeiro erro deixa o log mais claro
			return nil, aggErr.Errors[0]
		}
	}

	return cfg, nil
}
