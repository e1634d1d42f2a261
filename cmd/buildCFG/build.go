package buildCFG

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type DirectoriesConfig struct {
	EventsBaseURL string
	UsersBaseURL  string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) *ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return &ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("database.master_dsn is required")
	}

	var slaveDSNs []string
	if raw := cfg.GetString("database.slave_dsns"); raw != "" {
		slaveDSNs = strings.Split(raw, ",")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("database.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("database.conn_max_lifetime_seconds")) * time.Second,
	}

	log.Info().Int("slaves", len(slaveDSNs)).Msg("database configuration built")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (*RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return nil, fmt.Errorf("rabbit.url is required")
	}

	exchange := cfg.GetString("rabbit.exchange")
	if exchange == "" {
		exchange = "registrations.notifications"
	}

	queue := cfg.GetString("rabbit.queue")
	if queue == "" {
		queue = "registrations.declines"
	}

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("rabbit configuration built")
	return &RabbitConfig{Url: url, Exchange: exchange, Queue: queue}, nil
}

func BuildDirectoriesConfig(cfg *config.Config, log *zerolog.Logger) (*DirectoriesConfig, error) {
	events := cfg.GetString("directories.events_base_url")
	if events == "" {
		return nil, fmt.Errorf("directories.events_base_url is required")
	}

	users := cfg.GetString("directories.users_base_url")
	if users == "" {
		return nil, fmt.Errorf("directories.users_base_url is required")
	}

	log.Info().Str("events", events).Str("users", users).Msg("directory configuration built")
	return &DirectoriesConfig{EventsBaseURL: events, UsersBaseURL: users}, nil
}
