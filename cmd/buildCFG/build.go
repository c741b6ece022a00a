package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"sparxfest/internal/mailer"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type UploaderConfig struct {
	Endpoint string
	Preset   string
}

type AuthConfig struct {
	Endpoint   string
	APIKey     string
	JWTSecret  string
	SessionTTL time.Duration
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("db.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("db.master_dsn is required")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("db.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("db.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("db.conn_max_lifetime_minutes")) * time.Minute,
	}

	log.Info().Msg("database configuration loaded")
	return masterDSN, nil, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return rc, fmt.Errorf("rabbit.url is required")
	}
	if rc.Exchange == "" {
		rc.Exchange = "sparx.sync"
	}
	if rc.Queue == "" {
		rc.Queue = "registration-sync"
	}
	log.Info().Msgf("rabbit configuration loaded (exchange=%s queue=%s)", rc.Exchange, rc.Queue)
	return rc, nil
}

func BuildUploaderConfig(cfg *config.Config, log *zerolog.Logger) (UploaderConfig, error) {
	uc := UploaderConfig{
		Endpoint: cfg.GetString("uploader.endpoint"),
		Preset:   cfg.GetString("uploader.preset"),
	}
	if uc.Endpoint == "" || uc.Preset == "" {
		return uc, fmt.Errorf("uploader.endpoint and uploader.preset are required")
	}
	log.Info().Msg("uploader configuration loaded")
	return uc, nil
}

func BuildAuthConfig(cfg *config.Config, log *zerolog.Logger) (AuthConfig, error) {
	ac := AuthConfig{
		Endpoint:  cfg.GetString("auth.endpoint"),
		APIKey:    cfg.GetString("auth.api_key"),
		JWTSecret: cfg.GetString("auth.jwt_secret"),
	}
	if ac.Endpoint == "" || ac.APIKey == "" {
		return ac, fmt.Errorf("auth.endpoint and auth.api_key are required")
	}
	if ac.JWTSecret == "" {
		return ac, fmt.Errorf("auth.jwt_secret is required")
	}

	ttlMinutes := cfg.GetInt("auth.session_ttl_minutes")
	if ttlMinutes <= 0 {
		ttlMinutes = 60
		log.Warn().Msg("auth.session_ttl_minutes not set, defaulting to 60")
	}
	ac.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	return ac, nil
}

func BuildCatalogPath(cfg *config.Config, log *zerolog.Logger) string {
	path := cfg.GetString("catalog.path")
	if path == "" {
		path = "events.yaml"
		log.Warn().Msg("catalog.path not set, defaulting to events.yaml")
	}
	return path
}

func BuildQueuePath(cfg *config.Config, log *zerolog.Logger) string {
	path := cfg.GetString("offline_queue.path")
	if path == "" {
		path = "pending_registrations.db"
		log.Warn().Msg("offline_queue.path not set, defaulting to pending_registrations.db")
	}
	return path
}

// BuildMailerConfig is optional: with no SMTP host configured, notifications
// are simply skipped.
func BuildMailerConfig(cfg *config.Config, log *zerolog.Logger) (mailer.Config, bool) {
	mc := mailer.Config{
		Host:     cfg.GetString("mailer.host"),
		Port:     cfg.GetInt("mailer.port"),
		From:     cfg.GetString("mailer.from"),
		Password: cfg.GetString("mailer.password"),
	}
	if mc.Host == "" || mc.From == "" {
		log.Info().Msg("mailer not configured, notifications disabled")
		return mc, false
	}
	if mc.Port == 0 {
		mc.Port = 587
	}
	return mc, true
}
