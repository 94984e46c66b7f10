package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"PROPERTIFY_APP_NAME" envDefault:"propertify-console"`
	AppEnv       string `env:"PROPERTIFY_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"PROPERTIFY_HTTP_HOST" envDefault:"127.0.0.1"`
	HTTPPort     string `env:"PROPERTIFY_HTTP_PORT" envDefault:"8090"`
	HTTPBasePath string `env:"PROPERTIFY_HTTP_BASE_PATH" envDefault:"/api/v1"`

	GatewayBaseURL string        `env:"PROPERTIFY_GATEWAY_URL" envDefault:"http://localhost:5000/api"`
	GatewayTimeout time.Duration `env:"PROPERTIFY_GATEWAY_TIMEOUT" envDefault:"15s"`

	SessionDBPath string `env:"PROPERTIFY_SESSION_DB" envDefault:"propertify-session.db"`

	// VerifyOnHydrate controls the background probe that re-validates a
	// session restored from disk against the gateway.
	VerifyOnHydrate bool `env:"PROPERTIFY_VERIFY_ON_HYDRATE" envDefault:"true"`

	NATSURL                string `env:"NATS_URL"`
	NATSEstablishedSubject string `env:"NATS_SUBJECT_SESSION_ESTABLISHED" envDefault:"session.established"`
	NATSClearedSubject     string `env:"NATS_SUBJECT_SESSION_CLEARED" envDefault:"session.cleared"`
	NATSSnapshotSubject    string `env:"NATS_SUBJECT_SESSION_SNAPSHOT" envDefault:"session.snapshot"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
