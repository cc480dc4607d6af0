package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPConfig struct {
	Address string        `yaml:"address" env:"PMO_ADDRESS" env-default:":8080"`
	Timeout time.Duration `yaml:"timeout" env:"PMO_TIMEOUT" env-default:"5s"`
}

type MacroConfig struct {
	Address  string        `yaml:"address" env:"MACRO_ADDRESS" env-default:""`
	Timeout  time.Duration `yaml:"timeout" env:"MACRO_TIMEOUT" env-default:"3s"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"MACRO_CACHE_TTL" env-default:"5m"`
}

type Config struct {
	LogLevel  string      `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	HTTP      HTTPConfig  `yaml:"http_server"`
	DBAddress string      `yaml:"db_address" env:"DB_ADDRESS" env-required:"true"`
	Timezone  string      `yaml:"timezone" env:"PMO_TIMEZONE" env-default:"America/Sao_Paulo"`
	Macro     MacroConfig `yaml:"macro_service"`
}

func MustLoad(configPath string) Config {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read env: %s", err)
		}
		return cfg
	}

	// try the file first, fall back to env when it does not exist
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				log.Fatalf("cannot read env: %s", err)
			}
			return cfg
		}
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}

	return cfg
}
