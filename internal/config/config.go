package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv            string `env:"APP_ENV" envDefault:"production"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	SessionSecret     string `env:"SESSION_SECRET,required"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"120"`
	BcryptCost        int    `env:"BCRYPT_COST" envDefault:"11"`
	CORSOrigin        string `env:"CORS_ORIGIN" envDefault:"http://localhost:4002"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DevOrTest indica si el servicio corre en un ambiente de desarrollo o test.
func (c *Config) DevOrTest() bool {
	return c.AppEnv == "dev" || c.AppEnv == "test"
}
