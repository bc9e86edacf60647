package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	ServerConfig
	APIConfig
	SessionConfig
}

// ServerConfig is what the console HTTP server reads.
type ServerConfig interface {
	EnvConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetLogFile() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Session
}

// New builds the console configuration. Values come from, in order of
// precedence: environment variables, a .env file in the working directory,
// the YAML file named by CONSOLE_CONFIG, and built-in defaults.
func New() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	file, err := LoadFile(GetEnv(configFileVar, ""))
	if err != nil {
		log.Warn().Err(err).Msg("ignoring console config file")
		file = FileConfig{}
	}
	return FromFile(file)
}

// FromFile builds a Config whose defaults come from file. Environment
// variables still take precedence.
func FromFile(file FileConfig) Config {
	return mainConfig{
		EnvVars: EnvVars{file: file},
		Cors:    Cors{file: file.AllowedOrigins},
		API:     API{file: file.API},
		Session: Session{file: file.Session, folder: file.DataFolder},
	}
}
