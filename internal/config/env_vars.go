package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	logLevelEnvVar = "LOG_LEVEL"
	logFileEnvVar  = "LOG_FILE"
	envEnvVar      = "ENV"
	configFileVar  = "CONSOLE_CONFIG"

	defaultHost = "127.0.0.1"
)

type EnvVars struct {
	file FileConfig
}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address. A bare port binds to the loopback
// interface only; ":3000" or "0.0.0.0:3000" has to be asked for.
func (e EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, orDefault(e.file.Port, "3000"))
	if !strings.Contains(port, ":") {
		port = fmt.Sprintf("%s:%s", defaultHost, port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, orDefault(e.file.AppName, "SmartSales365"))
}

func (e EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, orDefault(e.file.DataFolder, "./data"))
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, orDefault(e.file.LogLevel, "info"))
}

// GetLogFile names a rotated log file written next to the console output.
// Empty means no file.
func (e EnvVars) GetLogFile() string {
	return GetEnv(logFileEnvVar, e.file.LogFile)
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envEnvVar, orDefault(e.file.Env, "DEV"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
