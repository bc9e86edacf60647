package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartsales365/admin-console/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("SMARTSALES_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("FOLDER", "")
	t.Setenv("SESSION_FILE", "")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	c := config.FromFile(config.FileConfig{})
	require.Equal(t, "http://localhost:8000/api", c.GetAPIBaseURL())
	require.Equal(t, 10*time.Second, c.GetAPITimeout())
	require.Equal(t, "127.0.0.1:3000", c.GetPort())
	require.Empty(t, c.GetAllowedOrigins())
	require.Equal(t, 3, c.GetAPIRetryAttempts())
	require.Equal(t, config.SessionStoreFile, c.GetSessionStore())
	require.Equal(t, filepath.Join("./data", "session.json"), c.GetSessionFile())
	require.Empty(t, c.GetLogFile())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SMARTSALES_API_URL", "https://api.example.com/api")
	t.Setenv("PORT", ":9000")

	c := config.FromFile(config.FileConfig{
		Port: "4000",
		API:  config.APIFileConfig{BaseURL: "http://file.example.com/api"},
	})
	require.Equal(t, "https://api.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, ":9000", c.GetPort())
}

func TestListenAddress(t *testing.T) {
	tests := []struct {
		port string
		want string
	}{
		{"8080", "127.0.0.1:8080"},
		{":8080", ":8080"},
		{"0.0.0.0:8080", "0.0.0.0:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			require.Equal(t, tt.want, config.FromFile(config.FileConfig{}).GetPort())
		})
	}
}

func TestAllowedOriginsFromEnvironment(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, HTTPS://B.example.com/")

	origins := config.FromFile(config.FileConfig{AllowedOrigins: []string{"https://file.example.com"}}).GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://file.example.com"))
	require.Equal(t, "https://a.example.com, https://b.example.com", origins.String())
}

func TestLegacyAPIVariable(t *testing.T) {
	t.Setenv("SMARTSALES_API_URL", "")
	t.Setenv("VITE_API_URL", "http://legacy:8000/api")

	c := config.FromFile(config.FileConfig{})
	require.Equal(t, "http://legacy:8000/api", c.GetAPIBaseURL())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SMARTSALES_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SESSION_FILE", "")
	t.Setenv("FOLDER", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	path := filepath.Join(t.TempDir(), "console.yaml")
	content := `
port: "8081"
data_folder: /var/lib/console
log_file: /var/log/console/console.log
allowed_origins:
  - https://admin.example.com/
api:
  base_url: http://backend:8000/api
  retry_attempts: 5
session:
  store: memory
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	file, err := config.LoadFile(path)
	require.NoError(t, err)

	c := config.FromFile(file)
	require.Equal(t, "http://backend:8000/api", c.GetAPIBaseURL())
	require.Equal(t, 5, c.GetAPIRetryAttempts())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	require.Equal(t, filepath.Join("/var/lib/console", "session.json"), c.GetSessionFile())
	require.Equal(t, "/var/log/console/console.log", c.GetLogFile())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://admin.example.com"))
}

func TestLoadFileErrors(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	file, err := config.LoadFile("")
	require.NoError(t, err)
	require.Equal(t, config.FileConfig{}, file)
}
