package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port    int           `koanf:"port"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"server"`
	Store struct {
		Driver string `koanf:"driver"`
	} `koanf:"store"`
}

func (c *testConfig) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("port is required")
	}
	return nil
}

const yamlConfig = `
server:
  port: 8080
  timeout: 5s
store:
  driver: memory
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_Load_Precedence(t *testing.T) {
	testCases := []struct {
		name           string
		envFile        string
		env            map[string]string
		expectedPort   int
		expectedDriver string
	}{
		{
			name:           "yaml only",
			expectedPort:   8080,
			expectedDriver: "memory",
		},
		{
			name:           "env file overrides yaml",
			envFile:        "PRODUCT_STORE_DRIVER=postgres\nOTHER_STORE_DRIVER=ignored\n",
			expectedPort:   8080,
			expectedDriver: "postgres",
		},
		{
			name:           "environment overrides env file",
			envFile:        "PRODUCT_SERVER_PORT=9000\n",
			env:            map[string]string{"PRODUCT_SERVER_PORT": "9090"},
			expectedPort:   9090,
			expectedDriver: "memory",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			dir := t.TempDir()
			writeFile(t, dir, "config.yaml", yamlConfig)
			if tc.envFile != "" {
				writeFile(t, dir, ".env", tc.envFile)
			}
			t.Chdir(dir)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			// when
			cfg, err := Load[*testConfig]("product")
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPort, cfg.Server.Port)
			assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
			assert.Equal(t, tc.expectedDriver, cfg.Store.Driver)
		})
	}
}

func Test_Load_ConfigFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", yamlConfig)
	t.Chdir(t.TempDir())
	t.Setenv("PRODUCT_CONFIG_FILE", path)

	cfg, err := Load[*testConfig]("product")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func Test_Load_ValidationError(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load[*testConfig]("product")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
