package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := NewViper()
	v.Set("home", t.TempDir())

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "tcp://127.0.0.1:26658", cfg.ABCI.Addr)
	require.Equal(t, "socket", cfg.ABCI.Transport)
	require.Equal(t, "goleveldb", cfg.DB.Backend)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0o755))
	require.NoError(t, os.WriteFile(ConfigFile(home), []byte(`
[http]
addr = "0.0.0.0:9000"

[log]
format = "json"
`), 0o644))

	t.Setenv("SPELLBLOCK_LOG_LEVEL", "spellblock/game:debug,*:error")

	v := NewViper()
	v.Set("home", home)
	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "spellblock/game:debug,*:error", cfg.Log.Level)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	v := NewViper()
	v.Set("home", t.TempDir())
	v.Set("abci.transport", "carrier-pigeon")
	_, err := Load(v)
	require.ErrorContains(t, err, "abci.transport")

	v = NewViper()
	v.Set("home", t.TempDir())
	v.Set("log.level", "loud")
	_, err = Load(v)
	require.ErrorContains(t, err, "log.level")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.With("module", "spellblock/test").Info("hello", "round", 3)
	logger.Debug("hidden")
	require.Contains(t, buf.String(), `"message":"hello"`)
	require.Contains(t, buf.String(), `"round":3`)
	require.NotContains(t, buf.String(), "hidden")
}
