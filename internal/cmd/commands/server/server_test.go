package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/docgate/internal/config"
)

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		logLevel  string
		wantAddr  string
		wantLevel string
		wantError string
	}{
		{name: "no overrides", wantAddr: ":8000", wantLevel: "INFO"},
		{name: "addr", addr: "127.0.0.1:9090", wantAddr: "127.0.0.1:9090", wantLevel: "INFO"},
		{name: "port only", addr: ":9091", wantAddr: ":9091", wantLevel: "INFO"},
		{name: "log level", logLevel: "DEBUG", wantAddr: ":8000", wantLevel: "DEBUG"},
		{name: "missing port", addr: "localhost", wantError: "invalid -addr"},
		{name: "bad port", addr: "localhost:http", wantError: "invalid -addr port"},
		{name: "port out of range", addr: ":70000", wantError: "server port"},
		{name: "bad log level", logLevel: "LOUD", wantError: "invalid log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()

			err := applyFlags(cfg, tt.addr, tt.logLevel)
			if tt.wantError != "" {
				assert.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, cfg.Address())
			assert.Equal(t, tt.wantLevel, cfg.LogLevel)
		})
	}
}

func TestHelpListsFlags(t *testing.T) {
	c := &Command{}
	help := c.Help()
	for _, flag := range []string{"-config", "-addr", "-log-level"} {
		assert.Contains(t, help, flag)
	}
}
