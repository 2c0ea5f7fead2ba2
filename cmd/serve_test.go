package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seasworth/seasworthai/internal/config"
)

func parseServeFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "serve"}
	addServeFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyServeFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		start func(*config.Config)
		check func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags keeps config",
			start: func(c *config.Config) { c.Debug, c.Verbose, c.Port = true, true, 8080 },
			check: func(t *testing.T, c *config.Config) {
				assert.True(t, c.Debug)
				assert.True(t, c.Verbose)
				assert.Equal(t, 8080, c.Port)
			},
		},
		{
			name:  "explicit false turns debug and verbose off",
			args:  []string{"--debug=false", "--verbose=false"},
			start: func(c *config.Config) { c.Debug, c.Verbose = true, true },
			check: func(t *testing.T, c *config.Config) {
				assert.False(t, c.Debug)
				assert.False(t, c.Verbose)
			},
		},
		{
			name: "explicit values override",
			args: []string{"-d", "--port", "9000", "--host", "127.0.0.1", "--log-format", "json", "--static-dir", "web"},
			check: func(t *testing.T, c *config.Config) {
				assert.True(t, c.Debug)
				assert.Equal(t, 9000, c.Port)
				assert.Equal(t, "127.0.0.1", c.Host)
				assert.Equal(t, "json", c.LogFormat)
				assert.Equal(t, "web", c.StaticDir)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			if tt.start != nil {
				tt.start(&cfg)
			}
			applyServeFlags(parseServeFlags(t, tt.args...), &cfg)
			tt.check(t, &cfg)
		})
	}
}
