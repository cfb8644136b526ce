package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EnginePathSources(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "positional argument", args: []string{"engines/hbtf.hcl"}},
		{name: "long flag", args: []string{"-engine", "engines/hbtf.hcl"}},
		{name: "shorthand flag", args: []string{"-e", "engines/hbtf.hcl"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			require.False(t, shouldExit)
			assert.Equal(t, "engines/hbtf.hcl", cfg.EnginePath)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, _, err := Parse([]string{"engine.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "bad log format", args: []string{"-log-format", "xml", "engine.hcl"}},
		{name: "bad log level", args: []string{"-log-level", "trace", "engine.hcl"}},
		{name: "unknown flag", args: []string{"-throttle", "engine.hcl"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParse_CaseInsensitiveLogOptions(t *testing.T) {
	cfg, _, err := Parse([]string{"-log-format", "TEXT", "-log-level", "DEBUG", "engine.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}
