package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoad_DefaultsAreValid(t *testing.T) {
	resetViper(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", c.LogBackend)
	assert.Equal(t, 10, c.StrayCount)
	assert.Equal(t, 64, c.TrimBatch)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	resetViper(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-backend=carrier-pigeon"}))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveStrayCount(t *testing.T) {
	resetViper(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--stray-count=0"}))

	_, err := Load()
	assert.Error(t, err)
}
