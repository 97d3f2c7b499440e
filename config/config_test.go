package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-port", "9000", "-token-secret", "s3cret", "-token-ttl", "60", "-db-url", "x.sqlite",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "http://localhost:9000", cfg.Url())
	assert.Equal(t, time.Minute, cfg.TokenTTL)
	assert.Equal(t, "x.sqlite", cfg.DBUrl)
	assert.False(t, cfg.Debug)
}

func TestParseFromEnvironment(t *testing.T) {
	t.Setenv("SURVEY_TOKEN_SECRET", "from-env")
	t.Setenv("SURVEY_PORT", "7000")
	t.Setenv("SURVEY_DEBUG", "true")

	cfg, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TokenSecret)
	assert.Equal(t, "0.0.0.0:7000", cfg.Addr)
	assert.True(t, cfg.Debug)
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("SURVEY_TOKEN_SECRET", "")
	_, err := Parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.EqualError(t, err, "missing parameter -token-secret")
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("SURVEY_TEST_INT", "nope")
	assert.Equal(t, 3, EnvInt("SURVEY_TEST_INT", 3))
	assert.Equal(t, "def", Env("SURVEY_TEST_UNSET", "def"))
	assert.True(t, EnvBool("SURVEY_TEST_UNSET", true))
}
