package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("MONGO_URI", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASS", "")

	c, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "5000", c.Port)
	require.Equal(t, "InnovateX", c.MongoDB)
	require.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	require.Equal(t, time.Hour, c.TokenTTL)
	require.Equal(t, "stripe", c.PaymentProvider)
	require.False(t, c.VoteDedup)
}

func TestLoad_AtlasURIFromCredentials(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("MONGO_URI", "")
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_PASS", "p@ss")

	c, err := config.Load()
	require.NoError(t, err)
	require.Contains(t, c.MongoURI, "mongodb+srv://admin:p%40ss@")
}

func TestLoad_RejectsMissingSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("JWT_ALG", "HS256")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("PAYMENT_PROVIDER", "paypal")

	_, err := config.Load()
	require.Error(t, err)
}
