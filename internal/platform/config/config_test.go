package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvConfig_GetString_PrefixedKey(t *testing.T) {
	t.Setenv("MEDIA_DATABASE_URI", "postgres://example")
	ec := NewEnvConfig("MEDIA")
	assert.Equal(t, "postgres://example", ec.GetString("DATABASE_URI", "default"))
}

func TestEnvConfig_GetString_FallsBackToDefault(t *testing.T) {
	ec := NewEnvConfig("MEDIA")
	assert.Equal(t, "default", ec.GetString("UNSET_KEY", "default"))
}

func TestEnvConfig_MustGetString_PanicsWhenMissing(t *testing.T) {
	ec := NewEnvConfig("MEDIA")
	assert.Panics(t, func() {
		ec.MustGetString("DEFINITELY_UNSET_KEY")
	})
}

func TestEnvConfig_GetInt(t *testing.T) {
	t.Setenv("MEDIA_PORT", "9090")
	ec := NewEnvConfig("MEDIA")
	assert.Equal(t, 9090, ec.GetInt("PORT", 8080))
	assert.Equal(t, 8080, ec.GetInt("UNSET_PORT", 8080))
}

func TestEnvConfig_GetInt_IgnoresUnparsableValue(t *testing.T) {
	t.Setenv("MEDIA_PORT", "not-a-number")
	ec := NewEnvConfig("MEDIA")
	assert.Equal(t, 8080, ec.GetInt("PORT", 8080))
}

func TestEnvConfig_GetBool(t *testing.T) {
	t.Setenv("MEDIA_FEATURE", "true")
	ec := NewEnvConfig("MEDIA")
	assert.True(t, ec.GetBool("FEATURE", false))
	assert.False(t, ec.GetBool("UNSET_FEATURE", false))
}

func TestIsProduction(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	assert.True(t, IsProduction())

	t.Setenv("APP_ENV", "development")
	assert.False(t, IsProduction())
}

func TestEnvSecretProvider_GetSecret(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "shh")
	provider := NewEnvSecretProvider()

	v, err := provider.GetSecret(SecretJWTSigningKey)
	assert.NoError(t, err)
	assert.Equal(t, "shh", v)
}

func TestEnvSecretProvider_GetSecret_PanicsWhenMissing(t *testing.T) {
	provider := NewEnvSecretProvider()
	assert.Panics(t, func() {
		_, _ = provider.GetSecret(SecretKey("DEFINITELY_UNSET"))
	})
}

func TestLoadFromSecrets_ResolvesEveryKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv(string(SecretDatabaseURI), "postgres://prod")
	t.Setenv(string(SecretCacheURI), "redis://prod")
	t.Setenv(string(SecretBrokerURI), "amqp://prod")
	t.Setenv(string(SecretJWTSigningKey), "prod-key")
	t.Setenv(string(SecretJWTIssuer), "socialmesh")
	t.Setenv(string(SecretJWTAudience), "socialmesh-clients")
	t.Setenv(string(SecretPostServiceAddr), "post:9001")
	t.Setenv(string(SecretReplyServiceAddr), "reply:9002")
	t.Setenv(string(SecretUserProfileAddr), "profile:9003")
	t.Setenv(string(SecretRelationshipAddr), "relationship:9004")
	t.Setenv(string(SecretFeedServiceAddr), "feed:9005")
	t.Setenv(string(SecretTelemetryCollector), "otel:4318")
	t.Setenv(string(SecretObjectStoreBucket), "bucket")
	t.Setenv(string(SecretObjectStoreEndpoint), "http://minio:9000")

	mesh, err := Load(NewEnvSecretProvider())
	assert.NoError(t, err)
	assert.Equal(t, "postgres://prod", mesh.DatabaseURI)
	assert.Equal(t, "post:9001", mesh.PostServiceAddr)
	assert.Equal(t, 900, mesh.ObjectStoreURLTTL, "unset TTL secret falls back to the 900s default")
}
