package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentModeFallsBackToDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	mesh, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", mesh.CacheURI)
	assert.Equal(t, "localhost:9001", mesh.PostServiceAddr)
	assert.Equal(t, 900, mesh.ObjectStoreURLTTL)
}
