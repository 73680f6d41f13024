package config

// SecretKey enumerates the named secrets every service resolves in
// production mode from a key-vault collaborator.
type SecretKey string

const (
	SecretDatabaseURI         SecretKey = "DATABASE_URI"
	SecretCacheURI            SecretKey = "CACHE_URI"
	SecretBrokerURI           SecretKey = "BROKER_URI"
	SecretJWTSigningKey       SecretKey = "JWT_SIGNING_KEY"
	SecretJWTIssuer           SecretKey = "JWT_ISSUER"
	SecretJWTAudience         SecretKey = "JWT_AUDIENCE"
	SecretPostServiceAddr     SecretKey = "POST_SERVICE_ADDR"
	SecretReplyServiceAddr    SecretKey = "REPLY_SERVICE_ADDR"
	SecretUserProfileAddr     SecretKey = "USER_PROFILE_SERVICE_ADDR"
	SecretRelationshipAddr    SecretKey = "RELATIONSHIP_SERVICE_ADDR"
	SecretFeedServiceAddr     SecretKey = "FEED_SERVICE_ADDR"
	SecretTelemetryCollector  SecretKey = "TELEMETRY_COLLECTOR_ADDR"
	SecretObjectStoreBucket   SecretKey = "OBJECT_STORE_BUCKET"
	SecretObjectStoreURLTTL   SecretKey = "OBJECT_STORE_URL_TTL_SECONDS"
	SecretObjectStoreEndpoint SecretKey = "OBJECT_STORE_ENDPOINT"
)

// SecretProvider is the external key-vault collaborator. Production config
// resolves every SecretKey through it; development config never uses it.
type SecretProvider interface {
	GetSecret(key SecretKey) (string, error)
}

// EnvSecretProvider satisfies SecretProvider by reading the same-named
// environment variable. It is the default used when no vault client is
// wired in, and is sufficient for local/staging production-mode runs.
type EnvSecretProvider struct {
	env *EnvConfig
}

// NewEnvSecretProvider builds a SecretProvider backed by the process
// environment.
func NewEnvSecretProvider() *EnvSecretProvider {
	return &EnvSecretProvider{env: NewEnvConfig("")}
}

func (p *EnvSecretProvider) GetSecret(key SecretKey) (string, error) {
	v := p.env.MustGetString(string(key))
	return v, nil
}
