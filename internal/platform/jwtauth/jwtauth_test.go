package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueThenValidate_RoundTrips(t *testing.T) {
	svc := NewService("super-secret-signing-key", "socialmesh", "socialmesh-clients")

	token, err := svc.Issue("user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestIssue_AssignsDistinctJTIPerToken(t *testing.T) {
	svc := NewService("super-secret-signing-key", "socialmesh", "socialmesh-clients")

	tokenA, err := svc.Issue("user-1", time.Hour)
	require.NoError(t, err)
	tokenB, err := svc.Issue("user-1", time.Hour)
	require.NoError(t, err)

	claimsA, err := svc.Validate(context.Background(), tokenA)
	require.NoError(t, err)
	claimsB, err := svc.Validate(context.Background(), tokenB)
	require.NoError(t, err)

	assert.NotEqual(t, claimsA.ID, claimsB.ID)
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	svc := NewService("super-secret-signing-key", "socialmesh", "socialmesh-clients")

	token, err := svc.Issue("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), token)
	assert.Error(t, err)
}

func TestValidate_RejectsWrongSigningKey(t *testing.T) {
	issuer := NewService("key-a", "socialmesh", "socialmesh-clients")
	verifier := NewService("key-b", "socialmesh", "socialmesh-clients")

	token, err := issuer.Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	assert.Error(t, err)
}

func TestValidate_RejectsWrongAudience(t *testing.T) {
	issuer := NewService("super-secret-signing-key", "socialmesh", "audience-a")
	verifier := NewService("super-secret-signing-key", "socialmesh", "audience-b")

	token, err := issuer.Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	assert.Error(t, err)
}
