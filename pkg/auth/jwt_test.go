package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvisit/visitflow/internal/config"
)

func testManager() *TokenManager {
	return NewTokenManager(config.JWTConfig{
		Secret: "test-secret-at-least-32-characters!!",
		Issuer: "visitflow-test",
	})
}

func TestIssueAndParseActor(t *testing.T) {
	m := testManager()
	actor := &Actor{UserID: uuid.New(), Role: RoleCoordinator}

	token, err := m.Issue(actor, time.Hour)
	require.NoError(t, err)

	parsed, err := m.ParseActor(token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, parsed.UserID)
	assert.Equal(t, RoleCoordinator, parsed.Role)
}

func TestParseActorExpired(t *testing.T) {
	m := testManager()

	token, err := m.Issue(&Actor{UserID: uuid.New(), Role: RoleAdmin}, -time.Hour)
	require.NoError(t, err)

	_, err = m.ParseActor(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseActorWrongSecret(t *testing.T) {
	token, err := testManager().Issue(&Actor{UserID: uuid.New(), Role: RolePatient}, time.Hour)
	require.NoError(t, err)

	m := NewTokenManager(config.JWTConfig{Secret: "a-completely-different-signing-key!!", Issuer: "visitflow-test"})
	_, err = m.ParseActor(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseActorWrongIssuer(t *testing.T) {
	other := NewTokenManager(config.JWTConfig{
		Secret: "test-secret-at-least-32-characters!!",
		Issuer: "someone-else",
	})
	token, err := other.Issue(&Actor{UserID: uuid.New(), Role: RoleTherapist}, time.Hour)
	require.NoError(t, err)

	_, err = testManager().ParseActor(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestActorPrivileged(t *testing.T) {
	assert.True(t, (&Actor{Role: RoleSuperAdmin}).Privileged())
	assert.True(t, (&Actor{Role: RoleAdmin}).Privileged())
	assert.False(t, (&Actor{Role: RoleCoordinator}).Privileged())
	assert.False(t, (&Actor{Role: RoleTherapist}).Privileged())

	var system *Actor
	assert.False(t, system.Privileged())
}
