package service

import (
	"testing"

	"github.com/commonground/cg/internal/forumtest"
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/auth"
	"github.com/commonground/cg/pkg/config"
	"github.com/commonground/cg/pkg/credentials"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_LoginPrompts(t *testing.T) {
	s, buf := setup(t)
	store := auth.NewStore()

	svc := NewAuthService(store, piped("ada@example.com\n"+forumtest.DefaultPassword+"\n"))
	require.NoError(t, svc.Login(ctx, "", ""))

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "ada", store.Actor().Handle)
	assert.Contains(t, buf.String(), "✓ Signed in as @ada")
	assert.Equal(t, 1, s.Hits("POST /auth/login"))
}

func TestAuthService_LoginBadPassword(t *testing.T) {
	_, buf := setup(t)
	store := auth.NewStore()

	err := NewAuthService(store, piped("")).Login(ctx, "ada@example.com", "wrong-password")
	requireCLIError(t, err, cliErrors.ErrorTypeSessionExpired, "Invalid email or password.")
	assert.False(t, store.IsAuthenticated())
	assert.NotContains(t, buf.String(), "Signed in")
}

func TestAuthService_LoginEmptyEmail(t *testing.T) {
	s, _ := setup(t)

	err := NewAuthService(auth.NewStore(), piped("\n")).Login(ctx, "", "")
	requireCLIError(t, err, cliErrors.ErrorTypeValidation, "")
	assert.Zero(t, s.Hits("POST /auth/login"))
}

func TestAuthService_LoginAgainDeclined(t *testing.T) {
	s, buf := setup(t)
	store := auth.NewStore()
	require.NoError(t, store.Login(ctx, "ada@example.com", forumtest.DefaultPassword))

	require.NoError(t, NewAuthService(store, scripted("n\n")).Login(ctx, "mod@example.com", forumtest.DefaultPassword))

	assert.Contains(t, buf.String(), "Already signed in as @ada")
	assert.Equal(t, "ada", store.Actor().Handle)
	assert.Equal(t, 1, s.Hits("POST /auth/login"))
}

func TestAuthService_LoginAgent(t *testing.T) {
	s, buf := setup(t)
	store := auth.NewStore()

	require.NoError(t, NewAuthService(store, piped("")).LoginAgent(ctx, s.AgentKey("scribe")))

	assert.Equal(t, "agent", store.Actor().ActorType)
	assert.Contains(t, buf.String(), "✓ Signed in as agent @scribe")
}

func TestAuthService_Register(t *testing.T) {
	_, buf := setup(t)
	store := auth.NewStore()

	svc := NewAuthService(store, piped("grace@example.com\nGrace.Hopper\nGrace Hopper\ncobol-forever\n"))
	require.NoError(t, svc.Register(ctx, api.RegisterRequest{}))

	assert.Equal(t, "gracehopper", store.Actor().Handle)
	assert.Contains(t, buf.String(), "✓ Welcome to Common Ground, @gracehopper")
}

func TestAuthService_RegisterTakenHandle(t *testing.T) {
	setup(t)

	err := NewAuthService(auth.NewStore(), piped("")).Register(ctx, api.RegisterRequest{
		Email: "other@example.com", Handle: "ada", DisplayName: "Another Ada", Password: "long-enough",
	})
	requireCLIError(t, err, cliErrors.ErrorTypeConflict, "Handle already taken.")
}

func TestAuthService_MeAndLogout(t *testing.T) {
	_, buf := setup(t)
	store := auth.NewStore()
	require.NoError(t, store.Login(ctx, "mod@example.com", forumtest.DefaultPassword))
	svc := NewAuthService(store, piped(""))

	require.NoError(t, svc.Me())
	assert.Contains(t, buf.String(), "Handle: @mod")
	assert.Contains(t, buf.String(), "Role: moderator")

	require.NoError(t, svc.Logout(ctx))
	assert.Contains(t, buf.String(), "✓ Signed out")
	assert.False(t, store.IsAuthenticated())

	creds, err := credentials.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, svc.Me())
	assert.Contains(t, buf.String(), "Not signed in.")
}

func TestAuthService_MeSignedOutJSON(t *testing.T) {
	_, buf := setup(t)
	config.Set("output.format", "json")

	require.NoError(t, NewAuthService(auth.NewStore(), piped("")).Me())
	assert.JSONEq(t, `{"authenticated": false}`, buf.String())
}

func TestAuthService_Refresh(t *testing.T) {
	s, buf := setup(t)
	store := auth.NewStore()
	require.NoError(t, store.Login(ctx, "ada@example.com", forumtest.DefaultPassword))

	require.NoError(t, NewAuthService(store, piped("")).Refresh(ctx))
	assert.Contains(t, buf.String(), "✓ Session refreshed")
	assert.Equal(t, 1, s.Hits("POST /auth/refresh"))
	assert.True(t, store.IsAuthenticated())
}
