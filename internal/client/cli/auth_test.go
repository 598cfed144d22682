package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/client/repositories/session"
	"github.com/dmitrijs2005/briefly/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPasswords answers successive password prompts with pws.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ *bufio.Reader, _ io.Writer, prompt string) ([]byte, error) {
		if len(pws) == 0 {
			return nil, errors.New("unexpected prompt: " + prompt)
		}
		pw := []byte(pws[0])
		pws = pws[1:]
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, "Ann\nLee\n\nann@example.org\n")
	stubPasswords(t, "Secret#123", "Secret#123")

	require.NoError(t, ta.Register(ctx))

	assert.Contains(t, ta.out.String(), "Account created.")
	assert.Equal(t, DecisionLogin, ta.decision())
	require.NoError(t, ta.session.Login(ctx, "ann@example.org", "Secret#123"))
}

func TestRegister_PasswordMismatch(t *testing.T) {
	ta := newTestApp(t, "Ann\nLee\n\nann@example.org\n")
	stubPasswords(t, "Secret#123", "Secret#124")

	err := ta.Register(context.Background())

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "confirmPassword", verr.Field)
	assert.Zero(t, ta.backend.Hits(http.MethodPost, "/user/create"))
}

func TestRegister_WeakPasswordNeverReachesBackend(t *testing.T) {
	ta := newTestApp(t, "Ann\nLee\n\nann@example.org\n")
	stubPasswords(t, "weak", "weak")

	err := ta.Register(context.Background())

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.Zero(t, ta.backend.Hits(http.MethodPost, "/user/create"))
}

func TestLogin_Success(t *testing.T) {
	ta := newTestApp(t, "bob@example.org\n")
	ta.backend.AddUser("bob@example.org", "Bob#12345", "Bob", "Builder")
	stubPasswords(t, "Bob#12345")

	require.NoError(t, ta.Login(context.Background()))

	got := ta.out.String()
	assert.Contains(t, got, "Welcome, Bob Builder!")
	assert.Contains(t, got, "No summaries yet.")
	assert.Equal(t, DecisionRender, ta.decision())
}

func TestLogin_PipedPassword(t *testing.T) {
	ta := newTestApp(t, "bob@example.org\nBob#12345\nlist\n")
	ta.backend.AddUser("bob@example.org", "Bob#12345", "Bob", "Builder")
	stubTerminal(t, false)

	require.NoError(t, ta.Login(context.Background()))

	assert.Equal(t, DecisionRender, ta.decision())
	rest, err := ta.reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "list\n", rest)
}

func TestLogin_MalformedEmailFailsLocally(t *testing.T) {
	ta := newTestApp(t, "bob\n")
	stubPasswords(t, "Bob#12345")

	err := ta.Login(context.Background())

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Zero(t, ta.backend.Hits(http.MethodPost, "/user/verify"))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, "bob@example.org\n")
	ta.backend.AddUser("bob@example.org", "Bob#12345", "Bob", "Builder")
	stubPasswords(t, "nope")

	err := ta.Login(ctx)

	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", services.HumanMessage(err))
	assert.Equal(t, services.StateUnknown, ta.session.State())
	assert.Equal(t, DecisionLoading, ta.decision())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, "")
	ta.login(t)

	require.NoError(t, ta.Logout(ctx))

	assert.Contains(t, ta.out.String(), "You are logged out")
	assert.Equal(t, DecisionLogin, ta.decision())
	_, err := session.NewSQLiteStorage(ta.db).Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestWhoami(t *testing.T) {
	ta := newTestApp(t, "")
	u := ta.login(t)

	require.NoError(t, ta.Whoami(context.Background()))

	got := ta.out.String()
	assert.Contains(t, got, "Email:   bob@example.org")
	assert.Contains(t, got, "User ID: "+u.ID.String())
	assert.Contains(t, got, "Session: valid until")
}

func TestWhoami_WithoutSession(t *testing.T) {
	ta := newTestApp(t, "")

	err := ta.Whoami(context.Background())

	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}
