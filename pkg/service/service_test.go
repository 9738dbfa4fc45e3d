package service

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/commonground/cg/internal/forumtest"
	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/client"
	"github.com/commonground/cg/pkg/config"
	cliErrors "github.com/commonground/cg/pkg/errors"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets a background view write while the test reads
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func setup(t *testing.T) (*forumtest.Server, *syncBuffer) {
	t.Helper()
	s := forumtest.Start(t)
	config.Set("output.format", "text")
	color.NoColor = true

	buf := &syncBuffer{}
	t.Cleanup(output.SetWriter(buf))
	return s, buf
}

func signIn(s *forumtest.Server, handle string) {
	client.SetAuthToken(s.Token(handle))
}

// scripted answers prompts from input as if typed at a terminal
func scripted(input string) *prompter.Prompter {
	return prompter.New(strings.NewReader(input), io.Discard).SetInteractive(true)
}

// piped is a non-interactive prompter, like stdin redirected from a file
func piped(input string) *prompter.Prompter {
	return prompter.New(strings.NewReader(input), io.Discard)
}

type fakeSession struct {
	actor *api.ActorProfile
}

func (f fakeSession) IsAuthenticated() bool     { return f.actor != nil }
func (f fakeSession) Actor() *api.ActorProfile { return f.actor }

func signedIn(handle string) fakeSession {
	return fakeSession{actor: &api.ActorProfile{Actor: api.Actor{Handle: handle}}}
}

func requireCLIError(t *testing.T, err error, typ cliErrors.ErrorType, msg string) {
	t.Helper()
	require.Error(t, err)
	cliErr := cliErrors.CategorizeError(err)
	assert.Equal(t, typ, cliErr.Type)
	if msg != "" {
		assert.Equal(t, msg, cliErr.Message)
	}
}
