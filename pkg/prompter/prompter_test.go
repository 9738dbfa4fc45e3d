package prompter

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(strings.NewReader(input), out), out
}

func TestString(t *testing.T) {
	p, out := newTest("  ada@example.com  \n")

	got, err := p.String("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got)
	assert.Equal(t, "Email: ", out.String())
	assert.False(t, p.IsInteractive())
}

func TestString_LastLineWithoutNewline(t *testing.T) {
	p, _ := newTest("general")
	got, err := p.String("Community: ")
	require.NoError(t, err)
	assert.Equal(t, "general", got)

	_, err = p.String("again: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPassword_NonTerminalReadsLine(t *testing.T) {
	p, _ := newTest(" secret pass \n")
	got, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, " secret pass ", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, tt := range tests {
		p, _ := newTest(tt.input)
		got, err := p.Confirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestSelect(t *testing.T) {
	p, out := newTest("2\n")
	idx, err := p.Select("Reason:", []string{"spam", "harassment"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "1) spam\n2) harassment\n")

	for _, bad := range []string{"0\n", "3\n", "x\n"} {
		p, _ := newTest(bad)
		_, err := p.Select("Reason:", []string{"spam", "harassment"})
		assert.ErrorIs(t, err, ErrInvalidSelection, bad)
	}
}

func TestMultiline(t *testing.T) {
	p, _ := newTest("first\nsecond\n\nignored\n")
	got, err := p.Multiline("Body")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)

	p, _ = newTest("only line")
	got, err = p.Multiline("Body")
	require.NoError(t, err)
	assert.Equal(t, "only line", got)
}

func TestReadAll(t *testing.T) {
	p, _ := newTest("piped\nbody\n")
	got, err := p.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "piped\nbody", got)
}

func TestSetInteractive_PasswordStillPlain(t *testing.T) {
	p, _ := newTest("hunter2\n")
	p.SetInteractive(true)
	assert.True(t, p.IsInteractive())

	got, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}
