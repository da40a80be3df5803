package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})

	for _, name := range []string{"migrate", "export", "send-test", "verify-smtp"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestExportFlags(t *testing.T) {
	cmd := newExportCmd()
	for _, flag := range []string{"output", "search", "department", "experience"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestSendTestRequiresRecipient(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"send-test"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestSendTestDefaultsToRegistrationTemplate(t *testing.T) {
	cmd := newSendTestCmd()
	assert.Equal(t, "registration-confirmation", cmd.Flags().Lookup("template").DefValue)

	require.NoError(t, cmd.Flags().Parse([]string{"--set", "teamName=Null Pointers", "--set", "college=UCET"}))
	got, err := cmd.Flags().GetStringToString("set")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"teamName": "Null Pointers", "college": "UCET"}, got)
}

func TestVerifySMTPIncompleteEnvironment(t *testing.T) {
	t.Setenv("EMAIL_USER", "")
	t.Setenv("EMAIL_PASSWORD", "")

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs([]string{"verify-smtp"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestOutputWriter(t *testing.T) {
	var stdout bytes.Buffer
	w, closeFn, err := outputWriter(&stdout, "")
	require.NoError(t, err)
	assert.Same(t, &stdout, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "out.csv")
	w, closeFn, err = outputWriter(&stdout, path)
	require.NoError(t, err)
	_, err = w.Write([]byte("a,b\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	_, _, err = outputWriter(&stdout, filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}
