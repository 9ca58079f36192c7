package main

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/photon"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`
Server = "imap.example.com:993"
TLS = true
User = "user@example.com"
Mailbox = "Archive"
Flags = ['\Seen']
Batch = 10
`), 0o600))

	config, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "imap.example.com:993", config.Server)
	require.True(t, config.TLS)
	require.Equal(t, "Archive", config.Mailbox)
	require.Equal(t, []string{`\Seen`}, config.Flags)
	require.Equal(t, 10, config.Batch)
	require.Equal(t, "LOGIN", config.Auth)
	require.NoError(t, config.validate())
}

func TestReadConfig_Missing(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	config := defaultConfig()
	require.Error(t, config.validate())

	config.User = "user"
	require.NoError(t, config.validate())

	config.Auth = "XOAUTH2"
	require.Error(t, config.validate())

	config.Auth = "PLAIN"
	config.Batch = 0
	require.Error(t, config.validate())
}

func TestExtractConfigPath(t *testing.T) {
	path, args := extractConfigPath([]string{"--user", "u", "--config", "c.toml", "a.eml"})
	require.Equal(t, "c.toml", path)
	require.Equal(t, []string{"--user", "u", "a.eml"}, args)

	path, args = extractConfigPath([]string{"--config=c.toml", "a.eml"})
	require.Equal(t, "c.toml", path)
	require.Equal(t, []string{"a.eml"}, args)

	path, args = extractConfigPath([]string{"a.eml"})
	require.Empty(t, path)
	require.Equal(t, []string{"a.eml"}, args)
}

func TestReadMessages(t *testing.T) {
	dir := t.TempDir()

	mboxPath := filepath.Join(dir, "archive.mbox")
	emlPath := filepath.Join(dir, "single.eml")

	require.NoError(t, os.WriteFile(mboxPath, []byte(
		"From a@example.com Thu Jan  1 00:00:00 1970\nSubject: one\n\nfirst\n\n"+
			"From b@example.com Thu Jan  1 00:00:00 1970\nSubject: two\n\nsecond\n",
	), 0o600))

	require.NoError(t, os.WriteFile(emlPath, []byte("Subject: three\r\n\r\nthird\r\n"), 0o600))

	messages, err := readMessages([]string{mboxPath, emlPath})
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Contains(t, string(messages[0]), "Subject: one")
	require.Contains(t, string(messages[1]), "Subject: two")
	require.Equal(t, "Subject: three\r\n\r\nthird\r\n", string(messages[2]))
}

func TestAppendBatches(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	go func() {
		_, _ = serverConn.Write([]byte("* OK [CAPABILITY IMAP4rev1 MULTIAPPEND] ready\r\n"))
	}()

	client, err := photon.New(clientConn)
	require.NoError(t, err)

	defer client.Close()

	errCh := make(chan error, 1)

	go func() {
		config := defaultConfig()
		config.Mailbox = "Archive"

		errCh <- appendBatches(context.Background(), client, config, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, 2)
	}()

	r := bufio.NewReader(serverConn)

	expect := func(prefix string) {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(line, prefix), line)
	}

	send := func(line string) {
		_, err := serverConn.Write([]byte(line + "\r\n"))
		require.NoError(t, err)
	}

	expect(`A1 APPEND Archive "`)
	send("+ go")
	expect(`a "`)
	send("+ go")
	expect("b\r\n")
	send("A1 OK done")

	expect(`A2 APPEND Archive "`)
	send("+ go")
	expect("c\r\n")
	send("A2 OK done")

	require.NoError(t, <-errCh)
}
