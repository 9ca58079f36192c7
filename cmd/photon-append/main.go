// Command photon-append uploads messages from files or mbox archives to an IMAP mailbox.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/photon"
	"github.com/ProtonMail/photon/async"
	"github.com/ProtonMail/photon/imap"
	"github.com/emersion/go-mbox"
	"github.com/emersion/go-sasl"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.WithError(err).Fatal("Append failed")
	}
}

func run(args []string) error {
	configPath, args := extractConfigPath(args)

	config, err := ReadConfig(configPath)
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("photon-append", pflag.ContinueOnError)
	flagSet.String("config", configPath, "TOML config file")
	config.addFlags(flagSet)

	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: photon-append [options] file0|mbox0 ... fileN|mboxN\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	if err := config.validate(); err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return errors.New("no input files")
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)

	if config.Profile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(config.Profile), profile.Quiet).Stop()
	}

	messages, err := readMessages(flagSet.Args())
	if err != nil {
		return err
	}

	return upload(context.Background(), config, messages)
}

// extractConfigPath finds --config before the remaining flags are parsed so they can override its values.
func extractConfigPath(args []string) (string, []string) {
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			return args[i+1], append(append([]string{}, args[:i]...), args[i+2:]...)

		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config="), append(append([]string{}, args[:i]...), args[i+1:]...)
		}
	}

	return "", args
}

func readMessages(paths []string) ([][]byte, error) {
	var messages [][]byte

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		var read [][]byte

		if strings.EqualFold(filepath.Ext(path), ".mbox") {
			read, err = readMBox(file)
		} else {
			var literal []byte

			literal, err = io.ReadAll(file)
			read = [][]byte{literal}
		}

		if closeErr := file.Close(); closeErr != nil {
			logrus.WithError(closeErr).WithField("path", path).Warn("Failed to close input")
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read %v: %w", path, err)
		}

		messages = append(messages, read...)
	}

	return messages, nil
}

func readMBox(r io.Reader) ([][]byte, error) {
	mr := mbox.NewReader(r)

	var messages [][]byte

	for {
		msg, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			return messages, nil
		} else if err != nil {
			return nil, err
		}

		literal, err := io.ReadAll(msg)
		if err != nil {
			return nil, err
		}

		messages = append(messages, literal)
	}
}

func dial(config *Config) (net.Conn, error) {
	if config.TLS {
		host, _, err := net.SplitHostPort(config.Server)
		if err != nil {
			return nil, err
		}

		return tls.Dial("tcp", config.Server, &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	}

	return net.Dial("tcp", config.Server)
}

func upload(ctx context.Context, config *Config, messages [][]byte) error {
	conn, err := dial(config)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	options := []photon.Option{photon.WithPanicHandler(async.LogPanicHandler{})}

	if config.WireLog {
		options = append(options, photon.WithLogger(os.Stderr, os.Stderr))
	}

	client, err := photon.New(conn, options...)
	if err != nil {
		return err
	}

	defer func() {
		if err := client.Logout(ctx); err != nil && !photon.IsClosed(err) {
			logrus.WithError(err).Warn("Failed to log out")
		}
	}()

	if config.Auth == "PLAIN" {
		err = client.Authenticate(ctx, sasl.NewPlainClient("", config.User, config.Password))
	} else {
		err = client.Login(ctx, config.User, config.Password)
	}

	if err != nil {
		return fmt.Errorf("failed to login to server: %w", err)
	}

	batch := config.Batch

	if batch > 1 && !client.HasCapability(imap.MultiAppend) {
		if _, err := client.RefreshCapabilities(ctx); err != nil {
			return err
		}

		if !client.HasCapability(imap.MultiAppend) {
			logrus.Warn("Server does not support MULTIAPPEND, appending one message at a time")
			batch = 1
		}
	}

	return appendBatches(ctx, client, config, messages, batch)
}

func appendBatches(ctx context.Context, client *photon.Client, config *Config, messages [][]byte, batch int) error {
	for start := 0; start < len(messages); start += batch {
		end := start + batch
		if end > len(messages) {
			end = len(messages)
		}

		var appendMessages []photon.AppendMessage

		for _, literal := range messages[start:end] {
			appendMessages = append(appendMessages, photon.AppendMessage{
				Flags:    config.Flags,
				DateTime: time.Now(),
				Literal:  literal,
			})
		}

		res, err := client.Append(ctx, config.Mailbox, appendMessages...)
		if err != nil {
			return fmt.Errorf("failed to append messages %v to %v: %w", start, end, err)
		}

		logrus.WithField("count", len(appendMessages)).WithField("code", res.Tagged.Code).Info("Appended messages")
	}

	return nil
}
