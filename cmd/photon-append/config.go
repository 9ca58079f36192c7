package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

type Config struct {
	Server   string
	TLS      bool
	User     string
	Password string

	// Auth is either LOGIN or an AUTHENTICATE mechanism (only PLAIN is supported).
	Auth string

	Mailbox string
	Flags   []string

	// Batch is the number of messages sent per APPEND. Values above one need MULTIAPPEND.
	Batch int

	LogLevel string
	WireLog  bool
	Profile  string
}

func defaultConfig() *Config {
	return &Config{
		Server:   "127.0.0.1:1143",
		Auth:     "LOGIN",
		Mailbox:  "INBOX",
		Batch:    1,
		LogLevel: "info",
	}
}

// ReadConfig reads the TOML file at filename over the defaults. An empty filename yields the defaults.
func ReadConfig(filename string) (*Config, error) {
	config := defaultConfig()

	if filename == "" {
		return config, nil
	}

	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	return config, nil
}

// addFlags registers flags that override the config file. Only flags set on the command line apply.
func (config *Config) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&config.Server, "server", config.Server, "IMAP server address:port")
	flagSet.BoolVar(&config.TLS, "tls", config.TLS, "connect with implicit TLS")
	flagSet.StringVar(&config.User, "user", config.User, "IMAP user name")
	flagSet.StringVar(&config.Password, "password", config.Password, "IMAP user password")
	flagSet.StringVar(&config.Auth, "auth", config.Auth, "LOGIN or PLAIN")
	flagSet.StringVar(&config.Mailbox, "mailbox", config.Mailbox, "mailbox to append to")
	flagSet.StringSliceVar(&config.Flags, "flag", config.Flags, "flag to set on appended messages (repeatable)")
	flagSet.IntVar(&config.Batch, "batch", config.Batch, "messages per APPEND command")
	flagSet.StringVar(&config.LogLevel, "log-level", config.LogLevel, "logrus log level")
	flagSet.BoolVar(&config.WireLog, "wire-log", config.WireLog, "log IMAP traffic to stderr")
	flagSet.StringVar(&config.Profile, "profile", config.Profile, "write a CPU profile to this directory")
}

func (config *Config) validate() error {
	if config.User == "" {
		return errors.New("user must be set")
	}

	if config.Mailbox == "" {
		return errors.New("mailbox must be set")
	}

	if config.Batch < 1 {
		return fmt.Errorf("batch must be at least 1, got %v", config.Batch)
	}

	switch config.Auth {
	case "LOGIN", "PLAIN":

	default:
		return fmt.Errorf("unsupported auth %q", config.Auth)
	}

	return nil
}
