package photon

import (
	"context"
	"errors"
	"time"

	"github.com/ProtonMail/photon/imap"
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/promise"
	"github.com/emersion/go-sasl"
)

// Execute sends a tagged command and waits for its completion. Commands may be executed concurrently;
// they are pipelined on the connection. A NO or BAD completion is returned as a *response.Error together
// with the result.
func (c *Client) Execute(ctx context.Context, payload command.Payload) (*Result, error) {
	c.exclusive.RLock()

	_, w, err := c.begin(func(tag string) []command.StreamPart {
		return []command.StreamPart{command.Command{Tag: tag, Payload: payload}}
	})
	if err != nil {
		c.exclusive.RUnlock()
		return nil, err
	}

	return c.wait(ctx, w, c.exclusive.RUnlock)
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.Execute(ctx, command.LoginCommand{UserID: username, Password: password})

	return err
}

// RefreshCapabilities asks the server for its capabilities.
func (c *Client) RefreshCapabilities(ctx context.Context) ([]imap.Capability, error) {
	if _, err := c.Execute(ctx, command.CapabilityCommand{}); err != nil {
		return nil, err
	}

	return c.Capabilities(), nil
}

// Logout ends the session and closes the client.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.Execute(ctx, command.LogoutCommand{}); err != nil && !errors.Is(err, ErrServerBye) {
		return err
	}

	return c.Close()
}

type AppendMessage struct {
	Flags    []string
	DateTime time.Time
	Literal  []byte
}

// Append uploads the messages to the mailbox with a single APPEND command (MULTIAPPEND if more than one).
func (c *Client) Append(ctx context.Context, mailbox string, messages ...AppendMessage) (*Result, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessage
	}

	return c.runExclusive(ctx, func(tag string) []command.StreamPart {
		parts := []command.StreamPart{command.AppendStart{Tag: tag, Mailbox: mailbox}}

		for _, message := range messages {
			parts = append(parts,
				command.AppendBeginMessage{Flags: imap.AppendableFlags(message.Flags), DateTime: message.DateTime, Size: len(message.Literal)},
				command.AppendMessageBytes{Data: message.Literal},
				command.AppendEndMessage{},
			)
		}

		return append(parts, command.AppendFinish{})
	})
}

// CatenatePart is either a URL referencing existing message data or literal data.
type CatenatePart struct {
	URL  string
	Data []byte
}

// Catenate builds a message on the server from the given parts (RFC 4469).
func (c *Client) Catenate(ctx context.Context, mailbox string, flags []string, dateTime time.Time, catParts ...CatenatePart) (*Result, error) {
	if len(catParts) == 0 {
		return nil, ErrNoMessage
	}

	return c.runExclusive(ctx, func(tag string) []command.StreamPart {
		parts := []command.StreamPart{
			command.AppendStart{Tag: tag, Mailbox: mailbox},
			command.AppendBeginCatenate{Flags: imap.AppendableFlags(flags), DateTime: dateTime},
		}

		for _, part := range catParts {
			if part.URL != "" {
				parts = append(parts, command.AppendCatenateURL{URL: part.URL})
			} else {
				parts = append(parts,
					command.AppendCatenateDataBegin{Size: len(part.Data)},
					command.AppendCatenateDataBytes{Data: part.Data},
					command.AppendCatenateDataEnd{},
				)
			}
		}

		return append(parts, command.AppendEndCatenate{}, command.AppendFinish{})
	})
}

func (c *Client) runExclusive(ctx context.Context, build func(tag string) []command.StreamPart) (*Result, error) {
	c.exclusive.Lock()

	_, w, err := c.begin(build)
	if err != nil {
		c.exclusive.Unlock()
		return nil, err
	}

	return c.wait(ctx, w, c.exclusive.Unlock)
}

// Idler is a running IDLE command. Untagged responses are published as events while it runs.
type Idler struct {
	client *Client
	tag    string
	w      *waiter
}

// Idle starts IDLE and returns once the server confirmed it.
func (c *Client) Idle(ctx context.Context) (*Idler, error) {
	c.exclusive.Lock()

	tag, w, err := c.beginExclusive(command.IdleCommand{})
	if err != nil {
		c.exclusive.Unlock()
		return nil, err
	}

	idler := &Idler{client: c, tag: tag, w: w}

	select {
	case <-w.continuation:
		return idler, nil

	case res := <-w.done:
		select {
		case <-w.continuation:
			// Confirmed, then ended by the server right away. Stop picks up the completion.
			w.done <- res
			return idler, nil

		default:
		}

		c.exclusive.Unlock()

		if _, err := res.result(); err != nil {
			return nil, err
		}

		return nil, ErrIdleNotConfirmed

	case <-ctx.Done():
		c.group.Go(func() {
			select {
			case <-w.continuation:
				_, _ = idler.Stop(context.Background())

			case <-w.done:
				c.exclusive.Unlock()
			}
		})

		return nil, ctx.Err()
	}
}

// Stop sends DONE, unless the server already ended IDLE, and waits for the completion.
// It must be called exactly once.
func (idler *Idler) Stop(ctx context.Context) (*Result, error) {
	c := idler.client

	c.mu.Lock()

	// A failed send tears the connection down, which completes the waiter.
	if _, ok := c.waiters[idler.tag]; ok {
		_ = c.sendLocked(command.IdleDone{}, promise.New())
	}

	c.mu.Unlock()

	return c.wait(ctx, idler.w, c.exclusive.Unlock)
}

// Authenticate runs a SASL exchange. The initial response is sent with the command if the server
// supports SASL-IR, otherwise in answer to the first challenge.
func (c *Client) Authenticate(ctx context.Context, saslClient sasl.Client) error {
	mechanism, initialResponse, err := saslClient.Start()
	if err != nil {
		return err
	}

	cmd := command.AuthenticateCommand{Mechanism: mechanism}

	if initialResponse != nil && c.HasCapability(imap.SASLIR) {
		cmd.InitialResponse, initialResponse = initialResponse, nil
	}

	c.exclusive.Lock()

	_, w, err := c.beginExclusive(cmd)
	if err != nil {
		c.exclusive.Unlock()
		return err
	}

	var saslErr error

	for {
		select {
		case challenge := <-w.continuation:
			var part command.ContinuationResponse

			switch {
			case saslErr != nil:
				part.Cancel = true

			case initialResponse != nil:
				part.Data, initialResponse = initialResponse, nil

			default:
				if part.Data, saslErr = saslClient.Next(challenge); saslErr != nil {
					part.Cancel = true
				}
			}

			if err := c.send(part, promise.New()); err != nil {
				return c.waitAuthenticated(ctx, w, err)
			}

		case res := <-w.done:
			c.exclusive.Unlock()

			if _, err := res.result(); err != nil {
				return err
			}

			return saslErr

		case <-ctx.Done():
			c.group.Go(func() {
				for {
					select {
					case <-w.continuation:
						_ = c.send(command.ContinuationResponse{Cancel: true}, promise.New())

					case <-w.done:
						c.exclusive.Unlock()
						return
					}
				}
			})

			return ctx.Err()
		}
	}
}

func (c *Client) waitAuthenticated(ctx context.Context, w *waiter, err error) error {
	if _, waitErr := c.wait(ctx, w, c.exclusive.Unlock); waitErr != nil {
		return waitErr
	}

	return err
}

// beginExclusive starts a command that must run alone and routes continuation requests to it.
func (c *Client) beginExclusive(payload command.Payload) (string, *waiter, error) {
	return c.begin(func(tag string) []command.StreamPart {
		c.exclusiveTag = tag

		return []command.StreamPart{command.Command{Tag: tag, Payload: payload}}
	})
}
