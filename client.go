package photon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/ProtonMail/photon/events"
	"github.com/ProtonMail/photon/imap"
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/decoder"
	"github.com/ProtonMail/photon/imap/encoder"
	"github.com/ProtonMail/photon/imap/response"
	"github.com/ProtonMail/photon/internal/liner"
	"github.com/ProtonMail/photon/internal/queue"
	"github.com/ProtonMail/photon/logging"
	"github.com/ProtonMail/photon/promise"
	"github.com/ProtonMail/photon/state"
	"github.com/ProtonMail/photon/wait"
	"github.com/google/uuid"
)

// Client drives a state.Machine over a single connection.
// One goroutine reads and decodes server output, another writes the chunks the machine releases.
type Client struct {
	conn      net.Conn
	lines     *liner.Liner
	sessionID string

	// mu guards the machine and everything below it.
	mu              sync.Mutex
	machine         *state.Machine
	encodingOptions encoder.Options
	caps            []imap.Capability
	tagPrefix       string
	tagCounter      int
	waiters         map[string]*waiter
	exclusiveTag    string
	closeErr        error

	// exclusive is held for reading by pipelined commands and for writing by APPEND, IDLE and AUTHENTICATE.
	exclusive sync.RWMutex

	writes  *queue.QueuedChannel[state.OutgoingChunk]
	eventCh *queue.QueuedChannel[events.Event]

	inLogger  io.Writer
	outLogger io.Writer

	group  wait.Group
	closed chan struct{}
}

// Result is the outcome of a command: its completion and the untagged responses received while it ran.
// Untagged responses cannot be attributed to a single command, so pipelined commands all see them.
type Result struct {
	Tagged   *response.Tagged
	Untagged []response.Response
}

type waiter struct {
	// sent is resolved once the command line itself has been written, or failed if it never will be.
	sent         *promise.Promise
	done         chan waitResult
	continuation chan []byte
	untagged     []response.Response
}

type waitResult struct {
	tagged   *response.Tagged
	untagged []response.Response
	err      error
}

func newWaiter() *waiter {
	return &waiter{
		done:         make(chan waitResult, 1),
		continuation: make(chan []byte, 1),
	}
}

func (res waitResult) result() (*Result, error) {
	if res.err != nil {
		return nil, res.err
	}

	return &Result{Tagged: res.tagged, Untagged: res.untagged}, res.tagged.Err()
}

// New reads the server greeting from conn and starts serving the connection.
// The client owns conn from then on; Close must be called to release it.
func New(conn net.Conn, options ...Option) (*Client, error) {
	builder := newBuilder()

	for _, opt := range options {
		opt.config(builder)
	}

	sessionID := uuid.NewString()
	lines := liner.New(conn)

	caps, err := readGreeting(lines, builder.inLogger, sessionID)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logging.Session(sessionID).WithError(closeErr).Warn("Failed to close connection")
		}

		return nil, err
	}

	client := builder.build(conn, lines, sessionID, caps)

	client.group.Go(func() {
		logging.DoSession(context.Background(), sessionID, "reader", func(context.Context) {
			client.read()
		})
	})

	client.group.Go(func() {
		logging.DoSession(context.Background(), sessionID, "writer", func(context.Context) {
			client.write()
		})
	})

	return client, nil
}

func readGreeting(lines *liner.Liner, inLogger io.Writer, sessionID string) ([]imap.Capability, error) {
	line, err := lines.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read greeting: %w", err)
	}

	logging.WriteLine(inLogger, logging.Server, sessionID, line)

	res, _, err := decoder.Decode(line)
	if err != nil {
		return nil, fmt.Errorf("failed to decode greeting: %w", err)
	}

	switch res := res.(type) {
	case *response.Untagged:
		if res.Name != "OK" && res.Name != "PREAUTH" {
			return nil, fmt.Errorf("%w: %v", ErrBadGreet, res.Name)
		}

		if name, list, ok := strings.Cut(res.Code, " "); ok && strings.EqualFold(name, "CAPABILITY") {
			return imap.ParseCapabilities(list), nil
		}

		return nil, nil

	case *response.Fatal:
		return nil, fmt.Errorf("%w: %v", ErrServerBye, res.Text)

	default:
		return nil, ErrBadGreet
	}
}

// SessionID identifies the connection in logs.
func (c *Client) SessionID() string {
	return c.sessionID
}

// GetEventCh returns the channel on which server initiated events are published.
// ConnectionClosed is always the last event.
func (c *Client) GetEventCh() <-chan events.Event {
	return c.eventCh.GetChannel()
}

// Capabilities returns the capabilities last announced by the server.
func (c *Client) Capabilities() []imap.Capability {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.caps
}

func (c *Client) HasCapability(capability imap.Capability) bool {
	return imap.HasCapability(c.Capabilities(), capability)
}

// Done is closed once the connection is torn down.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

// Err returns why the connection was torn down, or nil while it is running.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeErr
}

// Close tears the connection down, fails every pending command and waits for the client's goroutines.
// Events not consumed by then are discarded.
func (c *Client) Close() error {
	c.teardown(ErrClosed)

	c.group.Wait()

	c.eventCh.CloseAndDiscard()

	return nil
}

// begin registers a waiter for a new tag and sends the parts built for it.
func (c *Client) begin(build func(tag string) []command.StreamPart) (string, *waiter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closeErr != nil {
		return "", nil, c.closeErr
	}

	c.tagCounter++

	tag := fmt.Sprintf("%v%v", c.tagPrefix, c.tagCounter)
	w := newWaiter()

	c.waiters[tag] = w

	for i, part := range build(tag) {
		p := promise.New()

		if i == 0 {
			w.sent = p
		}

		if err := c.sendLocked(part, p); err != nil {
			return "", nil, err
		}
	}

	return tag, w, nil
}

// wait waits for the waiter's completion. The unlock function is called once the command has completed,
// even if ctx is cancelled first.
func (c *Client) wait(ctx context.Context, w *waiter, unlock func()) (*Result, error) {
	select {
	case res := <-w.done:
		unlock()
		return res.result()

	case <-ctx.Done():
		logging.Session(c.sessionID).
			WithField("written", isWritten(w.sent)).
			Debug("Stopped waiting for command")

		c.group.Go(func() {
			<-w.done
			unlock()
		})

		return nil, ctx.Err()
	}
}

func isWritten(p *promise.Promise) bool {
	return p != nil && p.IsResolved() && p.Err() == nil
}

func (c *Client) send(part command.StreamPart, p *promise.Promise) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sendLocked(part, p)
}

func (c *Client) sendLocked(part command.StreamPart, p *promise.Promise) error {
	if c.closeErr != nil {
		return c.closeErr
	}

	c.logOutgoing(part)

	chunk, err := c.machine.SendCommand(part, p)
	if err != nil {
		c.teardownLocked(err)
		return err
	}

	if chunk != nil {
		c.writes.Enqueue(*chunk)
	}

	c.machine.Flush()

	return c.drainLocked()
}

func (c *Client) drainLocked() error {
	chunks, err := c.machine.Drain()
	if err != nil {
		c.teardownLocked(err)
		return err
	}

	if len(chunks) > 0 {
		c.writes.Enqueue(chunks...)
	}

	return nil
}

func (c *Client) logOutgoing(part command.StreamPart) {
	if c.outLogger == nil {
		return
	}

	b, err := command.Encode(part, nil, c.encodingOptions.WithLoggingMode(true))
	if err != nil {
		return
	}

	logging.WriteLine(c.outLogger, logging.Client, c.sessionID, b.Bytes())
}

func (c *Client) read() {
	for {
		line, err := c.lines.Read()
		if err != nil {
			c.teardown(fmt.Errorf("%w: %v", ErrClosed, err))
			return
		}

		logging.WriteLine(c.inLogger, logging.Server, c.sessionID, line)

		if err := c.handleLine(line); err != nil {
			c.teardown(err)
			return
		}
	}
}

func (c *Client) handleLine(line []byte) error {
	res, req, err := decoder.Decode(line)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closeErr != nil {
		return c.closeErr
	}

	if req != nil {
		return c.handleContinuationRequest(req)
	}

	return c.handleResponse(res)
}

func (c *Client) handleContinuationRequest(req response.ContinuationRequest) error {
	action, err := c.machine.ReceiveContinuationRequest(req)
	if err != nil {
		return err
	}

	switch action.Kind {
	case state.SendChunks:
		c.writes.Enqueue(action.Chunks...)

	case state.FireIdleStarted:
		c.notifyExclusive(nil)
		c.eventCh.Enqueue(events.IdleStarted{Tag: c.exclusiveTag})

	case state.FireAuthenticationChallenge:
		c.notifyExclusive(action.Challenge)
		c.eventCh.Enqueue(events.AuthenticationChallenge{Data: action.Challenge})
	}

	return nil
}

func (c *Client) handleResponse(res response.Response) error {
	if err := c.machine.ReceiveResponse(res); err != nil {
		return err
	}

	switch res := res.(type) {
	case *response.Fatal:
		return fmt.Errorf("%w: %v", ErrServerBye, res.Text)

	case *response.Tagged:
		if w, ok := c.waiters[res.Tag]; ok {
			delete(c.waiters, res.Tag)
			w.done <- waitResult{tagged: res, untagged: w.untagged}
		}

		if res.Tag == c.exclusiveTag {
			c.exclusiveTag = ""
		}

	default:
		for _, w := range c.waiters {
			w.untagged = append(w.untagged, res)
		}

		if untagged, ok := res.(*response.Untagged); ok && untagged.Name == "CAPABILITY" {
			c.caps = imap.ParseCapabilities(untagged.Text)
		}

		c.eventCh.Enqueue(events.Untagged{Response: res})
	}

	return c.drainLocked()
}

func (c *Client) notifyExclusive(data []byte) {
	w, ok := c.waiters[c.exclusiveTag]
	if !ok {
		return
	}

	select {
	case w.continuation <- data:

	default:
		logging.Session(c.sessionID).Warn("Dropping continuation nobody is waiting for")
	}
}

func (c *Client) write() {
	for chunk := range c.writes.GetChannel() {
		if err := c.Err(); err != nil {
			failChunk(chunk, err)
			continue
		}

		if _, err := c.conn.Write(chunk.Bytes); err != nil {
			failChunk(chunk, err)
			c.teardown(fmt.Errorf("%w: %v", ErrClosed, err))

			continue
		}

		if chunk.ShouldSucceedPromise && chunk.Promise != nil {
			chunk.Promise.Succeed()
		}
	}
}

func failChunk(chunk state.OutgoingChunk, err error) {
	if chunk.Promise != nil {
		chunk.Promise.Fail(err)
	}
}

func (c *Client) teardown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked(err)
}

// teardownLocked fails everything still pending with err. Only the first call has an effect.
func (c *Client) teardownLocked(err error) {
	if c.closeErr != nil {
		return
	}

	c.closeErr = err

	logging.Session(c.sessionID).WithError(err).Debug("Tearing down connection")

	// The machine has already let go of the promise of a command parked on a literal it gave up on.
	var unexpected *state.UnexpectedResponseError

	if errors.As(err, &unexpected) && unexpected.ActivePromise != nil {
		unexpected.ActivePromise.Fail(err)
	}

	promise.FailAll(c.machine.ChannelInactive(), err)

	for tag, w := range c.waiters {
		delete(c.waiters, tag)
		w.done <- waitResult{err: err}
	}

	c.writes.Close()

	var eventErr error

	if err != ErrClosed {
		eventErr = err
	}

	c.eventCh.Enqueue(events.ConnectionClosed{Err: eventErr})
	c.eventCh.Close()

	if err := c.conn.Close(); err != nil {
		logging.Session(c.sessionID).WithError(err).Debug("Failed to close connection")
	}

	close(c.closed)
}
