package photon

import (
	"io"
	"net"

	"github.com/ProtonMail/photon/async"
	"github.com/ProtonMail/photon/events"
	"github.com/ProtonMail/photon/imap"
	"github.com/ProtonMail/photon/imap/encoder"
	"github.com/ProtonMail/photon/internal/liner"
	"github.com/ProtonMail/photon/internal/queue"
	"github.com/ProtonMail/photon/logging"
	"github.com/ProtonMail/photon/state"
	"github.com/ProtonMail/photon/wait"
	"github.com/bradenaw/juniper/xslices"
)

const (
	defaultTagPrefix   = "A"
	defaultEventBuffer = 16
)

type clientBuilder struct {
	inLogger        io.Writer
	outLogger       io.Writer
	encodingOptions *encoder.Options
	caps            []imap.Capability
	panicHandler    async.PanicHandler
	tagPrefix       string
	eventBuffer     int
}

func newBuilder() *clientBuilder {
	return &clientBuilder{
		panicHandler: async.NoopPanicHandler{},
		tagPrefix:    defaultTagPrefix,
		eventBuffer:  defaultEventBuffer,
	}
}

func (builder *clientBuilder) build(conn net.Conn, lines *liner.Liner, sessionID string, greetingCaps []imap.Capability) *Client {
	caps := builder.caps
	if caps == nil {
		caps = greetingCaps
	}

	encodingOptions := encoder.OptionsFromCapabilities(caps)
	if builder.encodingOptions != nil {
		encodingOptions = *builder.encodingOptions
	}

	logging.Session(sessionID).
		WithField("caps", xslices.Map(caps, func(c imap.Capability) string { return string(c) })).
		Debug("Client connected")

	return &Client{
		conn:            conn,
		lines:           lines,
		sessionID:       sessionID,
		machine:         state.NewMachine(state.WithEncodingOptions(encodingOptions)),
		encodingOptions: encodingOptions,
		caps:            caps,
		tagPrefix:       builder.tagPrefix,
		waiters:         make(map[string]*waiter),
		writes:          queue.NewQueuedChannel[state.OutgoingChunk](0, 0, builder.panicHandler),
		eventCh:         queue.NewQueuedChannel[events.Event](builder.eventBuffer, 0, builder.panicHandler),
		inLogger:        builder.inLogger,
		outLogger:       builder.outLogger,
		closed:          make(chan struct{}),
		group:           wait.Group{PanicHandler: builder.panicHandler},
	}
}
