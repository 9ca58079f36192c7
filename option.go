package photon

import (
	"io"

	"github.com/ProtonMail/photon/async"
	"github.com/ProtonMail/photon/imap"
	"github.com/ProtonMail/photon/imap/encoder"
)

// Option represents a type that can be used to configure the client.
type Option interface {
	config(*clientBuilder)
}

// WithLogger instructs the client to write incoming and outgoing IMAP communication to the given io.Writers.
// Outgoing commands are logged with sensitive arguments and literal payloads redacted.
func WithLogger(in, out io.Writer) Option {
	return &withLogger{
		in:  in,
		out: out,
	}
}

type withLogger struct {
	in, out io.Writer
}

func (opt withLogger) config(builder *clientBuilder) {
	builder.inLogger = opt.in
	builder.outLogger = opt.out
}

// WithEncodingOptions fixes the literal options used to encode commands.
// Without it they are derived from the capabilities announced by the server.
func WithEncodingOptions(options encoder.Options) Option {
	return &withEncodingOptions{
		options: options,
	}
}

type withEncodingOptions struct {
	options encoder.Options
}

func (opt withEncodingOptions) config(builder *clientBuilder) {
	builder.encodingOptions = &opt.options
}

// WithCapabilities assumes the server supports the given capabilities, whatever its greeting says.
func WithCapabilities(caps ...imap.Capability) Option {
	return &withCapabilities{
		caps: caps,
	}
}

type withCapabilities struct {
	caps []imap.Capability
}

func (opt withCapabilities) config(builder *clientBuilder) {
	builder.caps = opt.caps
}

// WithPanicHandler sets the handler deferred by every goroutine the client starts.
func WithPanicHandler(panicHandler async.PanicHandler) Option {
	return &withPanicHandler{
		panicHandler: panicHandler,
	}
}

type withPanicHandler struct {
	panicHandler async.PanicHandler
}

func (opt withPanicHandler) config(builder *clientBuilder) {
	builder.panicHandler = opt.panicHandler
}

// WithTagPrefix sets the prefix of generated command tags. The default is "A".
func WithTagPrefix(prefix string) Option {
	return &withTagPrefix{
		prefix: prefix,
	}
}

type withTagPrefix struct {
	prefix string
}

func (opt withTagPrefix) config(builder *clientBuilder) {
	builder.tagPrefix = opt.prefix
}

// WithEventBuffer sets the buffer size of the channel returned by Client.GetEventCh.
func WithEventBuffer(size int) Option {
	return &withEventBuffer{
		size: size,
	}
}

type withEventBuffer struct {
	size int
}

func (opt withEventBuffer) config(builder *clientBuilder) {
	builder.eventBuffer = opt.size
}
