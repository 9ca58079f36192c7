package state

import (
	"github.com/ProtonMail/photon/imap/encoder"
	"github.com/ProtonMail/photon/promise"
)

// OutgoingChunk is a span of bytes to be written to the server.
// Once the bytes have been written, Promise (if any) must be succeeded when ShouldSucceedPromise is set.
// Chunks that end at a synchronizing literal carry the promise but leave it unresolved.
type OutgoingChunk struct {
	Bytes                []byte
	Promise              *promise.Promise
	ShouldSucceedPromise bool
}

type ContinuationActionKind int

const (
	// SendChunks asks the caller to write Chunks in order.
	SendChunks ContinuationActionKind = iota

	// FireIdleStarted asks the caller to report that the server confirmed IDLE.
	FireIdleStarted

	// FireAuthenticationChallenge asks the caller to surface the challenge and answer it with a ContinuationResponse.
	FireAuthenticationChallenge
)

func (k ContinuationActionKind) String() string {
	switch k {
	case SendChunks:
		return "send chunks"

	case FireIdleStarted:
		return "fire idle started"

	case FireAuthenticationChallenge:
		return "fire authentication challenge"

	default:
		return "unknown"
	}
}

// ContinuationAction is what the caller must do after a continuation request was received.
type ContinuationAction struct {
	Kind   ContinuationActionKind
	Chunks []OutgoingChunk

	// Challenge is the decoded challenge for FireAuthenticationChallenge.
	Challenge []byte
}

// encodeContext owns a partially written command parked on a continuation request.
type encodeContext struct {
	buffer  *encoder.Buffer
	promise *promise.Promise
}

func newEncodeContext(buffer *encoder.Buffer, p *promise.Promise) *encodeContext {
	return &encodeContext{buffer: buffer, promise: p}
}

// nextChunk returns the next chunk of the command. The promise moves out of the context with the final chunk
// so that it can only ever be handed out for resolution once.
func (c *encodeContext) nextChunk() OutgoingChunk {
	chunk := c.buffer.NextChunk()

	out := OutgoingChunk{
		Bytes:                chunk.Bytes,
		Promise:              c.promise,
		ShouldSucceedPromise: !chunk.WaitForContinuation,
	}

	if out.ShouldSucceedPromise {
		c.promise = nil
	}

	return out
}

func (c *encodeContext) hasMoreChunks() bool {
	return c.buffer.HasMoreChunks()
}

// drop discards the remaining bytes and returns the promise, if it has not been handed out yet.
func (c *encodeContext) drop() *promise.Promise {
	p := c.promise

	c.promise = nil
	c.buffer = encoder.NewBuffer(nil, c.buffer.Options())

	return p
}
