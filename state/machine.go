// Package state implements the client side IMAP state machine. It decides, for every command the
// client wants to send and for every response or continuation request the server delivers, what may
// be written next. The machine performs no I/O and is not safe for concurrent use; callers bind it
// to a single connection and serialize every call.
package state

import (
	"fmt"

	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/encoder"
	"github.com/ProtonMail/photon/imap/response"
	"github.com/ProtonMail/photon/promise"
	"github.com/bradenaw/juniper/sets"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Name identifies a top level state of the machine.
type Name string

const (
	StateExpectingNormalResponse      Name = "expecting normal response"
	StateIdle                         Name = "idle"
	StateAuthenticating               Name = "authenticating"
	StateAppending                    Name = "appending"
	StateExpectingLiteralContinuation Name = "expecting literal continuation"
	StateError                        Name = "error"
)

type clientState interface {
	name() Name
}

type expectingNormalResponse struct{}

func (*expectingNormalResponse) name() Name { return StateExpectingNormalResponse }

type idling struct {
	sub *idleMachine
}

func (*idling) name() Name { return StateIdle }

type authenticating struct {
	sub *authenticationMachine
}

func (*authenticating) name() Name { return StateAuthenticating }

type appending struct {
	sub *appendMachine
}

func (*appending) name() Name { return StateAppending }

// expectingLiteralContinuation holds a tagged command whose next chunk may only be written
// once the server sent a continuation request.
type expectingLiteralContinuation struct {
	context *encodeContext
}

func (*expectingLiteralContinuation) name() Name { return StateExpectingLiteralContinuation }

type errored struct{}

func (*errored) name() Name { return StateError }

// Machine tracks the state of one IMAP connection from the client's side.
type Machine struct {
	encodingOptions encoder.Options
	allocate        func(capacity int) []byte

	state      clientState
	activeTags sets.Map[string]
	queue      *commandQueue

	// orphans are promises of chunks which were never handed to the caller because the machine failed.
	orphans []*promise.Promise
}

// NewMachine returns a machine expecting normal responses, with no command running.
func NewMachine(options ...Option) *Machine {
	m := &Machine{
		encodingOptions: encoder.DefaultOptions(),
		allocate:        defaultAllocator,
		state:           &expectingNormalResponse{},
		activeTags:      make(sets.Map[string]),
		queue:           newCommandQueue(),
	}

	for _, opt := range options {
		opt.config(m)
	}

	return m
}

// State returns the name of the current top level state.
func (m *Machine) State() Name {
	return m.state.name()
}

// ActiveTags returns the sorted tags of the commands sent but not yet completed.
func (m *Machine) ActiveTags() []string {
	tags := maps.Keys(m.activeTags)

	slices.Sort(tags)

	return tags
}

// IsWaitingForContinuationRequest reports whether nothing more can be written until the server sends
// a continuation request.
func (m *Machine) IsWaitingForContinuationRequest() bool {
	switch state := m.state.(type) {
	case *appending:
		return state.sub.isWaitingForContinuationRequest()

	case *expectingLiteralContinuation:
		return true

	default:
		return false
	}
}

// SendCommand admits the given part and returns the chunk that may be written right away, if any.
// The promise (which may be nil) travels with the chunks of the part.
func (m *Machine) SendCommand(part command.StreamPart, p *promise.Promise) (*OutgoingChunk, error) {
	if m.State() == StateError {
		return nil, ErrInvalidClientState
	}

	chunk, err := m.sendCommand(part, p)
	if err != nil {
		return nil, m.fail(err)
	}

	return chunk, nil
}

func (m *Machine) sendCommand(part command.StreamPart, p *promise.Promise) (*OutgoingChunk, error) {
	if tag, ok := command.TagOf(part); ok {
		if m.activeTags.Contains(tag) {
			return nil, &DuplicateCommandTagError{Tag: tag}
		}

		m.activeTags.Add(tag)
	}

	m.queue.push(part, p)

	result, err := m.sendNextCommand()
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	// The head of the queue either parks on a continuation or is written whole, so there is never a second chunk.
	if len(result.chunks) != 1 {
		panic(fmt.Sprintf("sending a command produced %v chunks", len(result.chunks)))
	}

	return &result.chunks[0], nil
}

// Flush marks the tail of the queue. Commands up to the mark are written at the next opportunity.
func (m *Machine) Flush() {
	m.queue.setMark()
}

// Drain returns the chunks of flushed commands that may be written now. Callers use it once a
// response has freed the machine, for example after an APPEND completed.
func (m *Machine) Drain() ([]OutgoingChunk, error) {
	if m.State() == StateError {
		return nil, ErrInvalidClientState
	}

	result, err := m.extractSendableChunks(nil)
	if err != nil {
		return nil, m.fail(err)
	}

	return result.chunks, nil
}

// ReceiveResponse tells the machine that a response has been received. It never results in chunks being written.
func (m *Machine) ReceiveResponse(res response.Response) error {
	if err := m.receiveResponse(res); err != nil {
		return m.fail(err)
	}

	return nil
}

func (m *Machine) receiveResponse(res response.Response) error {
	if tag, ok := response.TagOf(res); ok {
		if !m.activeTags.Contains(tag) {
			return &UnexpectedResponseError{Kind: UnknownTagCompletion, Tag: tag}
		}

		m.activeTags.Remove(tag)
	}

	if m.State() == StateError {
		return &UnexpectedResponseError{Kind: ResponseInErrorState}
	}

	if _, ok := res.(*response.Fatal); ok {
		logrus.WithField("state", m.State()).Debug("Server sent a fatal response")
		m.enterErrorState()

		return nil
	}

	switch state := m.state.(type) {
	case *idling:
		done, err := state.sub.receiveResponse(res)
		if err != nil {
			return err
		}

		if done {
			m.setState(&expectingNormalResponse{})
		}

	case *authenticating:
		if err := state.sub.receiveResponse(res); err != nil {
			return err
		}

		m.setState(&expectingNormalResponse{})

	case *appending:
		done, err := state.sub.receiveResponse(res)
		if err != nil {
			return err
		}

		if done {
			m.setState(&expectingNormalResponse{})
			m.abortQueuedAppendParts()
		}

	case *expectingNormalResponse, *expectingLiteralContinuation:
		// Untagged data may have been sent before the server saw the literal header we are parked on.
		switch res.(type) {
		case *response.Tagged:
			if state, ok := state.(*expectingLiteralContinuation); ok && m.activeTags.Len() == 0 {
				return &UnexpectedResponseError{
					Kind:          TaggedWhileExpectingContinuationRequest,
					ActivePromise: state.context.drop(),
				}
			}

		case *response.AuthenticationChallenge:
			return &UnexpectedResponseError{Kind: UnexpectedAuthenticationChallenge}

		case *response.IdleStarted:
			return &UnexpectedResponseError{Kind: UnexpectedIdleStarted}
		}
	}

	return nil
}

// ReceiveContinuationRequest tells the machine that a continuation request has been received and returns
// what the caller must do next.
func (m *Machine) ReceiveContinuationRequest(req response.ContinuationRequest) (ContinuationAction, error) {
	action, err := m.receiveContinuationRequest(req)
	if err != nil {
		return ContinuationAction{}, m.fail(err)
	}

	return action, nil
}

func (m *Machine) receiveContinuationRequest(req response.ContinuationRequest) (ContinuationAction, error) {
	switch state := m.state.(type) {
	case *appending:
		if err := state.sub.receiveContinuationRequest(); err != nil {
			return ContinuationAction{}, err
		}

		result, err := m.extractSendableChunks(nil)
		if err != nil {
			return ContinuationAction{}, err
		}

		return ContinuationAction{Kind: SendChunks, Chunks: result.chunks}, nil

	case *expectingLiteralContinuation:
		m.setState(&expectingNormalResponse{})

		result, err := m.extractSendableChunks(state.context)
		if err != nil {
			return ContinuationAction{}, err
		}

		return ContinuationAction{Kind: SendChunks, Chunks: result.chunks}, nil

	case *authenticating:
		if err := state.sub.receiveContinuationRequest(); err != nil {
			return ContinuationAction{}, err
		}

		var challenge []byte

		// Servers send response text instead of base64 when the challenge is empty.
		if data, ok := req.(*response.ContinuationData); ok {
			challenge = data.Data
		}

		return ContinuationAction{Kind: FireAuthenticationChallenge, Challenge: challenge}, nil

	case *idling:
		if err := state.sub.receiveContinuationRequest(); err != nil {
			return ContinuationAction{}, err
		}

		return ContinuationAction{Kind: FireIdleStarted}, nil

	default:
		return ContinuationAction{}, &UnexpectedContinuationRequestError{Kind: ContinuationWhileNormal}
	}
}

// ChannelInactive moves the machine into the error state and returns every promise whose command will
// never be written. The caller must fail them.
func (m *Machine) ChannelInactive() []*promise.Promise {
	m.enterErrorState()

	promises := append(m.orphans, m.queue.promises()...)

	m.orphans = nil
	m.queue = newCommandQueue()

	return promises
}

type sendableChunks struct {
	chunks      []OutgoingChunk
	nextContext *encodeContext
}

// extractSendableChunks resumes the given context, if any, then sends queued commands up to
// the mark until one of them parks on a continuation request.
func (m *Machine) extractSendableChunks(current *encodeContext) (*sendableChunks, error) {
	var results []OutgoingChunk

	if current != nil {
		chunk := current.nextChunk()

		if !chunk.ShouldSucceedPromise {
			m.setState(&expectingLiteralContinuation{context: current})
			return &sendableChunks{chunks: []OutgoingChunk{chunk}, nextContext: current}, nil
		}

		results = append(results, chunk)
	}

	for m.queue.hasMark() {
		next, err := m.sendNextCommand()
		if err != nil {
			m.orphan(results)
			return nil, err
		}

		if next == nil {
			break
		}

		results = append(results, next.chunks...)

		if next.nextContext != nil {
			return &sendableChunks{chunks: results, nextContext: next.nextContext}, nil
		}
	}

	return &sendableChunks{chunks: results}, nil
}

// sendNextCommand sends the command at the head of the queue. The command is only removed from
// the queue once it has been accepted, so a failure never loses its promise.
func (m *Machine) sendNextCommand() (*sendableChunks, error) {
	if m.IsWaitingForContinuationRequest() {
		return nil, nil
	}

	item, ok := m.queue.peek()
	if !ok {
		panic("sending a non-existent command")
	}

	var (
		result *sendableChunks
		err    error
	)

	switch state := m.state.(type) {
	case *expectingNormalResponse:
		result, err = m.sendNextCommandExpectingNormalResponse(item)

	case *idling:
		result, err = m.sendNextCommandIdle(state.sub, item)

	case *authenticating:
		result, err = m.sendNextCommandAuthenticating(state.sub, item)

	case *appending:
		result, err = m.sendNextCommandAppending(state.sub, item)

	case *errored:
		panic("sending a command in the error state")

	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	m.queue.pop()

	return result, nil
}

func (m *Machine) sendNextCommandExpectingNormalResponse(item queuedCommand) (*sendableChunks, error) {
	switch part := item.part.(type) {
	case command.Command:
		return m.sendTaggedCommand(part, item.promise)

	case *command.Command:
		return m.sendTaggedCommand(*part, item.promise)

	case command.AppendStart:
		return m.sendAppendStart(part, item.promise)

	case *command.AppendStart:
		return m.sendAppendStart(*part, item.promise)

	default:
		return nil, &InvalidCommandForStateError{Command: item.part, State: string(StateExpectingNormalResponse)}
	}
}

func (m *Machine) sendTaggedCommand(cmd command.Command, p *promise.Promise) (*sendableChunks, error) {
	if cmd.Tag == "" {
		return nil, &InvalidCommandForStateError{Command: cmd, State: string(StateExpectingNormalResponse)}
	}

	buffer, err := m.encode(cmd, m.encodingOptions)
	if err != nil {
		return nil, err
	}

	encodeCtx := newEncodeContext(buffer, p)

	switch {
	case cmd.IsIdle():
		m.guardAgainstMultipleRunningCommands()
		m.setState(&idling{sub: newIdleMachine()})

		return &sendableChunks{chunks: []OutgoingChunk{encodeCtx.nextChunk()}}, nil

	case cmd.IsAuthenticate():
		m.guardAgainstMultipleRunningCommands()
		m.setState(&authenticating{sub: newAuthenticationMachine()})

		return &sendableChunks{chunks: []OutgoingChunk{encodeCtx.nextChunk()}}, nil
	}

	chunk := encodeCtx.nextChunk()

	if !chunk.ShouldSucceedPromise {
		m.setState(&expectingLiteralContinuation{context: encodeCtx})
		return &sendableChunks{chunks: []OutgoingChunk{chunk}, nextContext: encodeCtx}, nil
	}

	if encodeCtx.hasMoreChunks() {
		panic("command has chunks past its final chunk")
	}

	m.setState(&expectingNormalResponse{})

	return &sendableChunks{chunks: []OutgoingChunk{chunk}}, nil
}

func (m *Machine) sendAppendStart(start command.AppendStart, p *promise.Promise) (*sendableChunks, error) {
	if start.Tag == "" {
		return nil, ErrUnexpectedAppendCommand
	}

	if m.activeTags.Len() != 1 {
		return nil, &InvalidCommandForStateError{Command: start, State: "append with other commands running"}
	}

	sub := newAppendMachine(start.Tag)

	chunk, _, err := m.encodeAppendPart(sub, start)
	if err != nil {
		return nil, err
	}

	m.setState(&appending{sub: sub})

	return &sendableChunks{chunks: []OutgoingChunk{{Bytes: chunk.Bytes, Promise: p, ShouldSucceedPromise: true}}}, nil
}

func (m *Machine) sendNextCommandIdle(sub *idleMachine, item queuedCommand) (*sendableChunks, error) {
	if err := sub.sendCommand(item.part); err != nil {
		return nil, err
	}

	chunk, err := m.encodeSingleChunk(item.part)
	if err != nil {
		return nil, err
	}

	m.setState(&expectingNormalResponse{})

	return &sendableChunks{chunks: []OutgoingChunk{{Bytes: chunk.Bytes, Promise: item.promise, ShouldSucceedPromise: true}}}, nil
}

func (m *Machine) sendNextCommandAuthenticating(sub *authenticationMachine, item queuedCommand) (*sendableChunks, error) {
	if err := sub.sendCommand(item.part); err != nil {
		return nil, err
	}

	chunk, err := m.encodeSingleChunk(item.part)
	if err != nil {
		return nil, err
	}

	return &sendableChunks{chunks: []OutgoingChunk{{Bytes: chunk.Bytes, Promise: item.promise, ShouldSucceedPromise: true}}}, nil
}

// sendNextCommandAppending writes the next part of an APPEND. The server answers literal headers
// with continuation requests, so every append chunk is written and succeeded right away.
func (m *Machine) sendNextCommandAppending(sub *appendMachine, item queuedCommand) (*sendableChunks, error) {
	part, ok := item.part.(command.AppendPart)
	if !ok {
		return nil, &InvalidCommandForStateError{Command: item.part, State: sub.String()}
	}

	chunk, catenated, err := m.encodeAppendPart(sub, part)
	if err != nil {
		return nil, err
	}

	// A second AppendStart has no transition and is rejected here.
	if err := sub.sendCommand(part, chunk.WaitForContinuation, catenated); err != nil {
		return nil, err
	}

	return &sendableChunks{chunks: []OutgoingChunk{{Bytes: chunk.Bytes, Promise: item.promise, ShouldSucceedPromise: true}}}, nil
}

// encodeAppendPart encodes the part with synchronizing literals only. It also reports whether the buffer
// has written a catenate element. Every part must fit in a single chunk, as the append machine tracks at
// most one pending continuation.
func (m *Machine) encodeAppendPart(sub *appendMachine, part command.AppendPart) (encoder.Chunk, bool, error) {
	buffer := encoder.NewBuffer(m.allocate(defaultBufferCapacity), m.encodingOptions.SynchronizingOnly())
	buffer.SetEncodedAtLeastOneCatenateElement(sub.hasCatenatedAtLeastOneObject)

	if err := part.Encode(buffer); err != nil {
		return encoder.Chunk{}, false, fmt.Errorf("failed to encode %v: %w", part.SanitizedString(), err)
	}

	chunk := buffer.NextChunk()

	if buffer.HasMoreChunks() {
		return encoder.Chunk{}, false, fmt.Errorf("append part %v requires more than one continuation", part.SanitizedString())
	}

	return chunk, buffer.EncodedAtLeastOneCatenateElement(), nil
}

func (m *Machine) encodeSingleChunk(part command.StreamPart) (encoder.Chunk, error) {
	buffer, err := m.encode(part, m.encodingOptions)
	if err != nil {
		return encoder.Chunk{}, err
	}

	chunk := buffer.NextChunk()

	if chunk.WaitForContinuation || buffer.HasMoreChunks() {
		panic(fmt.Sprintf("%v requires a continuation", part.SanitizedString()))
	}

	return chunk, nil
}

func (m *Machine) encode(part command.StreamPart, options encoder.Options) (*encoder.Buffer, error) {
	return command.Encode(part, m.allocate(defaultBufferCapacity), options)
}

// abortQueuedAppendParts fails the leftover parts of an APPEND the server completed early.
func (m *Machine) abortQueuedAppendParts() {
	for {
		item, ok := m.queue.peek()
		if !ok {
			return
		}

		if _, ok := item.part.(command.AppendPart); !ok || isAppendStart(item.part) {
			return
		}

		m.queue.pop()

		if item.promise != nil {
			item.promise.Fail(ErrAppendAborted)
		}
	}
}

// guardAgainstMultipleRunningCommands panics unless the command being started is the only one running.
// Callers must not pipeline commands ahead of IDLE or AUTHENTICATE.
func (m *Machine) guardAgainstMultipleRunningCommands() {
	if m.activeTags.Len() != 1 {
		panic(fmt.Sprintf("%v commands running while starting a command that must run alone", m.activeTags.Len()))
	}
}

func (m *Machine) setState(state clientState) {
	if m.state.name() != state.name() {
		logrus.WithField("from", m.state.name()).WithField("to", state.name()).Trace("Client state changed")
	}

	m.state = state
}

// enterErrorState moves to the terminal state, keeping the promise of a parked command for ChannelInactive.
func (m *Machine) enterErrorState() {
	if state, ok := m.state.(*expectingLiteralContinuation); ok {
		if p := state.context.drop(); p != nil {
			m.orphans = append(m.orphans, p)
		}
	}

	m.setState(&errored{})
}

func (m *Machine) fail(err error) error {
	logrus.WithError(err).WithField("state", m.State()).Debug("Client state machine failed")

	m.enterErrorState()

	return err
}

func (m *Machine) orphan(chunks []OutgoingChunk) {
	for _, chunk := range chunks {
		if chunk.Promise != nil {
			m.orphans = append(m.orphans, chunk.Promise)
		}
	}
}

func isAppendStart(part command.StreamPart) bool {
	switch part.(type) {
	case command.AppendStart, *command.AppendStart:
		return true

	default:
		return false
	}
}
