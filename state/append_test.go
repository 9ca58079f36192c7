package state

import (
	"strings"
	"testing"

	"github.com/ProtonMail/photon/imap"
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/encoder"
	"github.com/ProtonMail/photon/imap/response"
	"github.com/ProtonMail/photon/promise"
	"github.com/stretchr/testify/require"
)

func TestAppend_SingleMessage(t *testing.T) {
	m := NewMachine()

	chunk := sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)
	require.Equal(t, "A1 APPEND INBOX", string(chunk.Bytes))
	require.True(t, chunk.ShouldSucceedPromise)
	require.Equal(t, StateAppending, m.State())

	chunk = sendChunk(t, m, command.AppendBeginMessage{Size: 5}, nil)
	require.Equal(t, " {5}\r\n", string(chunk.Bytes))
	require.True(t, chunk.ShouldSucceedPromise)
	require.True(t, m.IsWaitingForContinuationRequest())

	p := promise.New()

	sendQueued(t, m, command.AppendMessageBytes{Data: []byte("hello")}, p)
	sendQueued(t, m, command.AppendEndMessage{}, nil)
	sendQueued(t, m, command.AppendFinish{}, nil)
	m.Flush()

	chunks := continueWith(t, m)
	require.Equal(t, []string{"hello", "", "\r\n"}, chunkStrings(chunks))
	require.Same(t, p, chunks[0].Promise)

	for _, chunk := range chunks {
		require.True(t, chunk.ShouldSucceedPromise)
	}

	require.Equal(t, StateAppending, m.State())
	require.False(t, m.IsWaitingForContinuationRequest())

	require.NoError(t, m.ReceiveResponse(&response.Tagged{Tag: "A1", Status: response.StatusOK, Code: "APPENDUID 38505 3955"}))
	require.Equal(t, StateExpectingNormalResponse, m.State())
	require.Empty(t, m.ActiveTags())
}

func TestAppend_AlwaysSynchronizing(t *testing.T) {
	m := NewMachine(WithEncodingOptions(encoder.OptionsFromCapabilities([]imap.Capability{imap.LiteralPlus})))

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "Sent"}, nil)

	chunk := sendChunk(t, m, command.AppendBeginMessage{Size: 5}, nil)
	require.Equal(t, " {5}\r\n", string(chunk.Bytes))
	require.True(t, m.IsWaitingForContinuationRequest())
}

func TestAppend_EmptyMessageNeedsNoContinuation(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)

	chunk := sendChunk(t, m, command.AppendBeginMessage{Size: 0}, nil)
	require.Equal(t, " {0}\r\n", string(chunk.Bytes))
	require.False(t, m.IsWaitingForContinuationRequest())

	sendChunk(t, m, command.AppendEndMessage{}, nil)
	require.Equal(t, "\r\n", string(sendChunk(t, m, command.AppendFinish{}, nil).Bytes))

	require.NoError(t, m.ReceiveResponse(tagged("A1", response.StatusOK)))
	require.Equal(t, StateExpectingNormalResponse, m.State())
}

func TestAppend_MultipleMessages(t *testing.T) {
	m := NewMachine()

	var out strings.Builder

	write := func(chunks ...OutgoingChunk) {
		for _, chunk := range chunks {
			out.Write(chunk.Bytes)
		}
	}

	write(*sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil))

	for _, body := range []string{"one", "three"} {
		write(*sendChunk(t, m, command.AppendBeginMessage{Flags: []string{`\Seen`}, Size: len(body)}, nil))
		sendQueued(t, m, command.AppendMessageBytes{Data: []byte(body)}, nil)
		sendQueued(t, m, command.AppendEndMessage{}, nil)
		m.Flush()
		write(continueWith(t, m)...)
	}

	write(*sendChunk(t, m, command.AppendFinish{}, nil))

	require.Equal(t, "A1 APPEND INBOX (\\Seen) {3}\r\none (\\Seen) {5}\r\nthree\r\n", out.String())
}

func TestAppend_Catenate(t *testing.T) {
	m := NewMachine()

	var out strings.Builder

	for _, part := range []command.AppendPart{
		command.AppendStart{Tag: "A1", Mailbox: "Drafts"},
		command.AppendBeginCatenate{},
		command.AppendCatenateURL{URL: "/Drafts;UIDVALIDITY=385759045/;UID=20/;section=HEADER"},
		command.AppendCatenateDataBegin{Size: 3},
	} {
		out.Write(sendChunk(t, m, part, nil).Bytes)
	}

	require.True(t, m.IsWaitingForContinuationRequest())

	sendQueued(t, m, command.AppendCatenateDataBytes{Data: []byte("abc")}, nil)
	sendQueued(t, m, command.AppendCatenateDataEnd{}, nil)
	sendQueued(t, m, command.AppendCatenateURL{URL: "/Drafts;UIDVALIDITY=385759045/;UID=30"}, nil)
	sendQueued(t, m, command.AppendEndCatenate{}, nil)
	sendQueued(t, m, command.AppendFinish{}, nil)
	m.Flush()

	for _, chunk := range continueWith(t, m) {
		out.Write(chunk.Bytes)
	}

	require.Equal(t,
		"A1 APPEND Drafts CATENATE (URL /Drafts;UIDVALIDITY=385759045/;UID=20/;section=HEADER TEXT {3}\r\nabc URL /Drafts;UIDVALIDITY=385759045/;UID=30)\r\n",
		out.String(),
	)

	require.NoError(t, m.ReceiveResponse(tagged("A1", response.StatusOK)))
	require.Equal(t, StateExpectingNormalResponse, m.State())
}

func TestAppend_CatenateSeparatorResetsPerMessage(t *testing.T) {
	m := NewMachine()

	var out strings.Builder

	for _, part := range []command.AppendPart{
		command.AppendStart{Tag: "A1", Mailbox: "Drafts"},
		command.AppendBeginCatenate{},
		command.AppendCatenateURL{URL: "/a"},
		command.AppendEndCatenate{},
		command.AppendBeginCatenate{},
		command.AppendCatenateURL{URL: "/b"},
		command.AppendEndCatenate{},
		command.AppendFinish{},
	} {
		out.Write(sendChunk(t, m, part, nil).Bytes)
	}

	require.Equal(t, "A1 APPEND Drafts CATENATE (URL /a) CATENATE (URL /b)\r\n", out.String())
}

func TestAppend_WithoutTag(t *testing.T) {
	m := NewMachine()

	_, err := m.SendCommand(command.AppendStart{Mailbox: "INBOX"}, nil)
	require.ErrorIs(t, err, ErrUnexpectedAppendCommand)
	require.Equal(t, StateError, m.State())
}

func TestAppend_WhileOtherCommandRunning(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, noop("A1"), nil)

	_, err := m.SendCommand(command.AppendStart{Tag: "A2", Mailbox: "INBOX"}, nil)
	require.True(t, IsInvalidCommandForState(err))
	require.Equal(t, StateError, m.State())
}

func TestAppend_OtherCommandWhileAppending(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)

	_, err := m.SendCommand(noop("A2"), nil)
	require.True(t, IsInvalidCommandForState(err))
}

func TestAppend_PartsOutOfOrder(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)

	_, err := m.SendCommand(command.AppendMessageBytes{Data: []byte("x")}, nil)
	require.True(t, IsInvalidCommandForState(err))
}

func TestAppend_FinishWithoutMessage(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)

	_, err := m.SendCommand(command.AppendFinish{}, nil)
	require.True(t, IsInvalidCommandForState(err))
}

func TestAppend_PartWithoutAppend(t *testing.T) {
	m := NewMachine()

	_, err := m.SendCommand(command.AppendBeginMessage{Size: 1}, nil)
	require.True(t, IsInvalidCommandForState(err))
}

func TestAppend_ContinuationWhenNotWaiting(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)

	_, err := m.ReceiveContinuationRequest(&response.ContinuationText{})
	require.True(t, IsUnexpectedContinuationRequest(err, ContinuationWhileAppending))
	require.Equal(t, StateError, m.State())
}

func TestAppend_RefusedLiteralAbortsQueuedParts(t *testing.T) {
	m := NewMachine()
	p := promise.New()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)
	sendChunk(t, m, command.AppendBeginMessage{Size: 1 << 20}, nil)
	sendQueued(t, m, command.AppendMessageBytes{Data: []byte("x")}, p)
	m.Flush()

	require.NoError(t, m.ReceiveResponse(&response.Tagged{Tag: "A1", Status: response.StatusNo, Code: "TOOBIG"}))
	require.Equal(t, StateExpectingNormalResponse, m.State())

	require.True(t, p.IsResolved())
	require.ErrorIs(t, p.Err(), ErrAppendAborted)

	sendChunk(t, m, noop("A2"), nil)
}

func TestAppend_CompletionWhileSendingBytes(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)
	sendChunk(t, m, command.AppendBeginMessage{Size: 0}, nil)

	err := m.ReceiveResponse(tagged("A1", response.StatusOK))
	require.True(t, IsUnexpectedResponse(err, AppendNotWaitingForTaggedResponse))
}

func TestAppend_ChannelInactiveReturnsQueuedParts(t *testing.T) {
	m := NewMachine()
	p1, p2 := promise.New(), promise.New()

	sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)
	sendChunk(t, m, command.AppendBeginMessage{Size: 3}, nil)
	sendQueued(t, m, command.AppendMessageBytes{Data: []byte("abc")}, p1)
	sendQueued(t, m, command.AppendEndMessage{}, p2)

	require.Equal(t, []*promise.Promise{p1, p2}, m.ChannelInactive())
}

func TestAppend_SecondStartWhileAppending(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		m := NewMachine()

		sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)

		chunk, err := m.SendCommand(command.AppendStart{Tag: "A2", Mailbox: "Sent"}, nil)
		require.True(t, IsInvalidCommandForState(err))
		require.Nil(t, chunk)
		require.Equal(t, StateError, m.State())
	})

	t.Run("after message", func(t *testing.T) {
		m := NewMachine()

		sendChunk(t, m, command.AppendStart{Tag: "A1", Mailbox: "INBOX"}, nil)
		sendChunk(t, m, command.AppendBeginMessage{Size: 0}, nil)
		sendChunk(t, m, command.AppendEndMessage{}, nil)

		chunk, err := m.SendCommand(command.AppendStart{Tag: "A2", Mailbox: "Sent"}, nil)
		require.True(t, IsInvalidCommandForState(err))
		require.Nil(t, chunk)
		require.Equal(t, StateError, m.State())
	})
}
