package state

import (
	"testing"

	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/response"
	"github.com/ProtonMail/photon/promise"
	"github.com/stretchr/testify/require"
)

func idle(tag string) command.Command {
	return command.Command{Tag: tag, Payload: command.IdleCommand{}}
}

func startIdle(t *testing.T, m *Machine) {
	chunk := sendChunk(t, m, idle("A1"), nil)
	require.Equal(t, "A1 IDLE\r\n", string(chunk.Bytes))
	require.True(t, chunk.ShouldSucceedPromise)
	require.Equal(t, StateIdle, m.State())
}

func TestIdle_Lifecycle(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	action, err := m.ReceiveContinuationRequest(&response.ContinuationText{Text: "idling"})
	require.NoError(t, err)
	require.Equal(t, FireIdleStarted, action.Kind)
	require.Empty(t, action.Chunks)

	require.NoError(t, m.ReceiveResponse(&response.Untagged{Name: "EXISTS", Number: 4, HasNumber: true}))
	require.Equal(t, StateIdle, m.State())

	p := promise.New()

	chunk := sendChunk(t, m, command.IdleDone{}, p)
	require.Equal(t, "DONE\r\n", string(chunk.Bytes))
	require.True(t, chunk.ShouldSucceedPromise)
	require.Same(t, p, chunk.Promise)
	require.Equal(t, StateExpectingNormalResponse, m.State())

	require.NoError(t, m.ReceiveResponse(tagged("A1", response.StatusOK)))
	require.Empty(t, m.ActiveTags())
}

func TestIdle_SecondConfirmation(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	_, err := m.ReceiveContinuationRequest(&response.ContinuationText{})
	require.NoError(t, err)

	_, err = m.ReceiveContinuationRequest(&response.ContinuationText{})
	require.True(t, IsUnexpectedContinuationRequest(err, ContinuationWhileIdle))
	require.Equal(t, StateError, m.State())
}

func TestIdle_StartedResponse(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	require.NoError(t, m.ReceiveResponse(&response.IdleStarted{}))
	require.True(t, IsUnexpectedResponse(m.ReceiveResponse(&response.IdleStarted{}), IdleRunning))
}

func TestIdle_OtherCommandWhileIdle(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	_, err := m.ReceiveContinuationRequest(&response.ContinuationText{})
	require.NoError(t, err)

	_, err = m.SendCommand(noop("A2"), nil)
	require.True(t, IsInvalidCommandForState(err))
	require.Equal(t, StateError, m.State())
}

func TestIdle_DoneBeforeConfirmation(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	_, err := m.SendCommand(command.IdleDone{}, nil)
	require.True(t, IsInvalidCommandForState(err))
}

func TestIdle_DoneOutsideIdle(t *testing.T) {
	m := NewMachine()

	_, err := m.SendCommand(command.IdleDone{}, nil)
	require.True(t, IsInvalidCommandForState(err))
}

func TestIdle_TerminatedByServer(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	_, err := m.ReceiveContinuationRequest(&response.ContinuationText{})
	require.NoError(t, err)

	require.NoError(t, m.ReceiveResponse(tagged("A1", response.StatusOK)))
	require.Equal(t, StateExpectingNormalResponse, m.State())
}

func TestIdle_RejectedByServer(t *testing.T) {
	m := NewMachine()

	startIdle(t, m)

	require.NoError(t, m.ReceiveResponse(tagged("A1", response.StatusBad)))
	require.Equal(t, StateExpectingNormalResponse, m.State())
}

func TestIdle_PipeliningPanics(t *testing.T) {
	m := NewMachine()

	sendChunk(t, m, noop("A1"), nil)

	require.Panics(t, func() {
		_, _ = m.SendCommand(idle("A2"), nil)
	})
}
