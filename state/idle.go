package state

import (
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/response"
)

type idleState int

const (
	idleWaitingForConfirmation idleState = iota
	idleIdling
)

// idleMachine follows an IDLE command from its tagged start until the client sends DONE.
type idleMachine struct {
	state idleState
}

func newIdleMachine() *idleMachine {
	return &idleMachine{state: idleWaitingForConfirmation}
}

func (m *idleMachine) receiveContinuationRequest() error {
	if m.state != idleWaitingForConfirmation {
		return &UnexpectedContinuationRequestError{Kind: ContinuationWhileIdle}
	}

	m.state = idleIdling

	return nil
}

// receiveResponse returns true once IDLE has ended without the client sending DONE,
// that is when the server rejected or terminated the command.
func (m *idleMachine) receiveResponse(res response.Response) (bool, error) {
	switch res.(type) {
	case *response.Tagged:
		return true, nil

	case *response.IdleStarted:
		if m.state != idleWaitingForConfirmation {
			return false, &UnexpectedResponseError{Kind: IdleRunning}
		}

		m.state = idleIdling

		return false, nil

	case *response.AuthenticationChallenge:
		return false, &UnexpectedResponseError{Kind: UnexpectedAuthenticationChallenge}

	default:
		return false, nil
	}
}

func (m *idleMachine) sendCommand(part command.StreamPart) error {
	switch part.(type) {
	case command.IdleDone, *command.IdleDone:
		if m.state != idleIdling {
			return &InvalidCommandForStateError{Command: part, State: "idle waiting for confirmation"}
		}

		return nil

	default:
		return &InvalidCommandForStateError{Command: part, State: m.String()}
	}
}

func (m *idleMachine) String() string {
	if m.state == idleIdling {
		return "idling"
	}

	return "idle waiting for confirmation"
}
