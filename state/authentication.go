package state

import (
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/response"
)

type authenticationState int

const (
	authenticationWaitingForServer authenticationState = iota
	authenticationWaitingForChallengeResponse
	authenticationFinished
)

// authenticationMachine follows an AUTHENTICATE exchange. Every challenge must be answered
// by exactly one continuation response before the server may speak again.
type authenticationMachine struct {
	state authenticationState
}

func newAuthenticationMachine() *authenticationMachine {
	return &authenticationMachine{state: authenticationWaitingForServer}
}

func (m *authenticationMachine) receiveContinuationRequest() error {
	if m.state != authenticationWaitingForServer {
		return &UnexpectedContinuationRequestError{Kind: ContinuationWhileAuthenticating}
	}

	m.state = authenticationWaitingForChallengeResponse

	return nil
}

func (m *authenticationMachine) receiveResponse(res response.Response) error {
	switch m.state {
	case authenticationWaitingForChallengeResponse:
		return &UnexpectedResponseError{Kind: AuthenticationWaitingForChallengeResponse}

	case authenticationFinished:
		return &UnexpectedResponseError{Kind: AuthenticationFinished}
	}

	switch res.(type) {
	case *response.IdleStarted:
		return &UnexpectedResponseError{Kind: UnexpectedIdleStarted}

	case *response.AuthenticationChallenge:
		m.state = authenticationWaitingForChallengeResponse

	default:
		m.state = authenticationFinished
	}

	return nil
}

func (m *authenticationMachine) sendCommand(part command.StreamPart) error {
	switch part.(type) {
	case command.ContinuationResponse, *command.ContinuationResponse:
		if m.state != authenticationWaitingForChallengeResponse {
			return &InvalidCommandForStateError{Command: part, State: m.String()}
		}

		m.state = authenticationWaitingForServer

		return nil

	default:
		return &InvalidCommandForStateError{Command: part, State: m.String()}
	}
}

func (m *authenticationMachine) String() string {
	switch m.state {
	case authenticationWaitingForChallengeResponse:
		return "authentication waiting for challenge response"

	case authenticationFinished:
		return "authentication finished"

	default:
		return "authentication waiting for server"
	}
}
