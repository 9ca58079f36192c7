package state

import (
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/imap/response"
)

type appendState int

const (
	appendStarted appendState = iota
	appendWaitingForMessageContinuation
	appendSendingMessageBytes
	appendCatenating
	appendWaitingForCatenateContinuation
	appendSendingCatenateBytes
	appendFinished
)

var appendStateNames = map[appendState]string{
	appendStarted:                        "append started",
	appendWaitingForMessageContinuation:  "append waiting for message continuation",
	appendSendingMessageBytes:            "append sending message bytes",
	appendCatenating:                     "catenating",
	appendWaitingForCatenateContinuation: "append waiting for catenate continuation",
	appendSendingCatenateBytes:           "append sending catenate bytes",
	appendFinished:                       "append finished",
}

// appendMachine follows an APPEND command, possibly carrying several messages (MULTIAPPEND)
// each of which may be assembled with CATENATE.
type appendMachine struct {
	tag   string
	state appendState

	messages int

	hasCatenatedAtLeastOneObject bool
}

func newAppendMachine(tag string) *appendMachine {
	return &appendMachine{tag: tag, state: appendStarted}
}

func (m *appendMachine) isWaitingForContinuationRequest() bool {
	return m.state == appendWaitingForMessageContinuation || m.state == appendWaitingForCatenateContinuation
}

// sendCommand advances past the given part. waitsForContinuation reports whether the part
// was encoded as a synchronizing literal header of positive size, encodedCatenateElement
// whether the buffer it was encoded into has written a catenate element.
func (m *appendMachine) sendCommand(part command.AppendPart, waitsForContinuation, encodedCatenateElement bool) error {
	next, ok := m.next(part, waitsForContinuation)
	if !ok {
		return &InvalidCommandForStateError{Command: part, State: m.String()}
	}

	if next == appendCatenating && m.state == appendStarted {
		m.hasCatenatedAtLeastOneObject = false
	} else {
		m.hasCatenatedAtLeastOneObject = encodedCatenateElement
	}

	if next == appendStarted {
		m.messages++
	}

	m.state = next

	return nil
}

func (m *appendMachine) next(part command.AppendPart, waitsForContinuation bool) (appendState, bool) {
	switch m.state {
	case appendStarted:
		switch part.(type) {
		case command.AppendBeginMessage, *command.AppendBeginMessage:
			if waitsForContinuation {
				return appendWaitingForMessageContinuation, true
			}

			return appendSendingMessageBytes, true

		case command.AppendBeginCatenate, *command.AppendBeginCatenate:
			return appendCatenating, true

		case command.AppendFinish, *command.AppendFinish:
			return appendFinished, m.messages > 0
		}

	case appendSendingMessageBytes:
		switch part.(type) {
		case command.AppendMessageBytes, *command.AppendMessageBytes:
			return appendSendingMessageBytes, true

		case command.AppendEndMessage, *command.AppendEndMessage:
			return appendStarted, true
		}

	case appendCatenating:
		switch part.(type) {
		case command.AppendCatenateURL, *command.AppendCatenateURL:
			return appendCatenating, true

		case command.AppendCatenateDataBegin, *command.AppendCatenateDataBegin:
			if waitsForContinuation {
				return appendWaitingForCatenateContinuation, true
			}

			return appendSendingCatenateBytes, true

		case command.AppendEndCatenate, *command.AppendEndCatenate:
			return appendStarted, true
		}

	case appendSendingCatenateBytes:
		switch part.(type) {
		case command.AppendCatenateDataBytes, *command.AppendCatenateDataBytes:
			return appendSendingCatenateBytes, true

		case command.AppendCatenateDataEnd, *command.AppendCatenateDataEnd:
			return appendCatenating, true
		}
	}

	return m.state, false
}

func (m *appendMachine) receiveContinuationRequest() error {
	switch m.state {
	case appendWaitingForMessageContinuation:
		m.state = appendSendingMessageBytes

	case appendWaitingForCatenateContinuation:
		m.state = appendSendingCatenateBytes

	default:
		return &UnexpectedContinuationRequestError{Kind: ContinuationWhileAppending}
	}

	return nil
}

// receiveResponse returns true once the tagged completion of the APPEND has been received.
// The server may refuse a literal instead of sending a continuation request, so a completion
// while waiting for one is accepted as well.
func (m *appendMachine) receiveResponse(res response.Response) (bool, error) {
	switch res := res.(type) {
	case *response.Tagged:
		if res.Tag != m.tag {
			return false, nil
		}

		if m.state != appendFinished && !m.isWaitingForContinuationRequest() {
			return false, &UnexpectedResponseError{Kind: AppendNotWaitingForTaggedResponse}
		}

		return true, nil

	case *response.AuthenticationChallenge:
		return false, &UnexpectedResponseError{Kind: UnexpectedAuthenticationChallenge}

	case *response.IdleStarted:
		return false, &UnexpectedResponseError{Kind: UnexpectedIdleStarted}

	default:
		return false, nil
	}
}

func (m *appendMachine) String() string {
	return appendStateNames[m.state]
}
