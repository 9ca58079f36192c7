package state

import (
	"errors"
	"fmt"

	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/promise"
)

var (
	// ErrInvalidClientState is returned when a command is sent after the machine entered the error state.
	ErrInvalidClientState = errors.New("invalid client state")

	// ErrUnexpectedAppendCommand is returned when an APPEND is started without a tag.
	ErrUnexpectedAppendCommand = errors.New("unexpected append command")

	// ErrAppendAborted fails append parts still queued when the server completes the APPEND early.
	ErrAppendAborted = errors.New("append completed before all parts were sent")
)

type DuplicateCommandTagError struct {
	Tag string
}

func (e *DuplicateCommandTagError) Error() string {
	return fmt.Sprintf("duplicate command tag %q", e.Tag)
}

type UnexpectedResponseKind string

const (
	UnknownTagCompletion                      UnexpectedResponseKind = "command completion with unknown tag"
	AppendNotWaitingForTaggedResponse         UnexpectedResponseKind = "append not waiting for tagged response"
	TaggedWhileExpectingContinuationRequest   UnexpectedResponseKind = "tagged response while expecting continuation request"
	ResponseInErrorState                      UnexpectedResponseKind = "error state"
	UnexpectedAuthenticationChallenge         UnexpectedResponseKind = "authentication challenge"
	UnexpectedIdleStarted                     UnexpectedResponseKind = "idle started"
	IdleRunning                               UnexpectedResponseKind = "idle running"
	AuthenticationWaitingForChallengeResponse UnexpectedResponseKind = "authentication waiting for challenge response"
	AuthenticationFinished                    UnexpectedResponseKind = "authentication finished"
)

type UnexpectedResponseError struct {
	Kind UnexpectedResponseKind

	// Tag is set for UnknownTagCompletion.
	Tag string

	// ActivePromise is the promise of a command whose remaining chunks will never be written.
	// The caller must fail it.
	ActivePromise *promise.Promise
}

func (e *UnexpectedResponseError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("unexpected response: %v (%v)", e.Kind, e.Tag)
	}

	return fmt.Sprintf("unexpected response: %v", e.Kind)
}

type UnexpectedContinuationRequestKind string

const (
	ContinuationWhileAppending      UnexpectedContinuationRequestKind = "append"
	ContinuationWhileAuthenticating UnexpectedContinuationRequestKind = "authentication"
	ContinuationWhileIdle           UnexpectedContinuationRequestKind = "idle"
	ContinuationWhileNormal         UnexpectedContinuationRequestKind = "normal"
)

type UnexpectedContinuationRequestError struct {
	Kind UnexpectedContinuationRequestKind
}

func (e *UnexpectedContinuationRequestError) Error() string {
	return fmt.Sprintf("unexpected continuation request: %v", e.Kind)
}

type InvalidCommandForStateError struct {
	Command command.StreamPart
	State   string
}

func (e *InvalidCommandForStateError) Error() string {
	return fmt.Sprintf("invalid command for state %v: %v", e.State, e.Command.SanitizedString())
}

// IsUnexpectedResponse returns true if the error is an UnexpectedResponseError of the given kind.
func IsUnexpectedResponse(err error, kind UnexpectedResponseKind) bool {
	var resErr *UnexpectedResponseError
	return errors.As(err, &resErr) && resErr.Kind == kind
}

// IsUnexpectedContinuationRequest returns true if the error is an UnexpectedContinuationRequestError of the given kind.
func IsUnexpectedContinuationRequest(err error, kind UnexpectedContinuationRequestKind) bool {
	var reqErr *UnexpectedContinuationRequestError
	return errors.As(err, &reqErr) && reqErr.Kind == kind
}

// IsInvalidCommandForState returns true if the error is an InvalidCommandForStateError.
func IsInvalidCommandForState(err error) bool {
	var cmdErr *InvalidCommandForStateError
	return errors.As(err, &cmdErr)
}

// IsDuplicateCommandTag returns true if the error is a DuplicateCommandTagError.
func IsDuplicateCommandTag(err error) bool {
	var tagErr *DuplicateCommandTagError
	return errors.As(err, &tagErr)
}
