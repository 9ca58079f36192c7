// Package photon implements an IMAP4rev1 client driven by a pipelining state machine.
package photon

import (
	"errors"

	"github.com/ProtonMail/photon/imap/response"
	"github.com/ProtonMail/photon/state"
)

var (
	ErrClosed    = errors.New("the connection is closed")
	ErrServerBye = errors.New("the server closed the connection")
	ErrBadGreet  = errors.New("unexpected server greeting")
	ErrNoMessage = errors.New("no message to append")

	ErrIdleNotConfirmed = errors.New("server completed IDLE without confirming it")
)

// IsClosed returns true if the error was caused by the connection going away.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed) || errors.Is(err, ErrServerBye)
}

// IsProtocolError returns true if the server sent something the client state machine could not accept.
func IsProtocolError(err error) bool {
	var (
		resErr  *state.UnexpectedResponseError
		contErr *state.UnexpectedContinuationRequestError
	)

	return errors.As(err, &resErr) || errors.As(err, &contErr)
}

// IsNo returns true if the server refused the command with a NO response.
func IsNo(err error) bool {
	return response.IsNo(err)
}

// IsBad returns true if the server rejected the command with a BAD response.
func IsBad(err error) bool {
	return response.IsBad(err)
}
