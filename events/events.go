// Package events defines what a client publishes to its owner while a connection is running.
package events

import "github.com/ProtonMail/photon/imap/response"

type Event interface {
	_isEvent()
}

type eventBase struct{}

func (eventBase) _isEvent() {}

// IdleStarted is published once the server confirmed an IDLE command.
type IdleStarted struct {
	eventBase

	Tag string
}

// AuthenticationChallenge is published for every challenge received while authenticating.
type AuthenticationChallenge struct {
	eventBase

	Data []byte
}

// Untagged carries a server response that did not complete a command.
type Untagged struct {
	eventBase

	Response response.Response
}

// ConnectionClosed is the last event published. Err is nil after a local Close.
type ConnectionClosed struct {
	eventBase

	Err error
}
