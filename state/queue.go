package state

import (
	"github.com/ProtonMail/photon/imap/command"
	"github.com/ProtonMail/photon/promise"
)

type queuedCommand struct {
	part    command.StreamPart
	promise *promise.Promise
}

// commandQueue holds commands which have been admitted but not yet written.
// Entries up to and including the mark may be drained.
type commandQueue struct {
	items []queuedCommand

	// mark is the index of the last flushed entry, or -1 if nothing is flushed.
	mark int
}

func newCommandQueue() *commandQueue {
	return &commandQueue{mark: -1}
}

func (q *commandQueue) push(part command.StreamPart, p *promise.Promise) {
	q.items = append(q.items, queuedCommand{part: part, promise: p})
}

// setMark marks the current tail; an empty queue has no mark.
func (q *commandQueue) setMark() {
	q.mark = len(q.items) - 1
}

func (q *commandQueue) hasMark() bool {
	return q.mark >= 0
}

func (q *commandQueue) peek() (queuedCommand, bool) {
	if len(q.items) == 0 {
		return queuedCommand{}, false
	}

	return q.items[0], true
}

func (q *commandQueue) pop() queuedCommand {
	if len(q.items) == 0 {
		panic("popping from an empty command queue")
	}

	item := q.items[0]

	q.items[0] = queuedCommand{}
	q.items = q.items[1:]

	if q.mark >= 0 {
		q.mark--
	}

	return item
}

func (q *commandQueue) len() int {
	return len(q.items)
}

func (q *commandQueue) promises() []*promise.Promise {
	var promises []*promise.Promise

	for _, item := range q.items {
		if item.promise != nil {
			promises = append(promises, item.promise)
		}
	}

	return promises
}
