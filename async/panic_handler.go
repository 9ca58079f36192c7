package async

import "github.com/sirupsen/logrus"

type PanicHandler interface {
	HandlePanic(r interface{})
}

// NoopPanicHandler lets panics propagate.
type NoopPanicHandler struct{}

func (n NoopPanicHandler) HandlePanic(interface{}) {}

// LogPanicHandler recovers panics and logs them.
type LogPanicHandler struct {
	Entry *logrus.Entry
}

func (h LogPanicHandler) HandlePanic(r interface{}) {
	entry := h.Entry
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}

	entry.WithField("panic", r).Error("Recovered from panic")
}

// HandlePanic must be deferred directly. It recovers the panic and passes it to the handler unless the handler is nil
// or a NoopPanicHandler, in which case the panic continues to unwind.
func HandlePanic(panicHandler PanicHandler) {
	switch panicHandler.(type) {
	case nil, NoopPanicHandler, *NoopPanicHandler:
		return
	}

	if r := recover(); r != nil {
		panicHandler.HandlePanic(r)
	}
}
