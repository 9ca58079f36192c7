package async

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	recovered *interface{}
}

func (h recordingHandler) HandlePanic(r interface{}) {
	*h.recovered = r
}

func TestPanicHandler(t *testing.T) {
	var recovered interface{}

	require.NotPanics(t, func() {
		defer HandlePanic(recordingHandler{recovered: &recovered})
		panic("there")
	})

	require.Equal(t, "there", recovered)

	require.PanicsWithValue(t, "where", func() {
		defer HandlePanic(NoopPanicHandler{})
		panic("where")
	})

	require.PanicsWithValue(t, "everywhere", func() {
		defer HandlePanic(nil)
		panic("everywhere")
	})

	require.PanicsWithValue(t, "nowhere", func() {
		defer HandlePanic(&NoopPanicHandler{})
		panic("nowhere")
	})

	require.NotPanics(t, func() {
		defer HandlePanic(LogPanicHandler{})
		panic("logged")
	})

	require.NotPanics(t, func() {
		defer HandlePanic(recordingHandler{recovered: &recovered})
	})
}
