package wait

import (
	"sync/atomic"
	"testing"

	"github.com/ProtonMail/photon/async"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestGroup_Wait(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		group Group
		count int32
	)

	for i := 0; i < 10; i++ {
		group.Go(func() { atomic.AddInt32(&count, 1) })
	}

	group.Wait()

	require.Equal(t, int32(10), atomic.LoadInt32(&count))
}

func TestGroup_RecoversPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	group := Group{PanicHandler: async.LogPanicHandler{}}

	group.Go(func() { panic("boom") })

	group.Wait()
}
