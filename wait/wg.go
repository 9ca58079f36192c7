package wait

import (
	"sync"

	"github.com/ProtonMail/photon/async"
)

// Group is a WaitGroup whose goroutines defer to a panic handler.
type Group struct {
	wg           sync.WaitGroup
	PanicHandler async.PanicHandler
}

func (wg *Group) Go(f func()) {
	wg.wg.Add(1)

	go func() {
		defer wg.wg.Done()
		defer async.HandlePanic(wg.PanicHandler)

		f()
	}()
}

func (wg *Group) Wait() {
	wg.wg.Wait()
}
