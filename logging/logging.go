// Package logging labels client goroutines for profiling and writes wire logs.
package logging

import (
	"context"
	"fmt"
	"runtime"
	"runtime/pprof"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	SessionKey = "session"
	RoleKey    = "role"
)

// Session returns a logger carrying the session ID.
func Session(sessionID string) *logrus.Entry {
	return logrus.WithField(SessionKey, sessionID)
}

// DoSession runs fn with pprof labels naming the session, the goroutine's role in it and the caller.
func DoSession(ctx context.Context, sessionID, role string, fn func(context.Context)) {
	pprof.Do(ctx, callerLabels(SessionKey, sessionID, RoleKey, role), fn)
}

// DoAnnotate runs fn with pprof labels naming the caller, plus the given labels.
func DoAnnotate(ctx context.Context, fn func(context.Context), labelMap ...map[string]any) {
	var extra []string

	for _, labelMap := range labelMap {
		for key, val := range labelMap {
			extra = append(extra, key, fmt.Sprintf("%v", val))
		}
	}

	pprof.Do(ctx, callerLabels(extra...), fn)
}

// callerLabels must be called directly by an exported function of this package.
func callerLabels(extra ...string) pprof.LabelSet {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		panic("failed to get caller's stack frame")
	}

	labels := []string{"fn", runtime.FuncForPC(pc).Name(), "file", file, "line", strconv.Itoa(line)}

	return pprof.Labels(append(labels, extra...)...)
}
