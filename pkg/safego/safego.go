package safego

import (
	"context"
	"runtime/debug"

	"github.com/hatcher/taskpilot/pkg/logs"
)

// Go runs f in a goroutine with panic recovery.
func Go(ctx context.Context, f func()) {
	go func() {
		defer Recovery(ctx)
		f()
	}()
}

// Recovery catches a panic and logs it instead of crashing the process.
func Recovery(ctx context.Context) {
	e := recover()
	if e == nil {
		return
	}
	logs.Errorf("[Recovery] caught panic error = %v \n stacktrace = \n%s", e, string(debug.Stack()))
}
