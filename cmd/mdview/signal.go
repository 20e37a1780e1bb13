package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals end a running command. Windows delivers only os.Interrupt
// but accepts SIGTERM in the list.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// notifyContext returns a context canceled on the first shutdown signal.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
