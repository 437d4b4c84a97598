//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// handleRefresh refreshes all generators on SIGUSR1 until ctx is done.
// The signal is registered before it returns.
func handleRefresh(ctx context.Context, a *app) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				a.log.Info("Got refreshing signal, refreshing...")
				err := a.refresh()
				if err != nil {
					a.log.Error("Error refreshing generators", zap.Error(err))
				}
			}
		}
	}()
}
