//go:build windows

package main

import "context"

func handleRefresh(ctx context.Context, a *app) {
}
