//go:build !linux && !darwin

package server

import "go.uber.org/zap"

func dropPrivs(log *zap.Logger) {
	log.Debug("Privilege dropping not supported on this platform")
}
