//go:build darwin

package server

import (
	"os"
	"strconv"
	"syscall"

	"go.uber.org/zap"
)

func dropPrivs(log *zap.Logger) {
	uid, _ := strconv.Atoi(os.Getenv("PUID"))
	gid, _ := strconv.Atoi(os.Getenv("PGID"))

	log.Info("Startup IDs", zap.Int("uid", syscall.Getuid()), zap.Int("gid", syscall.Getgid()))

	if gid > 0 {
		err := syscall.Setregid(gid, gid)
		if err != nil {
			log.Error("Error dropping GID", zap.Int("gid", gid), zap.Error(err))
		}
	}

	if uid > 0 {
		err := syscall.Setreuid(uid, uid)
		if err != nil {
			log.Error("Error dropping UID", zap.Int("uid", uid), zap.Error(err))
		}
	}

	log.Info("Runtime IDs", zap.Int("uid", syscall.Getuid()), zap.Int("gid", syscall.Getgid()))
}
