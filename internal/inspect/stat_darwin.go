//go:build darwin

package inspect

import (
	"os"
	"syscall"
	"time"
)

// platformExtension extracts timestamps and link data from syscall.Stat_t
func platformExtension(_ string, info os.FileInfo, _ bool) *Extension {
	sysstat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	return &Extension{
		Platform:   "darwin",
		AccessTime: time.Unix(sysstat.Atimespec.Sec, sysstat.Atimespec.Nsec),
		ChangeTime: time.Unix(sysstat.Ctimespec.Sec, sysstat.Ctimespec.Nsec),
		BirthTime:  time.Unix(sysstat.Birthtimespec.Sec, sysstat.Birthtimespec.Nsec),
		Links:      uint64(sysstat.Nlink),
		Inode:      sysstat.Ino,
	}
}
