//go:build linux

package inspect

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const statxMask = unix.STATX_ATIME | unix.STATX_CTIME | unix.STATX_BTIME | unix.STATX_NLINK | unix.STATX_INO

// platformExtension reads statx data for path, falling back to the
// syscall.Stat_t carried by info on kernels without statx.
func platformExtension(path string, info os.FileInfo, follow bool) *Extension {
	flags := unix.AT_STATX_SYNC_AS_STAT
	if !follow {
		flags |= unix.AT_SYMLINK_NOFOLLOW
	}

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, flags, statxMask, &stx); err == nil {
		ext := &Extension{
			Platform:   "linux",
			AccessTime: statxTime(stx.Atime),
			ChangeTime: statxTime(stx.Ctime),
			Links:      uint64(stx.Nlink),
			Inode:      stx.Ino,
		}
		if stx.Mask&unix.STATX_BTIME == unix.STATX_BTIME {
			ext.BirthTime = statxTime(stx.Btime)
		}
		return ext
	}

	sysstat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	return &Extension{
		Platform:   "linux",
		AccessTime: time.Unix(int64(sysstat.Atim.Sec), int64(sysstat.Atim.Nsec)),
		ChangeTime: time.Unix(int64(sysstat.Ctim.Sec), int64(sysstat.Ctim.Nsec)),
		Links:      uint64(sysstat.Nlink),
		Inode:      sysstat.Ino,
	}
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
