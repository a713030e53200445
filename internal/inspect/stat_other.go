//go:build !linux && !darwin && !windows

package inspect

import "os"

// platformExtension reports nothing on platforms without a known layout
func platformExtension(_ string, _ os.FileInfo, _ bool) *Extension {
	return nil
}
