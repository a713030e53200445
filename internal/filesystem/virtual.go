// Package filesystem provides virtual path resolution for multiple directories
package filesystem

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"metastat/internal/config"
)

// VirtualFS handles virtual path operations for multiple directories
type VirtualFS struct {
	Directories []config.DirMapping
}

// NewVirtualFS creates a new virtual filesystem
func NewVirtualFS(dirs []config.DirMapping) *VirtualFS {
	// Longest virtual path first so more specific mappings win
	sortedDirs := make([]config.DirMapping, len(dirs))
	copy(sortedDirs, dirs)
	sort.SliceStable(sortedDirs, func(i, j int) bool {
		return len(sortedDirs[i].Virtual) > len(sortedDirs[j].Virtual)
	})

	return &VirtualFS{
		Directories: sortedDirs,
	}
}

// CleanVirtualPath normalizes a virtual path to an absolute, slash-separated
// form with no ".." elements.
func CleanVirtualPath(virtualPath string) string {
	return path.Clean("/" + strings.TrimPrefix(virtualPath, "/"))
}

// ResolvePath converts a virtual path to a physical path.
// found is false when no mapping covers the path.
func (vfs *VirtualFS) ResolvePath(virtualPath string) (physicalPath string, found bool) {
	virtualPath = CleanVirtualPath(virtualPath)

	for _, dir := range vfs.Directories {
		if !Within(virtualPath, dir.Virtual) {
			continue
		}

		relativePath := strings.TrimPrefix(virtualPath, strings.TrimSuffix(dir.Virtual, "/"))
		relativePath = strings.TrimPrefix(relativePath, "/")
		if relativePath == "" {
			return dir.Source, true
		}
		return filepath.Join(dir.Source, filepath.FromSlash(relativePath)), true
	}

	return "", false
}

// GetVirtualPath converts a physical path back to a virtual path
func (vfs *VirtualFS) GetVirtualPath(physicalPath string) (virtualPath string, found bool) {
	physicalPath = filepath.Clean(physicalPath)

	for _, dir := range vfs.Directories {
		if physicalPath == dir.Source {
			return dir.Virtual, true
		}
		if strings.HasPrefix(physicalPath, dir.Source+string(filepath.Separator)) {
			relativePath := strings.TrimPrefix(physicalPath, dir.Source)
			relativePath = strings.TrimPrefix(relativePath, string(filepath.Separator))
			return path.Join(dir.Virtual, filepath.ToSlash(relativePath)), true
		}
	}

	return "", false
}

// Within reports whether virtualPath equals prefix or lies below it.
// Both paths are cleaned first.
func Within(virtualPath, prefix string) bool {
	virtualPath = CleanVirtualPath(virtualPath)
	prefix = CleanVirtualPath(prefix)

	if prefix == "/" {
		return true
	}
	return virtualPath == prefix || strings.HasPrefix(virtualPath, prefix+"/")
}
