// Package inspect reads filesystem metadata for a single path and derives
// a metadata report from it.
//
// The report is built from the entry's own metadata (lstat) unless
// Options.Follow is set, in which case size, kind and modification time
// come from the link target while IsSymlink still describes the path
// itself.
package inspect

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"metastat/internal/format"
)

// EntryKind is the type of a filesystem entry
type EntryKind int

const (
	// File is any non-directory entry
	File EntryKind = iota
	// Directory is a directory entry
	Directory
)

// String returns the kind name
func (k EntryKind) String() string {
	if k == Directory {
		return "Directory"
	}
	return "File"
}

// Label returns the user-facing type label ("File" or "Folder")
func (k EntryKind) Label() string {
	if k == Directory {
		return "Folder"
	}
	return "File"
}

// Options controls how Inspect resolves metadata
type Options struct {
	// Follow resolves size, kind and modification time through symlinks
	Follow bool
	// Units selects the unit style for the scaled size
	Units format.UnitStyle
	// Extended attaches the platform extension record when available
	Extended bool
}

// Report describes one filesystem entry. It is built once per inspection
// and not modified afterwards.
type Report struct {
	Path         string
	Name         string
	Kind         EntryKind
	SizeBytes    uint64
	Size         format.Scaled
	IsSymlink    bool
	LinkTarget   string
	Followed     bool
	ModTime      time.Time
	LastModified string
	Extension    *Extension
}

// Extension holds platform-specific metadata. Zero times mean the
// platform did not report that timestamp.
type Extension struct {
	Platform   string
	AccessTime time.Time
	ChangeTime time.Time
	BirthTime  time.Time
	Links      uint64
	Inode      uint64
	Attributes []string
}

var errNoModTime = errors.New("modification time not supported on this platform")

// Inspect reads the metadata of path and builds its report
func Inspect(path string, opts Options) (*Report, error) {
	linfo, err := os.Lstat(path)
	if err != nil {
		return nil, &Error{Kind: Inaccessible, Path: path, Err: unwrapPathError(err)}
	}

	isLink := linfo.Mode()&os.ModeSymlink != 0
	info := linfo
	followed := false
	if opts.Follow && isLink {
		info, err = os.Stat(path)
		if err != nil {
			return nil, &Error{Kind: Inaccessible, Path: path, Err: unwrapPathError(err)}
		}
		followed = true
	}

	size := info.Size()
	if size < 0 {
		size = 0
	}
	kind := File
	if info.IsDir() {
		kind = Directory
	}

	mtime := info.ModTime()
	if mtime.IsZero() {
		return nil, &Error{Kind: ClockUnavailable, Path: path, Err: errNoModTime}
	}
	mtime = mtime.Local().Truncate(time.Second)

	name, err := finalComponent(path)
	if err != nil {
		return nil, &Error{Kind: UnresolvableName, Path: path, Err: err}
	}

	rep := &Report{
		Path:         path,
		Name:         name,
		Kind:         kind,
		SizeBytes:    uint64(size),
		Size:         format.Size(uint64(size), opts.Units),
		IsSymlink:    isLink,
		Followed:     followed,
		ModTime:      mtime,
		LastModified: format.Timestamp(mtime),
	}

	if isLink {
		if target, err := os.Readlink(path); err == nil {
			rep.LinkTarget = target
		}
	}

	if opts.Extended {
		rep.Extension = platformExtension(path, info, followed)
	}

	return rep, nil
}

var errNoFinalComponent = errors.New("path has no final component")

// finalComponent returns the last element of path. Trailing separators
// are ignored; ".", ".." and bare roots have no usable name.
func finalComponent(path string) (string, error) {
	if path == "" || filepath.VolumeName(path) == path {
		return "", errNoFinalComponent
	}

	name := filepath.Base(path)
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", errNoFinalComponent
	}
	return name, nil
}

// unwrapPathError drops the *PathError wrapper so the message is not
// repeated: the inspection error already names the path.
func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
