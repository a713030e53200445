//go:build windows

package inspect

import (
	"os"
	"time"

	"golang.org/x/sys/windows"
)

var fileAttributeNames = []struct {
	flag uint32
	name string
}{
	{windows.FILE_ATTRIBUTE_READONLY, "readonly"},
	{windows.FILE_ATTRIBUTE_HIDDEN, "hidden"},
	{windows.FILE_ATTRIBUTE_SYSTEM, "system"},
	{windows.FILE_ATTRIBUTE_DIRECTORY, "directory"},
	{windows.FILE_ATTRIBUTE_ARCHIVE, "archive"},
	{windows.FILE_ATTRIBUTE_NORMAL, "normal"},
	{windows.FILE_ATTRIBUTE_TEMPORARY, "temporary"},
	{windows.FILE_ATTRIBUTE_SPARSE_FILE, "sparse"},
	{windows.FILE_ATTRIBUTE_REPARSE_POINT, "reparse-point"},
	{windows.FILE_ATTRIBUTE_COMPRESSED, "compressed"},
	{windows.FILE_ATTRIBUTE_OFFLINE, "offline"},
	{windows.FILE_ATTRIBUTE_NOT_CONTENT_INDEXED, "not-content-indexed"},
	{windows.FILE_ATTRIBUTE_ENCRYPTED, "encrypted"},
}

// platformExtension opens a handle on path and reads its by-handle
// information: attributes, creation and access times, link count and
// file index.
func platformExtension(path string, _ os.FileInfo, follow bool) *Extension {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil
	}

	flags := uint32(windows.FILE_FLAG_BACKUP_SEMANTICS)
	if !follow {
		flags |= windows.FILE_FLAG_OPEN_REPARSE_POINT
	}
	h, err := windows.CreateFile(name, 0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, flags, 0)
	if err != nil {
		return nil
	}
	defer windows.CloseHandle(h) //nolint:errcheck

	var data windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &data); err != nil {
		return nil
	}

	return &Extension{
		Platform:   "windows",
		AccessTime: time.Unix(0, data.LastAccessTime.Nanoseconds()),
		BirthTime:  time.Unix(0, data.CreationTime.Nanoseconds()),
		Links:      uint64(data.NumberOfLinks),
		Inode:      uint64(data.FileIndexHigh)<<32 | uint64(data.FileIndexLow),
		Attributes: attributeNames(data.FileAttributes),
	}
}

func attributeNames(attrs uint32) []string {
	var names []string
	for _, a := range fileAttributeNames {
		if attrs&a.flag != 0 {
			names = append(names, a.name)
		}
	}
	return names
}
