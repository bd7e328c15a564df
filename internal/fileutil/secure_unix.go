//go:build !windows

package fileutil

import "os"

// SecureWriteFile writes data with owner-only permissions. Plain mode bits
// are all it takes here; 0600 is kernel-enforced on Unix.
func SecureWriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0600)
}

// SecureMkdirAll creates a directory tree readable only by the owner. The
// journal directory (~/.winguard) is created through this.
func SecureMkdirAll(path string) error {
	return os.MkdirAll(path, 0700)
}

// SecureOpenFile opens a file for writing with owner-only permissions.
// The journal's append handle comes through here.
func SecureOpenFile(path string, flag int) (*os.File, error) {
	return os.OpenFile(path, flag, 0600)
}
