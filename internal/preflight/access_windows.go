//go:build windows

package preflight

import "movieconv/internal/fileutil"

func checkAccess(path string) error {
	return fileutil.DirWritable(path)
}
