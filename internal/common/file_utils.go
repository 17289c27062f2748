package common

import (
	"fmt"
	"os"
)

// FormatFileSize returns a human-readable file size string.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes < 1024 {
		return fmt.Sprintf("%d bytes", sizeBytes)
	}
	size := float64(sizeBytes)
	for _, unit := range []string{"KB", "MB", "GB"} {
		size /= 1024.0
		if size < 1024.0 || unit == "GB" {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
	}
	return fmt.Sprintf("%.1f GB", size)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
