package heuristics

import (
	"os"
	"path/filepath"
	"strings"

	"filewarden/internal/common"

	"github.com/gabriel-vasile/mimetype"
)

// FileMetadata carries the evidence the file rules evaluate. It is collected
// once per analysis, outside the pure scoring path.
type FileMetadata struct {
	Name      string // base name of the file
	SizeBytes int64
	Extension string // final extension, lowercased, including the dot
	// SniffedMIME and SniffedExtension come from magic-number detection of
	// the file's leading bytes. Empty when detection was not possible.
	SniffedMIME      string
	SniffedExtension string
}

// CollectFileMetadata gathers the metadata needed to score a file. This is
// the only I/O in the package: a stat plus a bounded read of the file header
// for content-type sniffing.
func CollectFileMetadata(path string) (FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMetadata{}, common.WrapErrorf(common.ErrIO, "stat %s: %v", path, err)
	}

	meta := FileMetadata{
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		Extension: strings.ToLower(filepath.Ext(path)),
	}

	// Sniffing failure is not fatal: the extension rules still apply.
	if mtype, err := mimetype.DetectFile(path); err == nil {
		meta.SniffedMIME = mtype.String()
		meta.SniffedExtension = strings.ToLower(mtype.Extension())
	}

	return meta, nil
}
