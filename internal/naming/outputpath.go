package naming

import (
	"os"
	"path/filepath"

	"github.com/audioforge/audioforge/internal/config"
)

// OutputPath resolves the filename template for one source file into the
// configured output directory. index is the file's 1-based batch position.
// When OutputDir is empty the source file's directory is used, matching
// in-place conversion workflows.
func OutputPath(srcPath string, s config.Settings, index int) string {
	ext := s.Format.Extension()
	ctx := NewContext(srcPath, ext, index).WithMetadata(s.Metadata.Tags())
	name := Resolve(s.FilenameTemplate, ctx)

	dir := s.OutputDir
	if dir == "" {
		dir = filepath.Dir(srcPath)
	}
	return filepath.Join(dir, name)
}

// SameFile reports whether src and dst identify the same file. When both
// exist the check uses the filesystem identity (robust against symlinks and
// case-insensitive filesystems); otherwise it falls back to comparing
// cleaned absolute paths.
func SameFile(src, dst string) bool {
	si, serr := os.Stat(src)
	di, derr := os.Stat(dst)
	if serr == nil && derr == nil {
		return os.SameFile(si, di)
	}
	sa, err1 := filepath.Abs(src)
	da, err2 := filepath.Abs(dst)
	if err1 != nil || err2 != nil {
		return filepath.Clean(src) == filepath.Clean(dst)
	}
	return sa == da
}
