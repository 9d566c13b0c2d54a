package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported audio file extensions (lowercase, with leading dot).
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".aac":  true,
	".m4a":  true,
	".ogg":  true,
	".aiff": true,
	".wma":  true,
	".mka":  true,
	".opus": true,
	".mp2":  true,
	".mpa":  true,
	".ac3":  true,
}

// IsAudioFile reports whether path has a recognized audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover collects audio files from inputPath. A single file is returned
// as-is when it has an audio extension; a directory is walked recursively.
// Results are sorted lexicographically for deterministic enqueue order.
func Discover(inputPath string) ([]string, error) {
	fi, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !fi.IsDir() {
		if !IsAudioFile(inputPath) {
			return nil, nil
		}
		return []string{inputPath}, nil
	}

	var files []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsAudioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
