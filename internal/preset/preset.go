// Package preset manages builtin conversion presets, user presets stored
// as JSON files, and the session settings snapshot.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/audioforge/audioforge/internal/config"
)

// Builtins returns the shipped presets, keyed by display name. Each is a
// complete settings value derived from the defaults.
func Builtins() map[string]config.Settings {
	base := config.DefaultSettings()

	streaming := base
	streaming.Format = config.FormatWAV
	streaming.BitDepth = 24
	streaming.SampleRate = 48000
	streaming.Normalize = config.NormalizeTwoPass

	podcast := base
	podcast.Format = config.FormatMP3
	podcast.Quality = "V2"
	podcast.SampleRate = 48000
	podcast.Normalize = config.NormalizeOnePass

	hifi := base
	hifi.Format = config.FormatFLAC
	hifi.SampleRate = 48000
	hifi.Normalize = config.NormalizeOff

	mobile := base
	mobile.Format = config.FormatM4A
	mobile.Quality = "256k"
	mobile.SampleRate = 44100
	mobile.Normalize = config.NormalizeOff

	vorbis := base
	vorbis.Format = config.FormatOGG
	vorbis.Quality = "6"
	vorbis.SampleRate = 48000
	vorbis.Normalize = config.NormalizeOnePass

	opus := base
	opus.Format = config.FormatOpus
	opus.Quality = "128k"
	opus.SampleRate = 48000
	opus.Normalize = config.NormalizeOnePass

	return map[string]config.Settings{
		"Streaming WAV 48k/24b":     streaming,
		"Podcast MP3 (V2)":          podcast,
		"Hi-Fi FLAC (no normalize)": hifi,
		"Mobile AAC 256k":           mobile,
		"OGG Vorbis Q6":             vorbis,
		"High Quality Opus":         opus,
	}
}

const sessionFile = "session.json"

// Store reads and writes user presets and the session snapshot under a
// base directory (~/.audioforge by default).
type Store struct {
	baseDir string
}

// NewStore returns the store rooted at ~/.audioforge.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".audioforge")), nil
}

// NewStoreAt roots the store at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{baseDir: dir}
}

func (st *Store) presetDir() string {
	return filepath.Join(st.baseDir, "presets")
}

func (st *Store) presetPath(name string) string {
	return filepath.Join(st.presetDir(), slugify(name)+".json")
}

// List returns all preset names, builtins first, each group sorted.
func (st *Store) List() []string {
	var builtin []string
	for name := range Builtins() {
		builtin = append(builtin, name)
	}
	sort.Strings(builtin)

	var user []string
	entries, err := os.ReadDir(st.presetDir())
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			user = append(user, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(user)

	return append(builtin, user...)
}

// Load resolves a preset by name: builtins first (exact match), then the
// user preset directory (slug match).
func (st *Store) Load(name string) (config.Settings, error) {
	if s, ok := Builtins()[name]; ok {
		return s, nil
	}
	return st.loadFile(st.presetPath(name), name)
}

// Save writes settings as a user preset. Builtin names are reserved.
func (st *Store) Save(name string, s config.Settings) error {
	if _, ok := Builtins()[name]; ok {
		return fmt.Errorf("preset %q is builtin and cannot be overwritten", name)
	}
	if err := os.MkdirAll(st.presetDir(), 0o755); err != nil {
		return err
	}
	return writeJSON(st.presetPath(name), s)
}

// Delete removes a user preset.
func (st *Store) Delete(name string) error {
	if _, ok := Builtins()[name]; ok {
		return fmt.Errorf("preset %q is builtin and cannot be deleted", name)
	}
	return os.Remove(st.presetPath(name))
}

// LoadSession restores the last saved settings snapshot. The boolean is
// false when no session exists yet.
func (st *Store) LoadSession() (config.Settings, bool) {
	path := filepath.Join(st.baseDir, sessionFile)
	if _, err := os.Stat(path); err != nil {
		return config.DefaultSettings(), false
	}
	s, err := st.loadFile(path, "session")
	if err != nil {
		return config.DefaultSettings(), false
	}
	return s, true
}

// SaveSession persists the settings snapshot for the next run.
func (st *Store) SaveSession(s config.Settings) error {
	if err := os.MkdirAll(st.baseDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(st.baseDir, sessionFile), s)
}

// loadFile reads a JSON settings file over the defaults, so presets saved
// by older versions pick up defaults for fields they don't carry.
func (st *Store) loadFile(path, name string) (config.Settings, error) {
	s := config.DefaultSettings()

	if _, err := os.Stat(path); err != nil {
		return s, fmt.Errorf("preset %q not found", name)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return s, fmt.Errorf("preset %q: %w", name, err)
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("preset %q: %w", name, err)
	}
	return s, nil
}

func writeJSON(path string, s config.Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// slugify maps a display name to a filesystem-safe file stem.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		case r == ' ', r == '/', r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
