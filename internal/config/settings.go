package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/ytget/yt2mp3/internal/platform"
)

// Settings document keys
const (
	KeyDownloadPath   = "download_path"
	KeyAudioQuality   = "audio_quality"
	KeyFilenameFormat = "filename_format"
	KeyKeepVideo      = "keep_video"
)

// Default values
const (
	DefaultSettingsFile   = "config.json"
	DefaultAudioQuality   = "192"
	DefaultFilenameFormat = "%(title)s.%(ext)s"
	DefaultKeepVideo      = false
	FallbackDownloadDir   = "/tmp/downloads"
)

// File permissions
const (
	SettingsFilePermissions = 0644
	SettingsDirPermissions  = 0755
)

// KnownKeys lists the recognized keys in display order
var KnownKeys = []string{KeyDownloadPath, KeyAudioQuality, KeyFilenameFormat, KeyKeepVideo}

// ValidAudioQualities are the conventional MP3 bitrates in kbps
var ValidAudioQualities = []string{"96", "128", "192", "256", "320"}

// ErrMalformed is recorded when the settings file cannot be read or decoded
var ErrMalformed = errors.New("malformed settings file")

// Document is the persisted settings mapping. Unknown keys are kept as is.
type Document map[string]any

// Clone returns a shallow copy of the document
func (d Document) Clone() Document {
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v
	}
	return clone
}

// Settings is a typed view of the four recognized keys
type Settings struct {
	DownloadPath   string
	AudioQuality   string
	FilenameFormat string
	KeepVideo      bool
}

// ResolvedDownloadPath returns the download path with ~ expanded, as an absolute path
func (s Settings) ResolvedDownloadPath() (string, error) {
	return platform.ExpandPath(s.DownloadPath)
}

// Store loads and persists the settings document at a fixed path
type Store struct {
	path    string
	doc     Document
	loadErr error
	logger  *zap.Logger
}

// NewStore creates a settings store backed by the JSON file at path
func NewStore(path string, logger *zap.Logger) *Store {
	if path == "" {
		path = DefaultSettingsFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the settings file path
func (s *Store) Path() string {
	return s.path
}

// DefaultDocument returns the default settings, resolving the Downloads directory now
func DefaultDocument() Document {
	downloadDir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		downloadDir = FallbackDownloadDir
	}
	return Document{
		KeyDownloadPath:   downloadDir,
		KeyAudioQuality:   DefaultAudioQuality,
		KeyFilenameFormat: DefaultFilenameFormat,
		KeyKeepVideo:      DefaultKeepVideo,
	}
}

// Load reads the settings file. A missing file is created with defaults; a
// malformed one is replaced in memory by defaults and reported through LoadErr.
// The only error returned is a failure to create the file on first run.
func (s *Store) Load() (Document, error) {
	s.loadErr = nil

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		if err := s.Save(DefaultDocument()); err != nil {
			return nil, fmt.Errorf("failed to create settings file: %w", err)
		}
		s.logger.Info("settings file created", zap.String("path", s.path))
		return s.doc.Clone(), nil
	}
	if err != nil {
		return s.recoverDefaults(err), nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return s.recoverDefaults(err), nil
	}
	if raw == nil {
		return s.recoverDefaults(errors.New("settings file does not contain an object")), nil
	}

	s.doc = normalize(raw)
	return s.doc.Clone(), nil
}

// LoadErr returns the error recovered from during the last Load, wrapping ErrMalformed
func (s *Store) LoadErr() error {
	return s.loadErr
}

func (s *Store) recoverDefaults(cause error) Document {
	s.loadErr = fmt.Errorf("%w: %v", ErrMalformed, cause)
	s.logger.Warn("using default settings",
		zap.String("path", s.path),
		zap.Error(cause))
	s.doc = DefaultDocument()
	return s.doc.Clone()
}

// Save writes the full document to the settings file, overwriting it
func (s *Store) Save(doc Document) error {
	doc = withDefaults(doc)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, SettingsDirPermissions); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, SettingsFilePermissions); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	s.doc = doc
	return nil
}

// Update sets key to value and persists the whole document immediately
func (s *Store) Update(key string, value any) error {
	if s.doc == nil {
		if _, err := s.Load(); err != nil {
			return err
		}
	}

	doc := s.doc.Clone()
	doc[key] = value
	if err := s.Save(doc); err != nil {
		return err
	}

	s.logger.Debug("setting updated", zap.String("key", key), zap.Any("value", value))
	return nil
}

// Document returns a copy of the in-memory document
func (s *Store) Document() Document {
	return s.doc.Clone()
}

// Settings returns the typed view of the in-memory document
func (s *Store) Settings() Settings {
	doc := withDefaults(s.doc)
	return Settings{
		DownloadPath:   stringValue(doc[KeyDownloadPath]),
		AudioQuality:   stringValue(doc[KeyAudioQuality]),
		FilenameFormat: stringValue(doc[KeyFilenameFormat]),
		KeepVideo:      doc[KeyKeepVideo] == true,
	}
}

// FormatDocument renders "key: value" lines, recognized keys first, then unknown keys sorted
func FormatDocument(doc Document) []string {
	lines := make([]string, 0, len(doc))
	for _, key := range KnownKeys {
		if value, ok := doc[key]; ok {
			lines = append(lines, fmt.Sprintf("%s: %v", key, value))
		}
	}

	var extra []string
	for key := range doc {
		if !isKnownKey(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		lines = append(lines, fmt.Sprintf("%s: %v", key, doc[key]))
	}

	return lines
}

// IsValidAudioQuality reports whether quality is one of ValidAudioQualities
func IsValidAudioQuality(quality string) bool {
	for _, q := range ValidAudioQualities {
		if q == quality {
			return true
		}
	}
	return false
}

// normalize fills missing keys and replaces recognized keys holding the wrong type
func normalize(raw map[string]any) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		doc[k] = v
	}

	defaults := DefaultDocument()
	for _, key := range []string{KeyDownloadPath, KeyFilenameFormat} {
		if s, ok := doc[key].(string); !ok || s == "" {
			doc[key] = defaults[key]
		}
	}

	switch v := doc[KeyAudioQuality].(type) {
	case string:
		if v == "" {
			doc[KeyAudioQuality] = DefaultAudioQuality
		}
	case float64:
		if v > 0 && v == float64(int64(v)) {
			doc[KeyAudioQuality] = strconv.FormatInt(int64(v), 10)
		} else {
			doc[KeyAudioQuality] = DefaultAudioQuality
		}
	default:
		doc[KeyAudioQuality] = DefaultAudioQuality
	}

	if _, ok := doc[KeyKeepVideo].(bool); !ok {
		doc[KeyKeepVideo] = DefaultKeepVideo
	}

	return doc
}

// withDefaults returns a copy of doc with missing recognized keys filled in
func withDefaults(doc Document) Document {
	filled := doc.Clone()
	var defaults Document
	for _, key := range KnownKeys {
		if _, ok := filled[key]; ok {
			continue
		}
		if defaults == nil {
			defaults = DefaultDocument()
		}
		filled[key] = defaults[key]
	}
	return filled
}

func isKnownKey(key string) bool {
	for _, k := range KnownKeys {
		if k == key {
			return true
		}
	}
	return false
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
