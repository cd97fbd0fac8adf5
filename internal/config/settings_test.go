package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/ytget/yt2mp3/internal/platform"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config.json"), nil)
}

func writeSettingsFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
}

func readSettingsFile(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read settings file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Settings file is not valid JSON: %v", err)
	}
	return doc
}

func TestNewStore(t *testing.T) {
	store := NewStore("", nil)

	if store.Path() != DefaultSettingsFile {
		t.Errorf("Expected default path %s, got %s", DefaultSettingsFile, store.Path())
	}
	if store.logger == nil {
		t.Error("Expected a no-op logger when nil is passed")
	}
}

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument()

	expectedDir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads dir: %v", err)
	}

	if doc[KeyDownloadPath] != expectedDir {
		t.Errorf("Expected download path %s, got %v", expectedDir, doc[KeyDownloadPath])
	}
	if doc[KeyAudioQuality] != DefaultAudioQuality {
		t.Errorf("Expected audio quality %s, got %v", DefaultAudioQuality, doc[KeyAudioQuality])
	}
	if doc[KeyFilenameFormat] != DefaultFilenameFormat {
		t.Errorf("Expected filename format %s, got %v", DefaultFilenameFormat, doc[KeyFilenameFormat])
	}
	if doc[KeyKeepVideo] != false {
		t.Errorf("Expected keep_video false, got %v", doc[KeyKeepVideo])
	}
	if len(doc) != len(KnownKeys) {
		t.Errorf("Expected %d keys, got %d", len(KnownKeys), len(doc))
	}
}

func TestDefaultDocument_ResolvedAtCallTime(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("HOME based Downloads directory not used on %s", runtime.GOOS)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DOWNLOAD_DIR", "")
	os.Unsetenv("XDG_DOWNLOAD_DIR")

	expected := filepath.Join(home, platform.DownloadsDirName)
	if dir := DefaultDocument()[KeyDownloadPath]; dir != expected {
		t.Errorf("Expected download path %s, got %v", expected, dir)
	}
}

func TestLoad_CreatesDefaultWhenFileMissing(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(doc, DefaultDocument()) {
		t.Errorf("Expected default document, got %v", doc)
	}
	if store.LoadErr() != nil {
		t.Errorf("Expected no recovered error, got %v", store.LoadErr())
	}

	onDisk := readSettingsFile(t, store.Path())
	if onDisk[KeyAudioQuality] != DefaultAudioQuality {
		t.Errorf("Expected defaults written to disk, got %v", onDisk)
	}
}

func TestLoad_CreatesSettingsDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
	store := NewStore(path, nil)

	if _, err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected settings file to be created: %v", err)
	}
}

func TestLoad_FailsWhenSettingsCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	writeSettingsFile(t, blocker, "")

	store := NewStore(filepath.Join(blocker, "config.json"), nil)
	if _, err := store.Load(); err == nil {
		t.Error("Expected error when the settings file cannot be created")
	}
}

func TestUpdate_FailsWhenSettingsCannotBeWritten(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	writeSettingsFile(t, blocker, "")

	store := NewStore(filepath.Join(blocker, "config.json"), nil)
	if err := store.Update(KeyKeepVideo, true); err == nil {
		t.Error("Expected error when the settings directory cannot be created")
	}
	if err := store.Save(DefaultDocument()); err == nil {
		t.Error("Expected error from Save")
	}
}

func TestLoad_FillsMissingKeys(t *testing.T) {
	present := map[string]any{
		KeyDownloadPath:   "/srv/music",
		KeyAudioQuality:   "320",
		KeyFilenameFormat: "%(uploader)s - %(title)s.%(ext)s",
		KeyKeepVideo:      true,
	}
	defaults := DefaultDocument()

	// Every subset of the four keys
	for mask := 0; mask < 1<<len(KnownKeys); mask++ {
		stored := map[string]any{}
		for i, key := range KnownKeys {
			if mask&(1<<i) != 0 {
				stored[key] = present[key]
			}
		}

		store := newTestStore(t)
		data, _ := json.Marshal(stored)
		writeSettingsFile(t, store.Path(), string(data))

		doc, err := store.Load()
		if err != nil {
			t.Fatalf("mask %04b: Load failed: %v", mask, err)
		}

		for _, key := range KnownKeys {
			expected := defaults[key]
			if _, ok := stored[key]; ok {
				expected = present[key]
			}
			if doc[key] != expected {
				t.Errorf("mask %04b: key %s = %v, expected %v", mask, key, doc[key], expected)
			}
		}
	}
}

func TestLoad_MalformedFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"download_path": `},
		{"null", `null`},
		{"array", `["download_path"]`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			writeSettingsFile(t, store.Path(), tt.content)

			doc, err := store.Load()
			if err != nil {
				t.Fatalf("Load should recover, got error: %v", err)
			}
			if !reflect.DeepEqual(doc, DefaultDocument()) {
				t.Errorf("Expected default document, got %v", doc)
			}
			if !errors.Is(store.LoadErr(), ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", store.LoadErr())
			}

			// The corrupt file is left alone
			data, _ := os.ReadFile(store.Path())
			if string(data) != tt.content {
				t.Errorf("Expected file untouched, got %q", string(data))
			}
		})
	}
}

func TestLoad_InvalidTypesDefaulted(t *testing.T) {
	store := newTestStore(t)
	writeSettingsFile(t, store.Path(), `{
		"download_path": 42,
		"audio_quality": true,
		"filename_format": "",
		"keep_video": "yes"
	}`)

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(doc, DefaultDocument()) {
		t.Errorf("Expected invalid values replaced by defaults, got %v", doc)
	}
}

func TestLoad_NumericAudioQuality(t *testing.T) {
	tests := []struct {
		content  string
		expected string
	}{
		{`{"audio_quality": 256}`, "256"},
		{`{"audio_quality": 128.5}`, DefaultAudioQuality},
		{`{"audio_quality": -1}`, DefaultAudioQuality},
	}

	for _, tt := range tests {
		store := newTestStore(t)
		writeSettingsFile(t, store.Path(), tt.content)

		doc, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if doc[KeyAudioQuality] != tt.expected {
			t.Errorf("%s: expected audio quality %s, got %v", tt.content, tt.expected, doc[KeyAudioQuality])
		}
	}
}

func TestSaveLoad_Idempotent(t *testing.T) {
	store := newTestStore(t)
	writeSettingsFile(t, store.Path(), `{"download_path": "~/Music", "keep_video": true, "theme": "dark", "volume": 7}`)

	first, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second, err := NewStore(store.Path(), nil).Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical documents, got %v and %v", first, second)
	}
}

func TestSave_FillsMissingKeys(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Document{KeyAudioQuality: "96"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	onDisk := readSettingsFile(t, store.Path())
	for _, key := range KnownKeys {
		if _, ok := onDisk[key]; !ok {
			t.Errorf("Expected key %s on disk", key)
		}
	}
	if onDisk[KeyAudioQuality] != "96" {
		t.Errorf("Expected audio quality 96, got %v", onDisk[KeyAudioQuality])
	}

	data, _ := os.ReadFile(store.Path())
	if !strings.HasSuffix(string(data), "\n") || !strings.Contains(string(data), "\n  \"") {
		t.Errorf("Expected indented JSON with trailing newline, got %q", string(data))
	}
}

func TestUpdate_PersistsAndPreservesOtherKeys(t *testing.T) {
	store := newTestStore(t)
	before, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := store.Update(KeyKeepVideo, true); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	after, err := NewStore(store.Path(), nil).Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if after[KeyKeepVideo] != true {
		t.Errorf("Expected keep_video true after reload, got %v", after[KeyKeepVideo])
	}
	for _, key := range []string{KeyDownloadPath, KeyAudioQuality, KeyFilenameFormat} {
		if after[key] != before[key] {
			t.Errorf("Expected %s unchanged (%v), got %v", key, before[key], after[key])
		}
	}
}

func TestUpdate_LoadsWhenNotLoaded(t *testing.T) {
	store := newTestStore(t)

	if err := store.Update(KeyAudioQuality, "320"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	onDisk := readSettingsFile(t, store.Path())
	if onDisk[KeyAudioQuality] != "320" {
		t.Errorf("Expected audio quality 320, got %v", onDisk[KeyAudioQuality])
	}
	if onDisk[KeyFilenameFormat] != DefaultFilenameFormat {
		t.Errorf("Expected default filename format, got %v", onDisk[KeyFilenameFormat])
	}
}

func TestUnknownKeysPreserved(t *testing.T) {
	store := newTestStore(t)
	writeSettingsFile(t, store.Path(), `{"theme": "dark", "audio_quality": "128"}`)

	if _, err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Update(KeyDownloadPath, "/srv/music"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	onDisk := readSettingsFile(t, store.Path())
	if onDisk["theme"] != "dark" {
		t.Errorf("Expected unknown key preserved, got %v", onDisk)
	}
	if onDisk[KeyAudioQuality] != "128" {
		t.Errorf("Expected audio quality 128, got %v", onDisk[KeyAudioQuality])
	}
}

func TestSettings_TypedView(t *testing.T) {
	store := newTestStore(t)
	writeSettingsFile(t, store.Path(), `{"download_path": "~/Music", "audio_quality": "320", "keep_video": true}`)

	if _, err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	settings := store.Settings()
	expected := Settings{
		DownloadPath:   "~/Music",
		AudioQuality:   "320",
		FilenameFormat: DefaultFilenameFormat,
		KeepVideo:      true,
	}
	if settings != expected {
		t.Errorf("Expected %+v, got %+v", expected, settings)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	resolved, err := settings.ResolvedDownloadPath()
	if err != nil {
		t.Fatalf("ResolvedDownloadPath failed: %v", err)
	}
	if resolved != filepath.Join(home, "Music") {
		t.Errorf("Expected %s, got %s", filepath.Join(home, "Music"), resolved)
	}
}

func TestFormatDocument(t *testing.T) {
	doc := Document{
		"zeta":            1,
		KeyKeepVideo:      false,
		KeyDownloadPath:   "/srv/music",
		"alpha":           "x",
		KeyAudioQuality:   "192",
		KeyFilenameFormat: DefaultFilenameFormat,
	}

	expected := []string{
		"download_path: /srv/music",
		"audio_quality: 192",
		"filename_format: %(title)s.%(ext)s",
		"keep_video: false",
		"alpha: x",
		"zeta: 1",
	}

	if lines := FormatDocument(doc); !reflect.DeepEqual(lines, expected) {
		t.Errorf("Expected %v, got %v", expected, lines)
	}
}

func TestIsValidAudioQuality(t *testing.T) {
	tests := []struct {
		quality  string
		expected bool
	}{
		{"96", true},
		{"128", true},
		{"192", true},
		{"256", true},
		{"320", true},
		{"100", false},
		{"", false},
		{"192k", false},
	}

	for _, tt := range tests {
		if result := IsValidAudioQuality(tt.quality); result != tt.expected {
			t.Errorf("IsValidAudioQuality(%q) = %v, expected %v", tt.quality, result, tt.expected)
		}
	}
}
