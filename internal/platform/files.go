package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Directory names
const (
	DownloadsDirName = "Downloads"
	HomePrefix       = "~"
)

// Maximum length difference for two file names to be treated as the same download
const MaxNameDifference = 10

// File extensions yt-dlp leaves behind for unfinished downloads
var (
	SkippedExtensions = []string{".part", ".ytdl"}
)

// Separators yt-dlp may add around sanitized titles
var (
	FileNameVariations = []string{"-", "_", " "}
)

// OSFileSystem performs file operations on the local disk
type OSFileSystem struct{}

// MkdirAll creates dirPath and its parents if they do not exist
func (OSFileSystem) MkdirAll(dirPath string) error {
	return CreateDirectoryIfNotExists(dirPath)
}

// Exists reports whether path exists
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the file at path
func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Size returns the size of the file at path in bytes
func (OSFileSystem) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Locate returns path if it exists, or the closest match next to it
func (OSFileSystem) Locate(path string) (string, error) {
	return FindFileWithFallback(path)
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	// XDG user dirs on Linux, Known Folders on Windows, ~/Downloads on macOS.
	// xdg caches these at init, so re-read the environment on every call.
	xdg.Reload()
	if dir := xdg.UserDirs.Download; dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, DownloadsDirName), nil
}

// ExpandPath expands a leading ~ to the user's home directory and makes the path absolute
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}

	if path == HomePrefix || strings.HasPrefix(path, HomePrefix+"/") || strings.HasPrefix(path, HomePrefix+string(filepath.Separator)) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[len(HomePrefix):])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// FindFileWithFallback tries to find a file by its original path, and if not found,
// searches for files with similar names and the same extension in the same directory
func FindFileWithFallback(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}

	if strings.HasPrefix(filePath, "http") {
		return "", fmt.Errorf("file path appears to be a URL: %s", filePath)
	}

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	originalName := filepath.Base(filePath)
	originalExt := filepath.Ext(originalName)
	baseName := strings.TrimSuffix(originalName, originalExt)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || isSkippedFile(entry.Name()) {
			continue
		}

		entryName := entry.Name()
		entryExt := filepath.Ext(entryName)
		if entryExt != originalExt {
			continue
		}

		if isSimilarFileName(strings.TrimSuffix(entryName, entryExt), baseName) {
			candidates = append(candidates, filepath.Join(dir, entryName))
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("file not found: %s", filePath)
	}

	sort.Strings(candidates)
	return candidates[0], nil
}

// isSkippedFile reports whether filename is a yt-dlp leftover
func isSkippedFile(filename string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file
func isSimilarFileName(name1, name2 string) bool {
	clean1 := trimVariations(name1)
	clean2 := trimVariations(name2)

	if clean1 == clean2 {
		return true
	}

	// Truncated titles
	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		return diff <= MaxNameDifference
	}

	return false
}

func trimVariations(name string) string {
	cutset := strings.Join(FileNameVariations, "")
	return strings.Trim(name, cutset)
}
