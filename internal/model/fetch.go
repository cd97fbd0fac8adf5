package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FetchIDPrefix prefixes every fetch ID
const FetchIDPrefix = "fetch-"

// FetchResult represents the outcome of one fetch: retrieval, audio extraction and cleanup
type FetchResult struct {
	ID         string
	URL        string
	Status     FetchStatus
	Title      string    // video title as reported by yt-dlp
	SourcePath string    // media file fetched before audio extraction
	OutputPath string    // produced audio file
	FileSize   int64     // audio file size in bytes
	LastError  string    // human readable failure message
	StartedAt  time.Time // when the fetch started
	FinishedAt time.Time // when the fetch finished
}

// NewFetchResult creates a pending result for url
func NewFetchResult(url string) *FetchResult {
	return &FetchResult{
		ID:        generateFetchID(),
		URL:       url,
		Status:    FetchStatusPending,
		StartedAt: time.Now(),
	}
}

// Start marks the fetch as running
func (r *FetchResult) Start() {
	r.Status = FetchStatusDownloading
}

// Complete marks the fetch as successfully finished
func (r *FetchResult) Complete() {
	r.Status = FetchStatusCompleted
	r.LastError = ""
	r.FinishedAt = time.Now()
}

// Reject marks the fetch as refused before any work was done
func (r *FetchResult) Reject(err error) {
	r.finish(FetchStatusRejected, err)
}

// Fail marks the fetch as failed
func (r *FetchResult) Fail(err error) {
	r.finish(FetchStatusError, err)
}

func (r *FetchResult) finish(status FetchStatus, err error) {
	r.Status = status
	if err != nil {
		r.LastError = err.Error()
	}
	r.FinishedAt = time.Now()
}

// Succeeded reports whether the audio file was produced
func (r *FetchResult) Succeeded() bool {
	return r.Status == FetchStatusCompleted
}

// Elapsed returns how long the fetch took, or has taken so far
func (r *FetchResult) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (r *FetchResult) GetDisplayTitle() string {
	if r.Title != "" && !strings.HasPrefix(r.Title, "http") {
		return r.Title
	}

	if r.OutputPath != "" {
		// Support both / and \ separators
		parts := strings.FieldsFunc(r.OutputPath, func(c rune) bool {
			return c == '/' || c == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return r.URL
}

// generateFetchID generates a unique fetch ID using UUID v7 so IDs sort by creation time
func generateFetchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(FetchIDPrefix+"%d", time.Now().UnixNano())
	}
	return FetchIDPrefix + id.String()
}
