package model

import (
	"fmt"
	"time"
)

// Placeholders for metadata the probe could not provide
const (
	UnknownTitle    = "Unknown title"
	UnknownUploader = "Unknown"
	UnknownDuration = "—"
)

// VideoInfo is the metadata shown in the interactive preview
type VideoInfo struct {
	Title    string
	Uploader string
	Duration time.Duration
}

// DisplayTitle returns the title or a placeholder
func (v *VideoInfo) DisplayTitle() string {
	if v == nil || v.Title == "" {
		return UnknownTitle
	}
	return v.Title
}

// DisplayUploader returns the uploader or a placeholder
func (v *VideoInfo) DisplayUploader() string {
	if v == nil || v.Uploader == "" {
		return UnknownUploader
	}
	return v.Uploader
}

// DurationString returns the duration formatted as hh:mm:ss or mm:ss, or "—" if unknown
func (v *VideoInfo) DurationString() string {
	if v == nil {
		return UnknownDuration
	}
	return FormatDuration(v.Duration)
}

// FormatDuration formats d as hh:mm:ss, or mm:ss below one hour
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total <= 0 {
		return UnknownDuration
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
