package model

// FetchStatus represents the status of a single fetch
type FetchStatus string

const (
	// FetchStatusPending means the fetch has not started yet
	FetchStatusPending FetchStatus = "Pending"

	// FetchStatusRejected means the URL failed validation and nothing was fetched
	FetchStatusRejected FetchStatus = "Rejected"

	// FetchStatusDownloading means yt-dlp is retrieving and converting the media
	FetchStatusDownloading FetchStatus = "Downloading"

	// FetchStatusCompleted means the audio file was produced
	FetchStatusCompleted FetchStatus = "Completed"

	// FetchStatusError means the fetch failed with an error
	FetchStatusError FetchStatus = "Error"
)

// String returns the string representation of FetchStatus
func (fs FetchStatus) String() string {
	return string(fs)
}

