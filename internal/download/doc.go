package download

// Package download turns one YouTube URL into an MP3 file. Retrieval and audio
// extraction are delegated to yt-dlp (via github.com/lrstanley/go-ytdlp); the
// Service validates the URL, prepares the download directory, builds the
// option set and removes the source media afterwards unless asked to keep it.
