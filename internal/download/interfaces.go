package download

import (
	"context"

	"github.com/ytget/yt2mp3/internal/model"
)

// Tool opens sessions on the external retrieval and transcoding tool.
type Tool interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a scoped handle on the tool. Callers must Close it on every path.
type Session interface {
	Fetch(ctx context.Context, url string, opts Options) (*ToolOutput, error)
	Close() error
}

// ToolOutput describes the files a successful fetch produced.
type ToolOutput struct {
	Title      string
	SourcePath string // media fetched before extraction
	AudioPath  string // extracted audio
}

// FileSystem is the subset of file operations the Service needs.
type FileSystem interface {
	MkdirAll(path string) error
	Exists(path string) bool
	Remove(path string) error
	Size(path string) (int64, error)
	Locate(path string) (string, error)
}

// InfoProber fetches metadata for the interactive preview.
type InfoProber interface {
	Probe(ctx context.Context, url string) (*model.VideoInfo, error)
}

// PlaylistExpander lists the entries of a playlist URL.
type PlaylistExpander interface {
	ExpandPlaylist(ctx context.Context, url string) (*model.Playlist, error)
}
