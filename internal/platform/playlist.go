package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
	"github.com/ytget/ytdlp/v2/client"
	"go.uber.org/zap"

	"github.com/ytget/yt2mp3/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistTimeout = 60 * time.Second
)

// HTTP client defaults for playlist requests
const (
	DefaultHTTPTimeout = 15 * time.Second
	DefaultHTTPRetries = 3
	DefaultUserAgent   = "yt2mp3/1.0"
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	PlaylistSuffix       = " Playlist"
	MinPrefixLength      = 10
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
)

// PlaylistService expands YouTube playlists into their individual videos
type PlaylistService struct {
	timeout    time.Duration
	httpConfig client.Config
	logger     *zap.Logger
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(logger *zap.Logger) *PlaylistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaylistService{
		timeout: DefaultPlaylistTimeout,
		httpConfig: client.Config{
			Timeout:   DefaultHTTPTimeout,
			Retries:   DefaultHTTPRetries,
			UserAgent: DefaultUserAgent,
		},
		logger: logger,
	}
}

// ExpandPlaylist lists the videos of the playlist referenced by url
func (p *PlaylistService) ExpandPlaylist(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID, err := ExtractPlaylistID(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	c := client.NewWith(p.httpConfig)
	d := ytdlp.New().WithHTTPClient(c.HTTPClient)

	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(url)
	playlist.ID = playlistID
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		playlist.AddVideo(&model.PlaylistVideo{
			ID:        it.VideoID,
			Title:     it.Title,
			URL:       fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
			Status:    model.VideoStatusPending,
			UpdatedAt: time.Now(),
		})
	}

	playlist.Title = playlistTitle(playlist.Videos)
	playlist.UpdateStatus(model.PlaylistStatusReady)

	p.logger.Debug("playlist expanded",
		zap.String("playlist_id", playlistID),
		zap.Int("videos", playlist.TotalVideos))

	return playlist, nil
}

// IsPlaylistURL checks if the URL references a YouTube playlist
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistParam)
}

// ExtractPlaylistID extracts the playlist ID from various URL formats:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(url string) (string, error) {
	if !IsPlaylistURL(url) {
		return "", fmt.Errorf("invalid playlist URL: %s", url)
	}

	parts := strings.SplitN(url, PlaylistParam, 2)
	playlistID := parts[1]
	if idx := strings.Index(playlistID, ParamSeparator); idx >= 0 {
		playlistID = playlistID[:idx]
	}

	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID in URL: %s", url)
	}
	return playlistID, nil
}

// playlistTitle derives a title from the common prefix of the first video titles
func playlistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistTitle
	}

	if len(videos) > 1 {
		prefix := strings.TrimSpace(findCommonPrefix(videos[0].Title, videos[1].Title))
		if len(prefix) > MinPrefixLength {
			return prefix + PlaylistSuffix
		}
	}

	title := videos[0].Title
	if runes := []rune(title); len(runes) > MaxTitleLength {
		title = string(runes[:MaxTitleLength]) + TitleTruncateSuffix
	}
	return title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings, ending on a rune boundary
func findCommonPrefix(s1, s2 string) string {
	r1, r2 := []rune(s1), []rune(s2)
	minLen := min(len(r1), len(r2))
	for i := 0; i < minLen; i++ {
		if r1[i] != r2[i] {
			return string(r1[:i])
		}
	}
	return string(r1[:minLen])
}
