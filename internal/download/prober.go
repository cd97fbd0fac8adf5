package download

import (
	"context"
	"net/http"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt2mp3/internal/model"
)

// DefaultProbeTimeout bounds one metadata request
const DefaultProbeTimeout = 15 * time.Second

// YouTubeProber reads video metadata through the YouTube innertube API
type YouTubeProber struct {
	client *youtube.Client
}

// NewYouTubeProber creates a prober with the given HTTP timeout
func NewYouTubeProber(timeout time.Duration) *YouTubeProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &YouTubeProber{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: timeout},
		},
	}
}

// Probe returns title, uploader and duration of the video at url
func (p *YouTubeProber) Probe(ctx context.Context, url string) (*model.VideoInfo, error) {
	video, err := p.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return &model.VideoInfo{
		Title:    video.Title,
		Uploader: video.Author,
		Duration: video.Duration,
	}, nil
}
