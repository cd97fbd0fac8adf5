package download

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ytget/yt2mp3/internal/config"
	"github.com/ytget/yt2mp3/internal/model"
)

// Recognized host substrings
const (
	HostYouTube      = "youtube.com"
	HostYouTubeShort = "youtu.be"
)

// ErrInvalidURL is reported for URLs that do not point at YouTube
var ErrInvalidURL = errors.New("invalid YouTube URL")

// ValidateURL reports whether url contains a YouTube host. It is a plain
// substring check; nothing is parsed and no request is made.
func ValidateURL(url string) bool {
	return strings.Contains(url, HostYouTube) || strings.Contains(url, HostYouTubeShort)
}

// Service handles fetch operations
type Service struct {
	tool      Tool
	fs        FileSystem
	prober    InfoProber
	playlists PlaylistExpander
	logger    *zap.Logger
}

// NewService creates a new fetch service. prober and playlists may be nil.
func NewService(tool Tool, fs FileSystem, prober InfoProber, playlists PlaylistExpander, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tool:      tool,
		fs:        fs,
		prober:    prober,
		playlists: playlists,
		logger:    logger,
	}
}

// Validate returns ErrInvalidURL when url is not a YouTube URL
func (s *Service) Validate(url string) error {
	if !ValidateURL(url) {
		return fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return nil
}

// GetInfo returns video metadata for the preview
func (s *Service) GetInfo(ctx context.Context, url string) (*model.VideoInfo, error) {
	if s.prober == nil {
		return nil, errors.New("no metadata prober configured")
	}
	info, err := s.prober.Probe(ctx, url)
	if err != nil {
		s.logger.Debug("metadata probe failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return info, nil
}

// ExpandPlaylist lists the entries of a playlist URL
func (s *Service) ExpandPlaylist(ctx context.Context, url string) (*model.Playlist, error) {
	if s.playlists == nil {
		return nil, errors.New("playlist support is not configured")
	}
	if err := s.Validate(url); err != nil {
		return nil, err
	}
	return s.playlists.ExpandPlaylist(ctx, url)
}

// Fetch downloads url, extracts its audio and cleans up the source media.
// Failures never escape as errors; they are recorded on the result.
func (s *Service) Fetch(ctx context.Context, url string, settings config.Settings) *model.FetchResult {
	result := model.NewFetchResult(url)
	log := s.logger.With(zap.String("fetch_id", result.ID))

	if err := s.Validate(url); err != nil {
		log.Info("fetch rejected", zap.String("url", url))
		result.Reject(err)
		return result
	}

	downloadDir, err := settings.ResolvedDownloadPath()
	if err != nil {
		return s.fail(log, result, fmt.Errorf("invalid download path: %w", err))
	}
	if err := s.fs.MkdirAll(downloadDir); err != nil {
		return s.fail(log, result, fmt.Errorf("failed to create download directory: %w", err))
	}

	opts := BuildOptions(downloadDir, settings)
	result.Start()
	log.Info("fetch started",
		zap.String("url", url),
		zap.String("dir", downloadDir),
		zap.String("quality", opts.AudioQuality))

	output, err := s.run(ctx, url, opts)
	if err != nil {
		return s.fail(log, result, err)
	}

	result.Title = output.Title
	result.SourcePath = output.SourcePath

	audioPath := output.AudioPath
	if audioPath == "" {
		audioPath = opts.AudioPathFor(output.SourcePath)
	}
	audioPath, err = s.fs.Locate(audioPath)
	if err != nil {
		return s.fail(log, result, fmt.Errorf("audio file missing after extraction: %w", err))
	}
	result.OutputPath = audioPath

	if !settings.KeepVideo {
		if err := s.removeSource(output.SourcePath, audioPath); err != nil {
			return s.fail(log, result, err)
		}
	}

	if size, err := s.fs.Size(audioPath); err == nil {
		result.FileSize = size
	}

	result.Complete()
	log.Info("fetch completed",
		zap.String("output", result.OutputPath),
		zap.Duration("elapsed", result.Elapsed()))
	return result
}

// run executes one fetch inside a tool session, closing it on every path
func (s *Service) run(ctx context.Context, url string, opts Options) (*ToolOutput, error) {
	session, err := s.tool.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("failed to close yt-dlp session", zap.Error(err))
		}
	}()

	output, err := session.Fetch(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if output == nil || output.SourcePath == "" {
		return nil, errors.New("download failed: yt-dlp reported no file")
	}
	return output, nil
}

func (s *Service) removeSource(source, audio string) error {
	if source == "" || source == audio || !s.fs.Exists(source) {
		return nil
	}
	if err := s.fs.Remove(source); err != nil {
		return fmt.Errorf("failed to remove source media %s: %w", source, err)
	}
	s.logger.Debug("source media removed", zap.String("path", source))
	return nil
}

func (s *Service) fail(log *zap.Logger, result *model.FetchResult, err error) *model.FetchResult {
	log.Warn("fetch failed", zap.String("url", result.URL), zap.Error(err))
	result.Fail(err)
	return result
}
