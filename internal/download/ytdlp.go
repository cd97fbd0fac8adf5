package download

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// ProgressInterval is how often yt-dlp progress is reported
const ProgressInterval = 500 * time.Millisecond

// YTDLPTool drives yt-dlp through go-ytdlp. The yt-dlp, ffmpeg and ffprobe
// binaries are resolved on first use, downloading them when missing. A failed
// install is retried by the next Open.
type YTDLPTool struct {
	logger    *zap.Logger
	install   func(ctx context.Context) error
	mu        sync.Mutex
	installed bool
}

// NewYTDLPTool creates the yt-dlp backed tool
func NewYTDLPTool(logger *zap.Logger) *YTDLPTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPTool{logger: logger, install: installBinaries}
}

// Open makes sure the binaries are available and returns a session bound to ctx
func (t *YTDLPTool) Open(ctx context.Context) (Session, error) {
	if err := t.ensureInstalled(ctx); err != nil {
		return nil, err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	return &ytdlpSession{ctx: sessionCtx, cancel: cancel, logger: t.logger}, nil
}

func (t *YTDLPTool) ensureInstalled(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.installed {
		return nil
	}
	if err := t.install(ctx); err != nil {
		t.logger.Warn("yt-dlp install failed", zap.Error(err))
		return err
	}
	t.installed = true
	return nil
}

func installBinaries(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	if _, err := ytdlp.InstallFFmpeg(ctx, nil); err != nil {
		return fmt.Errorf("failed to install ffmpeg: %w", err)
	}
	if _, err := ytdlp.InstallFFprobe(ctx, nil); err != nil {
		return fmt.Errorf("failed to install ffprobe: %w", err)
	}
	return nil
}

type ytdlpSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// Fetch runs yt-dlp for url and reports the files it produced
func (s *ytdlpSession) Fetch(ctx context.Context, url string, opts Options) (*ToolOutput, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, errors.New("session is closed")
	}

	// Stop the child process when either the caller or the session is done
	runCtx, stop := context.WithCancel(s.ctx)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-runCtx.Done():
		}
	}()

	dl := buildCommand(opts)
	dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes > 0 {
			s.logger.Debug("download progress",
				zap.String("url", url),
				zap.Int("downloaded", update.DownloadedBytes),
				zap.Int("total", update.TotalBytes))
		}
	})

	result, err := dl.Run(runCtx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}
	return outputFromInfo(info, opts)
}

// outputFromInfo maps the first media reported by yt-dlp to the produced files
func outputFromInfo(info []*ytdlp.ExtractedInfo, opts Options) (*ToolOutput, error) {
	if len(info) == 0 || info[0].Filename == nil || *info[0].Filename == "" {
		return nil, errors.New("yt-dlp reported no downloaded file")
	}

	output := &ToolOutput{
		SourcePath: *info[0].Filename,
	}
	output.AudioPath = opts.AudioPathFor(output.SourcePath)
	if info[0].Title != nil {
		output.Title = *info[0].Title
	}
	return output, nil
}

// Close cancels the session context, terminating any child still running
func (s *ytdlpSession) Close() error {
	s.cancel()
	return nil
}

// buildCommand translates Options into a yt-dlp invocation
func buildCommand(opts Options) *ytdlp.Command {
	dl := ytdlp.New().
		Format(opts.Format).
		Output(opts.OutputTemplate).
		PrintJSON().
		NoSimulate()

	if opts.ExtractAudio {
		dl = dl.ExtractAudio().
			AudioFormat(opts.AudioFormat).
			AudioQuality(opts.AudioQuality)
	}
	if opts.KeepVideo {
		dl = dl.KeepVideo()
	}
	if opts.NoPlaylist {
		dl = dl.NoPlaylist()
	}
	return dl
}
