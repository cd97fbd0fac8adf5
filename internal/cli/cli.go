package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ytget/yt2mp3/internal/config"
	"github.com/ytget/yt2mp3/internal/download"
	"github.com/ytget/yt2mp3/internal/model"
	"github.com/ytget/yt2mp3/internal/platform"
)

// User-facing messages
const (
	MsgBanner            = "YouTube to MP3 Converter - Interactive Mode"
	MsgURLPrompt         = "\nEnter YouTube URL (or 'quit' to exit): "
	MsgEmptyURL          = "Please enter a valid URL."
	MsgInvalidURL        = "Error: Invalid YouTube URL"
	MsgConfirm           = "\nDownload this video? (y/n): "
	MsgConfirmUnknown    = "\nTry downloading anyway? (y/n): "
	MsgNoInfo            = "Could not retrieve video information."
	MsgCancelled         = "Download cancelled."
	MsgAnother           = "\nProcess another URL? (y/n): "
	MsgGoodbye           = "Goodbye!"
	MsgCompleted         = "Download completed successfully!"
	MsgInterrupted       = "Operation cancelled by user."
	MsgCreateDirPrompt   = "Directory '%s' doesn't exist. Create it? (y/n): "
	MsgPathUnchanged     = "Download path not changed."
	MsgPathUpdated       = "Download path updated to: %s"
	MsgKeepVideo         = "Video files will now be kept after MP3 conversion"
	MsgNoKeepVideo       = "Video files will now be deleted after MP3 conversion (default)"
	MsgQualityUpdated    = "Audio quality set to %s kbps"
	MsgCurrentConfig     = "Current configuration:"
	MsgDefaultConfigUsed = "Using default configuration..."
)

// Words that leave the interactive loop
var quitWords = []string{"quit", "exit", "q"}

var (
	// ErrFetchFailed ends a single-shot or playlist run with a non-zero exit code
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInvalidFlag is returned for flag values that are rejected before any change is made
	ErrInvalidFlag = errors.New("invalid flag value")
)

// Config wires the command surface to its collaborators
type Config struct {
	SettingsPath string
	Tool         download.Tool
	FileSystem   download.FileSystem
	Prober       download.InfoProber
	Playlists    download.PlaylistExpander
	In           io.Reader
	Out          io.Writer
	Logger       *zap.Logger
	Version      string
}

type flags struct {
	link            string
	playlist        string
	setDownloadPath string
	setAudioQuality string
	keepVideo       bool
	noKeepVideo     bool
	showConfig      bool
	settingsPath    string
}

// CLI owns the settings store and the fetch service for one invocation
type CLI struct {
	service *download.Service
	fs      download.FileSystem
	store   *config.Store
	in      *bufio.Reader
	out     io.Writer
	logger  *zap.Logger
	version string
	flags   flags
}

// New creates the command surface. The settings store is opened when the command runs.
func New(cfg Config) *CLI {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.FileSystem == nil {
		cfg.FileSystem = platform.OSFileSystem{}
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.In == nil {
		cfg.In = strings.NewReader("")
	}
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = config.DefaultSettingsFile
	}

	return &CLI{
		service: download.NewService(cfg.Tool, cfg.FileSystem, cfg.Prober, cfg.Playlists, cfg.Logger),
		fs:      cfg.FileSystem,
		in:      bufio.NewReader(cfg.In),
		out:     cfg.Out,
		logger:  cfg.Logger,
		version: cfg.Version,
		flags:   flags{settingsPath: cfg.SettingsPath},
	}
}

// Command builds the root command
func (c *CLI) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yt2mp3",
		Short: "YouTube to MP3 Converter - Download YouTube videos and convert them to MP3 format",
		Example: `  yt2mp3 --link="https://youtube.com/watch?v=xxxxx"
  yt2mp3 --set-download-path="~/Downloads/Music"
  yt2mp3 --keep-video
  yt2mp3 --show-config
  yt2mp3 --playlist="https://youtube.com/playlist?list=xxxxx"
  yt2mp3  (interactive mode)`,
		Version:       c.version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd)
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	f := cmd.Flags()
	f.StringVar(&c.flags.link, "link", "", "YouTube video URL to download and convert to MP3")
	f.StringVar(&c.flags.playlist, "playlist", "", "YouTube playlist URL; every video is converted in order")
	f.StringVar(&c.flags.setDownloadPath, "set-download-path", "", "Set new download directory path and save to configuration file")
	f.StringVar(&c.flags.setAudioQuality, "set-audio-quality", "", "Set MP3 bitrate in kbps ("+strings.Join(config.ValidAudioQualities, ", ")+")")
	f.BoolVar(&c.flags.keepVideo, "keep-video", false, "Keep original video file after MP3 conversion (saves to download path)")
	f.BoolVar(&c.flags.noKeepVideo, "no-keep-video", false, "Delete original video file after MP3 conversion (default behavior)")
	f.BoolVar(&c.flags.showConfig, "show-config", false, "Display current configuration settings")
	f.StringVar(&c.flags.settingsPath, "config", c.flags.settingsPath, "Path to the JSON settings file")

	cmd.MarkFlagsMutuallyExclusive("keep-video", "no-keep-video")
	cmd.MarkFlagsMutuallyExclusive("link", "playlist")

	cmd.SetIn(c.in)
	cmd.SetOut(c.out)
	cmd.SetErr(c.out)
	return cmd
}

func (c *CLI) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	c.store = config.NewStore(c.flags.settingsPath, c.logger)
	if _, err := c.store.Load(); err != nil {
		return fmt.Errorf("settings file %s: %w", c.store.Path(), err)
	}
	if err := c.store.LoadErr(); err != nil {
		c.println(FWarning(fmt.Sprintf("Error loading config: %v", err)))
		c.println(FWarning(MsgDefaultConfigUsed))
	}

	if c.flags.showConfig {
		c.showConfig()
		return nil
	}

	configChanged, err := c.applyConfigFlags(ctx, cmd)
	if err != nil {
		return err
	}

	switch {
	case c.flags.link != "":
		return c.fetchOnce(ctx, c.flags.link)
	case c.flags.playlist != "":
		return c.fetchPlaylist(ctx, c.flags.playlist)
	case configChanged:
		return nil
	}
	return c.Interactive(ctx)
}

func (c *CLI) showConfig() {
	c.println(FHeader(MsgCurrentConfig))
	for _, line := range config.FormatDocument(c.store.Document()) {
		c.println("  " + line)
	}
}

// applyConfigFlags persists the config-mutating flags in order: download
// path, keep-video, audio quality. It reports whether any of them was given.
func (c *CLI) applyConfigFlags(ctx context.Context, cmd *cobra.Command) (bool, error) {
	changed := false
	flagSet := cmd.Flags()

	quality := c.flags.setAudioQuality
	if flagSet.Changed("set-audio-quality") && !config.IsValidAudioQuality(quality) {
		c.println(FError(fmt.Sprintf("Error: audio quality must be one of %s", strings.Join(config.ValidAudioQualities, ", "))))
		return false, fmt.Errorf("%w: audio quality %q", ErrInvalidFlag, quality)
	}

	if flagSet.Changed("set-download-path") {
		changed = true
		if err := c.setDownloadPath(ctx, c.flags.setDownloadPath); err != nil {
			return changed, err
		}
	}

	if c.flags.keepVideo {
		changed = true
		if err := c.store.Update(config.KeyKeepVideo, true); err != nil {
			return changed, err
		}
		c.println(FSuccess(MsgKeepVideo))
	}

	if c.flags.noKeepVideo {
		changed = true
		if err := c.store.Update(config.KeyKeepVideo, false); err != nil {
			return changed, err
		}
		c.println(FSuccess(MsgNoKeepVideo))
	}

	if flagSet.Changed("set-audio-quality") {
		changed = true
		if err := c.store.Update(config.KeyAudioQuality, quality); err != nil {
			return changed, err
		}
		c.println(FSuccess(fmt.Sprintf(MsgQualityUpdated, quality)))
	}

	return changed, nil
}

// setDownloadPath stores path as typed; the directory is created on confirmation
func (c *CLI) setDownloadPath(ctx context.Context, path string) error {
	expanded, err := platform.ExpandPath(path)
	if err != nil {
		c.println(FError(fmt.Sprintf("Error setting download path: %v", err)))
		return fmt.Errorf("%w: download path: %v", ErrInvalidFlag, err)
	}

	if !c.fs.Exists(expanded) {
		answer, err := c.prompt(ctx, fmt.Sprintf(MsgCreateDirPrompt, expanded))
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if !isYes(answer) {
			c.println(FWarning(MsgPathUnchanged))
			return nil
		}
	}

	if err := c.fs.MkdirAll(expanded); err != nil {
		c.println(FError(fmt.Sprintf("Error setting download path: %v", err)))
		return fmt.Errorf("%w: download path: %v", ErrInvalidFlag, err)
	}
	if err := c.store.Update(config.KeyDownloadPath, path); err != nil {
		return err
	}
	c.println(FSuccess(fmt.Sprintf(MsgPathUpdated, expanded)))
	return nil
}

func (c *CLI) fetchOnce(ctx context.Context, url string) error {
	result := c.fetch(ctx, url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s", ErrFetchFailed, result.LastError)
	}
	return nil
}

func (c *CLI) fetchPlaylist(ctx context.Context, url string) error {
	c.println(FInfo("Reading playlist..."))
	playlist, err := c.service.ExpandPlaylist(ctx, url)
	if err != nil {
		if errors.Is(err, download.ErrInvalidURL) {
			c.println(FError(MsgInvalidURL))
		} else {
			c.println(FError(fmt.Sprintf("Error reading playlist: %v", err)))
		}
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if !playlist.IsReadyForDownload() {
		c.println(FWarning("Playlist has no videos."))
		return nil
	}

	c.println(FHeader(fmt.Sprintf("Playlist: %s (%d videos)", playlist.Title, playlist.TotalVideos)))
	playlist.UpdateStatus(model.PlaylistStatusDownloading)

	for i, video := range playlist.Videos {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.println(FHeader(fmt.Sprintf("\n[%d/%d] %s", i+1, playlist.TotalVideos, video.Title)))
		playlist.UpdateVideoStatus(video.ID, model.VideoStatusDownloading)

		result := c.fetch(ctx, video.URL)
		if result.Succeeded() {
			playlist.UpdateVideoOutputPath(video.ID, result.OutputPath, result.FileSize)
			playlist.UpdateVideoStatus(video.ID, model.VideoStatusCompleted)
		} else {
			playlist.MarkVideoFailed(video.ID, result.LastError)
		}
	}

	completed := len(playlist.GetCompletedVideos())
	summary := fmt.Sprintf("\n%d/%d videos converted (%.0f%%)", completed, playlist.TotalVideos, playlist.GetDownloadProgress())
	if playlist.HasErrors() {
		playlist.UpdateStatus(model.PlaylistStatusError)
		c.println(FWarning(summary))
		for _, video := range playlist.Videos {
			if video.Status == model.VideoStatusError {
				c.println(FError(fmt.Sprintf("  %s %s: %s", symbols["fail"], video.Title, video.Error)))
			}
		}
		return fmt.Errorf("%w: %d of %d playlist videos", ErrFetchFailed, playlist.TotalVideos-completed, playlist.TotalVideos)
	}

	playlist.UpdateStatus(model.PlaylistStatusCompleted)
	c.println(FSuccess(summary))
	return nil
}

// Interactive prompts for URLs until the user quits or input ends
func (c *CLI) Interactive(ctx context.Context) error {
	c.println(FHeader(MsgBanner))
	c.println(strings.Repeat(symbols["hline"], 40))

	for {
		url, err := c.prompt(ctx, MsgURLPrompt)
		if err != nil {
			return c.leave(err)
		}

		if isQuitWord(url) {
			c.println(MsgGoodbye)
			return nil
		}
		if url == "" {
			c.println(FWarning(MsgEmptyURL))
			continue
		}
		if !download.ValidateURL(url) {
			c.println(FError(MsgInvalidURL))
			continue
		}

		info, err := c.service.GetInfo(ctx, url)
		question := MsgConfirm
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.println(FWarning(MsgNoInfo))
			info = nil
			question = MsgConfirmUnknown
		}
		c.println("\nVideo: " + info.DisplayTitle())
		c.println("Uploader: " + info.DisplayUploader())
		c.println("Duration: " + info.DurationString())

		answer, err := c.prompt(ctx, question)
		if err != nil {
			return c.leave(err)
		}
		if isYes(answer) {
			c.fetch(ctx, url)
			if err := ctx.Err(); err != nil {
				return err
			}
		} else {
			c.println(MsgCancelled)
		}

		again, err := c.prompt(ctx, MsgAnother)
		if err != nil {
			return c.leave(err)
		}
		if !isYes(again) {
			c.println(MsgGoodbye)
			return nil
		}
	}
}

// leave ends the interactive loop; end of input is a normal exit
func (c *CLI) leave(err error) error {
	if errors.Is(err, io.EOF) {
		c.println("\n" + MsgGoodbye)
		return nil
	}
	return err
}

// fetch runs one fetch with the current settings and reports it
func (c *CLI) fetch(ctx context.Context, url string) *model.FetchResult {
	settings := c.store.Settings()
	if dir, err := settings.ResolvedDownloadPath(); err == nil && download.ValidateURL(url) {
		c.println(FInfo("Downloading to: " + dir))
	}

	result := c.service.Fetch(ctx, url, settings)
	c.reportResult(result)
	return result
}

func (c *CLI) reportResult(result *model.FetchResult) {
	switch result.Status {
	case model.FetchStatusCompleted:
		c.println(FSuccess(symbols["pass"] + " " + MsgCompleted))
		c.println(FInfo(fmt.Sprintf("  %s %s", symbols["arrow"], result.GetDisplayTitle())))
		details := "    " + result.OutputPath
		if result.FileSize > 0 {
			details += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(result.FileSize)))
		}
		c.println(FDetail(details))
	case model.FetchStatusRejected:
		c.println(FError(MsgInvalidURL))
	default:
		c.println(FError(fmt.Sprintf("%s Error downloading video: %s", symbols["fail"], result.LastError)))
	}
}

// prompt writes question and reads one trimmed line. It returns io.EOF at
// end of input and the context error if ctx is cancelled while waiting.
func (c *CLI) prompt(ctx context.Context, question string) (string, error) {
	fmt.Fprint(c.out, question)

	type line struct {
		text string
		err  error
	}
	lines := make(chan line, 1)
	// On cancellation this goroutine stays blocked in ReadString until the process exits
	go func() {
		text, err := c.in.ReadString('\n')
		lines <- line{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-lines:
		if l.err != nil && l.text == "" {
			if errors.Is(l.err, io.EOF) {
				return "", io.EOF
			}
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (c *CLI) println(text string) {
	fmt.Fprintln(c.out, text)
}

func isYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func isQuitWord(input string) bool {
	input = strings.ToLower(input)
	for _, w := range quitWords {
		if input == w {
			return true
		}
	}
	return false
}

// Execute runs the command with args and returns the process exit code
func Execute(ctx context.Context, cfg Config, args []string) int {
	c := New(cfg)
	cmd := c.Command()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		c.println("\n" + MsgInterrupted)
		return 0
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrInvalidFlag):
		c.logger.Debug("command failed", zap.Error(err))
		return 1
	default:
		c.println(FError(fmt.Sprintf("Error: %v", err)))
		return 1
	}
}
