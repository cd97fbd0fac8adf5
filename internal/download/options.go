package download

import (
	"path/filepath"
	"strings"

	"github.com/ytget/yt2mp3/internal/config"
)

// Format selectors, in order of preference. Video is capped so that a
// full-resolution stream is never requested.
const (
	FormatAudioM4A    = "bestaudio[ext=m4a]"
	FormatAudioWebM   = "bestaudio[ext=webm]"
	FormatAudioAny    = "bestaudio"
	FormatCappedVideo = "best[height<=480]"
)

// AudioFormatMP3 is the container audio is extracted into
const AudioFormatMP3 = "mp3"

// FormatPreference is the ordered selector list
var FormatPreference = []string{FormatAudioM4A, FormatAudioWebM, FormatAudioAny, FormatCappedVideo}

// Options is the declarative option set handed to the tool
type Options struct {
	Format         string
	ExtractAudio   bool
	AudioFormat    string
	AudioQuality   string
	OutputTemplate string
	KeepVideo      bool
	NoPlaylist     bool
}

// BuildOptions derives the tool options for one fetch into downloadDir.
// KeepVideo is always set: the Service removes the source itself.
func BuildOptions(downloadDir string, settings config.Settings) Options {
	quality := settings.AudioQuality
	if quality == "" {
		quality = config.DefaultAudioQuality
	}
	format := settings.FilenameFormat
	if format == "" {
		format = config.DefaultFilenameFormat
	}

	return Options{
		Format:         strings.Join(FormatPreference, "/"),
		ExtractAudio:   true,
		AudioFormat:    AudioFormatMP3,
		AudioQuality:   quality,
		OutputTemplate: filepath.Join(downloadDir, format),
		KeepVideo:      true,
		NoPlaylist:     true,
	}
}

// AudioPathFor returns where the extracted audio for source ends up
func (o Options) AudioPathFor(source string) string {
	audioFormat := o.AudioFormat
	if audioFormat == "" {
		audioFormat = AudioFormatMP3
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + "." + audioFormat
}
