package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ytget/yt2mp3/internal/cli"
	"github.com/ytget/yt2mp3/internal/config"
	"github.com/ytget/yt2mp3/internal/download"
	"github.com/ytget/yt2mp3/internal/logger"
	"github.com/ytget/yt2mp3/internal/platform"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", config.DotEnvFile, err)
	}

	log, err := logger.New(config.GetEnvStr(config.EnvLogLevel, logger.DefaultLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx, cli.Config{
		SettingsPath: config.GetEnvStr(config.EnvSettingsPath, config.DefaultSettingsFile),
		Tool:         download.NewYTDLPTool(log),
		FileSystem:   platform.OSFileSystem{},
		Prober:       download.NewYouTubeProber(download.DefaultProbeTimeout),
		Playlists:    platform.NewPlaylistService(log),
		In:           os.Stdin,
		Out:          os.Stdout,
		Logger:       log,
		Version:      version,
	}, os.Args[1:])

	stop()
	logger.Sync(log)
	os.Exit(code)
}
