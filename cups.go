package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func PanicOnError(err error) {
	if err != nil {
		panic(err)
	}
}

func init() {
	InitializeLogger(zerolog.InfoLevel, false)
}

// Populated by ldflags
var (
	version            string
	buildUnixTimestamp string
	commitHash         string
)

func parseFlags(args []string) (Flags, error) {
	var flags Flags

	fset := flag.NewFlagSet("cups", flag.ContinueOnError)
	fset.StringVar(&flags.ConfigPath, "config", "", "Path to a TOML config file")
	fset.StringVar(&flags.Labels, "labels", "", `Starting cup labels, e.g. "389125467", or "example"`)
	fset.BoolVar(&flags.Serve, "serve", false, "Serve the HTTP API instead of playing the configured games")
	fset.BoolVar(&flags.Version, "version", false, "Print version")
	fset.BoolVar(&flags.Systemd, "systemd", false, "Print a systemd service file for the server")
	fset.BoolVar(&flags.NoProgress, "no-progress", false, "Hide the progress bar for long games")

	err := fset.Parse(args)
	return flags, err
}

func main() {
	ts, _ := strconv.ParseInt(buildUnixTimestamp, 10, 64)
	buildInfo := BuildInfo{
		Version:    version,
		CommitHash: commitHash,
		BuildTime:  time.Unix(ts, 0),
	}

	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if flags.Version {
		fmt.Println("Cups version:", buildInfo.Version)
		fmt.Println("Built on:", buildInfo.BuildTime)
		fmt.Println("Commit hash:", buildInfo.CommitHash)
		return
	}

	if flags.Systemd {
		PanicOnError(SystemdServiceFile(flags.ConfigPath))
		return
	}

	fs := NewOSFS()
	config, err := NewConfig(fs, flags, os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Config initialization failed")
	}
	InitializeLogger(config.LogLevel(), config.NoColor())

	log.Info().
		Str("version", version).
		Str("build_timestamp", buildInfo.BuildTime.Format(time.RFC3339)).
		Str("commit_hash", commitHash).
		Str("config", config.Path()).
		Str("data_dir", config.DataDir()).
		Msg("Initializing cups")

	storage, err := NewStorage(fs, config)
	PanicOnError(err)

	var cache *ResultCache
	if config.CacheEnabled() {
		cache, err = OpenResultCache(CachePath(config))
		if err != nil {
			log.Warn().Err(err).Msg("Result cache unavailable, every game will be played")
			cache = nil
		}
	}
	defer cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.Serve {
		runner := NewRunner(ctx, config, storage, cache)
		if err := StartServer(ctx, config, buildInfo, runner, storage); err != nil {
			log.Err(err).Msg("Server closed with error")
		}
		return
	}

	if err := RunGames(ctx, config, storage, cache, os.Stdout, !flags.NoProgress); err != nil {
		log.Fatal().Err(err).Msg("Game failed")
	}
}
