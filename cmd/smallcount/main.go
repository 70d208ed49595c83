package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	"github.com/homier/smallmap/internal/codec"
)

func main() {
	app := cli.App{
		Name:    "smallcount",
		Usage:   "count tokens into a small sorted counter and convert between encodings",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (error, warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"SMALLCOUNT_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "format",
			Usage:   "encoding of counters read and written (" + strings.Join(codec.Names(), ", ") + ")",
			Value:   codec.Default.Name(),
			EnvVars: []string{"SMALLCOUNT_FORMAT"},
		},
	}

	app.Before = func(cctx *cli.Context) error {
		level, err := parseLevel(cctx.String("log-level"))
		if err != nil {
			return err
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		return nil
	}

	app.Commands = []*cli.Command{
		countCmd,
		mergeCmd,
		subtractCmd,
		topCmd,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}

	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func formatCodec(cctx *cli.Context) (codec.Codec, error) {
	name := cctx.String("format")

	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(codec.Names(), ", "))
	}

	return c, nil
}
