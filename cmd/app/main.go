package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/veleth/dagaz/internal"
)

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dagaz"
	}
	return filepath.Join(home, ".dagaz")
}

// setup resolves the home directory and loads the configuration. A broken
// config document is recovered with defaults, never fatal.
func setup(cmd *cli.Command) (string, *internal.Config, error) {
	home := cmd.String("home")
	if home == "" {
		home = defaultHome()
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return "", nil, fmt.Errorf("create home dir: %w", err)
	}
	cfg, err := internal.LoadConfig(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
	}
	return home, cfg, nil
}

func run(ctx context.Context, cmd *cli.Command, mode internal.Mode, extra ...internal.Option) error {
	home, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	opts := append([]internal.Option{
		internal.WithConfig(cfg),
		internal.WithHome(home),
		internal.WithMode(mode),
	}, extra...)
	return internal.Run(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:  "dagaz",
		Usage: "Terminal-resident Markdown note manager with a JSON metadata index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "home",
				Usage:       "Application home directory (config, index, template)",
				DefaultText: "~/.dagaz",
				Sources:     cli.EnvVars("DAGAZ_HOME"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, internal.ModeTUI)
		},
		Commands: []*cli.Command{
			{
				Name:  "reconcile",
				Usage: "Report drift between the index and the storage directory",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "apply",
						Usage: "Repair the reported drift (never deletes note files)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, internal.ModeReconcile,
						internal.WithApply(cmd.Bool("apply")))
				},
			},
			{
				Name:  "watch",
				Usage: "Watch the storage directory and repair index drift on change",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, internal.ModeWatch)
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve the note tools over stdio MCP",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, cmd, internal.ModeMCP)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
