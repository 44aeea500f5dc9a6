package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal"
	pkgconfig "github.com/k-ymmt/save-slack-to-inkdrop/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, configPath, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func runClip(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	preview, err := internal.Clip(ctx, internal.ClipRequest{
		URL:    cmd.String("url"),
		Book:   cmd.String("book"),
		Tags:   cmd.StringSlice("tag"),
		Share:  cmd.String("share"),
		Status: cmd.String("status"),
		DryRun: cmd.Bool("dry-run"),
	}, internal.WithConfig(cfg))
	if err != nil {
		return err
	}

	fmt.Println(preview.Markdown)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "save-slack-to-inkdrop",
		Usage: "Clip Slack messages into Inkdrop notes: preview a message permalink and save it as a note",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: runMCP,
			},
			{
				Name:   "clip",
				Usage:  "Resolve a Slack message permalink and save it as a note",
				Action: runClip,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "Slack message permalink",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "book",
						Aliases: []string{"b"},
						Usage:   "Target book id or name (defaults to the last used book)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag id to attach (repeatable)",
					},
					&cli.StringFlag{
						Name:  "share",
						Usage: "Note visibility: private or public",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Note status: active, onHold, completed, dropped, or none",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print the rendered markdown without saving",
					},
				},
			},
		},
		// Default to serving when no subcommand is given.
		Action: runServe,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
