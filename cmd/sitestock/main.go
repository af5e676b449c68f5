package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/erazemk/sitestock/internal/config"
)

func main() {
	root := &cli.Command{
		Name:  "sitestock",
		Usage: "multi-site equipment inventory tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (YAML or TOML)"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Usage: "also append logs to this file"},
			&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, Usage: "directory holding partition databases"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			initCommand(),
			sitesCommand(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServe(ctx, c)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies flags
// that were given explicitly.
func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("log") {
		cfg.LogFile = c.String("log")
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("production") {
		cfg.Production = c.Bool("production")
	}
	return cfg, cfg.Validate()
}

// setup loads the config and installs the default logger.
func setup(c *cli.Command) (*config.Config, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	logger, cleanup, err := newLogger(os.Stdout, os.Stderr, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, cleanup, nil
}

func sitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sites",
		Usage: "list the configured sites and their partitions",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			for _, s := range reg.Sites() {
				fmt.Printf("%-10s %-12s %s\n", s.Key, s.Name, s.Partition)
			}
			w := reg.Warehouse()
			fmt.Printf("%-10s %-12s %s\n", w.Key, w.Name, w.Partition)
			return nil
		},
	}
}
