// AngelaMos | 2026
// main.go

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/config"
	"github.com/tharavad/dues-api/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "prepare a dues store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			adminCommand(),
			demoCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create tables or indexes for the configured store",
		Action: func(c *cli.Context) error {
			backend, err := openStore(c)
			if err != nil {
				return err
			}
			defer closeStore(backend)

			if err := backend.Migrate(c.Context); err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "migrated %s store\n", backend.Driver)
			return nil
		},
	}
}

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "create the admin account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Required: true,
				Usage:    "admin login name",
			},
			&cli.StringFlag{
				Name:     "password",
				Required: true,
				Usage:    "admin password",
				EnvVars:  []string{"ADMIN_PASSWORD"},
			},
		},
		Action: func(c *cli.Context) error {
			backend, err := openStore(c)
			if err != nil {
				return err
			}
			defer closeStore(backend)

			if err := backend.Migrate(c.Context); err != nil {
				return err
			}

			svc := auth.NewService(backend.Admins, nil)
			admin, err := svc.CreateAdmin(
				c.Context,
				c.String("username"),
				c.String("password"),
			)
			if err != nil {
				if errors.Is(err, auth.ErrAdminExists) {
					return cli.Exit(
						fmt.Sprintf("admin %q already exists", c.String("username")),
						1,
					)
				}
				return err
			}

			fmt.Fprintf(c.App.Writer, "created admin %s (%s)\n", admin.Username, admin.ID)
			return nil
		},
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "load the demo roster with its recorded dues",
		Action: func(c *cli.Context) error {
			backend, err := openStore(c)
			if err != nil {
				return err
			}
			defer closeStore(backend)

			if err := backend.Migrate(c.Context); err != nil {
				return err
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			result, err := seedDemo(c.Context, backend, cfg.Dues)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer,
				"demo roster: %d created, %d skipped, %d payments marked\n",
				result.Created,
				result.Skipped,
				result.Marked,
			)
			return nil
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = ""
	}
	return config.Load(path)
}

// openStore refuses the memory driver: nothing written by this process
// would reach the API server.
func openStore(c *cli.Context) (*store.Backend, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := requirePersistent(cfg.Store.Driver); err != nil {
		return nil, err
	}
	return store.Open(c.Context, cfg)
}

func requirePersistent(driver string) error {
	if driver == config.DriverMemory {
		return cli.Exit(
			"the memory store does not outlive this command; "+
				"set STORE_DRIVER to postgres or mongo "+
				"(the API server creates ADMIN_USERNAME/ADMIN_PASSWORD itself)",
			1,
		)
	}
	return nil
}

func closeStore(backend *store.Backend) {
	if err := backend.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}
}
