package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/andresuchdata/eximdesk/internal/repository/postgres"
	"github.com/andresuchdata/eximdesk/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	conn, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	conn.SetMaxOpenConns(runtime.NumCPU() * 2)

	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(conn, int64(runtime.NumCPU())))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	return c.Context.Value(dbKey{}).(*postgres.DB)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "jobctl",
		Usage: "Operate the job tracker database from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:   "recompute-status",
				Usage:  "Recalculate the derived status of every job",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runRecompute,
			},
			{
				Name:      "import",
				Usage:     "Import job sheets (CSV or XLSX files, or directories of them)",
				ArgsUsage: "<files...>",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of sheets processed concurrently",
						Value:   4,
						EnvVars: []string{"IMPORT_WORKER_COUNT"},
					},
					&cli.StringFlag{
						Name:  "actor",
						Usage: "Username recorded as the run's starter",
						Value: "jobctl",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImport,
			},
			{
				Name:  "export",
				Usage: "Export jobs to a spreadsheet",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "xlsx or csv",
						Value: "xlsx",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file; defaults to jobs.<format>",
					},
					&cli.StringFlag{
						Name:  "year",
						Usage: "Only export jobs of this financial year",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only export jobs with this lifecycle status",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runExport,
			},
			{
				Name:  "create-user",
				Usage: "Register an operator account",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"JOBCTL_PASSWORD"}},
					&cli.StringFlag{Name: "role", Value: "User", Usage: "Admin or User"},
					&cli.IntFlag{Name: "bcrypt-cost", Value: 12, EnvVars: []string{"BCRYPT_COST"}},
				},
				Before: initDB,
				After:  closeDB,
				Action: runCreateUser,
			},
			{
				Name:  "drive-sync",
				Usage: "Download the job sheets of a Google Drive folder and import them",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "credentials",
						Usage:    "Service account credentials, inline JSON or a path to the key file",
						Required: true,
						EnvVars:  []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"},
					},
					&cli.StringFlag{
						Name:    "folder-id",
						Usage:   "Drive folder to read",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:  "folder-path",
						Usage: "Folder path such as \"Tracker/2024\"; used when no folder id is set",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Download directory",
						Value: "./data/imports/drive",
					},
					&cli.IntFlag{
						Name:    "workers",
						Value:   4,
						EnvVars: []string{"IMPORT_WORKER_COUNT"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runDriveSync,
			},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("jobctl failed")
	}
}
