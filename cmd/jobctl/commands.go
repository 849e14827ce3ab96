package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/drive"
	"github.com/andresuchdata/eximdesk/internal/importer"
	"github.com/andresuchdata/eximdesk/internal/repository/postgres"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/andresuchdata/eximdesk/pkg/logger"
	"github.com/urfave/cli/v2"
)

func runMigrate(c *cli.Context) error {
	if err := dbFrom(c).Migrate(c.Context); err != nil {
		return err
	}
	logger.Log.Info().Msg("schema is up to date")
	return nil
}

func runRecompute(c *cli.Context) error {
	svc := service.NewStatusService(postgres.NewJobRepository(dbFrom(c)), nil)
	result, err := svc.RecomputeAll(c.Context)
	if err != nil {
		return fmt.Errorf("recompute failed: %w", err)
	}
	logger.Log.Info().
		Int("scanned", result.Scanned).
		Int("changed", result.Changed).
		Int64("duration_ms", result.DurationMS).
		Msg("status recompute finished")
	return nil
}

func runImport(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file or directory is required")
	}
	files, err := importer.CollectFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV or XLSX sheets found")
	}
	return importFiles(c, importer.SourceCLI, c.String("actor"), files, true)
}

// importFiles runs the import synchronously and reports the outcome per file.
func importFiles(c *cli.Context, source, actor string, files []domain.UploadedFile, keep bool) error {
	db := dbFrom(c)
	jobs := service.NewJobService(postgres.NewJobRepository(db), postgres.NewDirectoryRepository(db), nil)
	worker := importer.NewWorker(importer.Config{WorkerCount: c.Int("workers"), KeepFiles: keep}, postgres.NewImportRepository(db), jobs)

	run, err := worker.Run(c.Context, source, actor, files)
	if err != nil {
		return err
	}
	for _, f := range run.Files {
		logger.Log.Info().
			Str("file", f.FileName).
			Str("status", string(f.Status)).
			Int("rows", f.Rows).
			Str("error", f.ErrorMessage).
			Msg("sheet processed")
	}
	logger.Log.Info().
		Int64("run_id", run.ID).
		Str("status", string(run.Status)).
		Int("rows", run.TotalRows).
		Msg("import finished")
	if run.Status == domain.ImportFailed {
		return fmt.Errorf("import run %d failed: %s", run.ID, run.ErrorMessage)
	}
	return nil
}

func runExport(c *cli.Context) error {
	format, err := service.ParseExportFormat(strings.ToLower(c.String("format")))
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = "jobs." + string(format)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	filter := domain.JobFilter{
		Year:          c.String("year"),
		Status:        domain.JobStatus(c.String("status")),
		SortField:     "rank",
		SortDirection: "asc",
	}
	count, err := service.NewReportService(postgres.NewJobRepository(dbFrom(c))).ExportJobs(c.Context, filter, format, f)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("jobs", count).Str("file", out).Msg("export written")
	return nil
}

func runCreateUser(c *cli.Context) error {
	// Registration never issues tokens.
	svc := service.NewAuthService(postgres.NewUserRepository(dbFrom(c)), nil, c.Int("bcrypt-cost"))
	user, err := svc.CreateUser(c.Context, service.CreateUserRequest{
		Username: c.String("username"),
		Password: c.String("password"),
		Role:     domain.Role(c.String("role")),
	})
	if err != nil {
		return err
	}
	logger.Log.Info().Int64("id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("user created")
	return nil
}

func runDriveSync(c *cli.Context) error {
	creds, err := readCredentials(c.String("credentials"))
	if err != nil {
		return err
	}
	src, err := drive.NewService(c.Context, creds)
	if err != nil {
		return err
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		if folderID, err = src.FindFolderByPath(c.Context, c.String("folder-path")); err != nil {
			return err
		}
	}

	files, err := drive.NewDownloader(src).DownloadFolder(c.Context, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: c.String("dir"),
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Log.Info().Str("folder_id", folderID).Msg("no job sheets in folder")
		return nil
	}
	return importFiles(c, importer.SourceDrive, "jobctl", files, false)
}

func readCredentials(value string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(value), "{") {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}
	return string(data), nil
}
