package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/jobsheet"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
)

const maxFileErrors = 5

// Worker imports job sheets through a bounded pool and records each run.
type Worker struct {
	cfg    Config
	repo   repository.ImportRepository
	writer JobWriter
	wg     sync.WaitGroup
}

// NewWorker creates a new import worker
func NewWorker(cfg Config, repo repository.ImportRepository, writer JobWriter) *Worker {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &Worker{
		cfg:    cfg,
		repo:   repo,
		writer: writer,
	}
}

// Start records a new run and processes files in the background. The returned
// run reflects the initial state.
func (w *Worker) Start(ctx context.Context, source, startedBy string, files []domain.UploadedFile) (*domain.ImportRun, error) {
	run, fileRecords, err := w.prepare(ctx, source, startedBy, files)
	if err != nil {
		return nil, err
	}

	snapshot := *run
	snapshot.Files = make([]*domain.ImportFile, len(fileRecords))
	for i, rec := range fileRecords {
		c := *rec
		snapshot.Files[i] = &c
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		// Detached from the request that started the run.
		w.process(context.Background(), run, files, fileRecords)
	}()

	return &snapshot, nil
}

// Run processes files synchronously and returns the finished run.
func (w *Worker) Run(ctx context.Context, source, startedBy string, files []domain.UploadedFile) (*domain.ImportRun, error) {
	run, fileRecords, err := w.prepare(ctx, source, startedBy, files)
	if err != nil {
		return nil, err
	}
	w.process(ctx, run, files, fileRecords)
	return run, nil
}

// Wait blocks until every background run has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) prepare(ctx context.Context, source, startedBy string, files []domain.UploadedFile) (*domain.ImportRun, []*domain.ImportFile, error) {
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no files to import")
	}

	run := &domain.ImportRun{
		Source:     source,
		Status:     domain.ImportPending,
		TotalFiles: len(files),
		StartedBy:  startedBy,
		StartedAt:  time.Now(),
	}
	if err := w.repo.CreateRun(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("failed to create import run: %w", err)
	}

	records := make([]*domain.ImportFile, len(files))
	for i, f := range files {
		rec := &domain.ImportFile{
			RunID:    run.ID,
			FileName: f.Filename,
			Status:   domain.FileQueued,
		}
		if err := w.repo.CreateFile(ctx, rec); err != nil {
			return nil, nil, fmt.Errorf("failed to create import file: %w", err)
		}
		records[i] = rec
	}
	run.Files = records

	log.Info().Int64("run_id", run.ID).Str("source", source).Int("files", len(files)).Msg("import run created")
	return run, records, nil
}

func (w *Worker) process(ctx context.Context, run *domain.ImportRun, files []domain.UploadedFile, records []*domain.ImportFile) {
	started := time.Now()

	run.Status = domain.ImportProcessing
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		log.Error().Err(err).Int64("run_id", run.ID).Msg("failed to mark import run processing")
	}

	errs := w.processFilesParallel(ctx, run, files, records)

	now := time.Now()
	run.CompletedAt = &now
	run.Status = domain.ImportCompleted
	if len(errs) > 0 {
		run.Status = domain.ImportFailed
		run.ErrorMessage = fmt.Sprintf("%d of %d files failed: %v", len(errs), len(files), errs[0])
	}
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		log.Error().Err(err).Int64("run_id", run.ID).Msg("failed to finish import run")
	}

	if !w.cfg.KeepFiles {
		for _, f := range files {
			if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn().Err(err).Str("path", f.Path).Msg("failed to remove imported file")
			}
		}
	}

	log.Info().
		Int64("run_id", run.ID).
		Str("status", string(run.Status)).
		Int("processed_files", run.ProcessedFiles).
		Int("rows", run.TotalRows).
		Dur("duration", time.Since(started)).
		Msg("import run finished")
}

// processFilesParallel processes files using a worker pool and returns every file error.
func (w *Worker) processFilesParallel(ctx context.Context, run *domain.ImportRun, files []domain.UploadedFile, records []*domain.ImportFile) []error {
	type task struct {
		file   domain.UploadedFile
		record *domain.ImportFile
	}

	taskChan := make(chan task, len(files))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	// Start workers
	for i := 0; i < w.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for t := range taskChan {
				stats, err := w.processFile(ctx, t.file, t.record)
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Str("file", t.file.Filename).Msg("failed to import file")
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s: %w", t.file.Filename, err))
					mu.Unlock()
					continue
				}

				mu.Lock()
				run.ProcessedFiles++
				run.TotalRows += stats.Rows
				mu.Unlock()

				if err := w.repo.RecordFileDone(ctx, run.ID, stats.Rows); err != nil {
					log.Warn().Err(err).Int64("run_id", run.ID).Msg("failed to record import progress")
				}
			}
		}(i)
	}

	// Enqueue files
	for i, f := range files {
		select {
		case <-ctx.Done():
			close(taskChan)
			wg.Wait()
			return append(errs, ctx.Err())
		case taskChan <- task{file: f, record: records[i]}:
		}
	}
	close(taskChan)

	wg.Wait()
	return errs
}

// processFile imports a single sheet
func (w *Worker) processFile(ctx context.Context, file domain.UploadedFile, record *domain.ImportFile) (FileStats, error) {
	var stats FileStats
	startTime := time.Now()

	record.Status = domain.FileProcessing
	if err := w.repo.UpdateFile(ctx, record); err != nil {
		return stats, err
	}

	result, err := jobsheet.ParseFile(file.Path)
	if err != nil {
		return stats, w.markFileFailed(ctx, record, fmt.Errorf("parse failed: %w", err))
	}
	stats.Rows = result.Rows

	var problems []string
	for _, re := range result.Errors {
		problems = append(problems, fmt.Sprintf("line %d: %s", re.Line, re.Message))
	}

	for _, job := range result.Jobs {
		outcome, err := w.writer.ImportJob(ctx, job, record.FileName)
		if err != nil {
			if ctx.Err() != nil {
				return stats, w.markFileFailed(ctx, record, ctx.Err())
			}
			stats.Skipped++
			problems = append(problems, fmt.Sprintf("job %s/%s: %v", job.Year, job.JobNo, err))
			continue
		}
		switch outcome {
		case OutcomeCreated:
			stats.Created++
		case OutcomeUpdated:
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	record.Status = domain.FileCompleted
	record.Rows = stats.Rows
	record.ErrorMessage = summarize(problems)
	now := time.Now()
	record.ProcessedAt = &now
	if err := w.repo.UpdateFile(ctx, record); err != nil {
		return stats, err
	}

	log.Info().
		Str("file", file.Filename).
		Int("rows", stats.Rows).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Dur("duration", time.Since(startTime)).
		Msg("imported job sheet")

	return stats, nil
}

// markFileFailed records the failure on the file and returns err
func (w *Worker) markFileFailed(ctx context.Context, record *domain.ImportFile, err error) error {
	record.Status = domain.FileFailed
	record.ErrorMessage = err.Error()
	now := time.Now()
	record.ProcessedAt = &now

	if updateErr := w.repo.UpdateFile(context.WithoutCancel(ctx), record); updateErr != nil {
		log.Error().Err(updateErr).Int64("file_id", record.ID).Msg("failed to update import file status")
	}
	return err
}

func summarize(problems []string) string {
	if len(problems) == 0 {
		return ""
	}
	if len(problems) <= maxFileErrors {
		return strings.Join(problems, "; ")
	}
	return fmt.Sprintf("%s; and %d more", strings.Join(problems[:maxFileErrors], "; "), len(problems)-maxFileErrors)
}
