package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes analysis jobs one at a time.
type Worker struct {
	analyzer *Analyzer
	log      *slog.Logger
}

func NewWorker(analyzer *Analyzer, log *slog.Logger) *Worker {
	return &Worker{analyzer: analyzer, log: log}
}

// Process runs one job to a terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	log.Info("job started", "documents", len(job.Documents))

	res, err := w.analyzer.run(ctx, job.Inputs(), job.Persona, job.JobToBeDone, job)
	if err != nil {
		phase := job.Snapshot().Phase
		log.Error("job failed", "phase", phase, "error", err)
		job.Fail(phase, err)
		return
	}

	job.Complete(res)
	log.Info("job completed",
		"sections", len(res.ExtractedSections),
		"documents_failed", job.Snapshot().Progress.DocumentsFailed,
	)
}
