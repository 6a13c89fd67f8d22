package repository

import (
	"context"
	"time"

	"floify-api/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const runsTable = "pipeline_runs"

var runColumns = []string{
	"id", "request_id", "document_ref", "output_dir", "status", "error", "ocr_failed", "started_at", "finished_at",
}

type RunRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRunRepository(db *pgxpool.Pool, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	sql, args, err := createRunQuery(run).ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Finish records the terminal status of a run and stamps finished_at.
func (r *RunRepository) Finish(ctx context.Context, id uuid.UUID, status models.RunStatus, errMsg string, ocrFailed bool) error {
	sql, args, err := finishRunQuery(id, status, errMsg, ocrFailed, time.Now()).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Pipeline run not found on finish", zap.String("run_id", id.String()))
	}
	return nil
}

// List returns runs newest first.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]*models.PipelineRun, error) {
	sql, args, err := listRunsQuery(limit, offset).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.PipelineRun
	for rows.Next() {
		var run models.PipelineRun
		if err := rows.Scan(
			&run.ID, &run.RequestID, &run.DocumentRef, &run.OutputDir, &run.Status, &run.Error, &run.OCRFailed, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func createRunQuery(run *models.PipelineRun) squirrel.InsertBuilder {
	return squirrel.Insert(runsTable).
		Columns(runColumns...).
		Values(run.ID, run.RequestID, run.DocumentRef, run.OutputDir, string(run.Status), run.Error, run.OCRFailed, run.StartedAt, run.FinishedAt).
		PlaceholderFormat(squirrel.Dollar)
}

func finishRunQuery(id uuid.UUID, status models.RunStatus, errMsg string, ocrFailed bool, at time.Time) squirrel.UpdateBuilder {
	return squirrel.Update(runsTable).
		Set("status", string(status)).
		Set("error", errMsg).
		Set("ocr_failed", ocrFailed).
		Set("finished_at", at).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
}

func listRunsQuery(limit, offset int) squirrel.SelectBuilder {
	return squirrel.Select(runColumns...).
		From(runsTable).
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)
}
