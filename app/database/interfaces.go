package database

import (
	"context"

	"github.com/Sveder/awesome-web-dev-baseline/app/pipeline"
)

type RunStore interface {
	SaveRun(ctx context.Context, summary *pipeline.Summary) error

	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	GetRunCount(ctx context.Context) (int, error)

	ListAddedTools(ctx context.Context, limit int) ([]AddedTool, error)
}
