package repository

import (
	"context"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
)

// CountRepository locates and parses raw count files.
type CountRepository interface {
	LoadRuns(ctx context.Context, inputDir string) ([]entity.Run, error)
}
