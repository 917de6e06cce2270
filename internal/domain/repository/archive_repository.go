package repository

import (
	"context"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
)

// ArchiveRepository publishes raw interval counts to a database.
type ArchiveRepository interface {
	PublishRuns(ctx context.Context, runs []entity.Run) (int, error)
	Close() error
}

// UploadRepository copies report files to remote storage.
type UploadRepository interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
