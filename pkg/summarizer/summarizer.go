// Package summarizer turns a folder of raw Turning Movement Count workbooks
// into a single summary spreadsheet.
//
//	path, err := summarizer.WriteSummaryFile("/data/counts", "")
//
// An empty output directory writes the report next to the inputs.
package summarizer

import (
	"context"

	"github.com/diillson/tmc-summarizer-go/internal/adapter/driven/aws"
	"github.com/diillson/tmc-summarizer-go/internal/adapter/driven/config"
	"github.com/diillson/tmc-summarizer-go/internal/adapter/driven/export"
	"github.com/diillson/tmc-summarizer-go/internal/adapter/driven/storage"
	"github.com/diillson/tmc-summarizer-go/internal/adapter/driven/workbook"
	"github.com/diillson/tmc-summarizer-go/internal/application/usecase"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/diillson/tmc-summarizer-go/pkg/console"
)

// Options is the full option set of a summarize call.
type Options = types.SummaryOptions

// Result lists the files a summarize call produced.
type Result = types.SummaryResult

// Error kinds, for use with errors.Is.
var (
	ErrNotFound   = types.ErrNotFound
	ErrDataFormat = types.ErrDataFormat
	ErrEmptyInput = types.ErrEmptyInput
	ErrIO         = types.ErrIO
)

// NewUseCase wires the default repositories around c.
func NewUseCase(c types.ConsoleInterface) *usecase.SummaryUseCase {
	uc := usecase.NewSummaryUseCase(
		workbook.NewCountRepository(c),
		export.NewExportRepository(),
		config.NewConfigRepository(),
		c,
	)
	uc.SetArchiveOpener(storage.NewSQLArchiveRepository)
	uc.SetUploaderOpener(aws.NewS3UploadRepository)
	return uc
}

// WriteSummaryFile summarizes every count file under inputDir and returns the
// path of the written workbook.
func WriteSummaryFile(inputDir, outputDir string) (string, error) {
	res, err := Run(context.Background(), Options{InputDir: inputDir, OutputDir: outputDir})
	if err != nil {
		return "", err
	}
	return res.Workbook, nil
}

// Run executes a summarize call without console output.
func Run(ctx context.Context, opts Options) (*Result, error) {
	return NewUseCase(console.NewSilentConsole()).WriteSummaryFile(ctx, &opts)
}
