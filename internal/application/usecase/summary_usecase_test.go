package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/diillson/tmc-summarizer-go/pkg/console"
)

type fakeCountRepo struct {
	runs []entity.Run
	err  error
	dir  string
}

func (f *fakeCountRepo) LoadRuns(_ context.Context, inputDir string) ([]entity.Run, error) {
	f.dir = inputDir
	return f.runs, f.err
}

type fakeExportRepo struct {
	calls   []string
	report  *entity.Report
	xlsxErr error
	zipped  []string
}

func (f *fakeExportRepo) write(kind string, report *entity.Report, name, dir string) (string, error) {
	f.calls = append(f.calls, kind)
	f.report = report
	return filepath.Join(dir, name+"."+kind), nil
}

func (f *fakeExportRepo) ExportToXLSX(r *entity.Report, name, dir string) (string, error) {
	if f.xlsxErr != nil {
		return "", f.xlsxErr
	}
	return f.write("xlsx", r, name, dir)
}

func (f *fakeExportRepo) ExportToCSV(r *entity.Report, name, dir string) (string, error) {
	return f.write("csv", r, name, dir)
}

func (f *fakeExportRepo) ExportToJSON(r *entity.Report, name, dir string) (string, error) {
	return f.write("json", r, name, dir)
}

func (f *fakeExportRepo) ExportToPDF(r *entity.Report, name, dir string) (string, error) {
	return f.write("pdf", r, name, dir)
}

func (f *fakeExportRepo) ZipFiles(files []string, name, dir string) (string, error) {
	f.zipped = files
	return filepath.Join(dir, name+".zip"), nil
}

type fakeConfigRepo struct {
	cfg *types.Config
}

func (f *fakeConfigRepo) LoadConfigFile(string) (*types.Config, error) {
	return f.cfg, nil
}

type fakeArchive struct {
	closed bool
}

func (f *fakeArchive) PublishRuns(_ context.Context, runs []entity.Run) (int, error) {
	n := 0
	for _, r := range runs {
		n += len(r.Intervals)
	}
	return n, nil
}

func (f *fakeArchive) Close() error {
	f.closed = true
	return nil
}

type fakeUploader struct {
	uploaded []string
}

func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.uploaded = append(f.uploaded, path)
	return "s3://bucket/" + filepath.Base(path), nil
}

func sampleRun() entity.Run {
	return makeRun(7*time.Hour, map[entity.CountKey][]int{
		nbThru: {10, 12, 11, 9, 8, 7, 6, 5},
	}, nbThru)
}

func TestWriteSummaryFileDefaultsOutputToInput(t *testing.T) {
	counts := &fakeCountRepo{runs: []entity.Run{sampleRun()}}
	exports := &fakeExportRepo{}
	uc := NewSummaryUseCase(counts, exports, &fakeConfigRepo{}, console.NewSilentConsole())

	result, err := uc.WriteSummaryFile(context.Background(), &types.SummaryOptions{InputDir: "/data/counts"})
	if err != nil {
		t.Fatalf("WriteSummaryFile: %v", err)
	}

	want := filepath.Join("/data/counts", "TMC Summary.xlsx")
	if result.Workbook != want {
		t.Errorf("workbook = %s, want %s", result.Workbook, want)
	}
	if counts.dir != "/data/counts" {
		t.Errorf("loaded from %s", counts.dir)
	}
	if len(exports.calls) != 1 || exports.calls[0] != "xlsx" {
		t.Errorf("export calls = %v", exports.calls)
	}
	if got := exports.report.Runs[0].Tables[0].Peak.Count; got != 42 {
		t.Errorf("peak count = %d, want 42", got)
	}
}

func TestWriteSummaryFileOptionalOutputs(t *testing.T) {
	exports := &fakeExportRepo{}
	archive := &fakeArchive{}
	uploader := &fakeUploader{}
	cfg := &types.Config{ReportType: []string{"csv", "json", "pdf", "docx"}, Zip: true}

	uc := NewSummaryUseCase(&fakeCountRepo{runs: []entity.Run{sampleRun()}}, exports, &fakeConfigRepo{cfg: cfg}, console.NewSilentConsole())
	uc.SetArchiveOpener(func(context.Context, string) (repository.ArchiveRepository, error) { return archive, nil })
	uc.SetUploaderOpener(func(context.Context, string, string) (repository.UploadRepository, error) { return uploader, nil })

	opts := &types.SummaryOptions{
		InputDir:   "/in",
		OutputDir:  "/out",
		ConfigFile: "tmc.toml",
		ReportName: "Corridor",
		PublishDB:  "sqlite://counts.db",
		S3URI:      "s3://bucket/reports",
	}
	result, err := uc.WriteSummaryFile(context.Background(), opts)
	if err != nil {
		t.Fatalf("WriteSummaryFile: %v", err)
	}

	if len(result.Exports) != 3 {
		t.Errorf("exports = %v", result.Exports)
	}
	if result.Published != 8 || !archive.closed {
		t.Errorf("published = %d closed = %v", result.Published, archive.closed)
	}
	if result.Archive != filepath.Join("/out", "Corridor.zip") || len(exports.zipped) != 4 {
		t.Errorf("archive = %s zipped = %v", result.Archive, exports.zipped)
	}
	if len(uploader.uploaded) != 5 || len(result.Uploaded) != 5 {
		t.Errorf("uploaded = %v", uploader.uploaded)
	}
}

func TestWriteSummaryFileSurfacesErrors(t *testing.T) {
	ioErr := &types.IOError{Op: "write", Path: "/out/TMC Summary.xlsx", Err: errors.New("read-only file system")}

	tests := []struct {
		name    string
		counts  *fakeCountRepo
		exports *fakeExportRepo
		want    error
	}{
		{"not found", &fakeCountRepo{err: types.NotFoundError("/in", nil)}, &fakeExportRepo{}, types.ErrNotFound},
		{"empty run", &fakeCountRepo{runs: []entity.Run{{}}}, &fakeExportRepo{}, types.ErrEmptyInput},
		{"write failure", &fakeCountRepo{runs: []entity.Run{sampleRun()}}, &fakeExportRepo{xlsxErr: ioErr}, types.ErrIO},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewSummaryUseCase(tc.counts, tc.exports, &fakeConfigRepo{}, console.NewSilentConsole())
			_, err := uc.WriteSummaryFile(context.Background(), &types.SummaryOptions{InputDir: "/in"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteSummaryFilePublishWithoutOpener(t *testing.T) {
	uc := NewSummaryUseCase(&fakeCountRepo{runs: []entity.Run{sampleRun()}}, &fakeExportRepo{}, &fakeConfigRepo{}, console.NewSilentConsole())
	_, err := uc.WriteSummaryFile(context.Background(), &types.SummaryOptions{InputDir: "/in", PublishDB: "postgres://x"})
	if err == nil {
		t.Fatal("expected an error when no database opener is configured")
	}
}
