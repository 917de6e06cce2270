package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

// ArchiveOpener connects to the database a summarize call publishes raw counts to.
type ArchiveOpener func(ctx context.Context, dsn string) (repository.ArchiveRepository, error)

// UploaderOpener prepares the remote storage report files are copied to.
type UploaderOpener func(ctx context.Context, uri, profile string) (repository.UploadRepository, error)

// SummaryUseCase runs the Loader → Aggregator → Writer pipeline.
type SummaryUseCase struct {
	countRepo  repository.CountRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface

	openArchive  ArchiveOpener
	openUploader UploaderOpener
}

// NewSummaryUseCase creates a new summary use case.
func NewSummaryUseCase(
	countRepo repository.CountRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *SummaryUseCase {
	return &SummaryUseCase{
		countRepo:  countRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
	}
}

// SetArchiveOpener enables publishing raw counts with --publish-db.
func (uc *SummaryUseCase) SetArchiveOpener(open ArchiveOpener) {
	uc.openArchive = open
}

// SetUploaderOpener enables copying reports to S3 with --s3-uri.
func (uc *SummaryUseCase) SetUploaderOpener(open UploaderOpener) {
	uc.openUploader = open
}

// WriteSummaryFile lê todos os arquivos de contagem de opts.InputDir e grava
// o relatório de resumo em opts.OutputDir.
func (uc *SummaryUseCase) WriteSummaryFile(ctx context.Context, opts *types.SummaryOptions) (*types.SummaryResult, error) {
	if opts.ConfigFile != "" {
		cfg, err := uc.configRepo.LoadConfigFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		opts.MergeConfig(cfg)
	}
	opts.ApplyDefaults()

	// Carrega os arquivos de contagem
	status := uc.console.Status(fmt.Sprintf("Reading count files from %s...", opts.InputDir))
	runs, err := uc.countRepo.LoadRuns(ctx, opts.InputDir)
	status.Stop()
	if err != nil {
		return nil, err
	}
	uc.console.LogInfo("Found %d count file(s) in %s", len(runs), opts.InputDir)

	// Agrega cada arquivo
	progress := uc.console.ProgressWithTotal(len(runs))
	report, err := BuildReport(runs, AggregateOptions{
		WindowSize: opts.PeakWindow,
		SplitHour:  opts.SplitHour,
		Progress:   func(entity.Location) { progress.Increment() },
	})
	progress.Stop()
	if err != nil {
		return nil, err
	}

	result := &types.SummaryResult{Runs: len(runs)}

	result.Workbook, err = uc.exportRepo.ExportToXLSX(report, opts.ReportName, opts.OutputDir)
	if err != nil {
		return nil, err
	}
	uc.console.LogSuccess("Summary written to %s", result.Workbook)

	for _, reportType := range opts.ReportType {
		var path string
		switch strings.ToLower(strings.TrimSpace(reportType)) {
		case "xlsx", "":
			continue
		case "csv":
			path, err = uc.exportRepo.ExportToCSV(report, opts.ReportName, opts.OutputDir)
		case "json":
			path, err = uc.exportRepo.ExportToJSON(report, opts.ReportName, opts.OutputDir)
		case "pdf":
			path, err = uc.exportRepo.ExportToPDF(report, opts.ReportName, opts.OutputDir)
		default:
			uc.console.LogWarning("Unknown report type '%s', skipping", reportType)
			continue
		}
		if err != nil {
			return nil, err
		}
		uc.console.LogSuccess("Successfully exported to %s: %s", strings.ToUpper(reportType), path)
		result.Exports = append(result.Exports, path)
	}

	if opts.PublishDB != "" {
		result.Published, err = uc.publish(ctx, opts.PublishDB, runs)
		if err != nil {
			return nil, err
		}
		uc.console.LogSuccess("Published %d interval count(s) to the database", result.Published)
	}

	files := append([]string{result.Workbook}, result.Exports...)
	if opts.Zip {
		result.Archive, err = uc.exportRepo.ZipFiles(files, opts.ReportName, opts.OutputDir)
		if err != nil {
			return nil, err
		}
		uc.console.LogSuccess("Bundled %d file(s) into %s", len(files), result.Archive)
		files = append(files, result.Archive)
	}

	if opts.S3URI != "" {
		result.Uploaded, err = uc.upload(ctx, opts.S3URI, opts.Profile, files)
		if err != nil {
			return nil, err
		}
	}

	uc.displaySummary(report)
	return result, nil
}

func (uc *SummaryUseCase) publish(ctx context.Context, dsn string, runs []entity.Run) (int, error) {
	if uc.openArchive == nil {
		return 0, fmt.Errorf("database publishing is not available")
	}
	archive, err := uc.openArchive(ctx, dsn)
	if err != nil {
		return 0, err
	}
	defer archive.Close()

	return archive.PublishRuns(ctx, runs)
}

func (uc *SummaryUseCase) upload(ctx context.Context, uri, profile string, files []string) ([]string, error) {
	if uc.openUploader == nil {
		return nil, fmt.Errorf("S3 upload is not available")
	}
	uploader, err := uc.openUploader(ctx, uri, profile)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	for _, f := range files {
		dest, err := uploader.Upload(ctx, f)
		if err != nil {
			return uploaded, err
		}
		uc.console.LogSuccess("Uploaded %s", dest)
		uploaded = append(uploaded, dest)
	}
	return uploaded, nil
}

// displaySummary mostra os picos de cada local e o gráfico de volume.
func (uc *SummaryUseCase) displaySummary(report *entity.Report) {
	table := uc.console.CreateTable()
	table.AddColumn("Location")
	table.AddColumn("Date")
	table.AddColumn("Count Period")
	table.AddColumn("AM Peak")
	table.AddColumn("PM Peak")
	table.AddColumn("Peak Volume")
	table.AddColumn("Total Volume")

	for i := range report.Runs {
		rs := &report.Runs[i]
		ref := rs.ReferenceTable()
		if ref == nil {
			continue
		}
		peakVolume := 0
		if ref.Peak != nil {
			peakVolume = ref.Peak.Count
		}
		date := ""
		if !rs.Location.Date.IsZero() {
			date = rs.Location.Date.Format("2006-01-02")
		}
		table.AddRow(
			pterm.FgCyan.Sprint(rs.Location.Title()),
			date,
			rs.Location.CountPeriod(),
			ref.AMPeak.Text(),
			ref.PMPeak.Text(),
			peakVolume,
			ref.GrandTotal,
		)
	}
	uc.console.Print(table.Render())

	for _, p := range []entity.Period{entity.PeriodAM, entity.PeriodPM} {
		if np, ok := report.NetworkPeak(p); ok {
			uc.console.Printf("\n%s\n", pterm.FgYellow.Sprintf("Network %s peak hour: %s", p, np.Text()))
		}
	}

	for i := range report.Runs {
		rs := &report.Runs[i]
		ref := rs.ReferenceTable()
		if ref == nil {
			continue
		}
		bars := make([]types.VolumeBar, len(ref.Rows))
		for j, r := range ref.Rows {
			bars[j] = types.VolumeBar{
				Label:  r.Start.Format("15:04"),
				Volume: r.Total,
				Peak:   ref.Peak.Contains(j),
			}
		}
		uc.console.DisplayVolumeBars(fmt.Sprintf("%s (%s)", rs.Location.Title(), ref.Category), bars)
	}
}
