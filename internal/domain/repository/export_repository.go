package repository

import (
	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
)

// ExportRepository renders a report into files. Every method returns the absolute
// path of the file it wrote; an existing file with the same name is overwritten.
type ExportRepository interface {
	ExportToXLSX(report *entity.Report, filename, outputDir string) (string, error)
	ExportToCSV(report *entity.Report, filename, outputDir string) (string, error)
	ExportToJSON(report *entity.Report, filename, outputDir string) (string, error)
	ExportToPDF(report *entity.Report, filename, outputDir string) (string, error)

	ZipFiles(files []string, filename, outputDir string) (string, error)
}
