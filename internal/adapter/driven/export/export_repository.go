package export

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// ExportToCSV grava uma linha por local, categoria e aproximação.
func (r *ExportRepositoryImpl) ExportToCSV(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", &types.IOError{Op: "create", Path: outputFilename, Err: err}
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := []string{
		"Location ID", "Location Name", "Date", "Category", "Direction",
		"Total", "Peak Hour", "Peak Hour Volume", "Peak Hour Factor",
		"AM Peak", "PM Peak", "% Heavy at Peak",
	}
	writer.Write(headers)

	for _, rs := range report.Runs {
		heavy := make(map[entity.Direction]float64)
		for _, s := range rs.HeavyShare {
			heavy[s.Direction] = s.HeavyPercent
		}

		for _, table := range rs.Tables {
			factor := ""
			if table.Peak != nil {
				factor = fmt.Sprintf("%.2f", table.Peak.Factor)
			}
			for _, dt := range table.Directions {
				share := ""
				if pct, ok := heavy[dt.Direction]; ok && table.Category == entity.CategoryTotal {
					share = fmt.Sprintf("%.1f", pct)
				}
				record := []string{
					rs.Location.ID,
					rs.Location.Name,
					dateText(rs.Location),
					string(table.Category),
					dt.Direction.Label(),
					fmt.Sprintf("%d", dt.Total),
					table.Peak.Text(),
					fmt.Sprintf("%d", dt.PeakTotal),
					factor,
					table.AMPeak.Text(),
					table.PMPeak.Text(),
					share,
				}
				writer.Write(record)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", &types.IOError{Op: "write", Path: outputFilename, Err: err}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", &types.IOError{Op: "create", Path: outputFilename, Err: err}
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", &types.IOError{Op: "encode", Path: outputFilename, Err: err}
	}

	return filepath.Abs(outputFilename)
}

// ZipFiles empacota os arquivos gerados em <filename>.zip.
func (r *ExportRepositoryImpl) ZipFiles(files []string, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "zip")
	if err != nil {
		return "", err
	}

	out, err := os.Create(outputFilename)
	if err != nil {
		return "", &types.IOError{Op: "create", Path: outputFilename, Err: err}
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range files {
		if err := addToZip(zw, f); err != nil {
			zw.Close()
			return "", &types.IOError{Op: "zip", Path: f, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return "", &types.IOError{Op: "write", Path: outputFilename, Err: err}
	}

	return filepath.Abs(outputFilename)
}

func addToZip(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// --- Funções Auxiliares ---

// generateFilename monta <dir>/<base>.<ext> e garante que o diretório exista.
// O nome é fixo para que uma nova execução sobrescreva o relatório anterior.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", &types.IOError{Op: "getwd", Path: dir, Err: err}
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &types.IOError{Op: "mkdir", Path: dir, Err: err}
	}
	base = strings.TrimSpace(base)
	if base == "" {
		base = types.DefaultReportName
	}
	base = strings.TrimSuffix(base, "."+ext)
	return filepath.Join(dir, fmt.Sprintf("%s.%s", base, ext)), nil
}

func dateText(loc entity.Location) string {
	if loc.Date.IsZero() {
		return ""
	}
	return loc.Date.Format("2006-01-02")
}
