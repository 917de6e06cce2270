package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/diillson/tmc-summarizer-go/pkg/version"
)

//go:embed index.html
var indexPage []byte

const maxUploadBytes = 64 << 20

// Summarizer runs the summary pipeline for one staged upload.
type Summarizer interface {
	WriteSummaryFile(ctx context.Context, opts *types.SummaryOptions) (*types.SummaryResult, error)
}

// Server is the web front end: an upload form that returns the summary workbook.
type Server struct {
	summary  Summarizer
	logger   *zap.SugaredLogger
	stageDir string
	router   *mux.Router
}

// NewServer creates the server. Uploads are staged under stageDir, or the
// system temp directory when empty.
func NewServer(summary Summarizer, logger *zap.SugaredLogger, stageDir string) *Server {
	if stageDir == "" {
		stageDir = os.TempDir()
	}
	s := &Server{
		summary:  summary,
		logger:   logger,
		stageDir: stageDir,
	}
	s.router = s.setupRouter()
	return s
}

// setupRouter configures the HTTP router with all endpoints
func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/summarize", s.handleSummarize).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return router
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down the web server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Infof("Web server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server error: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": version.FormatVersion(),
	})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid upload: %v", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no count files uploaded", http.StatusBadRequest)
		return
	}

	id := uuid.New().String()
	stage := filepath.Join(s.stageDir, "tmc-"+id)
	defer os.RemoveAll(stage)

	inputDir := filepath.Join(stage, "input")
	outputDir := filepath.Join(stage, "output")
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		s.logger.Errorw("failed to create staging directory", "request_id", id, "error", err)
		http.Error(w, "could not stage upload", http.StatusInternalServerError)
		return
	}

	for _, fh := range files {
		if err := saveUpload(fh, inputDir); err != nil {
			s.logger.Warnw("rejected upload", "request_id", id, "file", fh.Filename, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	opts := &types.SummaryOptions{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ReportName: strings.TrimSpace(r.FormValue("report_name")),
	}
	if v := r.FormValue("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid peak window %q", v), http.StatusBadRequest)
			return
		}
		opts.PeakWindow = n
	}

	result, err := s.summary.WriteSummaryFile(r.Context(), opts)
	if err != nil {
		status := statusFor(err)
		s.logger.Warnw("summarize failed", "request_id", id, "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	out, err := os.Open(result.Workbook)
	if err != nil {
		s.logger.Errorw("failed to open report", "request_id", id, "error", err)
		http.Error(w, "could not read report", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	s.logger.Infow("summary written", "request_id", id, "runs", result.Runs, "files", len(files))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(result.Workbook)))
	w.Header().Set("X-Request-ID", id)
	io.Copy(w, out)
}

// saveUpload copies one uploaded file into dir, keeping only its base name.
func saveUpload(fh *multipart.FileHeader, dir string) error {
	name := filepath.Base(strings.ReplaceAll(fh.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" || strings.HasPrefix(name, "..") {
		return fmt.Errorf("invalid file name %q", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("could not read %s: %w", name, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("could not stage %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("could not stage %s: %w", name, err)
	}
	return nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrDataFormat), errors.Is(err, types.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Infof("%s %s %s %d %v", r.Method, r.RequestURI, r.RemoteAddr, rec.status, time.Since(start))
	})
}
