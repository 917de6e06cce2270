package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
	"github.com/diillson/tmc-summarizer-go/internal/testutil"
	"github.com/diillson/tmc-summarizer-go/pkg/console"
	"github.com/diillson/tmc-summarizer-go/pkg/summarizer"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	stage := t.TempDir()
	uc := summarizer.NewUseCase(console.NewSilentConsole())
	return NewServer(uc, zap.NewNop().Sugar(), stage), stage
}

// uploadRequest builds a multipart POST /summarize with the given files.
func uploadRequest(t *testing.T, files map[string][]byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/summarize", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func workbookBytes(t *testing.T, name string, wb testutil.Workbook) []byte {
	t.Helper()
	path := testutil.Write(t, t.TempDir(), name, wb)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<form") {
		t.Errorf("GET / = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", rec.Code)
	}
	var health map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil || health["status"] != "ok" {
		t.Errorf("health = %s", rec.Body.String())
	}
}

func TestSummarizeReturnsWorkbook(t *testing.T) {
	srv, stage := newTestServer(t)

	req := uploadRequest(t,
		map[string][]byte{"167385_Cheltenham.xlsx": workbookBytes(t, "167385_Cheltenham.xlsx", testutil.SpikeWorkbook())},
		map[string]string{"report_name": "Cheltenham"},
	)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /summarize = %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Cheltenham.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) == 0 || sheets[0] != "Summary" {
		t.Errorf("sheets = %v", sheets)
	}

	entries, _ := os.ReadDir(stage)
	if len(entries) != 0 {
		t.Errorf("staging directory not cleaned up: %d entries", len(entries))
	}
}

func TestSummarizeErrors(t *testing.T) {
	broken := testutil.SpikeWorkbook()
	broken.Tabs[0].Headers = broken.Tabs[0].Headers[:2]
	broken.Tabs[0].Counts = testutil.Column(2, 1, []int{1, 2, 3, 4, 5, 6, 7, 8})

	tests := []struct {
		name   string
		files  map[string][]byte
		fields map[string]string
		want   int
	}{
		{name: "no files", files: nil, want: http.StatusBadRequest},
		{name: "no count file", files: map[string][]byte{"notes.txt": []byte("hello")}, want: http.StatusBadRequest},
		{name: "malformed workbook", files: map[string][]byte{"3_broken.xlsx": workbookBytes(t, "3_broken.xlsx", broken)}, want: http.StatusUnprocessableEntity},
		{
			name:   "bad window",
			files:  map[string][]byte{"1_spike.xlsx": workbookBytes(t, "1_spike.xlsx", testutil.SpikeWorkbook())},
			fields: map[string]string{"window": "zero"},
			want:   http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, uploadRequest(t, tc.files, tc.fields))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.NotFoundError("/in", nil), http.StatusBadRequest},
		{&types.DataFormatError{File: "1_a.xlsx", Reason: "bad"}, http.StatusUnprocessableEntity},
		{types.EmptyInputError("1_a.xlsx"), http.StatusUnprocessableEntity},
		{&types.IOError{Op: "write", Path: "/out", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestSaveUploadRejectsBadNames(t *testing.T) {
	fh := &multipart.FileHeader{Filename: ".."}
	if err := saveUpload(fh, t.TempDir()); err == nil {
		t.Error("expected an error for '..'")
	}
}
