package version

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.10.0", "1.9.0", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.3", "1.2.3-dirty", false},
		{"0.9.0", "1.0.0", false},
		{"v2.0.0", "1.5.2", true},
	}
	for _, tc := range tests {
		if got := newer(tc.latest, tc.current); got != tc.want {
			t.Errorf("newer(%q, %q) = %v, want %v", tc.latest, tc.current, got, tc.want)
		}
	}
}

func TestLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "v1.4.0"}`))
	}))
	defer srv.Close()

	got, ok := latestRelease(srv.Client(), srv.URL)
	if !ok || got != "1.4.0" {
		t.Errorf("latestRelease = %q, %v", got, ok)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	if _, ok := latestRelease(down.Client(), down.URL); ok {
		t.Error("expected no release on a server error")
	}
}

func TestFormatVersion(t *testing.T) {
	oldVersion, oldCommit, oldBuild := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldVersion, oldCommit, oldBuild }()

	Version, Commit, BuildTime = "1.0.0", "abc1234", "2024-01-02T03:04:05Z"
	if got := FormatVersion(); !strings.Contains(got, "commit: abc1234") || !strings.HasPrefix(got, "1.0.0") {
		t.Errorf("FormatVersion = %q", got)
	}

	Version, Commit, BuildTime = "", "", ""
	if got := FormatVersion(); got != "0.0.0-dev (development)" {
		t.Errorf("FormatVersion = %q", got)
	}
}
