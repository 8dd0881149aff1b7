package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"winners page", "https://webawards.com.au/winners/2019/", "webawards.com.au"},
		{"mixed case", "https://WebAwards.com.au/", "webawards.com.au"},
		{"archive", "https://web.archive.org/web/20141015152124/https://webawards.com.au/winners/", "web.archive.org"},
		{"no scheme", "webawards.com.au/about/", "webawards.com.au"},
		{"host with port", "localhost:8080", "localhost"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObserveHelpers(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(awardsSourcesTotal.WithLabelValues("failed"))
	ObserveSource("failed")
	if got := testutil.ToFloat64(awardsSourcesTotal.WithLabelValues("failed")); got != before+1 {
		t.Errorf("awards_sources_total{failed} = %f, want %f", got, before+1)
	}

	bytesBefore := testutil.ToFloat64(awardsBytesTotal.WithLabelValues("webawards.com.au"))
	ObserveFetch("https://webawards.com.au/winners/", "http", "ok", 2048)
	ObserveFetch("https://webawards.com.au/winners/", "headless", "error", 0)
	if got := testutil.ToFloat64(awardsBytesTotal.WithLabelValues("webawards.com.au")); got != bytesBefore+2048 {
		t.Errorf("awards_bytes_total = %f, want %f", got, bytesBefore+2048)
	}

	recordsBefore := testutil.ToFloat64(awardsRecordsTotal.WithLabelValues("final"))
	ObserveRecords("final", 0)
	ObserveRecords("final", 42)
	if got := testutil.ToFloat64(awardsRecordsTotal.WithLabelValues("final")); got != recordsBefore+42 {
		t.Errorf("awards_records_total{final} = %f, want %f", got, recordsBefore+42)
	}

	ObserveEnrichmentStep("analysis", false)
	if got := testutil.ToFloat64(awardsEnrichmentStepsTotal.WithLabelValues("analysis", "failed")); got < 1 {
		t.Errorf("expected failed analysis step to be counted, got %f", got)
	}

	finished := time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC)
	ObserveRun(finished, 90*time.Second)
	if got := testutil.ToFloat64(awardsLastRunTimestamp); got != float64(finished.Unix()) {
		t.Errorf("awards_last_run_timestamp_seconds = %f", got)
	}
	if got := testutil.ToFloat64(awardsRunDurationSeconds); got != 90 {
		t.Errorf("awards_run_duration_seconds = %f, want 90", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	Init()
	ObserveSource("ok")

	path := filepath.Join(t.TempDir(), "awards.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `awards_sources_total{status="ok"}`) {
		t.Errorf("textfile missing sources counter:\n%s", data)
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	Init()
	if err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "awards.prom")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func FuzzSanitizeSite(f *testing.F) {
	for _, tc := range []string{"https://webawards.com.au", "web.archive.org/web/2014", "ftp://example.com"} {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		if SanitizeSite(orig) == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
