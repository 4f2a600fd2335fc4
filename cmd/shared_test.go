package cmd

import (
	"bytes"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestNormalizeTables(t *testing.T) {
	got := normalizeTables([]string{" Assessment_Results ", "", "assessment_responses"})
	want := []string{"assessment_results", "assessment_responses"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if normalizeTables([]string{" ", ""}) != nil {
		t.Fatalf("blank entries must normalize to nil")
	}
	if normalizeTables(nil) != nil {
		t.Fatalf("nil input must stay nil")
	}
}

func TestDefaultExportFilename(t *testing.T) {
	plain := regexp.MustCompile(`^traitscore-results-\d{8}-\d{6}\.jsonl$`)
	if name := defaultExportFilename(false); !plain.MatchString(name) {
		t.Fatalf("unexpected filename %q", name)
	}
	if name := defaultExportFilename(true); !strings.HasSuffix(name, ".jsonl.gz") {
		t.Fatalf("expected gzip suffix, got %q", name)
	}
}

func TestProgressStep(t *testing.T) {
	cases := map[int]int{0: 1000, -1: 1000, 5: 1, 100: 5, 100000: 1000}
	for total, want := range cases {
		if got := progressStep(total); got != want {
			t.Fatalf("progressStep(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestCLIProgress(t *testing.T) {
	var buf bytes.Buffer
	p := newCLIProgress(&buf)

	p.StartTable("assessment_results", 40)
	p.Increment("assessment_results", 1)
	p.Increment("assessment_results", 1)
	p.Increment("assessment_results", 38)
	p.FinishTable("assessment_results")

	out := buf.String()
	for _, want := range []string{
		"开始导出 assessment_results (共 40 行)",
		"导出进度 assessment_results: 1/40",
		"导出进度 assessment_results: 40/40",
		"完成导出 assessment_results: 40 行",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2/40") {
		t.Fatalf("progress below the step must not print:\n%s", out)
	}
}
