package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func makeLayout(t *testing.T) (string, string) {
	t.Helper()
	tmpDir := t.TempDir()
	uploads := filepath.Join(tmpDir, "upload")
	buckets := filepath.Join(tmpDir, "buckets")

	files := []struct{ path, content string }{
		{filepath.Join(uploads, "Annual_Report.pdf"), "report"},
		{filepath.Join(uploads, "holiday.jpg"), "jpg"},
		{filepath.Join(uploads, ".hidden"), ""},
		{filepath.Join(uploads, "qr_codes", "qr_code_1.png"), "png"},
		{filepath.Join(buckets, "reports", "q1.xlsx"), "q1"},
		{filepath.Join(buckets, "reports", "summary.txt"), "summary"},
		{filepath.Join(buckets, "finance", "report-2024.csv"), "csv"},
		{filepath.Join(buckets, "finance", "budget.csv"), "budget"},
		{filepath.Join(buckets, "photos", "beach.png"), "beach"},
		{filepath.Join(buckets, "photos", "nested", "deep.txt"), "deep"},
	}
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(buckets, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return uploads, buckets
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildFullTree(t *testing.T) {
	uploads, buckets := makeLayout(t)

	root, err := Build(uploads, buckets, "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{
		"uploads",
		"uploads/Annual_Report.pdf",
		"uploads/holiday.jpg",
		"buckets",
		"buckets/finance",
		"buckets/finance/budget.csv",
		"buckets/finance/report-2024.csv",
		"buckets/photos",
		"buckets/photos/beach.png",
		"buckets/reports",
		"buckets/reports/q1.xlsx",
		"buckets/reports/summary.txt",
	}
	if got := ids(root.Rows()); !equal(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
}

func TestBuildSearchKeepsAncestors(t *testing.T) {
	uploads, buckets := makeLayout(t)

	root, err := Build(uploads, buckets, "REPORT")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{
		"uploads",
		"uploads/Annual_Report.pdf",
		"buckets",
		"buckets/finance",
		"buckets/finance/report-2024.csv",
		"buckets/reports",
	}
	if got := ids(root.Rows()); !equal(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
}

func TestBuildMissingDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	root, err := Build(filepath.Join(tmpDir, "upload"), filepath.Join(tmpDir, "buckets"), "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := ids(root.Rows()); !equal(got, []string{"uploads", "buckets"}) {
		t.Errorf("Rows() = %v", got)
	}
}

func TestFindByID(t *testing.T) {
	uploads, buckets := makeLayout(t)
	root, err := Build(uploads, buckets, "")
	if err != nil {
		t.Fatal(err)
	}

	node := root.FindByID("buckets/reports/q1.xlsx")
	if node == nil {
		t.Fatal("Failed to find leaf by ID")
	}
	if node.Bucket != "reports" || !node.IsFile() {
		t.Errorf("unexpected node %+v", node)
	}
	if node.Parent == nil || node.Parent.ID != "buckets/reports" {
		t.Error("leaf parent not set")
	}

	if found := root.FindByID("buckets/report"); found != nil {
		t.Errorf("prefix of a bucket name matched %s", found.ID)
	}
	if found := root.FindByID("non-existent"); found != nil {
		t.Error("Found non-existent ID")
	}

	expected := filepath.Join(buckets, "reports", "q1.xlsx")
	if found := root.FindByPath(expected); found != node {
		t.Errorf("FindByPath(%s) did not return the leaf", expected)
	}
}

func TestTotalSize(t *testing.T) {
	uploads, buckets := makeLayout(t)
	root, err := Build(uploads, buckets, "")
	if err != nil {
		t.Fatal(err)
	}

	finance := root.FindByID("buckets/finance")
	if got := finance.TotalSize(); got != int64(len("csv")+len("budget")) {
		t.Errorf("finance size = %d", got)
	}
	if got := finance.HumanSize(); got != "9 B" {
		t.Errorf("HumanSize() = %q", got)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name, term string
		expected   bool
	}{
		{"Annual_Report.pdf", "report", true},
		{"annual_report.pdf", "REPORT", true},
		{"budget.csv", "report", false},
		{"anything", "", true},
	}
	for _, test := range tests {
		if got := Match(test.name, test.term); got != test.expected {
			t.Errorf("Match(%q, %q) = %v, expected %v", test.name, test.term, got, test.expected)
		}
	}
}
