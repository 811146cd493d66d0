package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// copyFixture copies a file from testdata into a temporary directory and
// returns its new path.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns what it wrote through
// cmd.OutOrStdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBasePath(t *testing.T) {
	known := func(ext string) bool { return ext == "svg" || ext == "png" }
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "charts/un.json", "charts/un"},
		{"known extension stripped", "out/chart.svg", "un.json", "out/chart"},
		{"unknown extension kept", "out/chart.v2", "un.json", "out/chart.v2"},
		{"no extension", "out/chart", "un.json", "out/chart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input, known); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadDataset(t *testing.T) {
	c := New(io.Discard, LogInfo)
	tpl, err := c.template()
	if err != nil {
		t.Fatalf("template() error: %v", err)
	}
	records, err := c.loadDataset(filepath.Join("testdata", "chart.json"), tpl)
	if err != nil {
		t.Fatalf("loadDataset() error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("loaded %d records, want 4", len(records))
	}
	if got := records[3].Value("headOf"); got != "Peacebuilding Support" {
		t.Errorf("headOf = %q", got)
	}
}
