package main_test

import (
	"encoding/xml"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// buildFvBinary compiles the fv command into a temp dir.
func buildFvBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e build in -short mode")
	}
	name := "fv"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	bin := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/fv")
	cmd.Dir = filepath.Join("..", "..")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return bin
}

func runFv(t *testing.T, bin, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = ee.Stderr
		}
		t.Fatalf("fv %s: %v\n%s", strings.Join(args, " "), err, stderr)
	}
	return string(out)
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEndToEndBuildAndRun(t *testing.T) {
	bin := buildFvBinary(t)
	dir := t.TempDir()

	if out := runFv(t, bin, dir, "--version"); !strings.HasPrefix(out, "fv ") {
		t.Errorf("--version = %q", out)
	}
}

func TestEndToEndRenderAllFormats(t *testing.T) {
	bin := buildFvBinary(t)
	dir := t.TempDir()
	plan := fixture(t, "plan.json")

	runFv(t, bin, dir, "--size", "1024x768", "render", plan,
		"-o", "plan.svg", "-o", "plan.png", "-o", "layout.json", "-o", "plan.md")

	// SVG is well-formed XML and carries every node
	svg, err := os.ReadFile(filepath.Join(dir, "plan.svg"))
	if err != nil {
		t.Fatal(err)
	}
	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		if _, err := dec.Token(); err != nil {
			if err != io.EOF {
				t.Fatalf("svg is not well-formed: %v", err)
			}
			break
		}
	}
	for _, name := range []string{"Hash Join", "Seq Scan on users", "Index Scan on orders", "Sort", "Limit"} {
		if !strings.Contains(string(svg), name) {
			t.Errorf("svg missing %q", name)
		}
	}

	f, err := os.Open(filepath.Join(dir, "plan.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1024 || cfg.Height != 768 {
		t.Errorf("png is %dx%d, want 1024x768", cfg.Width, cfg.Height)
	}

	data, err := os.ReadFile(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Trees []struct {
			Nodes []struct {
				Name string  `json:"name"`
				X    float64 `json:"x"`
			} `json:"nodes"`
		} `json:"trees"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("layout.json: %v", err)
	}
	if len(doc.Trees) != 2 || len(doc.Trees[0].Nodes) != 4 || len(doc.Trees[1].Nodes) != 2 {
		t.Fatalf("unexpected layout: %s", data)
	}
	if doc.Trees[1].Nodes[0].X <= doc.Trees[0].Nodes[0].X {
		t.Error("second tree should be placed right of the first")
	}

	md, err := os.ReadFile(filepath.Join(dir, "plan.md"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# plan", "- **Trees**: 2", "- **Nodes**: 6", "```mermaid"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("outline missing %q", want)
		}
	}
}

func TestEndToEndConfigAndCollapse(t *testing.T) {
	bin := buildFvBinary(t)
	dir := t.TempDir()
	plan := fixture(t, "plan.yaml")

	runFv(t, bin, dir, "init", "--yes", "--format", "yaml", "--orientation", "vertical")
	if _, err := os.Stat(filepath.Join(dir, ".flexview.yaml")); err != nil {
		t.Fatalf("init did not write a config: %v", err)
	}

	out := runFv(t, bin, dir, "render", plan, "--collapse-all", "--full")
	if !strings.Contains(out, "Aggregate") {
		t.Error("root missing from collapsed render")
	}
	if strings.Contains(out, "Bitmap Heap Scan") {
		t.Error("children of a collapsed root should not be drawn")
	}
}
