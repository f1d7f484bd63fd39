package complexity

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

const geomSrc = `package geom

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type Box struct{ W, H int }

func (b Box) Area() int { return b.W * b.H }

func (b *Box) Grow(n int) {
	for i := 0; i < n; i++ {
		if b.W > b.H {
			b.H++
		} else {
			b.W++
		}
	}
}
`

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func parse(t *testing.T, path string) (*token.FileSet, []*ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return fset, []*ast.File{f}
}

func TestFromFiles_Lookup(t *testing.T) {
	path := writeSource(t, "geom.go", geomSrc)
	fset, files := parse(t, path)
	ix := FromFiles(fset, files, DefaultOptions())

	if ix.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ix.Len())
	}

	tests := []struct {
		name string
		file string
		line int
		fn   string
		want int
	}{
		{"exact position", path, 3, "", 2},
		{"base name", "elsewhere/geom.go", 3, "", 2},
		{"value method by name", "", 0, "geom.Box.Area", 1},
		{"pointer method by name", "", 0, "geom.(*Box).Grow", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.Lookup(tt.file, tt.line, tt.fn)
			if !ok {
				t.Fatalf("Lookup(%s, %d, %s) not found", tt.file, tt.line, tt.fn)
			}
			if got != tt.want {
				t.Errorf("Lookup() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, ok := ix.Lookup("", 0, "geom.Missing"); ok {
		t.Error("Lookup(missing) found a function")
	}
}

func TestFromPaths_SkipsGenerated(t *testing.T) {
	path := writeSource(t, "gen.go", "// Code generated by hand. DO NOT EDIT.\n\n"+geomSrc)

	if ix := FromPaths([]string{filepath.Dir(path)}, DefaultOptions()); ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for a generated file", ix.Len())
	}
	if ix := FromPaths([]string{filepath.Dir(path)}, Options{}); ix.Len() != 3 {
		t.Errorf("Len() = %d, want 3 with generated files included", ix.Len())
	}
}

func TestAnnotate(t *testing.T) {
	path := writeSource(t, "geom.go", geomSrc)
	fset, files := parse(t, path)
	ix := FromFiles(fset, files, DefaultOptions())

	results := []taxonomy.FunctionResult{
		{Target: taxonomy.FunctionTarget{Function: "geom.Abs", Location: path + ":3"}},
		{Target: taxonomy.FunctionTarget{Function: "geom.Box.Area"}},
		{Target: taxonomy.FunctionTarget{Function: "other.F", Location: "x.go:1"}},
	}
	if n := Annotate(results, ix); n != 2 {
		t.Errorf("Annotate() = %d, want 2", n)
	}
	if results[0].Complexity != 2 || results[1].Complexity != 1 || results[2].Complexity != 0 {
		t.Errorf("complexities = %d, %d, %d, want 2, 1, 0",
			results[0].Complexity, results[1].Complexity, results[2].Complexity)
	}
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		loc      string
		wantFile string
		wantLine int
		wantErr  bool
	}{
		{"geom.go:12", "geom.go", 12, false},
		{`C:\src\geom.go:7`, `C:\src\geom.go`, 7, false},
		{"geom.go", "geom.go", 0, true},
		{"geom.go:x", "geom.go", 0, true},
	}
	for _, tt := range tests {
		file, line, err := SplitLocation(tt.loc)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitLocation(%q) error = %v, wantErr %v", tt.loc, err, tt.wantErr)
		}
		if file != tt.wantFile || line != tt.wantLine {
			t.Errorf("SplitLocation(%q) = %q, %d, want %q, %d", tt.loc, file, line, tt.wantFile, tt.wantLine)
		}
	}
}

func TestRuntimeName(t *testing.T) {
	tests := map[string]string{
		"Abs":         "Abs",
		"(Box).Area":  "Box.Area",
		"(*Box).Grow": "(*Box).Grow",
	}
	for in, want := range tests {
		if got := runtimeName(in); got != want {
			t.Errorf("runtimeName(%q) = %q, want %q", in, got, want)
		}
	}
}
