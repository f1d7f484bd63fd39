// Package complexity looks up the cyclomatic complexity of verified
// functions so reports can show how much logic each contract guards.
package complexity

import (
	"bufio"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fzipp/gocyclo"

	"github.com/unbound-force/paranoid/internal/taxonomy"
)

// posKey locates a function declaration.
type posKey struct {
	file string
	line int
}

// Index maps function declarations to their complexity.
type Index struct {
	exact    map[posKey]int
	basename map[posKey]int
	byName   map[string]int
}

// Options configures index construction.
type Options struct {
	// IgnoreGenerated excludes functions in files with
	// "// Code generated" headers.
	IgnoreGenerated bool
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{IgnoreGenerated: true}
}

// FromFiles builds an index from already parsed files, such as the
// syntax trees of a loaded package.
func FromFiles(fset *token.FileSet, files []*ast.File, opts Options) *Index {
	var stats gocyclo.Stats
	for _, f := range files {
		stats = gocyclo.AnalyzeASTFile(f, fset, stats)
	}
	return newIndex(stats, opts)
}

// FromPaths builds an index by parsing every non-test Go file under
// paths.
func FromPaths(paths []string, opts Options) *Index {
	ignore := regexp.MustCompile(`_test\.go$`)
	return newIndex(gocyclo.Analyze(paths, ignore), opts)
}

func newIndex(stats gocyclo.Stats, opts Options) *Index {
	ix := &Index{
		exact:    make(map[posKey]int, len(stats)),
		basename: make(map[posKey]int, len(stats)),
		byName:   make(map[string]int, len(stats)),
	}
	// Cache generated-file checks to avoid re-reading files.
	generated := make(map[string]bool)
	for _, s := range stats {
		if strings.HasSuffix(s.Pos.Filename, "_test.go") {
			continue
		}
		if opts.IgnoreGenerated {
			gen, ok := generated[s.Pos.Filename]
			if !ok {
				gen = isGeneratedFile(s.Pos.Filename)
				generated[s.Pos.Filename] = gen
			}
			if gen {
				continue
			}
		}
		ix.exact[posKey{file: s.Pos.Filename, line: s.Pos.Line}] = s.Complexity
		ix.basename[posKey{file: filepath.Base(s.Pos.Filename), line: s.Pos.Line}] = s.Complexity
		ix.byName[s.PkgName+"."+runtimeName(s.FuncName)] = s.Complexity
	}
	return ix
}

// runtimeName converts gocyclo's method notation to the one the Go
// runtime reports: "(T).M" becomes "T.M", "(*T).M" stays.
func runtimeName(name string) string {
	if strings.HasPrefix(name, "(") && !strings.HasPrefix(name, "(*") {
		if i := strings.Index(name, ")."); i > 0 {
			return name[1:i] + name[i+1:]
		}
	}
	return name
}

// Len returns the number of indexed functions.
func (ix *Index) Len() int { return len(ix.exact) }

// Lookup returns the complexity of the function declared at file:line,
// falling back to the base file name and then to the package-qualified
// name (e.g. "geom.Distance").
func (ix *Index) Lookup(file string, line int, name string) (int, bool) {
	if c, ok := ix.exact[posKey{file: file, line: line}]; ok {
		return c, true
	}
	if c, ok := ix.basename[posKey{file: filepath.Base(file), line: line}]; ok {
		return c, true
	}
	c, ok := ix.byName[name]
	return c, ok
}

// Annotate sets the Complexity of every result whose function is in
// the index. It returns the number of results annotated.
func Annotate(results []taxonomy.FunctionResult, ix *Index) int {
	n := 0
	for i := range results {
		file, line, _ := SplitLocation(results[i].Target.Location)
		if c, ok := ix.Lookup(file, line, results[i].Target.Function); ok {
			results[i].Complexity = c
			n++
		}
	}
	return n
}

// SplitLocation parses "file:line". The file part may itself contain
// colons (Windows drive letters).
func SplitLocation(loc string) (file string, line int, err error) {
	i := strings.LastIndex(loc, ":")
	if i < 0 {
		return loc, 0, fmt.Errorf("location %q has no line", loc)
	}
	line, err = strconv.Atoi(loc[i+1:])
	if err != nil {
		return loc[:i], 0, fmt.Errorf("location %q: %w", loc, err)
	}
	return loc[:i], line, nil
}

// generatedRegexp matches the Go convention for generated file headers:
// "^// Code generated .* DO NOT EDIT\.$"
var generatedRegexp = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// isGeneratedFile checks whether a Go source file was auto-generated
// by looking for a "// Code generated ... DO NOT EDIT." comment line
// before the package clause.
func isGeneratedFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(trimmed, "package ") {
			return false
		}
		if generatedRegexp.MatchString(trimmed) {
			return true
		}
	}
	return false
}
