// Package loader wraps go/packages to resolve the package under
// verification, its module, and its syntax trees.
package loader

import (
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/tools/go/packages"
)

// ContractPath is the import path that declares contracts. A package
// that never imports it (directly or through a dependency) registers
// nothing to verify.
const ContractPath = "github.com/unbound-force/paranoid/pkg/contract"

// LoadMode is the set of flags needed to locate the module, walk the
// import graph and parse function bodies for complexity.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedSyntax |
	packages.NeedModule

// Result holds the loaded package along with convenience accessors.
type Result struct {
	// Pkg is the loaded package.
	Pkg *packages.Package

	// Fset is the shared file set for position information.
	Fset *token.FileSet
}

// Load loads the Go package matching pattern, resolved relative to
// dir ("" means the working directory). It fails on package errors
// and on main packages, which cannot be imported by a driver.
func Load(dir, pattern string) (*Result, error) {
	cfg := &packages.Config{
		Mode:  LoadMode,
		Dir:   dir,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading package %q: %w", pattern, err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for pattern %q", pattern)
	}

	pkg := pkgs[0]

	// Check for package-level errors (syntax, type errors, etc.).
	var errs []string
	for _, e := range pkg.Errors {
		errs = append(errs, e.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package %q has errors:\n  %s",
			pattern, strings.Join(errs, "\n  "))
	}
	if pkg.Name == "main" {
		return nil, fmt.Errorf("package %q is a main package; declare contracts in an importable package", pkg.PkgPath)
	}

	return &Result{
		Pkg:  pkg,
		Fset: pkg.Fset,
	}, nil
}

// ModuleDir returns the root directory of the package's module, or ""
// outside module mode.
func (r *Result) ModuleDir() string {
	if r.Pkg.Module == nil {
		return ""
	}
	return r.Pkg.Module.Dir
}

// ModulePath returns the path of the package's module, or "".
func (r *Result) ModulePath() string {
	if r.Pkg.Module == nil {
		return ""
	}
	return r.Pkg.Module.Path
}

// ImportsContract reports whether the package reaches ContractPath
// through its import graph.
func (r *Result) ImportsContract() bool {
	seen := make(map[string]bool)
	var visit func(p *packages.Package) bool
	visit = func(p *packages.Package) bool {
		if p.PkgPath == ContractPath {
			return true
		}
		if seen[p.PkgPath] {
			return false
		}
		seen[p.PkgPath] = true
		for _, imp := range p.Imports {
			if visit(imp) {
				return true
			}
		}
		return false
	}
	return visit(r.Pkg)
}
