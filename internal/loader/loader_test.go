package loader_test

import (
	"strings"
	"testing"

	"github.com/unbound-force/paranoid/internal/loader"
)

func TestLoad_ValidPackage(t *testing.T) {
	// Load the autotest package, which imports the contract package.
	result, err := loader.Load("", "github.com/unbound-force/paranoid/pkg/autotest")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if result.Pkg == nil {
		t.Fatal("expected non-nil Pkg")
	}
	if result.Fset == nil {
		t.Fatal("expected non-nil Fset")
	}
	if result.Pkg.PkgPath != "github.com/unbound-force/paranoid/pkg/autotest" {
		t.Errorf("expected pkg path 'github.com/unbound-force/paranoid/pkg/autotest', got %q",
			result.Pkg.PkgPath)
	}
	if !result.ImportsContract() {
		t.Error("ImportsContract() = false, want true")
	}
	if result.ModulePath() != "github.com/unbound-force/paranoid" {
		t.Errorf("ModulePath() = %q, want github.com/unbound-force/paranoid", result.ModulePath())
	}
	if result.ModuleDir() == "" {
		t.Error("ModuleDir() is empty")
	}
}

func TestLoad_WithoutContracts(t *testing.T) {
	result, err := loader.Load("", "github.com/unbound-force/paranoid/internal/taxonomy")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if result.ImportsContract() {
		t.Error("ImportsContract() = true, want false")
	}
}

func TestLoad_MainPackage(t *testing.T) {
	_, err := loader.Load("", "github.com/unbound-force/paranoid/cmd/paranoid")
	if err == nil || !strings.Contains(err.Error(), "main package") {
		t.Errorf("Load(main) error = %v, want main package error", err)
	}
}

func TestLoad_InvalidPattern(t *testing.T) {
	_, err := loader.Load("", "github.com/nonexistent/package/that/does/not/exist")
	if err == nil {
		t.Error("expected error for nonexistent package")
	}
}
