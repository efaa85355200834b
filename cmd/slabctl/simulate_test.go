package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/internal/workload"
)

func newSimulate(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := newSimulateCmd()
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	return cmd
}

func TestSimulateCommand(t *testing.T) {
	resetGlobals(false)
	cmd := newSimulate(t, map[string]string{"preset": "small", "ops": "500", "validate": "true"})

	output, err := captureOutput(t, func() error { return runSimulate(cmd, nil) })
	if err != nil {
		t.Fatalf("runSimulate() error = %v\nOutput: %s", err, output)
	}
	assertContains(t, output, []string{
		"Region:        4,096 bytes, slab 64, classes 4 8 16 32 64",
		"Steps:         500",
		"Fragmentation:",
		"CLASS",
	})
}

func TestSimulateCommand_File(t *testing.T) {
	resetGlobals(false)
	path := filepath.Join(t.TempDir(), "w.yaml")
	data := []byte(`
region: 16
max: 4
min: 2
steps:
  - {op: alloc, size: 3}
  - {op: alloc, size: 2}
  - {op: alloc, size: 4}
  - {op: alloc, size: 1}
  - {op: alloc, size: 4}
  - {op: alloc, size: 4}
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newSimulate(t, map[string]string{"dump": "true"})
	output, err := captureOutput(t, func() error { return runSimulate(cmd, []string{path}) })
	if err != nil {
		t.Fatalf("runSimulate() error = %v\nOutput: %s", err, output)
	}
	assertContains(t, output, []string{
		"Steps:         6 (alloc 6, free 0, realloc 0)",
		"Failures:      insufficient_space 1",
		"Slabs:         4 (empty 0, partial 0, full 4, never assigned 0)",
		"slab [4;8[ (size 4) class 2, free slots 0/2",
	})
}

func TestSimulateCommand_JSON(t *testing.T) {
	resetGlobals(true)
	defer resetGlobals(false)

	cmd := newSimulate(t, map[string]string{"seed": "3", "ops": "200"})
	output, err := captureOutput(t, func() error { return runSimulate(cmd, nil) })
	if err != nil {
		t.Fatalf("runSimulate() error = %v", err)
	}

	var rep workload.Report
	assertJSON(t, output, &rep)
	if rep.Steps != 200 {
		t.Errorf("steps = %d, want 200", rep.Steps)
	}
	if rep.Stats.Slabs != 256 {
		t.Errorf("slabs = %d, want 256", rep.Stats.Slabs)
	}
}

func TestSimulationSpec_FlagsOverride(t *testing.T) {
	cmd := newSimulate(t, map[string]string{"max": "128", "seed": "11"})

	spec, err := simulationSpec(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Max != 128 || spec.MaxRequest != 128 || spec.Seed != 11 {
		t.Errorf("spec = %+v", spec)
	}
	if spec.Region != 1<<16 || spec.Min != 8 {
		t.Errorf("preset not applied: %+v", spec)
	}
}

func TestSimulateCommand_Errors(t *testing.T) {
	resetGlobals(false)

	cmd := newSimulate(t, map[string]string{"min": "3"})
	if _, err := captureOutput(t, func() error { return runSimulate(cmd, nil) }); err == nil {
		t.Error("expected error for min 3")
	}

	cmd = newSimulate(t, nil)
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := captureOutput(t, func() error { return runSimulate(cmd, []string{missing}) }); err == nil {
		t.Error("expected error for missing file")
	}
}
