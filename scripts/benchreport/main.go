// Command benchreport turns `go test -bench` output for the allocator
// benchmarks into a markdown table, optionally compared with a baseline run.
//
//	go test -run '^$' -bench . -benchmem ./suballoc > new.txt
//	go run ./scripts/benchreport -input new.txt -baseline old.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Result is one parsed benchmark line.
type Result struct {
	Name        string // full name without the -procs suffix
	Allocator   string // SegregatedSlab, Table, ...
	Operation   string
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// Comparison pairs a result with the baseline result of the same name.
type Comparison struct {
	Current  Result
	Baseline *Result
}

// Speedup returns baseline ns/op divided by current ns/op, 0 without baseline.
func (c Comparison) Speedup() float64 {
	if c.Baseline == nil || c.Current.NsPerOp == 0 {
		return 0
	}
	return c.Baseline.NsPerOp / c.Current.NsPerOp
}

var (
	inputFile    = flag.String("input", "", "Benchmark output (stdin if not specified)")
	baselineFile = flag.String("baseline", "", "Benchmark output to compare against")
	outputFile   = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet        = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	current, err := parseFile(*inputFile)
	if err != nil {
		return err
	}
	var baseline []Result
	if *baselineFile != "" {
		if baseline, err = parseFile(*baselineFile); err != nil {
			return err
		}
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results (%d baseline)\n", len(current), len(baseline))
	}

	report := markdownReport(compare(current, baseline))

	if *outputFile == "" {
		_, err := io.WriteString(os.Stdout, report)
		return err
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		return err
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
	return nil
}

func parseFile(path string) ([]Result, error) {
	if path == "" {
		return parseBenchmarks(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseBenchmarks(f), nil
}

// BenchmarkSegregatedSlab_AllocFree-8   1000000   112.5 ns/op   0 B/op   0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+?)(?:-\d+)?\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

// parseBenchmarks reads plain or `go test -json` benchmark output.
func parseBenchmarks(r io.Reader) []Result {
	var results []Result
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		var event struct {
			Output string
		}
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(line, &event); err == nil && event.Output != "" {
			line = event.Output
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		res := Result{Name: matches[1]}
		res.Iterations, _ = strconv.Atoi(matches[2])
		res.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			res.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			res.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		// Benchmark<Allocator>_<Operation>[/sub]
		name := strings.TrimPrefix(res.Name, "Benchmark")
		if allocator, op, ok := strings.Cut(name, "_"); ok {
			res.Allocator, res.Operation = allocator, op
		} else {
			res.Operation = name
		}
		results = append(results, res)
	}
	return results
}

func compare(current, baseline []Result) []Comparison {
	byName := make(map[string]Result, len(baseline))
	for _, b := range baseline {
		byName[b.Name] = b
	}

	out := make([]Comparison, 0, len(current))
	for _, c := range current {
		cmp := Comparison{Current: c}
		if b, ok := byName[c.Name]; ok {
			cmp.Baseline = &b
		}
		out = append(out, cmp)
	}
	slices.SortStableFunc(out, func(a, b Comparison) int {
		if c := strings.Compare(a.Current.Allocator, b.Current.Allocator); c != 0 {
			return c
		}
		return strings.Compare(a.Current.Operation, b.Current.Operation)
	})
	return out
}

func markdownReport(cmps []Comparison) string {
	var sb strings.Builder
	sb.WriteString("# Allocator benchmarks\n\n")

	withBaseline := slices.ContainsFunc(cmps, func(c Comparison) bool { return c.Baseline != nil })
	if withBaseline {
		sb.WriteString("| Allocator | Operation | ns/op | baseline ns/op | speedup | B/op | allocs/op |\n")
		sb.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	} else {
		sb.WriteString("| Allocator | Operation | ns/op | B/op | allocs/op |\n")
		sb.WriteString("|---|---|---:|---:|---:|\n")
	}

	for _, c := range cmps {
		r := c.Current
		if !withBaseline {
			fmt.Fprintf(&sb, "| %s | %s | %.1f | %d | %d |\n",
				r.Allocator, r.Operation, r.NsPerOp, r.BytesPerOp, r.AllocsPerOp)
			continue
		}
		baseNs, speedup := "-", "-"
		if c.Baseline != nil {
			baseNs = fmt.Sprintf("%.1f", c.Baseline.NsPerOp)
			speedup = fmt.Sprintf("%.2fx", c.Speedup())
		}
		fmt.Fprintf(&sb, "| %s | %s | %.1f | %s | %s | %d | %d |\n",
			r.Allocator, r.Operation, r.NsPerOp, baseNs, speedup, r.BytesPerOp, r.AllocsPerOp)
	}
	return sb.String()
}
