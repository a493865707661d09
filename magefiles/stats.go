//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/sh"
)

// listFormat prints one package per line: import path, directory, then the
// production and test file lists.
const listFormat = `{{.ImportPath}}|{{.Dir}}|{{join .GoFiles ","}}|{{join .TestGoFiles ","}},{{join .XTestGoFiles ","}}`

type packageStats struct {
	Package string `json:"package"`
	Prod    int    `json:"prod"`
	Test    int    `json:"test"`
}

// Stats prints Go lines of code per package, with totals, as one JSON record.
// Only packages of this module are counted.
func Stats() error {
	out, err := sh.Output(binGo, "list", "-f", listFormat, "./...")
	if err != nil {
		return err
	}

	var pkgs []packageStats
	var prod, test int
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "|")
		if len(fields) != 4 {
			continue
		}
		ps := packageStats{Package: fields[0]}
		if ps.Prod, err = countFiles(fields[1], fields[2]); err != nil {
			return err
		}
		if ps.Test, err = countFiles(fields[1], fields[3]); err != nil {
			return err
		}
		prod += ps.Prod
		test += ps.Test
		pkgs = append(pkgs, ps)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Prod+pkgs[i].Test > pkgs[j].Prod+pkgs[j].Test })

	record := struct {
		Prod     int            `json:"go_loc_prod"`
		Test     int            `json:"go_loc_test"`
		Total    int            `json:"go_loc"`
		Packages []packageStats `json:"packages"`
	}{prod, test, prod + test, pkgs}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countFiles sums the lines of a comma-separated file list in dir.
func countFiles(dir, list string) (int, error) {
	total := 0
	for _, name := range strings.Split(list, ",") {
		if name == "" {
			continue
		}
		n, err := countLines(filepath.Join(dir, name))
		if err != nil {
			return 0, fmt.Errorf("counting %s: %w", name, err)
		}
		total += n
	}
	return total, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
