// Package scan enumerates scenario directories under the raw data root.
//
// The layout is <root>/<emission point>/<tag>/<device file>. Discovery is
// tolerant: a missing emission-point directory contributes zero scenarios
// and a scenario without its device file is handed back to the caller, who
// decides to skip it.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scenario is one discovered simulation run.
type Scenario struct {
	Tag           string
	EmissionPoint string
	Dir           string
	DevicePath    string
}

// HasDeviceFile reports whether the scenario's device file exists.
func (s Scenario) HasDeviceFile() bool {
	info, err := os.Stat(s.DevicePath)
	return err == nil && !info.IsDir()
}

// Scanner discovers scenarios for a fixed set of emission points.
type Scanner struct {
	root       string
	points     []string
	deviceFile string
}

// New creates a Scanner over root for the given emission points.
func New(root string, points []string, deviceFile string) *Scanner {
	return &Scanner{root: root, points: points, deviceFile: deviceFile}
}

// Count returns the total number of scenario directories across all
// emission points, including ones that will later be skipped. Used as the
// progress total.
func (s *Scanner) Count() (int, error) {
	total := 0
	for _, point := range s.points {
		dirs, err := s.listDirs(point)
		if err != nil {
			return 0, err
		}
		total += len(dirs)
	}
	return total, nil
}

// Scenarios returns every scenario in deterministic order: emission points
// in configured order, tags in lexical order within each point.
func (s *Scanner) Scenarios() ([]Scenario, error) {
	var out []Scenario
	for _, point := range s.points {
		dirs, err := s.listDirs(point)
		if err != nil {
			return nil, err
		}
		for _, tag := range dirs {
			dir := filepath.Join(s.root, point, tag)
			out = append(out, Scenario{
				Tag:           tag,
				EmissionPoint: point,
				Dir:           dir,
				DevicePath:    filepath.Join(dir, s.deviceFile),
			})
		}
	}
	return out, nil
}

// listDirs returns the immediate subdirectory names of one emission-point
// directory, sorted. A missing directory yields no entries.
func (s *Scanner) listDirs(point string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, point))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", filepath.Join(s.root, point), err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}
