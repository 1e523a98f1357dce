package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/sugawarayuuta/sonnet"
)

var (
	ErrNotExist   = errors.New("doesn't exist")
	ErrValidation = errors.New("validation failed")
)

// ReportsDir is the subdirectory under the data dir where reports go
const ReportsDir = "reports"

const reportExt = ".json"

var badNameRegex = regexp.MustCompile(`[<>:"/\\|?\*\s]`)

func ValidateReportName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be blank", ErrValidation)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: name %q is reserved", ErrValidation, name)
	}

	m := badNameRegex.FindAllString(name, -1)
	if len(m) > 0 {
		return fmt.Errorf("%w: name contains disallowed characters %q", ErrValidation, strings.Join(m, ""))
	}

	return nil
}

type Storage struct {
	fs afero.Fs
}

func NewStorage(fs CupsFS, config *Config) (*Storage, error) {
	if err := fs.MkdirAll(filepath.Join(config.DataDir(), ReportsDir), 0755); err != nil {
		return nil, err
	}

	return &Storage{
		fs: afero.NewBasePathFs(fs, config.DataDir()),
	}, nil
}

func reportPath(name string) string {
	return filepath.Join(ReportsDir, name+reportExt)
}

// SaveReport writes the report under its name, replacing any earlier one.
func (s *Storage) SaveReport(report Report) error {
	if err := ValidateReportName(report.Name); err != nil {
		return err
	}

	data, err := sonnet.Marshal(report)
	if err != nil {
		return err
	}

	f, err := s.fs.Create(reportPath(report.Name))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return f.Sync()
}

func (s *Storage) ReadReport(name string) (Report, error) {
	if err := ValidateReportName(name); err != nil {
		return Report{}, err
	}

	data, err := afero.ReadFile(s.fs, reportPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Report{}, fmt.Errorf("report %q %w", name, ErrNotExist)
		}
		return Report{}, err
	}

	var report Report
	if err := sonnet.Unmarshal(data, &report); err != nil {
		return Report{}, fmt.Errorf("decode report %q: %w", name, err)
	}
	return report, nil
}

// ListReports returns the names of all stored reports, sorted.
func (s *Storage) ListReports() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, ReportsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == reportExt {
			names = append(names, strings.TrimSuffix(entry.Name(), reportExt))
		}
	}
	sort.Strings(names)

	return names, nil
}
