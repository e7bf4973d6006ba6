package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

func checkCommand(args []string) error {
	flags, verbose := newFlagSet("check")
	if err := flags.Parse(args); err != nil {
		return err
	}
	targets := flags.Args()
	if len(targets) == 0 {
		return errors.New("kwargs check: path required")
	}
	logger := newLogger(*verbose)

	files, err := collectSignatureFiles(targets)
	if err != nil {
		return err
	}

	functions := 0
	var errs []error
	for _, path := range files {
		set, err := loadSignatureFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug("checked", "file", path, "functions", len(set.sigs))
		functions += len(set.sigs)
	}

	fmt.Printf("checked %d file(s), %d function(s)\n", len(files), functions)
	if len(errs) > 0 {
		return fmt.Errorf("%w\nkwargs check: %d invalid file(s)", combineErrors(errs), len(errs))
	}
	return nil
}

func collectSignatureFiles(targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)
	addFile := func(path string, explicit bool) error {
		if !explicit && !isSignatureFile(path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
		return nil
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			if err := addFile(target, true); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			return addFile(path, false)
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
