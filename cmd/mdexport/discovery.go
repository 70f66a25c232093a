package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	mdexport "github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/fileutil"
)

// Sentinel errors for note discovery.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrNoNotes          = errors.New("no notes found")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrOutputWithMany   = errors.New("--output needs exactly one note")
)

// noteFile is one note to export.
type noteFile struct {
	Source string // path of the note
	Base   string // directory the note was found under; empty for explicit files
}

// discoverNotes expands inputs into notes. Directories are walked
// recursively, skipping hidden entries such as .obsidian and .trash.
func discoverNotes(inputs []string) ([]noteFile, error) {
	var notes []noteFile
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := validateMarkdownExtension(input); err != nil {
				return nil, err
			}
			notes = append(notes, noteFile{Source: input})
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if path != input && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isMarkdown(path) {
				return nil
			}
			notes = append(notes, noteFile{Source: path, Base: input})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// resolveOutputPath returns the destination of note, or "" to let the
// exporter place it. With an output directory, notes found under a
// directory keep their relative location.
func resolveOutputPath(note noteFile, outputDir string, format mdexport.Format) string {
	if outputDir == "" {
		return ""
	}

	name := fileutil.ReplaceExt(filepath.Base(note.Source), format.Extension)
	if note.Base != "" {
		if rel, err := filepath.Rel(note.Base, note.Source); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), name)
		}
	}
	return filepath.Join(outputDir, name)
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}
