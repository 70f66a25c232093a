package main

import (
	"errors"
	"os"

	mdexport "github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/config"
	"github.com/alnah/go-mdexport/internal/pipeline"
)

// Exit codes for the mdexport CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Every export succeeded, possibly with warnings
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // File not found, permission denied
	ExitBrowser   = 4 // Browser/Chrome errors
	ExitConverter = 5 // Converter missing or failed
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, mdexport.ErrBrowserConnect) ||
		errors.Is(err, mdexport.ErrPageCreate) ||
		errors.Is(err, mdexport.ErrPageLoad) ||
		errors.Is(err, mdexport.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, mdexport.ErrConverterNotFound) ||
		errors.Is(err, mdexport.ErrConversionFailed) ||
		errors.Is(err, mdexport.ErrOutputMissing) ||
		errors.Is(err, mdexport.ErrEmptyOutput) {
		return ExitConverter
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdexport.ErrSourceRead) ||
		errors.Is(err, mdexport.ErrWrite) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoNotes) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pipeline.ErrInvalidLinkMode) ||
		errors.Is(err, pipeline.ErrInvalidAppCSS) ||
		errors.Is(err, mdexport.ErrUnknownFormat) ||
		errors.Is(err, mdexport.ErrUnsupportedFrom) ||
		errors.Is(err, mdexport.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputWithMany) ||
		errors.Is(err, errUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
