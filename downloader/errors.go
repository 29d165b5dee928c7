package downloader

import (
	"errors"
	"fmt"
)

// ErrSetup indicates the browser stack could not be started. Fatal to the run.
type ErrSetup struct {
	Err error
}

func (e ErrSetup) Error() string {
	return fmt.Errorf("setup: %w", e.Err).Error()
}

func (e ErrSetup) Unwrap() error {
	return e.Err
}

// ErrNavigation indicates the one-time page setup for a batch failed.
type ErrNavigation struct {
	Err error
}

func (e ErrNavigation) Error() string {
	return fmt.Errorf("navigation: %w", e.Err).Error()
}

func (e ErrNavigation) Unwrap() error {
	return e.Err
}

// ErrSelection indicates a per-day UI operation (date pick, download click)
// failed.
type ErrSelection struct {
	Err error
}

func (e ErrSelection) Error() string {
	return fmt.Errorf("selection: %w", e.Err).Error()
}

func (e ErrSelection) Unwrap() error {
	return e.Err
}

// ErrDownloadTimeout indicates the expected file never appeared within the
// poll ceiling.
type ErrDownloadTimeout struct {
	Err error
}

func (e ErrDownloadTimeout) Error() string {
	return fmt.Errorf("download_timeout: %w", e.Err).Error()
}

func (e ErrDownloadTimeout) Unwrap() error {
	return e.Err
}

// ErrParse indicates a downloaded file could not be inspected. Non-fatal.
type ErrParse struct {
	Err error
}

func (e ErrParse) Error() string {
	return fmt.Errorf("parse: %w", e.Err).Error()
}

func (e ErrParse) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var setup ErrSetup
	if errors.As(err, &setup) {
		return "setup"
	}
	var navigation ErrNavigation
	if errors.As(err, &navigation) {
		return "navigation"
	}
	var selection ErrSelection
	if errors.As(err, &selection) {
		return "selection"
	}
	var timeout ErrDownloadTimeout
	if errors.As(err, &timeout) {
		return "download_timeout"
	}
	var parse ErrParse
	if errors.As(err, &parse) {
		return "parse"
	}
	return "other"
}
