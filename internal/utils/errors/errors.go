package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnsupportedFile   = errors.New("unsupported file format")
	ErrPathNotAccessible = errors.New("path is not accessible")

	// Compression Errors
	ErrUnsupportedCompression = errors.New("unsupported compression format")
	ErrInvalidArchive         = errors.New("archive file is corrupted or unsupported")
	ErrUnsafeArchivePath      = errors.New("archive entry escapes the extraction directory")

	// Extraction Errors
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrDecompressionFailed = errors.New("decompression failed")

	// File & Directory Errors
	ErrFileNotFound    = errors.New("file not found")
	ErrFileReadError   = errors.New("error reading file")
	ErrFileWriteError  = errors.New("error writing to file")
	ErrDirNotFound     = errors.New("directory not found")
	ErrDirCreateFailed = errors.New("error creating directory")

	// Download Errors
	ErrDownloadFailed   = errors.New("failed to download file")
	ErrHTTPStatusFailed = errors.New("unexpected HTTP status code during download")

	// Hash Errors
	ErrInvalidHasher = errors.New("invalid hasher")

	// Workflow Errors
	ErrNotWorkflow        = errors.New("document does not contain a usable workflow")
	ErrFingerprintFailed  = errors.New("failed to fingerprint workflow")
	ErrReportWriteFailed  = errors.New("failed to write import report")
	ErrRepositoryNotFound = errors.New("repository snapshot not available")

	// Destination API Errors
	ErrAPIKeyMissing          = errors.New("API key is required")
	ErrDestinationUnreachable = errors.New("destination healthcheck failed")
	ErrCatalogListing         = errors.New("failed listing workflows")
	ErrCreateFailed           = errors.New("failed creating workflow")

	// Configuration Errors
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrConfigParseError = errors.New("error parsing configuration")
)
