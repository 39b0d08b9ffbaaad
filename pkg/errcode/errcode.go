// Package errcode enumerates stable error codes for driftwatch.
// Every error constructed in internal/io* packages carries one of
// these codes so that callers and reports can classify failures
// without string matching.
package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Connection Manager errors
	ConnectionFailedError
	NotConnectedError
	UnknownEngineError
	QueryError
	TransactionError

	// Schema Analyzer errors
	IntrospectionError

	// Baseline errors
	BaselineReadError
	BaselineWriteError

	// Drift Detector errors
	DriftDetectionFailedError
	MigrationHistoryError
	ReportWriteError
	WebhookError

	// Route Extractor/Validator errors
	RouteValidationFailedError
	RouteScanError
	StubWriteError

	// Form Extractor/Validator errors
	FormScanFailedError
	FormParseError
)
