package iodrift

import (
	"fmt"
	"runtime"

	"github.com/driftwatch/driftwatch/pkg/errcode"
	"github.com/gnames/gn"
)

func BaselineReadError(path string, err error) error {
	msg := "Cannot read schema baseline <em>%s</em>; " +
		"run 'driftwatch baseline' to create one"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.BaselineReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read baseline: %w", fn, err),
	}
}

func BaselineWriteError(path string, err error) error {
	msg := "Cannot write schema baseline <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.BaselineWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot write baseline: %w", fn, err),
	}
}

func DetectionError(err error) error {
	msg := "Drift detection failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DriftDetectionFailedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: detection failed: %w", fn, err),
	}
}

func MigrationHistoryError(table string, err error) error {
	msg := "Cannot read migration history from <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MigrationHistoryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: migration history query failed: %w", fn, err),
	}
}

func ReportWriteError(path string, err error) error {
	msg := "Cannot write drift report <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReportWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot write report: %w", fn, err),
	}
}

func WebhookError(url string, err error) error {
	msg := "Cannot deliver drift notification to <em>%s</em>"
	vars := []any{url}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WebhookError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: webhook delivery failed: %w", fn, err),
	}
}
