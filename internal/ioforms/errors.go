package ioforms

import (
	"fmt"
	"runtime"

	"github.com/driftwatch/driftwatch/pkg/errcode"
	"github.com/gnames/gn"
)

func FormScanError(dir string, err error) error {
	msg := "Cannot scan form templates under <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.FormScanFailedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: form scan failed: %w", fn, err),
	}
}

func FormParseError(file string, err error) error {
	msg := "Cannot parse template <em>%s</em>"
	vars := []any{file}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.FormParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot parse template: %w", fn, err),
	}
}
