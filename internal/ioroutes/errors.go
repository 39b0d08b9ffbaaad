package ioroutes

import (
	"fmt"
	"runtime"

	"github.com/driftwatch/driftwatch/pkg/errcode"
	"github.com/gnames/gn"
)

func RouteValidationError(err error) error {
	msg := "Route validation pass failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RouteValidationFailedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: route validation failed: %w", fn, err),
	}
}

func RouteScanError(dir string, err error) error {
	msg := "Cannot scan route sources under <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RouteScanError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: route scan failed: %w", fn, err),
	}
}

func StubWriteError(path string, err error) error {
	msg := "Cannot write route stub <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StubWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot write stub: %w", fn, err),
	}
}
