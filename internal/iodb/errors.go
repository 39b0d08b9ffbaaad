package iodb

import (
	"fmt"
	"runtime"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/errcode"
	"github.com/gnames/gn"
)

func ConnectionError(engine connect.Engine, database string, err error) error {
	msg := "Cannot connect to %s database <em>%s</em>"
	vars := []any{string(engine), database}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ConnectionFailedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: connection to %s/%s failed: %w",
			fn, engine, database, err),
	}
}

func NotConnectedError() error {
	msg := "Database connection has not been established"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.NotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: not connected", fn),
	}
}

func UnknownEngineError(engine string) error {
	msg := "Unknown database engine <em>%s</em>"
	vars := []any{engine}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.UnknownEngineError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: unknown engine %q", fn, engine),
	}
}

func QueryError(query string, err error) error {
	msg := "Database query failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.QueryError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: query %q failed: %w", fn, query, err),
	}
}

func TransactionError(err error) error {
	msg := "Database transaction failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TransactionError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: transaction failed: %w", fn, err),
	}
}
