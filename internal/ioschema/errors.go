package ioschema

import (
	"fmt"
	"runtime"

	"github.com/driftwatch/driftwatch/pkg/errcode"
	"github.com/gnames/gn"
)

func IntrospectionError(engine string, err error) error {
	msg := "Cannot read schema from %s database"
	vars := []any{engine}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.IntrospectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: schema introspection failed: %w",
			fn, err),
	}
}
