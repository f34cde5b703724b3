//go:build js && wasm

// Package playground exposes the script runner to JavaScript when built for wasm
package playground

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/cottand/adt/adterr"
	"github.com/cottand/adt/script"
)

// CheckScript compiles the script given as first argument and returns its
// declarations, or the errors found in it, as a string. No branch runs.
func CheckScript(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "checker panicked: " + fmt.Sprint(r)
		}
	}()

	s, err := script.Load(strings.NewReader(args[0].String()))
	if err != nil {
		return fmt.Sprintf("the script could not be loaded:\n\n%s", err)
	}
	program, err := s.Compile(context.Background(), bytes.NewBuffer(nil))
	if err == nil {
		err = program.Validate()
	}
	if err != nil {
		return showErrors(err)
	}
	out := bytes.NewBuffer(nil)
	if err := program.WriteDeclarations(out); err != nil {
		return fmt.Sprintf("the checker encountered a failure:\n%s", err)
	}
	return out.String()
}

func showErrors(err error) string {
	var errs *adterr.Errors
	if !errors.As(err, &errs) {
		return fmt.Sprintf("the script has the following error:\n%s", err)
	}
	sb := strings.Builder{}
	sb.WriteString("the script has the following errors:\n")
	for _, e := range errs.Errors() {
		sb.WriteString(adterr.FormatWithCode(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// runScript runs the script given as first argument and returns its output
func runScript(_ js.Value, args []js.Value) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	s, err := script.Load(strings.NewReader(args[0].String()))
	if err != nil {
		return nil, fmt.Errorf("error loading script: %w", err)
	}
	stdout := bytes.NewBuffer(nil)
	if err := s.Run(context.Background(), stdout); err != nil {
		return nil, fmt.Errorf("error during execution: %w", err)
	}
	return stdout.String(), nil
}

// asPromise takes a JS-API function that also returns an error, and returns a
// function returning a promise which completes when the function completes
func asPromise(function func(js.Value, []js.Value) (any, error)) any {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		handler := js.FuncOf(func(_ js.Value, promiseArgs []js.Value) any {
			resolve := promiseArgs[0]
			reject := promiseArgs[1]

			go func() {
				defer func() {
					if r := recover(); r != nil {
						errorConstructor := js.Global().Get("Error")
						reject.Invoke(errorConstructor.New(fmt.Sprintf("%s", r)))
					}
				}()

				data, err := function(this, args)
				if err != nil {
					errorConstructor := js.Global().Get("Error")
					reject.Invoke(errorConstructor.New(err.Error()))
				} else {
					resolve.Invoke(js.ValueOf(data))
				}
			}()

			return nil
		})
		promiseConstructor := js.Global().Get("Promise")
		return promiseConstructor.New(handler)
	})
}

var RunScript = asPromise(runScript)
