package adterr

import (
	"fmt"
	"log/slog"
	"strings"
)

// Errors collects every failure found while closing a declaration,
// so that a single Declare call reports all of them at once
type Errors struct {
	errs []Error
}

func (r *Errors) With(err ...Error) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []Error {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

func (r *Errors) Error() string {
	if len(r.errs) == 1 {
		return r.errs[0].Error()
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%d errors:", len(r.errs)))
	for _, err := range r.errs {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap lets errors.As and errors.Is look at each collected error
func (r *Errors) Unwrap() []error {
	unwrapped := make([]error, len(r.errs))
	for i, err := range r.errs {
		unwrapped[i] = err
	}
	return unwrapped
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.errs {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
