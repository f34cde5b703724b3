package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

var enabledSections = []string{
	"adt",
	"match",
	"script",
}

var level = new(slog.LevelVar)

var LoggerOpts = &slog.HandlerOptions{
	AddSource: true,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = New(os.Stderr)

func init() {
	level.Set(slog.LevelWarn)
}

// New returns a logger writing text records to w which only lets through
// debug and info records of the enabled sections
func New(w io.Writer) *slog.Logger {
	return slog.New(&filteringHandler{underlying: slog.NewTextHandler(w, LoggerOpts)})
}

// SetLevel changes the minimum level for every logger created by this package
func SetLevel(l slog.Level) {
	level.Set(l)
}

func isEnabledSection(name string) bool {
	return slices.ContainsFunc(enabledSections, func(section string) bool {
		return strings.HasPrefix(name, section)
	})
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	sections   []string
}

func (f filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn || len(f.sections) > 0 {
		return f.underlying.Handle(ctx, record)
	}
	// filter out records which do not match enabledSections
	wantSection := false
	record.Attrs(func(attr slog.Attr) bool {
		wantSection = wantSection || attr.Key == "section" && isEnabledSection(attr.Value.String())
		// iterate as long as we have not found our section
		return !wantSection
	})
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var newAttrs []slog.Attr
	sections := slices.Clone(f.sections)

	// remember enabled sections in filteringHandler, records still carry the attribute
	for _, attr := range attrs {
		if attr.Key == "section" && isEnabledSection(attr.Value.String()) {
			sections = append(sections, attr.Value.String())
		}
		newAttrs = append(newAttrs, attr)
	}
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(newAttrs),
		sections:   sections,
	}
}

func (f filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithGroup(name),
		sections:   f.sections,
	}
}
