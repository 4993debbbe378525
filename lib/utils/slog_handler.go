package utils

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

type ColorHandler struct {
	mu     *sync.Mutex
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

func NewColorHandler(level slog.Leveler) *ColorHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ColorHandler{mu: &sync.Mutex{}, level: level}
}

func (h *ColorHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var color = Default
	switch r.Level {
	case slog.LevelDebug:
		color = Muted
	case slog.LevelWarn:
		color = Warning
	case slog.LevelError:
		color = Fail
	}

	var b strings.Builder
	b.WriteString(Gray.Render(r.Time.Format(time.TimeOnly)))
	b.WriteByte(' ')

	// the plugin attribute is rendered as a [tag] before the message
	rest := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		if a.Key == "plugin" {
			b.WriteString(Tag.Render("[" + a.Value.String() + "]"))
			b.WriteByte(' ')
			continue
		}
		rest = append(rest, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		rest = append(rest, a)
		return true
	})

	switch r.Level {
	case slog.LevelWarn:
		b.WriteString(WarningWithBackground.Render("WARNING"))
		b.WriteByte(' ')
	case slog.LevelError:
		b.WriteString(ErrorWithBackground.Render("✗ ERROR"))
		b.WriteByte(' ')
	}
	b.WriteString(color.Render(r.Message))

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range rest {
		b.WriteString(" " + Muted.Render(prefix+a.Key) + "=" + fmt.Sprintf("%v", a.Value.Any()))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(Output, b.String())
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{
		mu:     h.mu,
		level:  h.level,
		attrs:  append(slices.Clone(h.attrs), attrs...),
		groups: h.groups,
	}
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ColorHandler{
		mu:     h.mu,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(slices.Clone(h.groups), name),
	}
}
