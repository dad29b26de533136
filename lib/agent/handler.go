// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/bureau-foundation/birch/lib/level"
	"github.com/bureau-foundation/birch/lib/logfile"
)

// Handler is a slog.Handler that records through an Agent, so a host
// already using log/slog can ship its logs without rewriting call
// sites:
//
//	logger := slog.New(agent.NewHandler(a))
//	logger.WithGroup("billing").Error("charge failed", "order", id, "error", err)
//
// records "[billing] charge failed order=42" followed by the error at
// ERROR. Levels below slog.LevelDebug map to TRACE.
//
// Groups become the bracketed tag. Attributes follow the message as
// key=value pairs, with keys of group-valued attributes joined by dots.
// An attribute named "error" holding an error is rendered after the
// message the way ErrorErr renders it.
//
// Records the agent itself echoes to its console logger are ignored, so
// the handler may sit behind Options.Logger without feeding entries
// back into the agent.
type Handler struct {
	agent  *Agent
	groups []string
	attrs  []slog.Attr
}

// NewHandler returns a Handler for a.
func NewHandler(a *Agent) *Handler {
	return &Handler{agent: a}
}

// Enabled reports whether an entry at l would pass the agent's level.
func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	if logfile.Echoed(ctx) {
		return false
	}
	current, ok := h.agent.CurrentLevel()
	if !ok {
		return false
	}
	return h.agent.DebugEnabled() || level.FromSlog(l) >= current
}

// Handle records r. The message is rendered only if the entry is
// accepted.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if logfile.Echoed(ctx) {
		return nil
	}
	r = r.Clone()
	h.agent.Log(level.FromSlog(r.Level), func() string { return h.render(r) })
	return nil
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &clone
}

// WithGroup returns a Handler whose records are tagged with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &clone
}

func (h *Handler) render(r slog.Record) string {
	var builder strings.Builder
	if len(h.groups) > 0 {
		builder.WriteString("[")
		builder.WriteString(strings.Join(h.groups, "."))
		builder.WriteString("] ")
	}
	builder.WriteString(r.Message)

	var err error
	appendAttr := func(a slog.Attr) bool {
		if a.Key == "error" && err == nil {
			if candidate, ok := a.Value.Resolve().Any().(error); ok {
				err = candidate
				return true
			}
		}
		writeAttr(&builder, "", a)
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(appendAttr)

	return withError(builder.String(), err)()
}

// writeAttr appends " key=value", flattening groups into dotted keys.
func writeAttr(builder *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	value := a.Value
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			writeAttr(builder, key, member)
		}
		return
	}

	builder.WriteString(" ")
	builder.WriteString(key)
	builder.WriteString("=")
	builder.WriteString(quote(value.String()))
}

// quote wraps s in quotes when it would not read back as one token.
func quote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}
