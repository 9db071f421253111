// Package logging configures slog for the game and its tools.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
)

var ErrBadFormat = errors.New("logging: format must be text or json")

// gameHandler stamps every record with the game name.
type gameHandler struct {
	handler slog.Handler
	game    string
}

func (h *gameHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("game", h.game))
	return h.handler.Handle(ctx, r)
}

func (h *gameHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *gameHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &gameHandler{handler: h.handler.WithAttrs(attrs), game: h.game}
}

func (h *gameHandler) WithGroup(name string) slog.Handler {
	return &gameHandler{handler: h.handler.WithGroup(name), game: h.game}
}

// ParseLevel accepts the slog level names, case-insensitively. Empty means
// info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, oops.In("logging").With("level", s).Wrap(err)
	}
	return level, nil
}

// Setup builds a logger writing text or JSON to w, or to stderr when w is
// nil.
func Setup(game, format, level string, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var base slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		base = slog.NewTextHandler(w, opts)
	case "json":
		base = slog.NewJSONHandler(w, opts)
	default:
		return nil, oops.In("logging").With("format", format).Wrap(ErrBadFormat)
	}
	return slog.New(&gameHandler{handler: base, game: game}), nil
}
