// Package slog provides log/slog decorators for unhtml services.
package slog

import (
	"iter"
	"log/slog"
	"time"

	"github.com/fwojciec/unhtml"
)

// Ensure LoggingParser implements unhtml.Parser.
var _ unhtml.Parser = (*LoggingParser)(nil)

// LoggingParser wraps a Parser with logging of document parsing and
// selector compilation.
type LoggingParser struct {
	next   unhtml.Parser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next unhtml.Parser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the operation.
func (p *LoggingParser) Parse(html string) (root unhtml.Element, err error) {
	defer func(begin time.Time) {
		p.logger.Info("parse document",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(html)
}

// Compile delegates to the wrapped parser and logs the operation.
// The returned selector logs the match count of every selection at debug
// level.
func (p *LoggingParser) Compile(css string) (sel unhtml.Selector, err error) {
	defer func(begin time.Time) {
		p.logger.Info("compile selector",
			"selector", css,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	sel, err = p.next.Compile(css)
	if err != nil {
		return nil, err
	}
	return &loggingSelector{next: sel, logger: p.logger}, nil
}

type loggingSelector struct {
	next   unhtml.Selector
	logger *slog.Logger
}

func (s *loggingSelector) String() string {
	return s.next.String()
}

func (s *loggingSelector) Select(e unhtml.Element) iter.Seq[unhtml.Element] {
	return func(yield func(unhtml.Element) bool) {
		n := 0
		defer func() {
			s.logger.Debug("select", "selector", s.next.String(), "matches", n)
		}()
		for m := range s.next.Select(e) {
			n++
			if !yield(m) {
				return
			}
		}
	}
}
