package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingProvider records every completion request on a logrus logger.
type LoggingProvider struct {
	inner TextGenerator
	log   logrus.FieldLogger
}

// WithLogging wraps a TextGenerator with request logging. A nil logger
// returns p unchanged.
func WithLogging(p TextGenerator, log logrus.FieldLogger) TextGenerator {
	if log == nil {
		return p
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := l.inner.Generate(ctx, req)

	entry := l.log.WithFields(logrus.Fields{
		"model":        l.inner.ModelID(),
		"temperature":  req.Temperature,
		"latency_ms":   time.Since(start).Milliseconds(),
		"prompt_chars": len(req.Prompt),
		"output_chars": len(text),
	})
	if err != nil {
		entry.WithError(err).Warn("llm request failed")
	} else {
		entry.Debug("llm request")
	}
	return text, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
