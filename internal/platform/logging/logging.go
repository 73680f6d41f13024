// Package logging provides the shared logrus configuration used by every
// service in the mesh, including the stdout/stderr stream split relied on
// for container log aggregation.
package logging

import (
	"bytes"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes error-level records to stderr and everything else
// to stdout, based on a cheap substring check on the formatted line.
type OutputSplitter struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (s *OutputSplitter) Write(p []byte) (int, error) {
	for _, lvl := range []string{"error", "fatal", "panic"} {
		if bytes.Contains(p, []byte("level="+lvl)) || bytes.Contains(p, []byte(`"level":"`+lvl+`"`)) {
			return s.Stderr.Write(p)
		}
	}
	return s.Stdout.Write(p)
}

// New builds a *logrus.Logger configured with the stdout/stderr split.
// Callers should tag it with a "service" field via Service.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&OutputSplitter{Stdout: os.Stdout, Stderr: os.Stderr})
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	return log
}

// Service returns a logger entry tagged with the service name, so log
// aggregation can separate the three processes sharing this module.
func Service(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("service", name)
}

// WithTrace returns an entry carrying the given trace id, so every logged
// error (5xx or otherwise) can be correlated back to its request trace.
func WithTrace(log *logrus.Logger, traceID string) *logrus.Entry {
	return log.WithField("traceId", traceID)
}
