package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SignedLogger writes action log entries as JSON Lines, each line a
// SignedEntry carrying the entry and its signature.
type SignedLogger struct {
	writer io.Writer
	config *SignatureConfig
}

// NewSignedLogger creates a SignedLogger. The config must carry a valid
// secret key.
func NewSignedLogger(w io.Writer, config *SignatureConfig) *SignedLogger {
	return &SignedLogger{writer: w, config: config}
}

// LogAction signs and writes an action log entry. A signing failure
// falls back to writing the unsigned entry so the record is not lost.
func (l *SignedLogger) LogAction(entry ActionLogEntry) {
	var line any
	signed, err := NewSignedEntry(entry, l.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signing error: %v\n", err)
		line = entry
	} else {
		line = signed
	}

	data, err := json.Marshal(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}
