package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the timestamp layout of console log lines.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. A zapcore.Core satisfies it, which is how the
// observed test logs are collected.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes tab separated log lines to an io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender creates a ConsoleAppender writing to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender creates a ConsoleAppender writing to w.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// Write formats the entry as "time	LEVEL	logger	caller	message	{fields}".
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if _, werr := fmt.Fprintln(appender.Writer, line); werr != nil {
		return werr
	}
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	toPrint := make([]string, 0, 6)
	toPrint = append(toPrint, entry.Time.Format(DefaultTimeFormatStr))
	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" {
		toPrint = append(toPrint, entry.LoggerName)
	}
	if entry.Caller.Defined {
		toPrint = append(toPrint, callerToString(&entry.Caller))
	}
	toPrint = append(toPrint, entry.Message)
	if len(fields) == 0 {
		return strings.Join(toPrint, "\t"), nil
	}

	// Encoding with an empty Entry keeps only the fields, in order.
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(toPrint, "\t"), err
	}
	toPrint = append(toPrint, buf.String())
	return strings.Join(toPrint, "\t"), nil
}

// callerToString returns "dir/file.go:line".
func callerToString(caller *zapcore.EntryCaller) string {
	return caller.TrimmedPath()
}
