package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line. It is used to tag driver init output
// with the driver name.
type PrefixWriter struct {
	// A writer where all writes get sent to.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set when the last write did not end with a newline.
	midLine bool
}

// Write writes len(p) bytes from p to the underlying sink and returns the
// number of bytes written, not counting any injected prefixes.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written, lineStart int

	for index := 0; index < len(p); index++ {
		if p[index] != '\n' {
			continue
		}

		n, err := w.writeLine(p[lineStart : index+1])
		written += n
		if err != nil {
			return written, err
		}
		w.midLine = false
		lineStart = index + 1
	}

	if lineStart < len(p) {
		n, err := w.writeLine(p[lineStart:])
		written += n
		w.midLine = true
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// writeLine emits the prefix (unless continuing a line) followed by line.
func (w *PrefixWriter) writeLine(line []byte) (int, error) {
	if !w.midLine {
		if _, err := w.Sink.Write(w.Prefix); err != nil {
			return 0, err
		}
	}

	return w.Sink.Write(line)
}
