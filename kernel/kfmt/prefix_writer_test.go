package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	var (
		buf bytes.Buffer
		w   = PrefixWriter{Sink: &buf, Prefix: []byte("[ns16550] ")}
	)

	specs := []struct {
		writes []string
		exp    string
	}{
		{
			[]string{"line1\n"},
			"[ns16550] line1\n",
		},
		{
			[]string{"line1\nline2\n"},
			"[ns16550] line1\n[ns16550] line2\n",
		},
		{
			[]string{"partial ", "line\n", "next"},
			"[ns16550] partial line\n[ns16550] next",
		},
		{
			[]string{"\n\n"},
			"[ns16550] \n[ns16550] \n",
		},
		{
			[]string{""},
			"",
		},
	}

	for specIndex, spec := range specs {
		buf.Reset()
		w.midLine = false

		var expWritten, written int
		for _, str := range spec.writes {
			n, err := w.Write([]byte(str))
			if err != nil {
				t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
			}
			expWritten += len(str)
			written += n
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, spec.exp, got)
		}

		if written != expWritten {
			t.Errorf("[spec %d] expected to report %d written bytes; got %d", specIndex, expWritten, written)
		}
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write(_ []byte) (int, error) { return 0, w.err }

func TestPrefixWriterErrors(t *testing.T) {
	expErr := errors.New("write failed")
	w := PrefixWriter{Sink: failingWriter{expErr}, Prefix: []byte("> ")}

	if _, err := w.Write([]byte("line\n")); err != expErr {
		t.Fatalf("expected error %v; got %v", expErr, err)
	}

	if _, err := w.Write([]byte("partial")); err != expErr {
		t.Fatalf("expected error %v; got %v", expErr, err)
	}
}
