package kfmt

import (
	"bytes"
	"io"
	"testing"
)

func TestRingBuffer(t *testing.T) {
	var (
		buf    bytes.Buffer
		expStr = "[vmm] identity mapping 0x80000000 - 0x81000000 (code)"
		rb     ringBuffer
	)

	t.Run("read/write", func(t *testing.T) {
		rb.wIndex = 0
		rb.rIndex = 0
		n, err := rb.Write([]byte(expStr))
		if err != nil {
			t.Fatal(err)
		}

		if n != len(expStr) {
			t.Fatalf("expected to write %d bytes; wrote %d", len(expStr), n)
		}

		if got := readByteByByte(&buf, &rb); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}
	})

	t.Run("write moves read pointer", func(t *testing.T) {
		rb.wIndex = ringBufferSize - 1
		rb.rIndex = 0
		_, err := rb.Write([]byte{'!'})
		if err != nil {
			t.Fatal(err)
		}

		if exp := 1; rb.rIndex != exp {
			t.Fatalf("expected write to push rIndex to %d; got %d", exp, rb.rIndex)
		}
	})

	t.Run("wIndex < rIndex", func(t *testing.T) {
		rb.wIndex = ringBufferSize - 2
		rb.rIndex = ringBufferSize - 2
		n, err := rb.Write([]byte(expStr))
		if err != nil {
			t.Fatal(err)
		}

		if n != len(expStr) {
			t.Fatalf("expected to write %d bytes; wrote %d", len(expStr), n)
		}

		if got := readByteByByte(&buf, &rb); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}
	})

	t.Run("bulk read across the wrap point", func(t *testing.T) {
		rb.wIndex = ringBufferSize - 4
		rb.rIndex = ringBufferSize - 4
		if _, err := rb.Write([]byte(expStr)); err != nil {
			t.Fatal(err)
		}

		buf.Reset()
		if _, err := io.Copy(&buf, &rb); err != nil {
			t.Fatal(err)
		}

		if got := buf.String(); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}
	})

	t.Run("overflow keeps the most recent bytes", func(t *testing.T) {
		rb.wIndex = 0
		rb.rIndex = 0

		fill := bytes.Repeat([]byte{'x'}, ringBufferSize)
		if _, err := rb.Write(fill); err != nil {
			t.Fatal(err)
		}
		if _, err := rb.Write([]byte("tail")); err != nil {
			t.Fatal(err)
		}

		buf.Reset()
		if _, err := io.Copy(&buf, &rb); err != nil {
			t.Fatal(err)
		}

		got := buf.String()
		if exp := ringBufferSize - 1; len(got) != exp {
			t.Fatalf("expected to read %d bytes; got %d", exp, len(got))
		}
		if got[len(got)-4:] != "tail" {
			t.Fatalf("expected buffer to end with the last write; got %q", got[len(got)-4:])
		}
	})

	t.Run("read from empty buffer", func(t *testing.T) {
		rb.wIndex = 0
		rb.rIndex = 0
		if _, err := rb.Read(make([]byte, 1)); err != io.EOF {
			t.Fatalf("expected io.EOF; got %v", err)
		}
	})
}

func readByteByByte(buf *bytes.Buffer, r io.Reader) string {
	buf.Reset()
	var b = make([]byte, 1)
	for {
		_, err := r.Read(b)
		if err == io.EOF {
			break
		}
		buf.Write(b)
	}
	return buf.String()
}
