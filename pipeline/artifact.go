package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/foliopress/paginator/paginate"
)

// defaultSpillThreshold is how many encoded bytes the two-pass artifact
// holds in memory before spilling to a temp file.
const defaultSpillThreshold = 32 << 20

// artifact is the opaque pass-1 page store of two-pass mode. Pages are
// gob-encoded as they arrive; the store starts as an in-memory buffer and
// switches to a native temp file once it crosses the spill threshold, so
// huge documents do not pin their whole body in memory.
type artifact struct {
	threshold int
	count     int

	buf  bytes.Buffer
	enc  *gob.Encoder
	file *os.File
}

func newArtifact(threshold int) *artifact {
	if threshold <= 0 {
		threshold = defaultSpillThreshold
	}
	a := &artifact{threshold: threshold}
	a.enc = gob.NewEncoder(&a.buf)
	return a
}

// Append stores one page.
func (a *artifact) Append(p paginate.Page) error {
	if err := a.enc.Encode(&p); err != nil {
		return fmt.Errorf("pipeline: artifact encode: %w", err)
	}
	a.count++
	if a.file == nil && a.buf.Len() > a.threshold {
		return a.spill()
	}
	if a.file != nil && a.buf.Len() > 0 {
		if _, err := a.file.Write(a.buf.Bytes()); err != nil {
			return fmt.Errorf("pipeline: artifact spill write: %w", err)
		}
		a.buf.Reset()
	}
	return nil
}

// spill moves the buffered stream to a temp file; later appends flow
// through the buffer into the file.
func (a *artifact) spill() error {
	f, err := os.CreateTemp("", "paginator-pass1-*")
	if err != nil {
		// No temp storage available: keep buffering in memory.
		return nil
	}
	if _, err := f.Write(a.buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("pipeline: artifact spill: %w", err)
	}
	a.buf.Reset()
	a.file = f
	return nil
}

// Count returns the number of stored pages.
func (a *artifact) Count() int { return a.count }

// Replay decodes the stored pages in order, calling fn for each.
func (a *artifact) Replay(fn func(paginate.Page) error) error {
	var r io.Reader
	if a.file != nil {
		if _, err := a.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("pipeline: artifact seek: %w", err)
		}
		r = io.MultiReader(a.file, bytes.NewReader(a.buf.Bytes()))
	} else {
		r = bytes.NewReader(a.buf.Bytes())
	}
	dec := gob.NewDecoder(r)
	for i := 0; i < a.count; i++ {
		var p paginate.Page
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("pipeline: artifact decode page %d: %w", i, err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the temp file, if any.
func (a *artifact) Close() {
	if a.file != nil {
		name := a.file.Name()
		a.file.Close()
		os.Remove(name)
		a.file = nil
	}
}
