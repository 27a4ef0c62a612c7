package fastq

import (
	"io"

	"github.com/grailbio/linkedread/align"
)

// Writer writes reads in FASTQ format.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r. Line 3 is a bare "+". Once a write fails, every
// later write returns the same error.
func (w *Writer) Write(r *align.Read) error {
	w.write([]byte{'@'})
	w.write([]byte(r.Name))
	w.write([]byte{'\n'})
	w.write(r.Seq)
	w.write([]byte("\n+\n"))
	w.write(r.Qual)
	w.write([]byte{'\n'})
	return w.err
}

// WritePair writes both mates of a pair, mate 0 to w0 and mate 1 to w1.
func WritePair(w0, w1 *Writer, pair *align.ReadPair) error {
	if err := w0.Write(pair.Reads[0]); err != nil {
		return err
	}
	return w1.Write(pair.Reads[1])
}

func (w *Writer) write(data []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(data)
}
