package binary

import (
	"fmt"
	"io"
)

// spliceChunk bounds the memory used while moving file contents.
const spliceChunk = 1 << 20

// File is the subset of *os.File that Splice needs.
type File interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
}

// Splice replaces length bytes at off with repl, in place.
//
// Everything after the replaced range is moved so that it directly follows
// repl; those bytes are copied unchanged. size is the current file size and
// the new size is returned. When the file shrinks it is truncated.
func Splice(f File, size, off, length int64, repl []byte) (int64, error) {
	if off < 0 || length < 0 || off+length > size {
		return size, fmt.Errorf("splice range [%d, %d) outside file of %d bytes", off, off+length, size)
	}

	tail := off + length
	delta := int64(len(repl)) - length
	if delta != 0 && tail < size {
		if err := move(f, tail, tail+delta, size-tail); err != nil {
			return size, err
		}
	}

	if len(repl) > 0 {
		if _, err := f.WriteAt(repl, off); err != nil {
			return size, fmt.Errorf("write %d bytes at %d: %w", len(repl), off, err)
		}
	}

	newSize := size + delta
	if delta < 0 {
		if err := f.Truncate(newSize); err != nil {
			return size, fmt.Errorf("truncate to %d: %w", newSize, err)
		}
	}
	return newSize, nil
}

// move copies n bytes from src to dst within f. Overlapping ranges are
// handled by copying back to front when moving towards the end of the file.
func move(f File, src, dst, n int64) error {
	buf := make([]byte, min(n, spliceChunk))

	copyChunk := func(at, length int64) error {
		chunk := buf[:length]
		read, err := f.ReadAt(chunk, src+at)
		if int64(read) < length {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("read %d bytes at %d: %w", length, src+at, err)
		}
		if _, err := f.WriteAt(chunk, dst+at); err != nil {
			return fmt.Errorf("write %d bytes at %d: %w", length, dst+at, err)
		}
		return nil
	}

	if dst > src {
		for end := n; end > 0; {
			length := min(end, int64(len(buf)))
			if err := copyChunk(end-length, length); err != nil {
				return err
			}
			end -= length
		}
		return nil
	}

	for start := int64(0); start < n; {
		length := min(n-start, int64(len(buf)))
		if err := copyChunk(start, length); err != nil {
			return err
		}
		start += length
	}
	return nil
}
