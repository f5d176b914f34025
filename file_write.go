package mp3meta

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/simonhull/mp3meta/internal/ape"
	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/id3v2"
	"github.com/simonhull/mp3meta/internal/lyrics3"
	"github.com/simonhull/mp3meta/internal/trailer"
)

// Save writes the File's tags back to its path, in place.
//
// Regions are rewritten in a fixed order: the leading tag, the APE block,
// the ID3v1 trailer, then the Lyrics3 block. A region whose tag is nil is
// removed from disk. Only the leading tag step moves audio bytes; the
// trailer steps touch nothing before the end of the payload.
//
// A failing step aborts the save with *CannotWriteError naming the step.
// Steps already completed are not rolled back.
//
//	err := file.Save(
//	    mp3meta.WithSaveFlags(mp3meta.SaveFlags{Current: true, Legacy: true}),
//	    mp3meta.WithValidation(),
//	)
func (f *File) Save(opts ...SaveOption) (err error) {
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	if f.readOnly {
		return &ReadOnlyTargetError{Path: f.Path}
	}

	var origInfo os.FileInfo
	if options.preserveModTime {
		if info, err := os.Stat(f.Path); err == nil {
			origInfo = info
		}
	}

	if options.backupSuffix != "" {
		if err := copyFile(f.Path, f.Path+options.backupSuffix); err != nil {
			return f.cannotWrite("backup", err)
		}
	}

	fh, err := os.OpenFile(f.Path, os.O_RDWR, 0)
	if err != nil {
		return &ReadOnlyTargetError{Path: f.Path, Err: err}
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = f.cannotWrite("close", cerr)
		}
	}()

	stat, err := fh.Stat()
	if err != nil {
		return f.cannotWrite("stat", err)
	}

	w := &rewriter{file: f, fh: fh, size: stat.Size()}
	steps := []struct {
		name    string
		enabled bool
		run     func() error
	}{
		{"current", options.flags.Current, w.writeCurrent},
		{"ape", options.flags.AuxB, w.writeAPE},
		{"legacy", options.flags.Legacy, w.writeLegacy},
		{"lyrics3", options.flags.AuxA, w.writeLyrics3},
	}

	for _, step := range steps {
		log := f.logger().WithField("step", step.name)
		if !step.enabled {
			log.Debug("save step skipped")
			continue
		}
		if err := step.run(); err != nil {
			log.WithError(err).Error("save step failed")
			return f.cannotWrite(step.name, err)
		}
		log.WithField("size", w.size).Info("save step done")
	}
	f.Size = w.size

	if err := fh.Sync(); err != nil {
		return f.cannotWrite("sync", err)
	}

	if origInfo != nil {
		if err := os.Chtimes(f.Path, origInfo.ModTime(), origInfo.ModTime()); err != nil {
			f.logger().WithError(err).Warn("could not restore modification time")
		}
	}

	if options.validate {
		if err := f.validateWrittenFile(); err != nil {
			return f.cannotWrite("validate", err)
		}
	}
	return nil
}

func (f *File) cannotWrite(step string, err error) error {
	return &CannotWriteError{Path: f.Path, Step: step, Err: err}
}

func (f *File) logger() logrus.FieldLogger {
	if f.log == nil {
		f.log = logrus.StandardLogger().WithField("path", f.Path)
	}
	return f.log
}

// rewriter performs the save steps on an open handle. size tracks the file
// size as the steps grow and shrink it.
type rewriter struct {
	file *File
	fh   *os.File
	size int64
}

func (w *rewriter) splice(off, length int64, repl []byte) error {
	size, err := binutil.Splice(w.fh, w.size, off, length, repl)
	w.size = size
	return err
}

// scan reads the trailer layout as it is on disk now.
func (w *rewriter) scan() trailer.Layout {
	sr := binutil.NewSafeReader(w.fh, w.size, w.file.Path)
	return trailer.Scan(sr, w.file.AudioStart)
}

// writeCurrent replaces the leading region with the encoded leading tag, or
// removes it.
func (w *rewriter) writeCurrent() error {
	f := w.file
	var data []byte
	if f.current == nil {
		f.logger().WithFields(logrus.Fields{
			"version": id3v2.V23,
			"removed": f.AudioStart,
		}).Info("deleting leading tag")
	} else {
		var err error
		data, err = id3v2.Encode(f.current)
		if err != nil {
			return err
		}
	}

	if err := w.splice(0, f.AudioStart, data); err != nil {
		return err
	}
	f.AudioStart = int64(len(data))
	return nil
}

// writeAPE removes the APE block and inserts the new one in its canonical
// place: before the Lyrics3 block, else before ID3v1, else at end of file.
func (w *rewriter) writeAPE() error {
	layout := w.scan()
	if !layout.APE.Empty() {
		if err := w.splice(layout.APE.Offset, layout.APE.Length, nil); err != nil {
			return err
		}
		layout = w.scan()
	}

	if w.file.ape == nil {
		return nil
	}
	data, err := ape.Encode(w.file.ape)
	if err != nil {
		return err
	}

	at := w.size
	switch {
	case !layout.Lyrics3.Empty():
		at = layout.Lyrics3.Offset
	case !layout.ID3v1.Empty():
		at = layout.ID3v1.Offset
	}
	return w.splice(at, 0, data)
}

// writeLegacy overwrites or appends the ID3v1 trailer, or truncates it away.
func (w *rewriter) writeLegacy() error {
	layout := w.scan()
	off, length := w.size, int64(0)
	if !layout.ID3v1.Empty() {
		off, length = layout.ID3v1.Offset, layout.ID3v1.Length
	}

	if w.file.legacy == nil {
		if length == 0 {
			return nil
		}
		return w.splice(off, length, nil)
	}

	block := id3v1.Encode(w.file.legacy)
	return w.splice(off, length, block[:])
}

// writeLyrics3 removes the Lyrics3 block and inserts the new one before
// ID3v1, else at end of file.
func (w *rewriter) writeLyrics3() error {
	layout := w.scan()
	if !layout.Lyrics3.Empty() {
		if err := w.splice(layout.Lyrics3.Offset, layout.Lyrics3.Length, nil); err != nil {
			return err
		}
		layout = w.scan()
	}

	if w.file.lyrics == nil {
		return nil
	}
	data, err := lyrics3.Encode(w.file.lyrics)
	if err != nil {
		return err
	}

	at := w.size
	if !layout.ID3v1.Empty() {
		at = layout.ID3v1.Offset
	}
	return w.splice(at, 0, data)
}

// validateWrittenFile re-opens the file and compares key metadata fields.
func (f *File) validateWrittenFile() error {
	written, err := Open(f.Path, WithLogger(f.logger()))
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}

	for _, key := range []FieldKey{FieldTitle, FieldArtist, FieldAlbum} {
		if got, want := written.Value(key), f.Value(key); got != want {
			return fmt.Errorf("%s mismatch: got %q, want %q", key, got, want)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
