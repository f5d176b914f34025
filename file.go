package mp3meta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/mp3meta/internal/ape"
	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/id3v2"
	"github.com/simonhull/mp3meta/internal/lyrics3"
	"github.com/simonhull/mp3meta/internal/mpeg"
	"github.com/simonhull/mp3meta/internal/trailer"
)

// File is an opened MP3 file with its parsed tags.
//
// Open reads everything it needs and releases the OS handle before
// returning, so a File holds no resources and needs no Close. A File is
// not safe for use by several goroutines at once.
//
//	file, err := mp3meta.Open("song.mp3")
//	if err != nil {
//		return err
//	}
//	if tag := file.Tag(); tag != nil {
//		for key, values := range file.Fields() {
//			fmt.Println(key, values)
//		}
//	}
type File struct {
	// Path to the audio file
	Path string

	// File size in bytes
	Size int64

	// Offset of the first MPEG frame. Everything before it is the leading
	// tag region.
	AudioStart int64

	// Non-nil when the leading tag's declared size did not lead to the
	// first audio frame.
	Discrepancy *OffsetDiscrepancy

	// Properties of the first audio frame
	Audio AudioInfo

	// Warnings encountered during parsing (non-fatal issues)
	Warnings []Warning

	current    *id3v2.Tag
	legacy     *id3v1.Tag
	ape        *ape.Tag
	lyrics     *lyrics3.Tag

	readOnly bool
	log      logrus.FieldLogger
}

// OffsetDiscrepancy records how the audio start was settled when the
// leading tag's declared size could not be trusted.
type OffsetDiscrepancy struct {
	// Declared is the end of the leading tag according to its header, or 0
	// when there is no tag.
	Declared int64
	// Located is the first frame run found scanning from Declared, or -1
	// when none was found.
	Located int64
	// Rescanned is the first frame run found scanning from offset 0. It is
	// the AudioStart the file was opened with.
	Rescanned int64
}

// Open opens an MP3 file and reads its tags.
//
// A damaged tag never fails the open: the tag is skipped or partially read
// and the problem is recorded in File.Warnings. Open fails with
// *NoAudioFoundError when the file holds no MPEG frames.
//
// Options select which tag formats are read and how the file is treated:
//
//	file, err := mp3meta.Open("song.mp3",
//	    mp3meta.WithLoad(mp3meta.LoadID3v2|mp3meta.LoadID3v1),
//	    mp3meta.WithReadOnly(),
//	)
func Open(path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return openReader(f, stat.Size(), path, options)
}

// openReader parses an MP3 from an io.ReaderAt.
func openReader(r io.ReaderAt, size int64, path string, options *openOptions) (*File, error) {
	sr := binutil.NewSafeReader(r, size, path)
	file := &File{
		Path:     path,
		Size:     size,
		readOnly: options.readOnly,
		log:      options.logger.WithField("path", path),
	}

	if err := file.locateAudio(sr, options.strictOffsets); err != nil {
		return nil, err
	}
	if options.load&LoadID3v2 != 0 {
		if err := file.readLeading(sr); err != nil {
			return nil, err
		}
	}
	if err := file.readTrailer(sr, options.load); err != nil {
		return nil, err
	}

	file.log.WithFields(logrus.Fields{
		"audio_start": file.AudioStart,
		"tag":         kindOf(file.Tag()),
	}).Debug("opened")
	return file, nil
}

// locateAudio settles AudioStart. The leading tag's declared size is tried
// first; when it does not lead to a frame run the whole file is rescanned
// from offset 0.
func (f *File) locateAudio(sr *binutil.SafeReader, strict bool) error {
	declared := id3v2.DeclaredSize(sr)
	frame, err := mpeg.Locate(sr, declared)
	if err == nil && frame.Offset == declared {
		f.AudioStart = declared
		f.Audio = audioInfo(frame.Header)
		return nil
	}

	located := int64(-1)
	if err == nil {
		located = frame.Offset
	}
	rescan, err := mpeg.Locate(sr, 0)
	if err != nil {
		return err
	}

	if strict {
		return &OffsetMismatchError{Path: f.Path, Declared: declared, Rescanned: rescan.Offset}
	}

	f.Discrepancy = &OffsetDiscrepancy{Declared: declared, Located: located, Rescanned: rescan.Offset}
	f.Warnings = append(f.Warnings, Warning{
		Stage:   "audio",
		Message: fmt.Sprintf("leading tag ends at %d but the first frame run starts at %d", declared, rescan.Offset),
		Offset:  rescan.Offset,
	})
	f.log.WithFields(logrus.Fields{
		"declared":  declared,
		"located":   located,
		"rescanned": rescan.Offset,
	}).Warn("audio start disagrees with leading tag")

	f.AudioStart = rescan.Offset
	f.Audio = audioInfo(rescan.Header)
	return nil
}

// readLeading decodes the leading region, newest tag version first.
func (f *File) readLeading(sr *binutil.SafeReader) error {
	if f.AudioStart < id3v2.HeaderSize {
		return nil
	}
	buf, err := sr.Bytes(0, int(f.AudioStart), "leading tag region")
	if err != nil {
		return err
	}

	d := &id3v2.Decoder{Path: f.Path}
	defer func() { f.Warnings = append(f.Warnings, d.Warnings...) }()

	for _, v := range id3v2.Versions {
		tag, err := d.Decode(buf, v)
		var notFound *TagNotFoundError
		if errors.As(err, &notFound) {
			f.log.WithField("version", v).Debugf("leading tag probe: %v", err)
			continue
		}
		if err != nil {
			return err
		}
		f.current = tag
		f.log.WithFields(logrus.Fields{"version": v, "frames": len(tag.Frames)}).Debug("read leading tag")
		return nil
	}
	return nil
}

// readTrailer decodes the blocks after the audio payload.
func (f *File) readTrailer(sr *binutil.SafeReader, load LoadFlags) error {
	layout := trailer.Scan(sr, f.AudioStart)

	if load&LoadID3v1 != 0 && !layout.ID3v1.Empty() {
		buf, err := sr.Bytes(layout.ID3v1.Offset, id3v1.Size, "ID3v1 tag")
		if err != nil {
			return err
		}
		for _, parse := range []func([]byte) (*id3v1.Tag, error){id3v1.ParseV11, id3v1.ParseV1} {
			tag, err := parse(buf)
			if err != nil {
				f.log.Debugf("legacy tag probe: %v", err)
				continue
			}
			f.legacy = tag
			break
		}
	}

	if load&LoadAPEv2 != 0 && !layout.APE.Empty() {
		buf, err := sr.Bytes(layout.APE.Offset, int(layout.APE.Length), "APE tag")
		if err != nil {
			return err
		}
		tag, err := ape.Decode(buf)
		if err != nil {
			f.skipTrailer("ape", layout.APE.Offset, err)
		} else {
			f.ape = tag
		}
	}

	if load&LoadLyrics3 != 0 && !layout.Lyrics3.Empty() {
		buf, err := sr.Bytes(layout.Lyrics3.Offset, int(layout.Lyrics3.Length), "Lyrics3 block")
		if err != nil {
			return err
		}
		tag, err := lyrics3.Decode(buf)
		if err != nil {
			f.skipTrailer("lyrics3", layout.Lyrics3.Offset, err)
		} else {
			f.lyrics = tag
		}
	}
	return nil
}

// skipTrailer records a trailer block whose framing was found but whose
// contents could not be decoded.
func (f *File) skipTrailer(stage string, offset int64, err error) {
	f.Warnings = append(f.Warnings, Warning{Stage: stage, Message: err.Error(), Offset: offset})
	f.log.WithFields(logrus.Fields{"stage": stage, "offset": offset}).Debugf("skipping trailer block: %v", err)
}

func kindOf(t Tag) Kind {
	if t == nil {
		return KindUnknown
	}
	return t.Kind()
}

// OpenMany opens multiple files concurrently.
//
// Files are parsed in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths. The first
// failure cancels the remaining opens and is returned.
//
//	files, err := mp3meta.OpenMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, f := range files {
//		fmt.Printf("%s: %s\n", f.Path, f.Audio)
//	}
func OpenMany(ctx context.Context, paths ...string) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteLeadingRegion copies the bytes before the audio, [0, AudioStart),
// from disk to w. This is the raw leading tag, including any junk the
// locator skipped, and is the way to salvage a tag Open could not decode.
// A file whose audio starts at offset 0 writes nothing.
func (f *File) WriteLeadingRegion(w io.Writer) (int64, error) {
	if f.AudioStart == 0 {
		return 0, nil
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return 0, err
	}
	defer fh.Close()

	n, err := io.Copy(w, io.NewSectionReader(fh, 0, f.AudioStart))
	if err == nil && n < f.AudioStart {
		err = fmt.Errorf("%s: file shrank to %d bytes before the audio start %d", f.Path, n, f.AudioStart)
	}
	return n, err
}
