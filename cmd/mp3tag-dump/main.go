package main

import (
	"flag"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/simonhull/mp3meta"
	binutil "github.com/simonhull/mp3meta/internal/binary"
	"github.com/simonhull/mp3meta/internal/trailer"
)

// Prints where each tag region of an MP3 sits and what it holds. Useful to
// confirm what a file looks like on disk before and after a save.
func main() {
	dumpStructs := flag.Bool("spew", false, "dump the decoded tag structures")
	raw := flag.Bool("raw", false, "save the bytes before the audio to <file>.id3")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mp3tag-dump [-spew] [-raw] <file.mp3>...")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := mp3meta.DefaultConfig()
	if path, err := mp3meta.DefaultConfigPath(); err == nil {
		if loaded, err := mp3meta.LoadConfig(path); err == nil {
			cfg = loaded
		} else {
			logrus.WithError(err).Warn("ignoring config file")
		}
	}
	cfg.ApplyLogLevel(logrus.StandardLogger())

	failed := false
	for _, path := range flag.Args() {
		if err := dump(path, cfg, *dumpStructs, *raw); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func dump(path string, cfg *mp3meta.Config, dumpStructs, raw bool) error {
	file, err := mp3meta.Open(path, cfg.OpenOptions()...)
	if err != nil {
		return err
	}

	fmt.Printf("%s (size: %d)\n", file.Path, file.Size)
	fmt.Printf("  audio: offset %d, %s\n", file.AudioStart, file.Audio)
	if d := file.Discrepancy; d != nil {
		fmt.Printf("  discrepancy: declared %d, located %d, rescanned %d\n", d.Declared, d.Located, d.Rescanned)
	}

	if tag := file.CurrentTag(); tag != nil {
		fmt.Printf("  %s (size: %d, offset: 0)\n", tag.Kind(), file.AudioStart)
		printRaw(tag.RawFields())
		for _, p := range file.Pictures() {
			fmt.Printf("    picture type %d, %s, %d bytes\n", p.Type, p.MIMEType, len(p.Data))
		}
	}

	layout, err := scan(path, file.AudioStart)
	if err != nil {
		return err
	}
	spans := []struct {
		name string
		span trailer.Span
		tag  mp3meta.Tag
	}{
		{"APE", layout.APE, nil},
		{"Lyrics3", layout.Lyrics3, nil},
		{"ID3v1", layout.ID3v1, nil},
	}
	if t := file.APETag(); t != nil {
		spans[0].tag = t
	}
	if t := file.Lyrics3Tag(); t != nil {
		spans[1].tag = t
	}
	if t := file.LegacyTag(); t != nil {
		spans[2].tag = t
	}
	for _, s := range spans {
		if s.span.Empty() {
			continue
		}
		fmt.Printf("  %s (size: %d, offset: %d)\n", s.name, s.span.Length, s.span.Offset)
		if s.tag != nil {
			printRaw(s.tag.RawFields())
		}
	}

	if t := file.Tag(); t != nil {
		fmt.Printf("  authoritative: %s\n", t.Kind())
	}
	for _, w := range file.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	if raw {
		if err := saveLeadingRegion(file); err != nil {
			return err
		}
	}

	if dumpStructs {
		cs := spew.ConfigState{Indent: "  ", DisableMethods: true, MaxDepth: 4}
		cs.Dump(file.CurrentTag(), file.LegacyTag(), file.APETag(), file.Lyrics3Tag())
	}
	return nil
}

func saveLeadingRegion(file *mp3meta.File) error {
	if file.AudioStart == 0 {
		fmt.Println("  raw: nothing before the audio")
		return nil
	}
	out, err := os.Create(file.Path + ".id3")
	if err != nil {
		return err
	}
	n, err := file.WriteLeadingRegion(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Printf("  raw: %d bytes saved to %s\n", n, out.Name())
	return nil
}

func printRaw(fields iter.Seq2[string, []string]) {
	for key, values := range fields {
		fmt.Printf("    %s: %s\n", key, strings.Join(values, " / "))
	}
}

// scan re-reads the trailer layout, which Open does not expose.
func scan(path string, floor int64) (trailer.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return trailer.Layout{}, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return trailer.Layout{}, err
	}
	sr := binutil.NewSafeReader(f, stat.Size(), path)
	return trailer.Scan(sr, floor), nil
}
