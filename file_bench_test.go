package mp3meta

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonhull/mp3meta/internal/id3v1"
	"github.com/simonhull/mp3meta/internal/id3v2"
)

// createBenchmarkMP3 writes a tagged file with a few hundred frames.
func createBenchmarkMP3(b *testing.B) string {
	b.Helper()

	tag := id3v2.NewTag(id3v2.V23)
	tag.Set(FieldTitle, "Benchmark")
	tag.Set(FieldArtist, "Bench Artist")
	tag.Set(FieldComment, "some comment text")
	lead, err := id3v2.Encode(tag)
	if err != nil {
		b.Fatal(err)
	}
	legacy := id3v1.Encode(&id3v1.Tag{Title: "Benchmark", Genre: id3v1.NoGenre})

	path := filepath.Join(b.TempDir(), "bench.mp3")
	data := bytes.Join([][]byte{lead, audioFrames(300), legacy[:]}, nil)
	if err := os.WriteFile(path, data, 0644); err != nil {
		b.Fatal(err)
	}
	return path
}

// BenchmarkOpen measures opening a single tagged file.
func BenchmarkOpen(b *testing.B) {
	path := createBenchmarkMP3(b)
	logger := quietLogger()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Open(path, WithLogger(logger)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkOpenMany measures concurrent opens.
func BenchmarkOpenMany(b *testing.B) {
	paths := make([]string, 10)
	for i := range paths {
		paths[i] = createBenchmarkMP3(b)
	}
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := OpenMany(ctx, paths...); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSave measures an idempotent in-place save.
func BenchmarkSave(b *testing.B) {
	path := createBenchmarkMP3(b)
	file, err := Open(path, WithLogger(quietLogger()))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		if err := file.Save(); err != nil {
			b.Fatal(err)
		}
	}
}
