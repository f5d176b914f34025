// Package mp3meta reads and rewrites the tags of MPEG audio files.
//
// An MP3 file can carry several tag formats at once: an ID3v2 tag before
// the audio, and after it any of an APE block, a Lyrics3 block and the
// 128-byte ID3v1 trailer. mp3meta reads all of them, decides which one is
// authoritative, and writes them back in place without touching the audio
// frames.
//
// # Quick Start
//
//	file, err := mp3meta.Open("song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(file.Value(mp3meta.FieldArtist), "-", file.Value(mp3meta.FieldTitle))
//	fmt.Println(file.Audio)
//
// # Tag Layout
//
//	[ID3v2 tag][audio frames ...][APE][Lyrics3][ID3v1]
//
// The ID3v2 header declares its own size, but that size is not trusted:
// Open searches for a run of consistent MPEG frame headers to find where
// the audio really starts. When the two disagree the located start wins
// and File.Discrepancy records both offsets.
//
// # Precedence
//
// File.Tag returns the ID3v2 tag when there is one, else the ID3v1
// trailer. File.Fields reads an ID3v2 tag through its ID3v2.4 projection,
// so callers see the same keys whatever version is on disk. The APE and
// Lyrics3 blocks are carried alongside and never take precedence.
//
// # Writing
//
//	tag := file.CurrentTag()
//	if tag == nil {
//		tag = mp3meta.NewID3v2Tag(mp3meta.ID3v24)
//	}
//	tag.Set(mp3meta.FieldTitle, "New Title")
//	if err := file.SetCurrentTag(tag); err != nil {
//		return err
//	}
//	if err := file.Save(); err != nil {
//		return err
//	}
//
// Setting a tag to nil removes that region from the file on Save.
// SaveFlags limits a save to some of the regions.
//
// # Error Handling
//
// Damaged tags are not errors. Open skips or partially reads them and
// records a Warning:
//
//	for _, w := range file.Warnings {
//		log.Printf("warning: %s", w)
//	}
//
// Open fails with *NoAudioFoundError when the file has no MPEG frames.
// Save fails with *ReadOnlyTargetError when the file cannot be written and
// with *CannotWriteError when a step fails part way.
//
// # Concurrency
//
// A File must not be shared between goroutines. OpenMany opens many files
// in parallel.
package mp3meta
