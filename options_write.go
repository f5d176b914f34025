package mp3meta

// SaveOption configures behavior when saving files.
//
//	err := file.Save(
//	    mp3meta.WithSaveFlags(cfg.Write),
//	    mp3meta.WithBackup(".bak"),
//	)
type SaveOption func(*saveOptions)

// SaveFlags selects the tag regions Save rewrites. A region whose flag is
// false is left on disk exactly as it is.
type SaveFlags struct {
	Current bool `json:"id3v2"`
	Legacy  bool `json:"id3v1"`
	AuxA    bool `json:"lyrics3"`
	AuxB    bool `json:"ape"`
}

// AllRegions rewrites every tag region.
var AllRegions = SaveFlags{Current: true, Legacy: true, AuxA: true, AuxB: true}

// saveOptions holds configuration for saving files.
type saveOptions struct {
	flags           SaveFlags
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read after write to verify
	preserveModTime bool   // Keep original modification time
}

// defaultSaveOptions returns the default configuration for saving.
func defaultSaveOptions() *saveOptions {
	return &saveOptions{flags: AllRegions}
}

// WithSaveFlags selects the regions to rewrite. The default is AllRegions.
//
//	// Update the leading tag, leave every trailer untouched.
//	err := file.Save(mp3meta.WithSaveFlags(mp3meta.SaveFlags{Current: true}))
func WithSaveFlags(flags SaveFlags) SaveOption {
	return func(o *saveOptions) {
		o.flags = flags
	}
}

// WithBackup copies the file before it is modified.
//
// The copy gets the suffix appended to the original name, so
// WithBackup(".bak") keeps "song.mp3.bak" next to "song.mp3". An existing
// backup is overwritten.
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-opens the file after writing and checks that the
// authoritative tag's title, artist and album read back unchanged.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime restores the file's modification time after saving.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
