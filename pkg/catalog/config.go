package catalog

import (
	"time"
)

// Table names of the two backing tables. The names double as the base names
// of the files the engine creates on disk.
const (
	catalogTable = "cdc_data"
	trackTable   = "cdt_data"
)

// Options represents configuration options for the catalog store.
type Options struct {
	dir               string        // Path for storing the table files.
	legacyKeys        bool          // Use the fixed-width dbm key layout.
	debug             bool          // Enable debug logging in the engine.
	alwaysFSync       bool          // Flush filesystem buffer after every write.
	syncInterval      time.Duration // Interval to sync the active datafiles on disk.
	compactInterval   time.Duration // Interval at which the tables are compacted.
	maxActiveFileSize int64         // Max size of a table's active datafile.
}

// Config is a function on the Options for the catalog store.
type Config func(*Options) error

func DefaultOptions() *Options {
	return &Options{
		dir: ".",
	}
}

func WithDir(dir string) Config {
	return func(o *Options) error {
		o.dir = dir
		return nil
	}
}

// WithLegacyKeys makes the store build its engine keys in the fixed-width
// zero-padded layout of the original dbm database, so data written with
// that layout stays addressable.
func WithLegacyKeys() Config {
	return func(o *Options) error {
		o.legacyKeys = true
		return nil
	}
}

func WithDebug() Config {
	return func(o *Options) error {
		o.debug = true
		return nil
	}
}

func WithAlwaysSync() Config {
	return func(o *Options) error {
		o.alwaysFSync = true
		return nil
	}
}

func WithBackgroundSync(interval time.Duration) Config {
	return func(o *Options) error {
		o.alwaysFSync = false
		o.syncInterval = interval
		return nil
	}
}

func WithCompactInterval(interval time.Duration) Config {
	return func(o *Options) error {
		o.compactInterval = interval
		return nil
	}
}

func WithMaxActiveFileSize(size int64) Config {
	return func(o *Options) error {
		o.maxActiveFileSize = size
		return nil
	}
}
