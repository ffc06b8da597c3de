package tablekv

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mr-karan/discdb/internal/datafile"
	"github.com/zerodha/logf"
)

const (
	LOCKFILE_EXT = ".lock"
	HINTS_EXT    = ".hints"
)

// Table is an embedded key-value table backed by append-only datafiles and
// an in-memory keydir of all active keys.
type Table struct {
	sync.Mutex

	name    string
	lo      logf.Logger
	bufPool sync.Pool // Pool of byte buffers used for writing.
	opts    *Options

	keydir KeyDir                     // In-memory hashmap of all active keys.
	df     *datafile.DataFile         // Active datafile.
	stale  map[int]*datafile.DataFile // Map of older datafiles with their IDs.
	flockF *os.File                   // Lockfile to prevent multiple write access to the same table.

	done chan struct{} // Closed on shutdown to stop background loops.
}

// initLogger initializes logger instance.
func initLogger(debug bool) logf.Logger {
	opts := logf.Opts{EnableCaller: true}
	if debug {
		opts.Level = logf.DebugLevel
	}
	return logf.New(opts)
}

// Init initialises a table with the given name for storing data.
func Init(name string, cfg ...Config) (*Table, error) {
	// Set options.
	opts := DefaultOptions()
	for _, opt := range cfg {
		if err := opt(opts); err != nil {
			return nil, err
		}
	}

	var (
		lo     = initLogger(opts.debug)
		index  = 0
		flockF *os.File
		stale  = map[int]*datafile.DataFile{}
	)

	// Load existing datafiles.
	files, err := getDataFiles(opts.dir, name)
	if err != nil {
		return nil, fmt.Errorf("error loading data files: %w", err)
	}

	if len(files) > 0 {
		// Get the existing ids.
		ids, err := getIDs(files, name)
		if err != nil {
			return nil, fmt.Errorf("error parsing ids for existing files: %w", err)
		}

		// Increment the index to write to a new datafile.
		index = ids[len(ids)-1] + 1

		// Add all older datafiles to the list of stale files.
		for _, idx := range ids {
			df, err := datafile.New(opts.dir, name, idx)
			if err != nil {
				return nil, err
			}
			stale[idx] = df
		}
	}

	// Initialise the active datafile.
	df, err := datafile.New(opts.dir, name, index)
	if err != nil {
		return nil, err
	}

	// If not running in a read only mode then create a lockfile to ensure
	// only one process writes to the table.
	if !opts.readOnly {
		lockPath := filepath.Join(opts.dir, name+LOCKFILE_EXT)
		if exists(lockPath) {
			return nil, ErrLocked
		}
		flockF, err = createFlockFile(lockPath)
		if err != nil {
			return nil, fmt.Errorf("error creating lockfile: %w", err)
		}
	}

	// Initialise table.
	t := &Table{
		name:   name,
		opts:   opts,
		lo:     lo,
		df:     df,
		stale:  stale,
		flockF: flockF,
		keydir: make(KeyDir, 0),
		done:   make(chan struct{}),
		bufPool: sync.Pool{New: func() any {
			return bytes.NewBuffer([]byte{})
		}},
	}

	// Check if a hints file already exists and then use that to populate the
	// hashtable. If there's no hints file (e.g. the previous process didn't
	// close the table cleanly), replay the datafiles to rebuild it.
	hintsPath := filepath.Join(opts.dir, name+HINTS_EXT)
	if exists(hintsPath) {
		if err := t.keydir.Decode(hintsPath); err != nil {
			return nil, fmt.Errorf("error populating hashtable from hints file: %w", err)
		}
	} else if len(stale) > 0 {
		if err := t.replayDataFiles(); err != nil {
			return nil, fmt.Errorf("error indexing datafiles: %w", err)
		}
	}

	if !t.opts.readOnly {
		// Spawn a goroutine which runs in background and compacts all datafiles into a single datafile.
		go t.runCompaction(t.opts.compactInterval)

		// Spawn a goroutine which checks the file size of the active file at a periodic interval.
		go t.examineFileSize(t.opts.checkFileSizeInterval)

		// Spawn a goroutine which flushes the file to disk periodically.
		if !t.opts.alwaysFSync && t.opts.syncInterval != nil {
			go t.syncFile(*t.opts.syncInterval)
		}
	}

	return t, nil
}

// Name returns the name of the table.
func (t *Table) Name() string {
	return t.name
}

// Close closes all the open file descriptors, persists a hints file and
// removes any file locks. If not running in a read-only mode, it's
// essential to call close so that it removes any file lock on the table.
// Not calling close will prevent future startups until it's removed manually.
func (t *Table) Close() error {
	t.Lock()
	defer t.Unlock()

	// Stop background loops.
	close(t.done)

	// Generate a hints file.
	if err := t.generateHints(); err != nil {
		t.lo.Error("error generating hints file", "error", err)
	}

	// Close the active datafile.
	if err := t.df.Close(); err != nil {
		t.lo.Error("error closing active db file", "error", err, "id", t.df.ID())
		return err
	}

	// Close all stale datafiles as well.
	for _, df := range t.stale {
		if err := df.Close(); err != nil {
			t.lo.Error("error closing stale db file", "error", err, "id", df.ID())
		}
	}

	// Cleanup the lock file.
	if !t.opts.readOnly {
		if err := destroyFlockFile(t.flockF); err != nil {
			t.lo.Error("error destroying lock file", "error", err)
			return err
		}
	}

	return nil
}

// Put takes a key and value and encodes the data in bytes and writes to the db file.
// It also stores the key with some metadata in memory.
// This metadata helps for faster reads as the last position of the file is recorded so only
// a single disk seek is required to read the value.
func (t *Table) Put(k string, val []byte) error {
	t.Lock()
	defer t.Unlock()

	if t.opts.readOnly {
		return ErrReadOnly
	}

	if err := validateKV(k, val); err != nil {
		return err
	}

	t.lo.Debug("storing data", "table", t.name, "key", k)
	return t.put(k, val)
}

// Get takes a key and finds the metadata in the in-memory hashtable (keydir).
// Using the offset present in metadata it finds the record in the datafile with a single disk seek.
// It further decodes the record and returns the value as a byte array for the given key.
func (t *Table) Get(k string) ([]byte, error) {
	t.Lock()
	defer t.Unlock()

	t.lo.Debug("fetching data", "table", t.name, "key", k)
	record, err := t.get(k)
	if err != nil {
		return nil, err
	}

	// If invalid checksum, return error.
	if !record.isValidChecksum() {
		return nil, ErrBadChecksum
	}

	return record.Value, nil
}

// Delete appends a tombstone record for the given key and drops the key
// from the keydir. The actual cleanup of older values happens when the
// datafiles are merged. Deleting a key that was never stored is an error.
func (t *Table) Delete(k string) error {
	t.Lock()
	defer t.Unlock()

	if t.opts.readOnly {
		return ErrReadOnly
	}

	if _, ok := t.keydir[k]; !ok {
		return ErrNoKey
	}

	t.lo.Debug("deleting key", "table", t.name, "key", k)
	return t.delete(k)
}

// Keys returns a sorted snapshot of all active keys in the table.
func (t *Table) Keys() []string {
	t.Lock()
	defer t.Unlock()

	keys := make([]string, 0, len(t.keydir))
	for k := range t.keydir {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Len returns the total number of active keys.
func (t *Table) Len() int {
	t.Lock()
	defer t.Unlock()

	return len(t.keydir)
}

// Fold iterates over all keys and calls the given function for each key.
func (t *Table) Fold(fn func(k string) error) error {
	t.Lock()
	defer t.Unlock()

	for k := range t.keydir {
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

// Sync calls fsync(2) on the active data file.
func (t *Table) Sync() error {
	t.Lock()
	defer t.Unlock()

	return t.df.Sync()
}

// syncFile flushes the active datafile to disk at a periodic interval.
func (t *Table) syncFile(evalInterval time.Duration) {
	evalTicker := time.NewTicker(evalInterval)
	defer evalTicker.Stop()

	for {
		select {
		case <-evalTicker.C:
			if err := t.Sync(); err != nil {
				t.lo.Error("error syncing db file to disk", "error", err)
			}
		case <-t.done:
			return
		}
	}
}
