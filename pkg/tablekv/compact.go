package tablekv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mr-karan/discdb/internal/datafile"
)

// examineFileSize checks for file size at a periodic interval.
// It examines the file size of the active datafile and marks it as stale
// if the file size exceeds the configured size.
func (t *Table) examineFileSize(evalInterval time.Duration) {
	evalTicker := time.NewTicker(evalInterval)
	defer evalTicker.Stop()

	for {
		select {
		case <-evalTicker.C:
			if err := t.rotateDF(); err != nil {
				t.lo.Error("error rotating db file", "error", err)
			}
		case <-t.done:
			return
		}
	}
}

// rotateDF checks if the active file size has crossed the threshold
// of max allowed file size. If it has, it replaces the open file descriptors
// pointing to that file with a new file and adds the current file to list of
// stale files.
func (t *Table) rotateDF() error {
	t.Lock()
	defer t.Unlock()

	size, err := t.df.Size()
	if err != nil {
		return err
	}

	// If the file is below the threshold of max size, do no action.
	t.lo.Debug("checking if db file has exceeded max_size", "current_size", size, "max_size", t.opts.maxActiveFileSize)
	if size < t.opts.maxActiveFileSize {
		return nil
	}

	oldID := t.df.ID()

	// Add this datafile to list of stale files.
	t.stale[oldID] = t.df

	// Create a new datafile.
	df, err := datafile.New(t.opts.dir, t.name, oldID+1)
	if err != nil {
		return err
	}

	// Replace with a new instance of datafile.
	t.df = df

	return nil
}

// runCompaction merges datafiles at every configured interval.
// It also produces a fresh hints file which is used for faster startup time.
func (t *Table) runCompaction(evalInterval time.Duration) {
	evalTicker := time.NewTicker(evalInterval)
	defer evalTicker.Stop()

	for {
		select {
		case <-evalTicker.C:
			if err := t.Merge(); err != nil {
				t.lo.Error("error merging datafiles", "error", err)
			}
			if err := t.GenerateHints(); err != nil {
				t.lo.Error("error generating hints file", "error", err)
			}
		case <-t.done:
			return
		}
	}
}

// GenerateHints encodes the contents of the in-memory hashtable
// as `gob` and writes the data to a hints file.
func (t *Table) GenerateHints() error {
	t.Lock()
	defer t.Unlock()

	return t.generateHints()
}

func (t *Table) generateHints() error {
	path := filepath.Join(t.opts.dir, t.name+HINTS_EXT)
	return t.keydir.Encode(path)
}

// Merge is the process of merging all datafiles into a single file.
// In this process, all the deleted/overwritten keys are cleaned up and old
// files are removed from the disk.
func (t *Table) Merge() error {
	t.Lock()
	defer t.Unlock()

	// Nothing to merge if no datafile has been rotated out yet.
	if len(t.stale) == 0 {
		return nil
	}

	// Create a new datafile for storing the output of merged files.
	// Use a temp directory to store the file and move to the main directory
	// after the merge is over.
	tmpMergeDir, err := os.MkdirTemp("", "merged")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpMergeDir)

	mergeDF, err := datafile.New(tmpMergeDir, t.name, 0)
	if err != nil {
		return err
	}

	// Loop over all active keys in the hashmap and write the latest values
	// to the merged datafile. Since the keydir has updated values of all keys,
	// all the old keys which are deleted/overwritten will be cleaned up in
	// the merged datafile.
	mergedKeydir := make(KeyDir, len(t.keydir))
	for k := range t.keydir {
		record, err := t.get(k)
		if err != nil {
			return err
		}

		meta, err := t.writeTo(mergeDF, k, record.Value)
		if err != nil {
			return err
		}
		mergedKeydir[k] = meta
	}

	if err := mergeDF.Sync(); err != nil {
		return err
	}
	if err := mergeDF.Close(); err != nil {
		return err
	}

	// Now close all the existing datafile handlers.
	for _, df := range t.stale {
		if err := df.Close(); err != nil {
			t.lo.Error("error closing df", "id", df.ID(), "error", err)
		}
	}
	if err := t.df.Close(); err != nil {
		t.lo.Error("error closing active df", "id", t.df.ID(), "error", err)
	}

	// Delete the existing datafiles of this table.
	files, err := getDataFiles(t.opts.dir, t.name)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return err
		}
	}

	// Move the merged file to the main directory.
	if err := os.Rename(filepath.Join(tmpMergeDir, datafile.Name(t.name, 0)),
		filepath.Join(t.opts.dir, datafile.Name(t.name, 0))); err != nil {
		return fmt.Errorf("error moving merged datafile: %w", err)
	}

	// Reopen the merged file as the active datafile.
	df, err := datafile.New(t.opts.dir, t.name, 0)
	if err != nil {
		return err
	}

	t.df = df
	t.stale = map[int]*datafile.DataFile{}
	t.keydir = mergedKeydir

	return nil
}
