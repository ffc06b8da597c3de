package tablekv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// exists returns true if the given path exists on the filesystem.
func exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}

// getDataFiles returns the list of datafiles belonging to a table in a given directory.
func getDataFiles(dir string, table string) ([]string, error) {
	files, err := filepath.Glob(fmt.Sprintf("%s/%s_*.db", dir, table))
	if err != nil {
		return nil, err
	}
	return files, nil
}

// getIDs returns the sorted list of IDs extracted from the list of filenames.
func getIDs(files []string, table string) ([]int, error) {
	ids := make([]int, 0)

	for _, f := range files {
		id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSuffix(filepath.Base(f), ".db"), table+"_"), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, int(id))
	}

	// Sort in increasing order.
	sort.Ints(ids)

	return ids, nil
}

// validateKV validates key/value before inserting.
func validateKV(k string, val []byte) error {
	if len(k) == 0 {
		return ErrEmptyKey
	}

	if len(k) > MaxKeySize {
		return ErrLargeKey
	}

	if len(val) > MaxValueSize {
		return ErrLargeValue
	}

	return nil
}

// Destroy unlinks every file belonging to the named table: all datafiles,
// the hints file and the lock file. The table must not be open.
func Destroy(dir string, table string) error {
	files, err := getDataFiles(dir, table)
	if err != nil {
		return err
	}
	files = append(files,
		filepath.Join(dir, table+HINTS_EXT),
		filepath.Join(dir, table+LOCKFILE_EXT),
	)

	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing %q: %w", f, err)
		}
	}

	return nil
}

// createFlockFile creates a file lock for the table.
func createFlockFile(flockFile string) (*os.File, error) {
	flockF, err := os.Create(flockFile)
	if err != nil {
		return nil, fmt.Errorf("cannot create lock file %q: %w", flockFile, err)
	}
	if err := unix.Flock(int(flockF.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return nil, fmt.Errorf("cannot acquire lock on file %q: %w", flockFile, err)
	}
	return flockF, nil
}

// destroyFlockFile removes a file lock for the table.
func destroyFlockFile(flockF *os.File) error {
	// Unlock the file.
	if err := unix.Flock(int(flockF.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("cannot unlock lock on file %q: %w", flockF.Name(), err)
	}
	// Close any open fd.
	if err := flockF.Close(); err != nil {
		return fmt.Errorf("cannot close fd on file %q: %w", flockF.Name(), err)
	}
	// Remove the lock file from the filesystem.
	if err := os.Remove(flockF.Name()); err != nil {
		return fmt.Errorf("cannot remove file %q: %w", flockF.Name(), err)
	}
	return nil
}
