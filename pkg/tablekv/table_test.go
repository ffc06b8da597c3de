package tablekv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitDefaults(t *testing.T) {
	var (
		tbl    = &Table{}
		assert = assert.New(t)
	)

	// Create a temp directory for running tests.
	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	t.Run("Init_Defaults", func(t *testing.T) {
		tbl, err = Init("cd_test", WithDir(tmpDir))
		assert.NoError(err)
		assert.NotEmpty(tbl)

		// Check config.
		assert.Equal(tbl.opts.dir, tmpDir)
		assert.Equal("cd_test", tbl.Name())

		// Check defaults.
		assert.Equal(false, tbl.opts.debug, "debug is wrongly set")
		assert.Equal(false, tbl.opts.readOnly, "readOnly is wrongly set")
		assert.Equal(false, tbl.opts.alwaysFSync, "alwaysFSync is wrongly set")
		assert.Equal(defaultMaxActiveFileSize, tbl.opts.maxActiveFileSize, "defaultMaxActiveFileSize is wrongly set")
		assert.Equal(defaultCompactInterval, tbl.opts.compactInterval, "defaultCompactInterval is wrongly set")
		assert.Equal(defaultFileSizeInterval, tbl.opts.checkFileSizeInterval, "defaultFileSizeInterval is wrongly set")
		assert.Nil(tbl.opts.syncInterval, "syncInterval is wrongly set")
	})

	t.Run("Close", func(t *testing.T) {
		err = tbl.Close()
		assert.NoError(err)
	})
}

func TestInitWithOpts(t *testing.T) {
	var (
		tbl    = &Table{}
		assert = assert.New(t)
	)

	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	t.Run("Init_Custom", func(t *testing.T) {
		tbl, err = Init("cd_test", WithDir(tmpDir), WithAlwaysSync(), WithDebug(), WithMaxActiveFileSize(int64(1<<4)), WithCheckFileSizeInterval(time.Second*15))
		assert.NoError(err)
		assert.NotEmpty(tbl)

		// Check config.
		assert.Equal(true, tbl.opts.alwaysFSync)
		assert.Equal(true, tbl.opts.debug)
		assert.Equal(int64(1<<4), tbl.opts.maxActiveFileSize)
		assert.Equal(time.Second*15, tbl.opts.checkFileSizeInterval)
	})

	t.Run("Close", func(t *testing.T) {
		err = tbl.Close()
		assert.NoError(err)
	})
}

func TestAPI(t *testing.T) {
	var (
		tbl    = &Table{}
		assert = assert.New(t)
	)

	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	t.Run("Init", func(t *testing.T) {
		tbl, err = Init("cd_test", WithDir(tmpDir))
		assert.NoError(err)
	})

	t.Run("Put", func(t *testing.T) {
		err = tbl.Put("hello", []byte("world"))
		assert.NoError(err)
	})

	t.Run("Get", func(t *testing.T) {
		val, err := tbl.Get("hello")
		assert.NoError(err)
		assert.Equal("world", string(val), "value is not equal")
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := tbl.Get("nope")
		assert.ErrorIs(err, ErrNoKey)
	})

	t.Run("Overwrite", func(t *testing.T) {
		err = tbl.Put("hello", []byte("again"))
		assert.NoError(err)

		val, err := tbl.Get("hello")
		assert.NoError(err)
		assert.Equal("again", string(val))
	})

	t.Run("Keys", func(t *testing.T) {
		err = tbl.Put("abc", []byte("xyz"))
		assert.NoError(err)

		keys := tbl.Keys()
		assert.Equal([]string{"abc", "hello"}, keys, "keys are not sorted")
	})

	t.Run("Len", func(t *testing.T) {
		assert.Equal(2, tbl.Len())
	})

	t.Run("Scan", func(t *testing.T) {
		var got []string
		cur := tbl.Scan()
		for {
			k, ok := cur.Next()
			if !ok {
				break
			}
			got = append(got, k)
		}
		assert.Equal([]string{"abc", "hello"}, got)
	})

	t.Run("Fold", func(t *testing.T) {
		count := 0
		err = tbl.Fold(func(k string) error {
			count++
			return nil
		})
		assert.NoError(err)
		assert.Equal(2, count)
	})

	t.Run("Delete", func(t *testing.T) {
		err = tbl.Delete("hello")
		assert.NoError(err)
		_, err = tbl.Get("hello")
		assert.ErrorIs(err, ErrNoKey)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		err = tbl.Delete("hello")
		assert.ErrorIs(err, ErrNoKey)
	})

	t.Run("Sync", func(t *testing.T) {
		err = tbl.Sync()
		assert.NoError(err)
	})

	t.Run("Close", func(t *testing.T) {
		err = tbl.Close()
		assert.NoError(err)
	})
}

func TestReopen(t *testing.T) {
	assert := assert.New(t)

	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	tbl, err := Init("cd_test", WithDir(tmpDir))
	assert.NoError(err)

	assert.NoError(tbl.Put("keep", []byte("me")))
	assert.NoError(tbl.Put("drop", []byte("me")))
	assert.NoError(tbl.Delete("drop"))
	assert.NoError(tbl.Close())

	t.Run("Reopen_With_Hints", func(t *testing.T) {
		tbl, err = Init("cd_test", WithDir(tmpDir))
		assert.NoError(err)

		val, err := tbl.Get("keep")
		assert.NoError(err)
		assert.Equal("me", string(val))

		_, err = tbl.Get("drop")
		assert.ErrorIs(err, ErrNoKey)

		assert.NoError(tbl.Close())
	})

	t.Run("Reopen_Without_Hints", func(t *testing.T) {
		// Simulate an unclean shutdown by removing the hints file. The
		// keydir should be rebuilt by replaying the datafiles.
		assert.NoError(os.Remove(filepath.Join(tmpDir, "cd_test"+HINTS_EXT)))

		tbl, err = Init("cd_test", WithDir(tmpDir))
		assert.NoError(err)

		val, err := tbl.Get("keep")
		assert.NoError(err)
		assert.Equal("me", string(val))

		_, err = tbl.Get("drop")
		assert.ErrorIs(err, ErrNoKey)

		assert.NoError(tbl.Close())
	})
}

func TestLock(t *testing.T) {
	assert := assert.New(t)

	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	tbl, err := Init("cd_test", WithDir(tmpDir))
	assert.NoError(err)

	_, err = Init("cd_test", WithDir(tmpDir))
	assert.ErrorIs(err, ErrLocked)

	assert.NoError(tbl.Close())
}

func TestMerge(t *testing.T) {
	assert := assert.New(t)

	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	tbl, err := Init("cd_test", WithDir(tmpDir))
	assert.NoError(err)

	assert.NoError(tbl.Put("one", []byte("1")))
	assert.NoError(tbl.Put("two", []byte("2")))
	assert.NoError(tbl.Delete("two"))
	assert.NoError(tbl.Close())

	// Reopening rotates the previous active file into the stale set, which
	// gives the merge something to fold together.
	tbl, err = Init("cd_test", WithDir(tmpDir))
	assert.NoError(err)

	assert.NoError(tbl.Put("three", []byte("3")))
	assert.NoError(tbl.Merge())

	val, err := tbl.Get("one")
	assert.NoError(err)
	assert.Equal("1", string(val))

	val, err = tbl.Get("three")
	assert.NoError(err)
	assert.Equal("3", string(val))

	_, err = tbl.Get("two")
	assert.ErrorIs(err, ErrNoKey)

	// A merge leaves a single datafile behind.
	files, err := getDataFiles(tmpDir, "cd_test")
	assert.NoError(err)
	assert.Len(files, 1)

	assert.NoError(tbl.Close())
}

func TestDestroy(t *testing.T) {
	assert := assert.New(t)

	tmpDir, err := os.MkdirTemp("", "tablekv")
	defer os.RemoveAll(tmpDir)

	assert.NoError(err)

	tbl, err := Init("cd_test", WithDir(tmpDir))
	assert.NoError(err)
	assert.NoError(tbl.Put("hello", []byte("world")))
	assert.NoError(tbl.Close())

	assert.NoError(Destroy(tmpDir, "cd_test"))

	files, err := getDataFiles(tmpDir, "cd_test")
	assert.NoError(err)
	assert.Empty(files)

	// A fresh table after destroy starts empty.
	tbl, err = Init("cd_test", WithDir(tmpDir))
	assert.NoError(err)
	assert.Equal(0, tbl.Len())
	assert.NoError(tbl.Close())
}
