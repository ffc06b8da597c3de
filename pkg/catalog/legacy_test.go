package catalog

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newLegacyStore(t *testing.T) (*LegacyStore, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "catalog")
	if err != nil {
		t.Fatal(err)
	}

	ls, err := NewLegacyStore(WithDir(tmpDir), WithLegacyKeys())
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatal(err)
	}
	if !ls.DatabaseInitialize(true) {
		os.RemoveAll(tmpDir)
		t.Fatal("database initialize failed")
	}

	return ls, func() {
		ls.DatabaseClose()
		os.RemoveAll(tmpDir)
	}
}

func TestLegacyContract(t *testing.T) {
	assert := assert.New(t)

	ls, cleanup := newLegacyStore(t)
	defer cleanup()

	rec := CatalogRecord{Catalog: "CD1", Title: "One", Type: "rock", Artist: "A"}

	t.Run("AddGet", func(t *testing.T) {
		assert.True(ls.AddCdcEntry(rec))
		assert.Equal(rec, ls.GetCdcEntry("CD1"))

		assert.True(ls.AddCdtEntry(TrackRecord{Catalog: "CD1", TrackNo: 1, Title: "Intro"}))
		assert.Equal("Intro", ls.GetCdtEntry("CD1", 1).Title)
	})

	t.Run("EmptySentinel", func(t *testing.T) {
		// Not found, over-length and invalid arguments all collapse to
		// the empty record.
		assert.True(ls.GetCdcEntry("NOPE").IsEmpty())
		assert.True(ls.GetCdcEntry(strings.Repeat("x", CatalogIDBound)).IsEmpty())
		assert.True(ls.GetCdtEntry("CD1", -1).IsEmpty())
	})

	t.Run("Delete", func(t *testing.T) {
		assert.True(ls.DelCdtEntry("CD1", 1))
		// Deleting a key that was never stored reports failure.
		assert.False(ls.DelCdtEntry("CD1", 1))
		assert.False(ls.DelCdcEntry("NEVER"))
	})

	t.Run("OverlengthRejected", func(t *testing.T) {
		long := strings.Repeat("x", CatalogIDBound)
		assert.False(ls.AddCdcEntry(CatalogRecord{Catalog: long}))
		assert.False(ls.DelCdcEntry(long))
	})
}

func TestLegacySearch(t *testing.T) {
	assert := assert.New(t)

	ls, cleanup := newLegacyStore(t)
	defer cleanup()

	for _, id := range []string{"AAA1", "AAA2", "BBB1"} {
		assert.True(ls.AddCdcEntry(CatalogRecord{Catalog: id}))
	}

	t.Run("ForcedFreshStart", func(t *testing.T) {
		// The very first search since the adapter was created starts from
		// the beginning even though the caller passed false; the override
		// is consumed and the flag comes back false.
		first := false
		rec := ls.SearchCdcEntry("AAA", &first)
		assert.False(first)
		assert.False(rec.IsEmpty())
	})

	t.Run("ResumeAndExhaust", func(t *testing.T) {
		first := false

		rec := ls.SearchCdcEntry("AAA", &first)
		assert.False(rec.IsEmpty())

		// Both AAA records seen by now; the next call exhausts the scan.
		assert.True(ls.SearchCdcEntry("AAA", &first).IsEmpty())
	})

	t.Run("Restart", func(t *testing.T) {
		first := true
		var matches []string
		for {
			rec := ls.SearchCdcEntry("AAA", &first)
			if rec.IsEmpty() {
				break
			}
			matches = append(matches, rec.Catalog)
		}
		assert.ElementsMatch([]string{"AAA1", "AAA2"}, matches)
	})

	t.Run("BadArguments", func(t *testing.T) {
		first := true
		assert.True(ls.SearchCdcEntry(strings.Repeat("x", CatalogIDBound), &first).IsEmpty())
		assert.True(ls.SearchCdcEntry("AAA", nil).IsEmpty())
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		ls.DatabaseClose()

		first := true
		assert.True(ls.SearchCdcEntry("AAA", &first).IsEmpty())
		assert.True(ls.GetCdcEntry("AAA1").IsEmpty())
		assert.False(ls.AddCdcEntry(CatalogRecord{Catalog: "CCC1"}))
	})
}
