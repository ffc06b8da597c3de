package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodec(t *testing.T) {
	assert := assert.New(t)

	t.Run("CatalogRecord", func(t *testing.T) {
		rec := CatalogRecord{Catalog: "CD1", Title: "One", Type: "rock", Artist: "A"}

		got, err := decodeCatalogRecord(encodeCatalogRecord(rec))
		assert.NoError(err)
		assert.Equal(rec, got)
	})

	t.Run("TrackRecord", func(t *testing.T) {
		rec := TrackRecord{Catalog: "CD1", TrackNo: 12, Title: "Twelve"}

		got, err := decodeTrackRecord(encodeTrackRecord(rec))
		assert.NoError(err)
		assert.Equal(rec, got)
	})

	t.Run("WrongMagic", func(t *testing.T) {
		val := encodeTrackRecord(TrackRecord{Catalog: "CD1", TrackNo: 1})

		// A track value must not decode as a catalog record.
		_, err := decodeCatalogRecord(val)
		assert.ErrorIs(err, ErrBadRecord)
	})

	t.Run("WrongVersion", func(t *testing.T) {
		val := encodeCatalogRecord(CatalogRecord{Catalog: "CD1"})
		val[1] = codecVersion + 1

		_, err := decodeCatalogRecord(val)
		assert.ErrorIs(err, ErrBadRecord)
	})

	t.Run("Truncated", func(t *testing.T) {
		val := encodeCatalogRecord(CatalogRecord{Catalog: "CD1", Title: "One"})

		for i := range val[:len(val)-1] {
			_, err := decodeCatalogRecord(val[:i])
			assert.ErrorIs(err, ErrBadRecord, "truncation at %d not caught", i)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := decodeCatalogRecord(nil)
		assert.ErrorIs(err, ErrBadRecord)
	})
}

func TestLegacyKeyBytes(t *testing.T) {
	assert := assert.New(t)

	keys := legacyKeys{}

	t.Run("CatalogKey", func(t *testing.T) {
		key := keys.catalogKey("CD123")

		// The whole zero-padded buffer is the key, trailing NULs included.
		assert.Len(key, legacyCatalogKeySize)
		assert.Equal("CD123", strings.TrimRight(key, "\x00"))
	})

	t.Run("TrackKey", func(t *testing.T) {
		key := keys.trackKey("CD123", 7)

		assert.Len(key, legacyTrackKeySize)
		assert.Equal("CD123 7", strings.TrimRight(key, "\x00"))
	})

	t.Run("DelimitedKeysDiffer", func(t *testing.T) {
		d := delimitedKeys{}
		assert.NotEqual(d.catalogKey("CD123"), keys.catalogKey("CD123"))
		assert.Equal("CD123", d.catalogKey("CD123"))
	})
}
