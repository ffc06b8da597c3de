package catalog

import (
	"fmt"
	"strconv"
)

// Sizes of the fixed-width legacy key buffers. The legacy layout stores the
// whole zero-padded buffer as the key, trailing NULs included, so lookups
// only match when the padding is reproduced byte for byte.
const (
	legacyCatalogKeySize = CatalogIDBound + 1
	legacyTrackKeySize   = CatalogIDBound + 10
)

// keyCodec builds the engine keys for both tables.
type keyCodec interface {
	catalogKey(catalog string) string
	trackKey(catalog string, trackNo int) string
}

// delimitedKeys is the default codec: variable-length keys carrying the
// same logical content as the legacy layout without the padding.
type delimitedKeys struct{}

func (delimitedKeys) catalogKey(catalog string) string {
	return catalog
}

func (delimitedKeys) trackKey(catalog string, trackNo int) string {
	// NUL can't occur inside a catalog ID, so it's a safe separator.
	return catalog + "\x00" + strconv.Itoa(trackNo)
}

// legacyKeys reproduces the original dbm key layout bit-exact: the catalog
// ID (or "<catalog> <track_no>" for tracks) copied into a zero-filled
// fixed-size buffer. Use this codec to read stores written with the old
// layout.
type legacyKeys struct{}

func (legacyKeys) catalogKey(catalog string) string {
	key := make([]byte, legacyCatalogKeySize)
	copy(key, catalog)
	return string(key)
}

func (legacyKeys) trackKey(catalog string, trackNo int) string {
	key := make([]byte, legacyTrackKeySize)
	copy(key, fmt.Sprintf("%s %d", catalog, trackNo))
	return string(key)
}
