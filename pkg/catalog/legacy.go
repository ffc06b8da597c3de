package catalog

import (
	"errors"
	"strings"
	"sync"

	"github.com/mr-karan/discdb/pkg/tablekv"
)

// LegacyStore wraps a Store behind the original dbm-era contract: every
// failure collapses to an empty record or a false boolean, and the search
// is a single resumable scan whose cursor lives in the adapter rather than
// with the caller. It exists for compatibility testing against callers of
// the old interface; new code should use Store directly.
//
// Like the original, the adapter supports only one logical search at a
// time: interleaved searches share the one cursor and will interleave
// their results.
type LegacyStore struct {
	mu    sync.Mutex
	store *Store

	// localFirstCall marks the very first search since the adapter was
	// created. The original forces a fresh scan on that call no matter
	// what the caller passed, and writes the override back through the
	// caller's flag. Deliberately reproduced, quirk included.
	localFirstCall bool
	cur            *tablekv.Cursor
}

// NewLegacyStore prepares a legacy-contract store with the given
// configuration. Combine with WithLegacyKeys to also reproduce the old
// on-disk key layout.
func NewLegacyStore(cfg ...Config) (*LegacyStore, error) {
	store, err := New(cfg...)
	if err != nil {
		return nil, err
	}

	return &LegacyStore{
		store:          store,
		localFirstCall: true,
	}, nil
}

// DatabaseInitialize opens the database, creating it if required. Passing
// true wipes any existing database first.
func (l *LegacyStore) DatabaseInitialize(newDatabase bool) bool {
	return l.store.Open(newDatabase) == nil
}

// DatabaseClose closes the database if it was open.
func (l *LegacyStore) DatabaseClose() {
	l.store.Close()
}

// GetCdcEntry retrieves a single catalog entry. If the entry isn't found,
// or on any failure, the returned record has an empty catalog field.
func (l *LegacyStore) GetCdcEntry(catalog string) CatalogRecord {
	rec, err := l.store.GetCatalogEntry(catalog)
	if err != nil {
		return CatalogRecord{}
	}
	return rec
}

// GetCdtEntry retrieves a single track entry by catalog ID and track number.
func (l *LegacyStore) GetCdtEntry(catalog string, trackNo int) TrackRecord {
	rec, err := l.store.GetTrackEntry(catalog, trackNo)
	if err != nil {
		return TrackRecord{}
	}
	return rec
}

// AddCdcEntry stores a catalog entry, overwriting any existing one.
func (l *LegacyStore) AddCdcEntry(rec CatalogRecord) bool {
	return l.store.AddCatalogEntry(rec) == nil
}

// AddCdtEntry stores a track entry, overwriting any existing one.
func (l *LegacyStore) AddCdtEntry(rec TrackRecord) bool {
	return l.store.AddTrackEntry(rec) == nil
}

// DelCdcEntry deletes a catalog entry. True is reported only when an
// existing entry was removed.
func (l *LegacyStore) DelCdcEntry(catalog string) bool {
	return l.store.DeleteCatalogEntry(catalog) == nil
}

// DelCdtEntry deletes a track entry.
func (l *LegacyStore) DelCdtEntry(catalog string, trackNo int) bool {
	return l.store.DeleteTrackEntry(catalog, trackNo) == nil
}

// SearchCdcEntry returns one matching catalog entry per call, or an empty
// record when the scan is exhausted or on any failure. firstCall set to
// true starts a new scan from the beginning of the table; false resumes
// after the last entry found. On the very first call since the adapter was
// created a fresh scan is forced regardless, and the override is reported
// back by mutating *firstCall.
func (l *LegacyStore) SearchCdcEntry(substr string, firstCall *bool) CatalogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.mu.Lock()
	cdc := l.store.cdc
	l.store.mu.Unlock()

	if cdc == nil {
		return CatalogRecord{}
	}
	if firstCall == nil {
		return CatalogRecord{}
	}
	if len(substr) >= CatalogIDBound {
		return CatalogRecord{}
	}

	// Protect against never passing *firstCall true.
	if l.localFirstCall {
		l.localFirstCall = false
		*firstCall = true
	}

	if *firstCall {
		*firstCall = false
		l.cur = cdc.Scan()
	}
	if l.cur == nil {
		return CatalogRecord{}
	}

	for {
		k, ok := l.cur.Next()
		if !ok {
			return CatalogRecord{}
		}

		val, err := cdc.Get(k)
		if err != nil {
			if errors.Is(err, tablekv.ErrNoKey) {
				continue
			}
			return CatalogRecord{}
		}

		rec, err := decodeCatalogRecord(val)
		if err != nil {
			return CatalogRecord{}
		}

		if strings.Contains(rec.Catalog, substr) {
			return rec
		}
	}
}
