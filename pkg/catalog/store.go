// Package catalog implements a two-table CD catalog on top of the tablekv
// engine: catalog records keyed by their catalog ID and track records keyed
// by catalog ID plus track number. The two relations are not enforced
// against each other, so deleting a catalog entry leaves its tracks behind.
// Use DeleteCatalogCascade to remove both.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mr-karan/discdb/pkg/tablekv"
)

// Store owns the two backing tables. Both are open or both are closed;
// a failed open of either one collapses the store back to closed.
// All methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	opts *Options
	keys keyCodec

	cdc *tablekv.Table // Catalog records. Nil when the store is closed.
	cdt *tablekv.Table // Track records. Nil when the store is closed.
}

// New prepares a store with the given configuration. The store starts out
// closed; call Open before any record operation.
func New(cfg ...Config) (*Store, error) {
	opts := DefaultOptions()
	for _, opt := range cfg {
		if err := opt(opts); err != nil {
			return nil, err
		}
	}

	var keys keyCodec = delimitedKeys{}
	if opts.legacyKeys {
		keys = legacyKeys{}
	}

	return &Store{
		opts: opts,
		keys: keys,
	}, nil
}

// tableConfigs translates the store options into engine options.
func (s *Store) tableConfigs() []tablekv.Config {
	cfg := []tablekv.Config{tablekv.WithDir(s.opts.dir)}
	if s.opts.debug {
		cfg = append(cfg, tablekv.WithDebug())
	}
	if s.opts.alwaysFSync {
		cfg = append(cfg, tablekv.WithAlwaysSync())
	}
	if s.opts.syncInterval > 0 {
		cfg = append(cfg, tablekv.WithBackgroundSync(s.opts.syncInterval))
	}
	if s.opts.compactInterval > 0 {
		cfg = append(cfg, tablekv.WithCompactInterval(s.opts.compactInterval))
	}
	if s.opts.maxActiveFileSize > 0 {
		cfg = append(cfg, tablekv.WithMaxActiveFileSize(s.opts.maxActiveFileSize))
	}
	return cfg
}

// Open opens both tables, creating them if absent. An already open store is
// closed first. If reset is true, all files of both tables are irrecoverably
// deleted before reopening, yielding an empty store.
func (s *Store) Open(reset bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdc != nil {
		if err := s.closeTables(); err != nil {
			return err
		}
	}

	if reset {
		if err := tablekv.Destroy(s.opts.dir, catalogTable); err != nil {
			return fmt.Errorf("error resetting catalog table: %w", err)
		}
		if err := tablekv.Destroy(s.opts.dir, trackTable); err != nil {
			return fmt.Errorf("error resetting track table: %w", err)
		}
	}

	cdc, err := tablekv.Init(catalogTable, s.tableConfigs()...)
	if err != nil {
		return fmt.Errorf("error opening catalog table: %w", err)
	}

	cdt, err := tablekv.Init(trackTable, s.tableConfigs()...)
	if err != nil {
		// No partial-open state: release the table that did open.
		cdc.Close()
		return fmt.Errorf("error opening track table: %w", err)
	}

	s.cdc = cdc
	s.cdt = cdt

	return nil
}

// Close releases both tables. Closing a store that is already closed, or
// was never opened, is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeTables()
}

func (s *Store) closeTables() error {
	var err error

	if s.cdc != nil {
		err = s.cdc.Close()
	}
	if s.cdt != nil {
		if cerr := s.cdt.Close(); err == nil {
			err = cerr
		}
	}
	s.cdc, s.cdt = nil, nil

	return err
}

// GetCatalogEntry looks up the catalog record stored under the given
// catalog ID.
func (s *Store) GetCatalogEntry(catalog string) (CatalogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdc == nil {
		return CatalogRecord{}, ErrNotOpen
	}
	if err := validateCatalogID(catalog); err != nil {
		return CatalogRecord{}, err
	}

	val, err := s.cdc.Get(s.keys.catalogKey(catalog))
	if err != nil {
		if errors.Is(err, tablekv.ErrNoKey) {
			return CatalogRecord{}, ErrNotFound
		}
		return CatalogRecord{}, fmt.Errorf("error fetching catalog entry: %w", err)
	}

	return decodeCatalogRecord(val)
}

// GetTrackEntry looks up the track record stored under the given catalog ID
// and track number.
func (s *Store) GetTrackEntry(catalog string, trackNo int) (TrackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdt == nil {
		return TrackRecord{}, ErrNotOpen
	}
	if err := validateCatalogID(catalog); err != nil {
		return TrackRecord{}, err
	}
	if err := validateTrackNo(trackNo); err != nil {
		return TrackRecord{}, err
	}

	val, err := s.cdt.Get(s.keys.trackKey(catalog, trackNo))
	if err != nil {
		if errors.Is(err, tablekv.ErrNoKey) {
			return TrackRecord{}, ErrNotFound
		}
		return TrackRecord{}, fmt.Errorf("error fetching track entry: %w", err)
	}

	return decodeTrackRecord(val)
}

// AddCatalogEntry stores the record under its catalog ID, replacing any
// existing record with the same ID.
func (s *Store) AddCatalogEntry(rec CatalogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdc == nil {
		return ErrNotOpen
	}
	if err := rec.validate(); err != nil {
		return err
	}

	if err := s.cdc.Put(s.keys.catalogKey(rec.Catalog), encodeCatalogRecord(rec)); err != nil {
		return fmt.Errorf("error storing catalog entry: %w", err)
	}

	return nil
}

// AddTrackEntry stores the record under its composite key, replacing any
// existing record with the same key.
func (s *Store) AddTrackEntry(rec TrackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdt == nil {
		return ErrNotOpen
	}
	if err := rec.validate(); err != nil {
		return err
	}

	if err := s.cdt.Put(s.keys.trackKey(rec.Catalog, rec.TrackNo), encodeTrackRecord(rec)); err != nil {
		return fmt.Errorf("error storing track entry: %w", err)
	}

	return nil
}

// DeleteCatalogEntry removes the catalog record with the given ID. Tracks
// belonging to the entry are left untouched. Deleting an ID that was never
// stored reports ErrNotFound.
func (s *Store) DeleteCatalogEntry(catalog string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdc == nil {
		return ErrNotOpen
	}
	if err := validateCatalogID(catalog); err != nil {
		return err
	}

	return s.deleteFrom(s.cdc, s.keys.catalogKey(catalog))
}

// DeleteTrackEntry removes a single track record.
func (s *Store) DeleteTrackEntry(catalog string, trackNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdt == nil {
		return ErrNotOpen
	}
	if err := validateCatalogID(catalog); err != nil {
		return err
	}
	if err := validateTrackNo(trackNo); err != nil {
		return err
	}

	return s.deleteFrom(s.cdt, s.keys.trackKey(catalog, trackNo))
}

func (s *Store) deleteFrom(t *tablekv.Table, key string) error {
	if err := t.Delete(key); err != nil {
		if errors.Is(err, tablekv.ErrNoKey) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting entry: %w", err)
	}
	return nil
}

// Tracks returns all track records belonging to the given catalog ID, in
// track number order.
func (s *Store) Tracks(catalog string) ([]TrackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdt == nil {
		return nil, ErrNotOpen
	}
	if err := validateCatalogID(catalog); err != nil {
		return nil, err
	}

	tracks, err := s.tracksOf(catalog)
	if err != nil {
		return nil, err
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].TrackNo < tracks[j].TrackNo
	})

	return tracks, nil
}

func (s *Store) tracksOf(catalog string) ([]TrackRecord, error) {
	var (
		tracks []TrackRecord
		cur    = s.cdt.Scan()
	)

	for {
		k, ok := cur.Next()
		if !ok {
			return tracks, nil
		}

		val, err := s.cdt.Get(k)
		if err != nil {
			if errors.Is(err, tablekv.ErrNoKey) {
				// Deleted after the key snapshot was taken.
				continue
			}
			return nil, fmt.Errorf("error fetching track entry: %w", err)
		}

		rec, err := decodeTrackRecord(val)
		if err != nil {
			return nil, err
		}
		if rec.Catalog == catalog {
			tracks = append(tracks, rec)
		}
	}
}

// DeleteCatalogCascade removes the catalog record with the given ID
// together with all its tracks. Orphaned tracks of the ID are removed even
// if the catalog record itself no longer exists, in which case ErrNotFound
// is still reported.
func (s *Store) DeleteCatalogCascade(catalog string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdc == nil {
		return ErrNotOpen
	}
	if err := validateCatalogID(catalog); err != nil {
		return err
	}

	tracks, err := s.tracksOf(catalog)
	if err != nil {
		return err
	}
	for _, rec := range tracks {
		if err := s.deleteFrom(s.cdt, s.keys.trackKey(rec.Catalog, rec.TrackNo)); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	return s.deleteFrom(s.cdc, s.keys.catalogKey(catalog))
}
