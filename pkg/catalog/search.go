package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-karan/discdb/pkg/tablekv"
)

// SearchCursor is a lazy, single-pass scan over the catalog table yielding
// the records whose catalog ID contains the search string. The cursor is
// owned by its creator: it carries no store-wide state, so independent
// searches can run side by side. It is not safe for concurrent use, is not
// restartable, and becomes invalid once the store is closed.
type SearchCursor struct {
	cdc    *tablekv.Table
	cur    *tablekv.Cursor
	substr string
}

// SearchCatalog begins a linear scan over the catalog table. The search
// string matches by substring containment anywhere in the catalog ID; an
// empty string matches every record. Records added after the scan begins
// may or may not be seen by it.
func (s *Store) SearchCatalog(substr string) (*SearchCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cdc == nil {
		return nil, ErrNotOpen
	}
	if len(substr) >= CatalogIDBound {
		return nil, fmt.Errorf("%w: search string must be shorter than %d bytes", ErrInvalidArgument, CatalogIDBound)
	}

	return &SearchCursor{
		cdc:    s.cdc,
		cur:    s.cdc.Scan(),
		substr: substr,
	}, nil
}

// Next returns the next matching catalog record. Once the table is
// exhausted every further call reports ErrExhausted.
func (c *SearchCursor) Next() (CatalogRecord, error) {
	for {
		k, ok := c.cur.Next()
		if !ok {
			return CatalogRecord{}, ErrExhausted
		}

		val, err := c.cdc.Get(k)
		if err != nil {
			if errors.Is(err, tablekv.ErrNoKey) {
				// Deleted after the key snapshot was taken.
				continue
			}
			return CatalogRecord{}, fmt.Errorf("error fetching catalog entry: %w", err)
		}

		rec, err := decodeCatalogRecord(val)
		if err != nil {
			return CatalogRecord{}, err
		}

		if strings.Contains(rec.Catalog, c.substr) {
			return rec, nil
		}
	}
}
