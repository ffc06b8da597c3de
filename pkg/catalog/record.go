package catalog

import "fmt"

// Field bounds for catalog and track records. A catalog ID must be strictly
// shorter than CatalogIDBound; the remaining fields may use their full bound.
const (
	CatalogIDBound = 30
	MaxTitleLen    = 70
	MaxTypeLen     = 30
	MaxArtistLen   = 70
	MaxTrackNo     = 999
)

// CatalogRecord describes one CD in the catalog, identified by its
// catalog ID.
type CatalogRecord struct {
	Catalog string // Catalog ID, e.g. the label's reference number.
	Title   string
	Type    string // Genre, e.g. "rock", "classical".
	Artist  string
}

// IsEmpty returns true for the zero-valued record, which the legacy
// contract uses to signal "not found".
func (r CatalogRecord) IsEmpty() bool {
	return r.Catalog == ""
}

func (r CatalogRecord) validate() error {
	if err := validateCatalogID(r.Catalog); err != nil {
		return err
	}
	if len(r.Title) > MaxTitleLen {
		return fmt.Errorf("%w: title exceeds %d bytes", ErrInvalidArgument, MaxTitleLen)
	}
	if len(r.Type) > MaxTypeLen {
		return fmt.Errorf("%w: type exceeds %d bytes", ErrInvalidArgument, MaxTypeLen)
	}
	if len(r.Artist) > MaxArtistLen {
		return fmt.Errorf("%w: artist exceeds %d bytes", ErrInvalidArgument, MaxArtistLen)
	}
	return nil
}

// TrackRecord describes one track of a CD, identified by the catalog ID of
// the CD it belongs to and its track number. The store does not enforce
// that a matching CatalogRecord exists.
type TrackRecord struct {
	Catalog string
	TrackNo int
	Title   string
}

// IsEmpty returns true for the zero-valued record.
func (r TrackRecord) IsEmpty() bool {
	return r.Catalog == ""
}

func (r TrackRecord) validate() error {
	if err := validateCatalogID(r.Catalog); err != nil {
		return err
	}
	if err := validateTrackNo(r.TrackNo); err != nil {
		return err
	}
	if len(r.Title) > MaxTitleLen {
		return fmt.Errorf("%w: title exceeds %d bytes", ErrInvalidArgument, MaxTitleLen)
	}
	return nil
}

func validateCatalogID(catalog string) error {
	if catalog == "" {
		return fmt.Errorf("%w: empty catalog ID", ErrInvalidArgument)
	}
	if len(catalog) >= CatalogIDBound {
		return fmt.Errorf("%w: catalog ID must be shorter than %d bytes", ErrInvalidArgument, CatalogIDBound)
	}
	return nil
}

func validateTrackNo(trackNo int) error {
	if trackNo < 0 || trackNo > MaxTrackNo {
		return fmt.Errorf("%w: track number out of range", ErrInvalidArgument)
	}
	return nil
}
