package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

/*
Stored values use an explicit, versioned layout instead of dumping the
in-memory struct, so the format does not depend on alignment or padding of
any particular platform. Every field bound fits in a byte, so strings are
prefixed with a single length byte.

Catalog record:
---------------------------------------------------------------------
| 'C' | ver(1) | len | catalog | len | title | len | type | len | artist |
---------------------------------------------------------------------

Track record:
---------------------------------------------------------------------
| 'T' | ver(1) | len | catalog | track_no(2, LE) | len | title |
---------------------------------------------------------------------
*/
const (
	catalogMagic = byte('C')
	trackMagic   = byte('T')
	codecVersion = byte(1)
)

func writeField(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

func readField(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", fmt.Errorf("%w: truncated field length", ErrBadRecord)
	}

	field := make([]byte, n)
	if _, err := io.ReadFull(r, field); err != nil {
		return "", fmt.Errorf("%w: truncated field", ErrBadRecord)
	}
	return string(field), nil
}

// checkPreamble validates the magic and version bytes of an encoded record.
func checkPreamble(r *bytes.Reader, magic byte) error {
	m, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: empty value", ErrBadRecord)
	}
	if m != magic {
		return fmt.Errorf("%w: unexpected magic byte %#x", ErrBadRecord, m)
	}

	ver, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: missing version byte", ErrBadRecord)
	}
	if ver != codecVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadRecord, ver)
	}

	return nil
}

func encodeCatalogRecord(r CatalogRecord) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 2+4+len(r.Catalog)+len(r.Title)+len(r.Type)+len(r.Artist)))
	buf.WriteByte(catalogMagic)
	buf.WriteByte(codecVersion)
	writeField(buf, r.Catalog)
	writeField(buf, r.Title)
	writeField(buf, r.Type)
	writeField(buf, r.Artist)
	return buf.Bytes()
}

func decodeCatalogRecord(val []byte) (CatalogRecord, error) {
	var (
		rec CatalogRecord
		r   = bytes.NewReader(val)
		err error
	)

	if err := checkPreamble(r, catalogMagic); err != nil {
		return CatalogRecord{}, err
	}

	if rec.Catalog, err = readField(r); err != nil {
		return CatalogRecord{}, err
	}
	if rec.Title, err = readField(r); err != nil {
		return CatalogRecord{}, err
	}
	if rec.Type, err = readField(r); err != nil {
		return CatalogRecord{}, err
	}
	if rec.Artist, err = readField(r); err != nil {
		return CatalogRecord{}, err
	}

	return rec, nil
}

func encodeTrackRecord(r TrackRecord) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 2+2+2+len(r.Catalog)+len(r.Title)))
	buf.WriteByte(trackMagic)
	buf.WriteByte(codecVersion)
	writeField(buf, r.Catalog)

	var trackNo [2]byte
	binary.LittleEndian.PutUint16(trackNo[:], uint16(r.TrackNo))
	buf.Write(trackNo[:])

	writeField(buf, r.Title)
	return buf.Bytes()
}

func decodeTrackRecord(val []byte) (TrackRecord, error) {
	var (
		rec TrackRecord
		r   = bytes.NewReader(val)
		err error
	)

	if err := checkPreamble(r, trackMagic); err != nil {
		return TrackRecord{}, err
	}

	if rec.Catalog, err = readField(r); err != nil {
		return TrackRecord{}, err
	}

	var trackNo [2]byte
	if _, err := io.ReadFull(r, trackNo[:]); err != nil {
		return TrackRecord{}, fmt.Errorf("%w: truncated track number", ErrBadRecord)
	}
	rec.TrackNo = int(binary.LittleEndian.Uint16(trackNo[:]))

	if rec.Title, err = readField(r); err != nil {
		return TrackRecord{}, err
	}

	return rec, nil
}
