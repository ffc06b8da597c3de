package tablekv

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

/*
Record is a binary representation of how each record is persisted on disk.
The four header fields have a fixed size of 4 bytes each (so a 16 byte
fixed width "Header"). Key size and value size are 4 bytes each, which
means the max size of a key or a value is (2^32)-1 as a theoretical limit.
A tombstone is a record whose value is empty.

---------------------------------------------------------------
| crc(4) | time(4) | key_size(4) | val_size(4) | key | val |
---------------------------------------------------------------
*/
type Record struct {
	Header Header
	Key    string
	Value  []byte
}

// Header represents the fixed width fields present at the start of every record.
type Header struct {
	Checksum  uint32
	Timestamp uint32
	KeySize   uint32
	ValSize   uint32
}

// encode takes a byte buffer, encodes the value of header and writes to the buffer.
func (h *Header) encode(buf *bytes.Buffer) error {
	return binary.Write(buf, binary.LittleEndian, h)
}

// decode takes a record object decodes the binary value the buffer.
func (h *Header) decode(record []byte) error {
	return binary.Read(bytes.NewReader(record), binary.LittleEndian, h)
}

// isValidChecksum returns true if the checksum of the stored value matches
// the checksum persisted in the header.
func (r *Record) isValidChecksum() bool {
	return crc32.ChecksumIEEE(r.Value) == r.Header.Checksum
}
