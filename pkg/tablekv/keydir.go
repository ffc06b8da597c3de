package tablekv

import (
	"encoding/gob"
	"os"
)

// KeyDir represents an in-memory hash for faster lookups of the key.
// Once the key is found in the map, the additional metadata like the offset
// of the record and the file ID is used to extract the underlying record
// from the disk. Advantage is that this approach only requires a single disk
// seek of the db file since the position offset (in bytes) is already stored.
type KeyDir map[string]Meta

// Meta represents some additional properties for the given key.
// The actual value of the key is not stored in the in-memory hashtable.
type Meta struct {
	Timestamp  int
	RecordSize int
	RecordPos  int
	FileID     int
}

// Encode encodes the map to a gob file.
// This is typically used to generate a hints file.
// Caller of this method should ensure to lock/unlock the map before calling.
func (k *KeyDir) Encode(fPath string) error {
	file, err := os.Create(fPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(k); err != nil {
		return err
	}

	return nil
}

// Decode decodes the gob data in the given file to the map.
func (k *KeyDir) Decode(fPath string) error {
	file, err := os.Open(fPath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(k); err != nil {
		return err
	}

	return nil
}
