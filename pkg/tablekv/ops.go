package tablekv

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"sort"
	"time"

	"github.com/mr-karan/discdb/internal/datafile"
)

// headerSize is the fixed width of an encoded record header in bytes.
const headerSize = 16

// dataFile returns the datafile the given keydir entry points to.
func (t *Table) dataFile(id int) *datafile.DataFile {
	if id == t.df.ID() {
		return t.df
	}
	return t.stale[id]
}

func (t *Table) get(k string) (Record, error) {
	// Check for entry in keydir.
	meta, ok := t.keydir[k]
	if !ok {
		return Record{}, ErrNoKey
	}

	df := t.dataFile(meta.FileID)
	if df == nil {
		return Record{}, fmt.Errorf("error finding datafile with id %d", meta.FileID)
	}

	// Read the file with the given offset.
	raw, err := df.Read(meta.RecordPos, meta.RecordSize)
	if err != nil {
		return Record{}, fmt.Errorf("error reading data from file: %w", err)
	}

	// Decode the header.
	var header Header
	if err := header.decode(raw); err != nil {
		return Record{}, fmt.Errorf("error decoding record header: %w", err)
	}

	// Get the offset position in record to start reading the value from.
	valPos := meta.RecordSize - int(header.ValSize)

	return Record{
		Header: header,
		Key:    k,
		Value:  raw[valPos:],
	}, nil
}

// writeTo encodes a record and appends it to the given datafile. It returns
// the keydir metadata describing where the record landed.
func (t *Table) writeTo(df *datafile.DataFile, k string, val []byte) (Meta, error) {
	// Prepare header.
	header := Header{
		Checksum:  crc32.ChecksumIEEE(val),
		Timestamp: uint32(time.Now().Unix()),
		KeySize:   uint32(len(k)),
		ValSize:   uint32(len(val)),
	}

	// Get a buffer from the pool for writing data.
	buf := t.bufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		t.bufPool.Put(buf)
	}()

	// Encode header.
	if err := header.encode(buf); err != nil {
		return Meta{}, fmt.Errorf("error encoding record header: %w", err)
	}

	// Write key/value.
	buf.WriteString(k)
	buf.Write(val)

	// Append to underlying file.
	offset, err := df.Write(buf.Bytes())
	if err != nil {
		return Meta{}, fmt.Errorf("error writing data to file: %w", err)
	}

	return Meta{
		Timestamp:  int(header.Timestamp),
		RecordSize: buf.Len(),
		RecordPos:  offset,
		FileID:     df.ID(),
	}, nil
}

func (t *Table) put(k string, val []byte) error {
	meta, err := t.writeTo(t.df, k, val)
	if err != nil {
		return err
	}

	// Add entry to keydir.
	// We just save the key and some metadata for faster lookups.
	// The value is only stored on disk.
	t.keydir[k] = meta

	// Ensure the filesystem's in-memory buffer is flushed to disk.
	if t.opts.alwaysFSync {
		if err := t.df.Sync(); err != nil {
			return fmt.Errorf("error syncing file to disk: %w", err)
		}
	}

	return nil
}

func (t *Table) delete(k string) error {
	// Store an empty tombstone value for the given key.
	if err := t.put(k, []byte{}); err != nil {
		return err
	}

	// Delete it from the map as well.
	delete(t.keydir, k)

	return nil
}

// replayDataFiles rebuilds the keydir by sequentially decoding every record
// in all datafiles, oldest first. Tombstones drop the key again.
func (t *Table) replayDataFiles() error {
	ids := make([]int, 0, len(t.stale))
	for id := range t.stale {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if err := t.replayDataFile(t.stale[id]); err != nil {
			return err
		}
	}

	return nil
}

func (t *Table) replayDataFile(df *datafile.DataFile) error {
	size, err := df.Size()
	if err != nil {
		return err
	}

	var pos int
	for int64(pos) < size {
		// Read and decode the fixed width header first to learn the
		// size of the record that follows it.
		raw, err := df.Read(pos+headerSize, headerSize)
		if err != nil {
			return fmt.Errorf("error reading record header: %w", err)
		}

		var header Header
		if err := header.decode(raw); err != nil {
			return fmt.Errorf("error decoding record header: %w", err)
		}

		recordSize := headerSize + int(header.KeySize) + int(header.ValSize)
		record, err := df.Read(pos+recordSize, recordSize)
		if err != nil {
			return fmt.Errorf("error reading record: %w", err)
		}

		key := string(record[headerSize : headerSize+int(header.KeySize)])

		if header.ValSize == 0 {
			// Tombstone.
			delete(t.keydir, key)
		} else {
			t.keydir[key] = Meta{
				Timestamp:  int(header.Timestamp),
				RecordSize: recordSize,
				RecordPos:  pos + recordSize,
				FileID:     df.ID(),
			}
		}

		pos += recordSize
	}

	return nil
}
