package tablekv

// Cursor is a first-key/next-key iterator over the table. It walks a
// sorted snapshot of the keys taken when the cursor was created, so keys
// added or deleted mid-scan don't invalidate it; values are read live and
// a key deleted after the snapshot simply reports ErrNoKey on Get.
// A cursor is owned by its creator and is not safe for concurrent use.
type Cursor struct {
	keys []string
	pos  int
}

// Scan returns a cursor positioned before the first key of the table.
func (t *Table) Scan() *Cursor {
	return &Cursor{keys: t.Keys()}
}

// Next advances the cursor and returns the next key. The second return
// value is false once the snapshot is exhausted.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= len(c.keys) {
		return "", false
	}

	k := c.keys[c.pos]
	c.pos++
	return k, true
}
