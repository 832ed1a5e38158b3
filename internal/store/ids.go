package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding) — about 40 bits of space. Prefixes keep ids
// readable: task-xxx, proj-xxx, cmt-xxx, ...
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NextID returns a fresh, collision-checked id for the given prefix.
func (s Store) NextID(db *DB, prefix string) string {
	for i := 0; i < 10; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !idExists(db, id) {
			return id
		}
	}
	// crypto/rand failure or a run of collisions: fall back to a counter
	// derived from current row counts. Ugly but unambiguous.
	n := len(db.Profiles) + len(db.Projects) + len(db.Tasks) + len(db.Comments) +
		len(db.CalendarEvents) + len(db.Notifications) + len(db.Files)
	for {
		id := fmt.Sprintf("%s-%d", prefix, n)
		if !idExists(db, id) {
			return id
		}
		n++
	}
}

func idExists(db *DB, id string) bool {
	for _, p := range db.Profiles {
		if p.ID == id {
			return true
		}
	}
	for _, p := range db.Projects {
		if p.ID == id {
			return true
		}
	}
	for _, t := range db.Tasks {
		if t.ID == id {
			return true
		}
	}
	for _, c := range db.Comments {
		if c.ID == id {
			return true
		}
	}
	for _, e := range db.CalendarEvents {
		if e.ID == id {
			return true
		}
	}
	for _, n := range db.Notifications {
		if n.ID == id {
			return true
		}
	}
	for _, f := range db.Files {
		if f.ID == id {
			return true
		}
	}
	return false
}
