package auth

import (
	"database/sql"
	"fmt"
)

// NewSessionStore picks the backend named by kind: "sqlite" reuses db,
// "badger" opens an embedded store at path.
func NewSessionStore(kind string, db *sql.DB, path string) (SessionStore, error) {
	switch kind {
	case "", "sqlite":
		return NewSQLSessionStore(db), nil
	case "badger":
		store, err := OpenBadgerSessionStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}
