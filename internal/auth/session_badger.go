package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

// BadgerSessionStore keeps sessions in an embedded Badger database, so they
// survive restarts without touching the SQLite file. Entries carry a Badger
// TTL and are dropped by Badger itself once they expire.
type BadgerSessionStore struct {
	db *badger.DB
}

// OpenBadgerSessionStore opens (or creates) a store at path. An empty path
// gives an in-memory store.
func OpenBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger session store: %w", err)
	}
	return &BadgerSessionStore{db: db}, nil
}

// timeUntil is the Badger TTL for sess, never below one second.
func timeUntil(sess *Session) time.Duration {
	d := time.Until(sess.ExpiresAt)
	if d < time.Second {
		return time.Second
	}
	return d
}

func userKey(userID int64, sessionID string) []byte {
	return []byte(sessionUserKeyPrefix + strconv.FormatInt(userID, 10) + ":" + sessionID)
}

func (s *BadgerSessionStore) Create(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := timeUntil(sess)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry([]byte(sessionKeyPrefix+sess.ID), data).WithTTL(ttl)); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		if err := txn.SetEntry(badger.NewEntry(userKey(sess.UserID, sess.ID), []byte(sess.ID)).WithTTL(ttl)); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
		return nil
	})
}

func (s *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

func (s *BadgerSessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(sessionKeyPrefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var sess Session
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &sess) }); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return txn.Delete(userKey(sess.UserID, id))
	})
}

func (s *BadgerSessionStore) DeleteByUserID(ctx context.Context, userID int64) (int, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionUserKeyPrefix + strconv.FormatInt(userID, 10) + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	n := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// CleanupExpired runs Badger value-log GC; expired keys are already
// invisible to readers through their TTL. Badger drops them on its own, so
// the returned count is always zero.
func (s *BadgerSessionStore) CleanupExpired(_ context.Context) (int, error) {
	if s.db.Opts().InMemory {
		return 0, nil
	}
	err := s.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return 0, fmt.Errorf("badger gc: %w", err)
	}
	return 0, nil
}

func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}
