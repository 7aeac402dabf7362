package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/dferreira/authserver/internal/model"
	"github.com/pkg/errors"
)

// BadgerDB holds a connection to a Badger backend.
type BadgerDB struct {
	InMemory bool
	DB       *badger.DB
}

const (
	prefixUser      = "user"
	prefixEmail     = "email"
	prefixReset     = "reset"
	prefixResetUser = "resetuser"
)

func makeUserKey(id string) []byte {
	return makeKey(prefixUser, id)
}

// makeEmailKey builds the unique index entry mapping an email, exactly as
// entered, to its owning user ID.
func makeEmailKey(email string) []byte {
	return makeKey(prefixEmail, email)
}

func makeResetKey(tokenHash string) []byte {
	return makeKey(prefixReset, tokenHash)
}

func makeResetUserKey(userID string) []byte {
	return makeKey(prefixResetUser, userID)
}

func makeKey(prefix, id string) []byte {
	return []byte(fmt.Sprintf("%s_%s", prefix, id))
}

// InitializeBadgerDB creates a new database with a Badger backend.
// Pass `true` to create an in-memory database (useful in tests, for example).
func InitializeBadgerDB(dir string, inMemory bool) (*BadgerDB, error) {
	if inMemory {
		dir = ""
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithInMemory(inMemory))
	if err != nil {
		return nil, err
	}

	return &BadgerDB{DB: db, InMemory: inMemory}, nil
}

// Close handles closing all connections to the database.
func (db *BadgerDB) Close() error {
	return db.DB.Close()
}

// CreateUser registers a new user. The email index entry is written in the
// same transaction, so duplicate emails fail atomically.
func (db *BadgerDB) CreateUser(ctx context.Context, user *model.User) error {
	userKey := makeUserKey(user.ID)
	emailKey := makeEmailKey(user.Email)
	return db.DB.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrDuplicateEmail
		}
		if err != badger.ErrKeyNotFound {
			return errors.Wrap(err, "email index lookup")
		}

		b, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := txn.Set(userKey, b); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
}

// GetUserByID retrieves a user's record based off an ID.
func (db *BadgerDB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := db.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeUserKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &user)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user's record via the email index.
func (db *BadgerDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := db.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeEmailKey(email))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(makeUserKey(string(id)))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &user)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser overwrites the stored record for the user. The email index is
// untouched: profile updates never change the email.
func (db *BadgerDB) UpdateUser(ctx context.Context, user *model.User) error {
	key := makeUserKey(user.ID)
	return db.DB.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return ErrUserNotFound
		} else if err != nil {
			return err
		}

		b, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return txn.Set(key, b)
	})
}

// SaveResetToken persists the token, deleting any prior token owned by the
// same user first. At most one live token exists per user.
func (db *BadgerDB) SaveResetToken(ctx context.Context, token *model.ResetToken) error {
	return db.DB.Update(func(txn *badger.Txn) error {
		ptrKey := makeResetUserKey(token.UserID)
		item, err := txn.Get(ptrKey)
		if err == nil {
			oldHash, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := txn.Delete(makeResetKey(string(oldHash))); err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		b, err := json.Marshal(token)
		if err != nil {
			return err
		}
		// Entry TTL is a garbage-collection backstop with one-second
		// resolution. Round up so it never fires before the logical
		// expiry checked in ConsumeResetToken.
		expiresAt := uint64(token.ExpiresAt.Add(time.Second - time.Nanosecond).Unix())
		err = txn.SetEntry(&badger.Entry{
			Key:       makeResetKey(token.TokenHash),
			Value:     b,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return err
		}
		return txn.SetEntry(&badger.Entry{
			Key:       ptrKey,
			Value:     []byte(token.TokenHash),
			ExpiresAt: expiresAt,
		})
	})
}

// ConsumeResetToken validates and deletes a token in one transaction.
// Tokens are valid strictly before their expiry; unknown and expired
// hashes are indistinguishable to the caller.
func (db *BadgerDB) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var token model.ResetToken
	err := db.DB.Update(func(txn *badger.Txn) error {
		key := makeResetKey(tokenHash)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		err = item.Value(func(v []byte) error {
			return json.Unmarshal(v, &token)
		})
		if err != nil {
			return err
		}
		if token.Expired(now) {
			return badger.ErrKeyNotFound
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(makeResetUserKey(token.UserID))
	})
	if err == badger.ErrKeyNotFound {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return token.UserID, nil
}
