package authclient

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// CredentialRecord is one persisted storage entry
type CredentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:crd"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value,notnull" json:"value"`
}

// BunStore persists the credential as key/value rows in SQLite. It is the
// durable store for desktop shells that already carry a local database.
type BunStore struct {
	db     *bun.DB
	logger Logger
}

// BunStoreOption customizes BunStore construction.
type BunStoreOption func(*BunStore)

// WithBunStoreLogger overrides the logger used for storage failures.
func WithBunStoreLogger(logger Logger) BunStoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OpenBunDB opens (or creates) the SQLite database backing a BunStore.
func OpenBunDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to open credential db")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{
		db:     db,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Init creates the credentials table when missing.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*CredentialRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create credentials table")
	}
	return nil
}

func (s *BunStore) Save(accessToken, refreshToken string) error {
	ctx := context.Background()

	records := []CredentialRecord{
		{Key: StorageKeyAccessToken, Value: accessToken},
	}
	if refreshToken != "" {
		records = append(records, CredentialRecord{Key: StorageKeyRefreshToken, Value: refreshToken})
	} else {
		// an overwrite without a renewal token must not leave a stale one behind
		if _, err := s.db.NewDelete().
			Model((*CredentialRecord)(nil)).
			Where("key = ?", StorageKeyRefreshToken).
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to overwrite credential")
		}
	}

	_, err := s.db.NewInsert().
		Model(&records).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to save credential")
	}
	return nil
}

func (s *BunStore) Load() (*Credential, error) {
	ctx := context.Background()

	var records []CredentialRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("key IN (?, ?)", StorageKeyAccessToken, StorageKeyRefreshToken).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to load credential")
	}

	cred := &Credential{}
	for _, record := range records {
		switch record.Key {
		case StorageKeyAccessToken:
			cred.AccessToken = record.Value
		case StorageKeyRefreshToken:
			cred.RefreshToken = record.Value
		}
	}

	if cred.AccessToken == "" {
		return nil, nil
	}
	return cred, nil
}

func (s *BunStore) Clear() error {
	ctx := context.Background()

	_, err := s.db.NewDelete().
		Model((*CredentialRecord)(nil)).
		Where("key IN (?, ?)", StorageKeyAccessToken, StorageKeyRefreshToken).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to clear credential")
	}
	return nil
}

func (s *BunStore) HasAccessToken() bool {
	ctx := context.Background()

	exists, err := s.db.NewSelect().
		Model((*CredentialRecord)(nil)).
		Where("key = ? AND value != ''", StorageKeyAccessToken).
		Exists(ctx)
	if err != nil {
		s.logger.Error("credential store lookup error: %v", err)
		return false
	}
	return exists
}
