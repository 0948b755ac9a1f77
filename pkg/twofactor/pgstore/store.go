package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

const (
	selectColumns = `id, owner_type, owner_id, shared_secret, label, digits, period, "window", algorithm,
	recovery_codes, recovery_codes_generated_at, safe_devices, enabled_at, version, created_at, updated_at`

	selectByOwner = `SELECT ` + selectColumns + `
	FROM two_factor_authentications
	WHERE owner_type = $1 AND owner_id = $2`

	upsert = `INSERT INTO two_factor_authentications (
		id, owner_type, owner_id, shared_secret, label, digits, period, "window", algorithm,
		recovery_codes, recovery_codes_generated_at, safe_devices, enabled_at, version, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14, $15)
	ON CONFLICT (owner_type, owner_id) DO UPDATE SET
		shared_secret = EXCLUDED.shared_secret,
		label = EXCLUDED.label,
		digits = EXCLUDED.digits,
		period = EXCLUDED.period,
		"window" = EXCLUDED."window",
		algorithm = EXCLUDED.algorithm,
		recovery_codes = EXCLUDED.recovery_codes,
		recovery_codes_generated_at = EXCLUDED.recovery_codes_generated_at,
		safe_devices = EXCLUDED.safe_devices,
		enabled_at = EXCLUDED.enabled_at,
		updated_at = EXCLUDED.updated_at,
		version = two_factor_authentications.version + 1
	RETURNING id, version, created_at`

	deleteByOwner = `DELETE FROM two_factor_authentications WHERE owner_type = $1 AND owner_id = $2`
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a twofactor.Store backed by PostgreSQL.
// The shared secret and the recovery codes are encrypted with a key derived for each owner.
// Update locks the owner's row with SELECT ... FOR UPDATE for the duration of the callback.
type Store struct {
	pool   *pgxpool.Pool
	cipher *secrets.Cipher
	owned  bool
}

var _ twofactor.Store = (*Store)(nil)

func New(pool *pgxpool.Pool, cipher *secrets.Cipher) (*Store, error) {
	if pool == nil {
		return nil, ErrMissingPool
	}
	if cipher == nil {
		return nil, ErrMissingCipher
	}
	return &Store{pool: pool, cipher: cipher}, nil
}

// Open connects using cfg, optionally migrates, and returns a store that owns the pool.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	cipher, err := secrets.NewCipherFromString(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	pool, err := pg.Connect(ctx, cfg.Config)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := Migrate(ctx, pool, cfg.MigrationsTable, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &Store{pool: pool, cipher: cipher, owned: true}, nil
}

// Pool exposes the connection pool, for health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close releases the pool if the store opened it.
func (s *Store) Close() {
	if s.owned {
		s.pool.Close()
	}
}

func (s *Store) Load(ctx context.Context, owner twofactor.Owner) (*twofactor.Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return s.load(ctx, s.pool, owner, false)
}

func (s *Store) Save(ctx context.Context, record *twofactor.Record) error {
	if err := record.Owner.Validate(); err != nil {
		return err
	}
	return s.save(ctx, s.pool, record)
}

func (s *Store) Delete(ctx context.Context, owner twofactor.Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, deleteByOwner, owner.Type, owner.ID); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, owner twofactor.Owner, fn func(*twofactor.Record) error) (*twofactor.Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec, err := s.load(ctx, tx, owner, true)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return rec, nil
}

func (s *Store) load(ctx context.Context, q querier, owner twofactor.Owner, lock bool) (*twofactor.Record, error) {
	query := selectByOwner
	if lock {
		query += " FOR UPDATE"
	}

	var (
		rec                    twofactor.Record
		secret, codes, devices []byte
		algorithm              string
	)
	err := q.QueryRow(ctx, query, owner.Type, owner.ID).Scan(
		&rec.ID, &rec.Owner.Type, &rec.Owner.ID, &secret, &rec.Label,
		&rec.Params.Digits, &rec.Params.Period, &rec.Params.Window, &algorithm,
		&codes, &rec.RecoveryCodesGeneratedAt, &devices, &rec.EnabledAt,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, twofactor.ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	rec.Params.Algorithm = totp.Algorithm(algorithm)

	if err := s.decode(&rec, secret, codes, devices); err != nil {
		return nil, errors.Join(ErrCorruptedRecord, err)
	}
	normalizeTimes(&rec)
	return &rec, nil
}

func (s *Store) save(ctx context.Context, q querier, rec *twofactor.Record) error {
	secret, codes, devices, err := s.encode(rec)
	if err != nil {
		return err
	}

	err = q.QueryRow(ctx, upsert,
		rec.ID, rec.Owner.Type, rec.Owner.ID, secret, rec.Label,
		rec.Params.Digits, rec.Params.Period, rec.Params.Window, string(rec.Params.Algorithm),
		codes, rec.RecoveryCodesGeneratedAt, devices, rec.EnabledAt,
		rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID, &rec.Version, &rec.CreatedAt)
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return nil
}

func (s *Store) encode(rec *twofactor.Record) (secret, codes, devices []byte, err error) {
	scope := rec.Owner.String()

	secret, err = s.cipher.Encrypt(scope, []byte(rec.Secret))
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rec.RecoveryCodes) > 0 {
		plain, err := json.Marshal(rec.RecoveryCodes)
		if err != nil {
			return nil, nil, nil, err
		}
		if codes, err = s.cipher.Encrypt(scope, plain); err != nil {
			return nil, nil, nil, err
		}
	}
	if len(rec.SafeDevices) > 0 {
		if devices, err = json.Marshal(rec.SafeDevices); err != nil {
			return nil, nil, nil, err
		}
	}
	return secret, codes, devices, nil
}

func (s *Store) decode(rec *twofactor.Record, secret, codes, devices []byte) error {
	scope := rec.Owner.String()

	plain, err := s.cipher.Decrypt(scope, secret)
	if err != nil {
		return err
	}
	rec.Secret = string(plain)

	if len(codes) > 0 {
		plain, err := s.cipher.Decrypt(scope, codes)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(plain, &rec.RecoveryCodes); err != nil {
			return err
		}
	}
	if len(devices) > 0 {
		if err := json.Unmarshal(devices, &rec.SafeDevices); err != nil {
			return err
		}
	}
	return nil
}

// normalizeTimes converts timestamps read from the driver, which come back in the local zone, to UTC.
func normalizeTimes(rec *twofactor.Record) {
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	rec.RecoveryCodesGeneratedAt = utcPtr(rec.RecoveryCodesGeneratedAt)
	rec.EnabledAt = utcPtr(rec.EnabledAt)
	for i := range rec.RecoveryCodes {
		rec.RecoveryCodes[i].UsedAt = utcPtr(rec.RecoveryCodes[i].UsedAt)
	}
	for i := range rec.SafeDevices {
		rec.SafeDevices[i].AddedAt = rec.SafeDevices[i].AddedAt.UTC()
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
