package mongostore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/twofactor/pkg/mongo"
	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

const (
	DefaultCollection  = "two_factor_authentications"
	DefaultMaxAttempts = 5
)

// Store is a twofactor.Store backed by a MongoDB collection.
// Update is optimistic: the write only applies if the version read is still
// current, and is retried up to the configured number of attempts.
type Store struct {
	coll        *mongo.Collection
	cipher      *secrets.Cipher
	collection  string
	maxAttempts int
	owned       bool
}

var _ twofactor.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithMaxAttempts bounds the optimistic retries of Update.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func New(db *mongo.Database, cipher *secrets.Cipher, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrMissingDatabase
	}
	if cipher == nil {
		return nil, ErrMissingCipher
	}
	s := &Store{
		cipher:      cipher,
		collection:  DefaultCollection,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.coll = db.Collection(s.collection)
	return s, nil
}

// Open connects using cfg, creates the indexes and returns a store that owns the client.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cipher, err := secrets.NewCipherFromString(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	db, err := mongox.ConnectDatabase(ctx, cfg.Config)
	if err != nil {
		return nil, err
	}
	s, err := New(db, cipher, WithCollection(cfg.Collection), WithMaxAttempts(cfg.MaxAttempts))
	if err != nil {
		_ = db.Client().Disconnect(ctx)
		return nil, err
	}
	s.owned = true
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close disconnects the client if the store opened it.
func (s *Store) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.coll.Database().Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique owner index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_type", Value: 1}, {Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("owner_unique"),
	})
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, owner twofactor.Owner) (*twofactor.Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var doc document
	err := s.coll.FindOne(ctx, ownerFilter(owner)).Decode(&doc)
	if mongox.IsNotFoundError(err) {
		return nil, twofactor.ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	rec, err := doc.decode(s.cipher)
	if err != nil {
		return nil, errors.Join(ErrCorruptedRecord, err)
	}
	return rec, nil
}

// Save upserts the owner's record. An existing document keeps its ID and creation time.
func (s *Store) Save(ctx context.Context, record *twofactor.Record) error {
	if err := record.Owner.Validate(); err != nil {
		return err
	}
	doc, err := encode(s.cipher, record)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":         mutableFields(doc),
		"$setOnInsert": bson.M{"_id": doc.ID, "created_at": doc.CreatedAt},
		"$inc":         bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1, "version": 1, "created_at": 1})

	var saved document
	err = s.coll.FindOneAndUpdate(ctx, ownerFilter(record.Owner), update, opts).Decode(&saved)
	if mongox.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted first; the retry takes the update path.
		err = s.coll.FindOneAndUpdate(ctx, ownerFilter(record.Owner), update, opts).Decode(&saved)
	}
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}

	id, err := uuid.Parse(saved.ID)
	if err != nil {
		return errors.Join(ErrCorruptedRecord, err)
	}
	record.ID = id
	record.Version = saved.Version
	record.CreatedAt = saved.CreatedAt.UTC()
	return nil
}

func (s *Store) Delete(ctx context.Context, owner twofactor.Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, ownerFilter(owner)); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

// Update reloads and reapplies fn when another writer changed the record in
// between, and gives up with twofactor.ErrRecordConflict after the last attempt.
func (s *Store) Update(ctx context.Context, owner twofactor.Owner, fn func(*twofactor.Record) error) (*twofactor.Record, error) {
	for range s.maxAttempts {
		rec, err := s.Load(ctx, owner)
		if err != nil {
			return nil, err
		}
		expected := rec.Version

		if err := fn(rec); err != nil {
			return nil, err
		}
		doc, err := encode(s.cipher, rec)
		if err != nil {
			return nil, err
		}

		filter := ownerFilter(owner)
		filter["version"] = expected
		res, err := s.coll.UpdateOne(ctx, filter, bson.M{
			"$set": mutableFields(doc),
			"$inc": bson.M{"version": 1},
		})
		if err != nil {
			return nil, errors.Join(ErrQueryFailed, err)
		}
		if res.MatchedCount == 1 {
			rec.Version = expected + 1
			return rec, nil
		}
	}
	return nil, twofactor.ErrRecordConflict
}

func ownerFilter(owner twofactor.Owner) bson.M {
	return bson.M{"owner_type": owner.Type, "owner_id": owner.ID}
}

// mutableFields lists everything but the identity, the owner and the version.
func mutableFields(d *document) bson.M {
	return bson.M{
		"shared_secret":               d.SharedSecret,
		"label":                       d.Label,
		"digits":                      d.Digits,
		"period":                      d.Period,
		"window":                      d.Window,
		"algorithm":                   d.Algorithm,
		"recovery_codes":              d.RecoveryCodes,
		"recovery_codes_generated_at": d.RecoveryCodesGeneratedAt,
		"safe_devices":                d.SafeDevices,
		"enabled_at":                  d.EnabledAt,
		"updated_at":                  d.UpdatedAt,
	}
}
