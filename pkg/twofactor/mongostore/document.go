package mongostore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

type document struct {
	ID                       string                 `bson:"_id"`
	OwnerType                string                 `bson:"owner_type"`
	OwnerID                  string                 `bson:"owner_id"`
	SharedSecret             []byte                 `bson:"shared_secret"`
	Label                    string                 `bson:"label"`
	Digits                   int                    `bson:"digits"`
	Period                   int                    `bson:"period"`
	Window                   int                    `bson:"window"`
	Algorithm                string                 `bson:"algorithm"`
	RecoveryCodes            []byte                 `bson:"recovery_codes,omitempty"`
	RecoveryCodesGeneratedAt *time.Time             `bson:"recovery_codes_generated_at"`
	SafeDevices              []twofactor.SafeDevice `bson:"safe_devices,omitempty"`
	EnabledAt                *time.Time             `bson:"enabled_at"`
	Version                  int64                  `bson:"version"`
	CreatedAt                time.Time              `bson:"created_at"`
	UpdatedAt                time.Time              `bson:"updated_at"`
}

func encode(c *secrets.Cipher, rec *twofactor.Record) (*document, error) {
	scope := rec.Owner.String()
	secret, err := c.Encrypt(scope, []byte(rec.Secret))
	if err != nil {
		return nil, err
	}

	doc := &document{
		ID:                       rec.ID.String(),
		OwnerType:                rec.Owner.Type,
		OwnerID:                  rec.Owner.ID,
		SharedSecret:             secret,
		Label:                    rec.Label,
		Digits:                   rec.Params.Digits,
		Period:                   rec.Params.Period,
		Window:                   rec.Params.Window,
		Algorithm:                string(rec.Params.Algorithm),
		RecoveryCodesGeneratedAt: rec.RecoveryCodesGeneratedAt,
		SafeDevices:              rec.SafeDevices,
		EnabledAt:                rec.EnabledAt,
		Version:                  rec.Version,
		CreatedAt:                rec.CreatedAt,
		UpdatedAt:                rec.UpdatedAt,
	}
	if len(rec.RecoveryCodes) > 0 {
		plain, err := json.Marshal(rec.RecoveryCodes)
		if err != nil {
			return nil, err
		}
		if doc.RecoveryCodes, err = c.Encrypt(scope, plain); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (d *document) decode(c *secrets.Cipher) (*twofactor.Record, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner := twofactor.NewOwner(d.OwnerType, d.OwnerID)
	scope := owner.String()

	secret, err := c.Decrypt(scope, d.SharedSecret)
	if err != nil {
		return nil, err
	}

	rec := &twofactor.Record{
		ID:     id,
		Owner:  owner,
		Secret: string(secret),
		Params: totp.Params{
			Digits:    d.Digits,
			Period:    d.Period,
			Window:    d.Window,
			Algorithm: totp.Algorithm(d.Algorithm),
		},
		Label:                    d.Label,
		RecoveryCodesGeneratedAt: utc(d.RecoveryCodesGeneratedAt),
		SafeDevices:              d.SafeDevices,
		EnabledAt:                utc(d.EnabledAt),
		Version:                  d.Version,
		CreatedAt:                d.CreatedAt.UTC(),
		UpdatedAt:                d.UpdatedAt.UTC(),
	}
	for i := range rec.SafeDevices {
		rec.SafeDevices[i].AddedAt = rec.SafeDevices[i].AddedAt.UTC()
	}

	if len(d.RecoveryCodes) > 0 {
		plain, err := c.Decrypt(scope, d.RecoveryCodes)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(plain, &rec.RecoveryCodes); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
