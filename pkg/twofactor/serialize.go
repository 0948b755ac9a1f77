package twofactor

import (
	"encoding/json"
	"errors"

	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// ToURI builds the otpauth provisioning URI for authenticator apps.
func (r *Record) ToURI(issuer string) (string, error) {
	uri, err := totp.BuildURI(totp.URIParams{
		Secret:    r.Secret,
		Label:     r.Label,
		Issuer:    issuer,
		Algorithm: r.Params.Algorithm,
		Digits:    r.Params.Digits,
	})
	if err != nil {
		return "", errors.Join(ErrFailedToRender, err)
	}
	return uri, nil
}

// ToQR renders the provisioning URI as a PNG data URI suitable for an <img> src.
func (r *Record) ToQR(issuer string, size, margin int) (string, error) {
	uri, err := r.ToURI(issuer)
	if err != nil {
		return "", err
	}
	png, err := qrcode.GenerateWithMargin(uri, size, margin)
	if err != nil {
		return "", errors.Join(ErrFailedToRender, err)
	}
	return qrcode.DataURI(png), nil
}

// GroupedSecret returns the secret in 4-character groups for manual entry.
func (r *Record) GroupedSecret() string {
	return totp.GroupSecret(r.Secret)
}

// Provisioning is the view handed to an owner while enrolling an authenticator.
// Its JSON and string forms are the provisioning URI.
type Provisioning struct {
	Issuer   string
	Record   *Record
	QRSize   int
	QRMargin int
}

func (p Provisioning) URI() (string, error) {
	return p.Record.ToURI(p.Issuer)
}

func (p Provisioning) QR() (string, error) {
	return p.Record.ToQR(p.Issuer, p.QRSize, p.QRMargin)
}

func (p Provisioning) GroupedSecret() string {
	return p.Record.GroupedSecret()
}

// String returns the URI, or an empty string when it cannot be built.
func (p Provisioning) String() string {
	uri, err := p.URI()
	if err != nil {
		return ""
	}
	return uri
}

func (p Provisioning) MarshalJSON() ([]byte, error) {
	uri, err := p.URI()
	if err != nil {
		return nil, err
	}
	return json.Marshal(uri)
}
