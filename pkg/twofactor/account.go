package twofactor

import (
	"context"
	"time"
)

// Authenticatable is implemented by host account types that support two-factor authentication.
type Authenticatable interface {
	TwoFactorOwner() Owner
	// TwoFactorLabel is shown in authenticator apps, usually an email address.
	TwoFactorLabel() string
}

// AccountWithTwoFactor is the per-account view used while authenticating.
type AccountWithTwoFactor interface {
	Owner() Owner
	HasTwoFactorEnabled(ctx context.Context) (bool, error)
	ValidateTwoFactorCode(ctx context.Context, code string) (bool, error)
	IsSafeDevice(ctx context.Context, token string) (bool, error)
	AddSafeDevice(ctx context.Context, ip string) (token string, maxAge time.Duration, err error)
}

// Account binds principal to the service. ok is false when principal does not
// implement Authenticatable or has an invalid owner.
func (s *Service) Account(principal any) (AccountWithTwoFactor, bool) {
	if acct, ok := principal.(AccountWithTwoFactor); ok {
		return acct, true
	}
	auth, ok := principal.(Authenticatable)
	if !ok || auth == nil {
		return nil, false
	}
	owner := auth.TwoFactorOwner()
	if owner.Validate() != nil {
		return nil, false
	}
	return &account{svc: s, owner: owner, label: auth.TwoFactorLabel()}, true
}

// Enroll starts enrollment for principal using its label.
func (s *Service) Enroll(ctx context.Context, principal Authenticatable) (Provisioning, error) {
	owner := principal.TwoFactorOwner()
	if _, err := s.Create(ctx, owner, principal.TwoFactorLabel()); err != nil {
		return Provisioning{}, err
	}
	return s.Provisioning(ctx, owner)
}

type account struct {
	svc   *Service
	owner Owner
	label string
}

func (a *account) Owner() Owner { return a.owner }

func (a *account) HasTwoFactorEnabled(ctx context.Context) (bool, error) {
	return a.svc.HasTwoFactorEnabled(ctx, a.owner)
}

func (a *account) ValidateTwoFactorCode(ctx context.Context, code string) (bool, error) {
	return a.svc.ValidateCode(ctx, a.owner, code)
}

func (a *account) IsSafeDevice(ctx context.Context, token string) (bool, error) {
	return a.svc.IsSafeDevice(ctx, a.owner, token)
}

func (a *account) AddSafeDevice(ctx context.Context, ip string) (string, time.Duration, error) {
	return a.svc.AddSafeDevice(ctx, a.owner, ip)
}
