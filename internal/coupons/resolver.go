package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
)

// Resolver validates coupon codes against the active flag and expiry.
type Resolver interface {
	Resolve(ctx context.Context, code string) (*models.Coupon, error)
}

type resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver wires a coupon resolver. A nil clock defaults to time.Now.
func NewResolver(repo Repository, now func() time.Time) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &resolver{repo: repo, now: now}, nil
}

// Resolve returns the coupon for an exact code match, or nil when the code
// is unknown, inactive, or expired. An expired coupon is indistinguishable
// from a missing one to the caller.
func (r *resolver) Resolve(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	coupon, err := r.repo.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, nil
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(r.now()) {
		return nil, nil
	}
	return coupon, nil
}
