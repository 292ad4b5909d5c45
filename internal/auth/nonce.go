// Package auth issues single-use login nonces for wallet signature sign-in.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/Asad272002/TaskWiser-V2/internal/store"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

const (
	// NonceTTL is how long an issued nonce stays valid.
	NonceTTL = 10 * time.Minute
	// NonceBytes is the amount of randomness per nonce.
	NonceBytes = 32
)

// Issuer creates and consumes nonces.
type Issuer struct {
	store  store.NonceStore
	ttl    time.Duration
	random io.Reader
	now    func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL overrides NonceTTL.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) { i.ttl = ttl }
}

// WithRandom overrides the randomness source.
func WithRandom(r io.Reader) Option {
	return func(i *Issuer) { i.random = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an issuer backed by s.
func NewIssuer(s store.NonceStore, opts ...Option) *Issuer {
	i := &Issuer{
		store:  s,
		ttl:    NonceTTL,
		random: rand.Reader,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue generates a fresh nonce for address, replacing any earlier one.
func (i *Issuer) Issue(ctx context.Context, address string) (*store.Nonce, error) {
	if strings.TrimSpace(address) == "" {
		return nil, wiserr.WithDetails(wiserr.ErrInvalidInput, map[string]string{"reason": "wallet address is required"})
	}

	buf := make([]byte, NonceBytes)
	if _, err := io.ReadFull(i.random, buf); err != nil {
		return nil, wiserr.Wrap(err, "generating nonce")
	}

	now := i.now().UTC()
	n := store.Nonce{
		Address:   store.NonceKey(address),
		Value:     hex.EncodeToString(buf),
		CreatedAt: now,
		ExpiresAt: now.Add(i.ttl),
	}
	if err := i.store.PutNonce(ctx, n); err != nil {
		return nil, wiserr.Wrap(err, "storing nonce")
	}
	return &n, nil
}

// Consume checks value against the live nonce for address and deletes it
// on a match. The delete is conditional on the value, so each nonce
// verifies at most once even under concurrent sign-ins.
func (i *Issuer) Consume(ctx context.Context, address, value string) error {
	n, err := i.store.GetNonce(ctx, address)
	if err != nil {
		return err
	}
	if n.Expired(i.now()) || subtle.ConstantTimeCompare([]byte(n.Value), []byte(value)) != 1 {
		return wiserr.ErrNonceNotFound
	}
	return i.store.ConsumeNonce(ctx, address, value)
}
