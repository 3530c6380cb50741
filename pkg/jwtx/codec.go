// Package jwtx implements the service's token codec: HS256-signed access
// and refresh tokens bound to two independent secrets and two independent
// lifetimes. Leaking one secret never lets an attacker mint the other
// category of token. Tokens are stateless - verification is a signature
// plus expiry check, no store lookup.
package jwtx

import (
	"crypto/subtle"
	"errors"
	"time"
)

// CodecConfig carries everything needed to construct a Codec.
type CodecConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration // zero means DefaultAccessTokenTTL
	RefreshTTL    time.Duration // zero means DefaultRefreshTokenTTL
	Issuer        string
}

// Codec issues and verifies the two bearer-token categories.
type Codec struct {
	accessSigner    *HS256Signer
	refreshSigner   *HS256Signer
	accessVerifier  *HS256Verifier
	refreshVerifier *HS256Verifier

	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

// NewCodec validates the secrets and builds a Codec. The two secrets must
// differ, otherwise the access/refresh privilege separation is void.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.AccessSecret) == len(cfg.RefreshSecret) &&
		subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, errors.New("jwtx: access and refresh secrets must be distinct")
	}

	accessSigner, err := NewSignerHS256(cfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	refreshSigner, err := NewSignerHS256(cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	return &Codec{
		accessSigner:    accessSigner,
		refreshSigner:   refreshSigner,
		accessVerifier:  NewVerifierHS256(cfg.AccessSecret, cfg.Issuer),
		refreshVerifier: NewVerifierHS256(cfg.RefreshSecret, cfg.Issuer),
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
		issuer:          cfg.Issuer,
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken signs a short-lived token carrying the user's id and role.
func (c *Codec) IssueAccessToken(userID, role string) (string, error) {
	claims := NewAccessClaims(userID, role, c.accessTTL, c.issuer, time.Now().UTC())
	return c.accessSigner.Sign(claims)
}

// IssueRefreshToken signs a long-lived token carrying only the user's id.
func (c *Codec) IssueRefreshToken(userID string) (string, error) {
	claims := NewRefreshClaims(userID, c.refreshTTL, c.issuer, time.Now().UTC())
	return c.refreshSigner.Sign(claims)
}

// VerifyAccessToken validates a token against the access secret.
func (c *Codec) VerifyAccessToken(token string) (Claims, error) {
	return c.accessVerifier.Verify(token)
}

// VerifyRefreshToken validates a token against the refresh secret.
func (c *Codec) VerifyRefreshToken(token string) (Claims, error) {
	return c.refreshVerifier.Verify(token)
}

// AccessVerifier exposes the access-token verifier for the HTTP
// authentication middleware.
func (c *Codec) AccessVerifier() Verifier { return c.accessVerifier }
