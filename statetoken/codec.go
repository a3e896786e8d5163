// Package statetoken creates and verifies the signed state value that
// carries the shop domain across the upstream authorization redirect. The
// redirect leg crosses a domain we do not control, so the tenant identity
// must be self-certifying rather than looked up from a server-side session.
package statetoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/pkg/errors"
)

const nonceBytes = 12

// Codec packs and unpacks state tokens of the form
// "<shop>:<nonce>:<hex hmac-sha256 of shop:nonce>".
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("[statetoken NewCodec] signing secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Pack signs the shop domain together with a fresh random nonce.
func (c *Codec) Pack(shop string) (string, error) {
	if shop == "" {
		return "", apperrors.ErrMissingTenant
	}
	if strings.Contains(shop, ":") {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "shop domain must not contain ':'")
	}

	nonceRaw := make([]byte, nonceBytes)
	if _, err := rand.Read(nonceRaw); err != nil {
		return "", fmt.Errorf("[statetoken Pack] failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceRaw)

	payload := shop + ":" + nonce
	return payload + ":" + c.sign(payload), nil
}

// Unpack verifies the signature and returns the shop domain and the nonce.
// Verification is constant-time; a state of the wrong shape, or with a
// signature of the wrong length or content, fails with ErrInvalidState.
func (c *Codec) Unpack(state string) (shop, nonce string, err error) {
	parts := strings.Split(state, ":")
	if len(parts) != 3 {
		return "", "", apperrors.ErrInvalidState
	}
	shop, nonce, sig := parts[0], parts[1], parts[2]

	expected := c.sign(shop + ":" + nonce)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", "", apperrors.ErrInvalidState
	}
	return shop, nonce, nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
