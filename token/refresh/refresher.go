// Package refresh decides, per delegated call, whether a stored access
// token is usable as-is, must be refreshed, or is unrecoverable. There is
// no background refresh daemon; the first request to observe expiry pays
// the refresh latency.
package refresh

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/token"
	"github.com/centralhq/shopify-relay/upstream"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Exchanger performs the refresh-grant call against the upstream.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (*upstream.TokenSet, error)
}

// Refresher validates and lazily refreshes access tokens. Concurrent
// requests that observe the same expired token share one refresh call per
// (user, client) pair; upstream refresh-token rotation would otherwise
// make the second caller fail even though a valid token now exists.
type Refresher struct {
	repo                 token.Repo
	exchanger            Exchanger
	defaultRefreshExpiry time.Duration
	group                singleflight.Group
}

func NewRefresher(repo token.Repo, exchanger Exchanger, defaultRefreshExpiry time.Duration) (*Refresher, error) {
	if repo == nil {
		return nil, errors.New("[NewRefresher] token repo is required")
	}
	if exchanger == nil {
		return nil, errors.New("[NewRefresher] exchanger is required")
	}

	return &Refresher{
		repo:                 repo,
		exchanger:            exchanger,
		defaultRefreshExpiry: defaultRefreshExpiry,
	}, nil
}

// EnsureValid returns a usable access token for the record, refreshing it
// when needed. An expiry exactly equal to now counts as expired. Fails
// with apperrors.ErrTokenUnavailable when neither token is usable.
func (r *Refresher) EnsureValid(ctx context.Context, record *token.Record) (string, error) {
	if record == nil {
		return "", apperrors.ErrNoToken
	}

	if record.AccessTokenExpiresAt.After(NowTimeFunc()) {
		return record.AccessToken, nil
	}

	if record.RefreshToken == "" || !record.RefreshTokenExpiresAt.After(NowTimeFunc()) {
		return "", apperrors.ErrTokenUnavailable
	}

	accessToken, err, _ := r.group.Do(record.UserID+"|"+record.ClientID, func() (interface{}, error) {
		return r.refresh(ctx, record)
	})
	if err != nil {
		return "", err
	}
	return accessToken.(string), nil
}

func (r *Refresher) refresh(ctx context.Context, record *token.Record) (string, error) {
	// Another request (or another relay instance) may have refreshed while
	// this one waited; a store read is cheaper than burning the refresh
	// token twice under rotation.
	if tok, ok := r.currentValid(ctx, record); ok {
		return tok, nil
	}

	set, err := r.exchanger.Refresh(ctx, record.RefreshToken)
	if err != nil {
		log.Warn().
			Err(err).
			Str("user_id", record.UserID).
			Msg("upstream token refresh failed")

		if tok, ok := r.currentValid(ctx, record); ok {
			return tok, nil
		}
		return "", apperrors.Wrapf(apperrors.ErrTokenUnavailable, "refresh failed")
	}

	now := NowTimeFunc()
	refreshed := token.Record{
		UserID:       record.UserID,
		ClientID:     record.ClientID,
		AccessToken:  set.AccessToken,
		RefreshToken: set.RefreshToken,
		IssuedAt:     now,
	}
	refreshed.AccessTokenExpiresAt, refreshed.RefreshTokenExpiresAt = set.ExpiryTimes(now, r.defaultRefreshExpiry)
	if refreshed.RefreshToken == "" {
		// No rotation: the old refresh token and its expiry stay in force.
		refreshed.RefreshToken = record.RefreshToken
		refreshed.RefreshTokenExpiresAt = record.RefreshTokenExpiresAt
	}

	if err := r.repo.Upsert(ctx, &refreshed); err != nil {
		// The refreshed token is still good for this request; the next one
		// will refresh again.
		log.Error().
			Err(err).
			Str("user_id", record.UserID).
			Msg("failed to persist refreshed token")
	}

	return refreshed.AccessToken, nil
}

func (r *Refresher) currentValid(ctx context.Context, record *token.Record) (string, bool) {
	current, err := r.repo.Get(ctx, record.UserID, record.ClientID)
	if err != nil {
		return "", false
	}
	if current.AccessTokenExpiresAt.After(NowTimeFunc()) {
		return current.AccessToken, true
	}
	return "", false
}
