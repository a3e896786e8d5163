// Package token stores the per-account OAuth token records issued by the
// upstream. Records are scoped by (upstream user, client) and carry
// independent access and refresh expiries.
package token

import "time"

// Record is one issued token set. The store may hold several records per
// (user, client) pair; the one with the latest access expiry is current.
type Record struct {
	UserID                string    `json:"user_id" bson:"user_id"`
	ClientID              string    `json:"client_id" bson:"client_id"`
	AccessToken           string    `json:"access_token" bson:"access_token"`
	RefreshToken          string    `json:"refresh_token" bson:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at" bson:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at" bson:"refresh_token_expires_at"`
	IssuedAt              time.Time `json:"issued_at" bson:"issued_at"`
}
