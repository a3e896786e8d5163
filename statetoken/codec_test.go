package statetoken_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/centralhq/shopify-relay/internal/apperrors"
	"github.com/centralhq/shopify-relay/statetoken"
)

const testSecret = "test-state-secret"

func TestNewCodec(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := statetoken.NewCodec("")
		require.Error(t, err)
	})

	t.Run("creates with secret", func(t *testing.T) {
		codec, err := statetoken.NewCodec(testSecret)
		require.NoError(t, err)
		require.NotNil(t, codec)
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := statetoken.NewCodec(testSecret)
	require.NoError(t, err)

	for _, shop := range []string{"shop-a", "my-store.myshopify.com", "x"} {
		t.Run(shop, func(t *testing.T) {
			state, err := codec.Pack(shop)
			require.NoError(t, err)

			unpacked, nonce, err := codec.Unpack(state)
			require.NoError(t, err)
			require.Equal(t, shop, unpacked)
			require.Len(t, nonce, 24) // 12 random bytes, hex encoded
		})
	}
}

func TestCodec_PackValidation(t *testing.T) {
	codec, err := statetoken.NewCodec(testSecret)
	require.NoError(t, err)

	t.Run("empty shop", func(t *testing.T) {
		_, err := codec.Pack("")
		require.ErrorIs(t, err, apperrors.ErrMissingTenant)
	})

	t.Run("shop with colon", func(t *testing.T) {
		_, err := codec.Pack("shop:injected")
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestCodec_TamperDetection(t *testing.T) {
	codec, err := statetoken.NewCodec(testSecret)
	require.NoError(t, err)

	state, err := codec.Pack("shop-a")
	require.NoError(t, err)

	// Flipping any single character of payload or signature must fail.
	for i := 0; i < len(state); i++ {
		if state[i] == ':' {
			continue // changing the shape is covered separately
		}
		flipped := state[i] + 1
		if flipped == ':' {
			flipped++
		}
		tampered := state[:i] + string(flipped) + state[i+1:]

		_, _, err := codec.Unpack(tampered)
		require.ErrorIs(t, err, apperrors.ErrInvalidState, "position %d", i)
	}
}

func TestCodec_UnpackShape(t *testing.T) {
	codec, err := statetoken.NewCodec(testSecret)
	require.NoError(t, err)

	state, err := codec.Pack("shop-a")
	require.NoError(t, err)

	t.Run("too few parts", func(t *testing.T) {
		parts := strings.Split(state, ":")
		_, _, err := codec.Unpack(parts[0] + ":" + parts[2])
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("too many parts", func(t *testing.T) {
		_, _, err := codec.Unpack(state + ":extra")
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("empty state", func(t *testing.T) {
		_, _, err := codec.Unpack("")
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("truncated signature", func(t *testing.T) {
		_, _, err := codec.Unpack(state[:len(state)-2])
		require.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestCodec_DifferentSecrets(t *testing.T) {
	codecA, err := statetoken.NewCodec("secret-a")
	require.NoError(t, err)
	codecB, err := statetoken.NewCodec("secret-b")
	require.NoError(t, err)

	state, err := codecA.Pack("shop-a")
	require.NoError(t, err)

	_, _, err = codecB.Unpack(state)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}
