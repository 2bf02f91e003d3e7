// internal/gateway/reference_test.go
package gateway

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutReferenceRoundTrip(t *testing.T) {
	original := &CheckoutReference{
		ProductID:  uuid.New(),
		BuyerEmail: "buyer@example.com",
		BuyerName:  "Maria Silva",
	}

	encoded, err := original.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "v1."))

	parsed, err := ParseCheckoutReference(encoded)
	require.NoError(t, err)

	assert.Equal(t, original.ProductID, parsed.ProductID)
	assert.Equal(t, original.BuyerEmail, parsed.BuyerEmail)
	assert.Equal(t, original.BuyerName, parsed.BuyerName)
}

func TestCheckoutReferenceEncodeRejectsIncomplete(t *testing.T) {
	_, err := (&CheckoutReference{BuyerEmail: "buyer@example.com"}).Encode()
	assert.Error(t, err)

	_, err = (&CheckoutReference{ProductID: uuid.New()}).Encode()
	assert.Error(t, err)
}

func TestParseCheckoutReferenceMalformed(t *testing.T) {
	valid, err := (&CheckoutReference{
		ProductID:  uuid.New(),
		BuyerEmail: "buyer@example.com",
	}).Encode()
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no version prefix", strings.TrimPrefix(valid, "v1.")},
		{"wrong version", "v2." + strings.TrimPrefix(valid, "v1.")},
		{"version only", "v1."},
		{"not base64", "v1.!!not-base64!!"},
		{"legacy dash format", uuid.New().String() + "-buyer@example.com"},
		{"valid base64, not json", "v1." + base64.RawURLEncoding.EncodeToString([]byte("plain text"))},
		{"json missing fields", "v1." + base64.RawURLEncoding.EncodeToString([]byte(`{"buyer_name":"x"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCheckoutReference(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedReference)
		})
	}
}
