// internal/gateway/reference.go
package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedReference signals an external reference that could not be
// decoded into a checkout reference. Payments carrying one are rejected
// before any sale is created.
var ErrMalformedReference = errors.New("malformed checkout reference")

const referenceVersion = "v1"

// CheckoutReference is the structured payload embedded in a gateway
// payment (Stripe metadata, MercadoPago external_reference) that links
// it back to the product being bought. Encoded as "v1.<base64url(json)>"
// so the format can evolve without breaking in-flight checkouts.
type CheckoutReference struct {
	ProductID  uuid.UUID `json:"product_id"`
	BuyerEmail string    `json:"buyer_email"`
	BuyerName  string    `json:"buyer_name,omitempty"`
}

func (r *CheckoutReference) Encode() (string, error) {
	if r.ProductID == uuid.Nil {
		return "", fmt.Errorf("checkout reference requires a product id")
	}
	if r.BuyerEmail == "" {
		return "", fmt.Errorf("checkout reference requires a buyer email")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode checkout reference: %w", err)
	}

	return referenceVersion + "." + base64.RawURLEncoding.EncodeToString(data), nil
}

func ParseCheckoutReference(raw string) (*CheckoutReference, error) {
	version, encoded, found := strings.Cut(raw, ".")
	if !found || version != referenceVersion || encoded == "" {
		return nil, ErrMalformedReference
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedReference
	}

	var ref CheckoutReference
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, ErrMalformedReference
	}
	if ref.ProductID == uuid.Nil || ref.BuyerEmail == "" {
		return nil, ErrMalformedReference
	}

	return &ref, nil
}
