// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type usernameFixture struct {
	Username string `validate:"username"`
}

type passwordFixture struct {
	Password string `validate:"strong_password"`
}

type currencyFixture struct {
	Currency string `validate:"currency"`
}

func TestUsernameValidation(t *testing.T) {
	valid := []string{"maria", "joao_silva", "loja123", "abc"}
	for _, username := range valid {
		assert.NoError(t, ValidateStruct(&usernameFixture{Username: username}), username)
	}

	invalid := []string{"ab", "Maria", "joão", "has space", "has-dash", "a@b"}
	for _, username := range invalid {
		assert.Error(t, ValidateStruct(&usernameFixture{Username: username}), username)
	}
}

func TestStrongPasswordValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&passwordFixture{Password: "Sup3rS3cret!"}))

	weak := []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoNumbers!", "NoSpecial123"}
	for _, password := range weak {
		assert.Error(t, ValidateStruct(&passwordFixture{Password: password}), password)
	}
}

func TestCurrencyValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&currencyFixture{Currency: "BRL"}))
	assert.NoError(t, ValidateStruct(&currencyFixture{Currency: "USD"}))

	assert.Error(t, ValidateStruct(&currencyFixture{Currency: "EUR"}))
	assert.Error(t, ValidateStruct(&currencyFixture{Currency: "brl"}))
	assert.Error(t, ValidateStruct(&currencyFixture{Currency: ""}))
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&currencyFixture{Currency: "EUR"})
	assert.Error(t, err)

	errs := GetValidationErrors(err)
	assert.Len(t, errs, 1)
	assert.Equal(t, "currency", errs[0].Field)
	assert.Equal(t, "Currency must be BRL or USD", errs[0].Message)
}
