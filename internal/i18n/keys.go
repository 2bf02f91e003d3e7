// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User / storefront
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserSuspended      = "user.suspended"
	KeyStorefrontNotFound = "storefront.not_found"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"
	KeyProductInactive = "product.inactive"

	// Checkout / payments
	KeyCheckoutCreated       = "checkout.created"
	KeyPaymentMethodInvalid  = "payment.method_invalid"
	KeyPaymentCurrencyNeeded = "payment.currency_required"

	// Webhooks
	KeyWebhookSignatureInvalid = "webhook.signature_invalid"
	KeyWebhookMalformedRef     = "webhook.malformed_reference"

	// Sales
	KeySaleNotFound = "sale.not_found"

	// Downloads
	KeyDownloadTokenInvalid = "download.token_invalid"
	KeyDownloadLinkStale    = "download.link_stale"
	KeyDownloadMissingToken = "download.missing_token"

	// Admin
	KeyAdminAccessDenied      = "admin.access_denied"
	KeyAdminUserStatusUpdated = "admin.user_status_updated"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
