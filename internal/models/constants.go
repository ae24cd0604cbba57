package models

// Client-observed booking lifecycle states. The backend never reports these;
// they describe what the caller knows between request and response.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusDeleted   = "deleted"
)

// Payment methods accepted by the booking form.
const (
	PaymentCreditCard   = "credit card"
	PaymentDebitCard    = "debit card"
	PaymentBankTransfer = "bank transfer"
)

const (
	// DefaultSelectionTTL время жизни черновика выбора в Redis
	DefaultSelectionTTL = 30 * 60 // 30 минут в секундах

	// DefaultCatalogCacheTTL время жизни кэша каталога
	DefaultCatalogCacheTTL = 5 * 60 // 5 минут в секундах

	// RateLimitSubmissions количество отправок в окне
	RateLimitSubmissions = 10

	// RateLimitWindow окно ограничения частоты отправок
	RateLimitWindow = 60 // 1 минута в секундах
)

// ValidPaymentMethod reports whether the method is one the form offers.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer:
		return true
	}
	return false
}
