package services

// CheckoutParams carries what the payment provider needs to open a checkout
// for one booking.
type CheckoutParams struct {
	InvoiceID     string
	Amount        string
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Description   string
}

// Checkout is the provider's answer: its own reference for the payment and
// the page the customer completes it on. The reference is what webhook
// events later carry.
type Checkout struct {
	Reference  string
	PaymentURL string
}

// PaymentGateway opens checkouts with the external payment provider. The
// provider calls back over its webhook feed; those events reach the
// PaymentReconciler after verification.
type PaymentGateway interface {
	CreateCheckout(params *CheckoutParams) (*Checkout, error)
}
