package gateway

import "context"

// Order is a remote payment order awaiting client-side checkout.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
}

// RemotePayment is the gateway's view of a payment. Status values the core
// accepts as successful are "captured" and "authorized".
type RemotePayment struct {
	ID     string
	Status string
}

type Refund struct {
	ID string
}

// Client is the capability set the core consumes from the payment gateway.
// Remote calls block on the network and must respect the context deadline;
// the core treats any remote failure as a gateway error with no retry.
type Client interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (*Order, error)
	FetchPayment(ctx context.Context, remotePaymentID string) (*RemotePayment, error)
	Refund(ctx context.Context, remotePaymentID string, amountPaise int64, notes map[string]interface{}) (*Refund, error)
	VerifySignature(orderID, remotePaymentID, signature string) bool
}
