package razorpaywebhook

// Event is the Razorpay webhook envelope. Only the entities the platform
// reconciles against are decoded.
type Event struct {
	Event     string  `json:"event"`
	AccountID string  `json:"account_id"`
	CreatedAt int64   `json:"created_at"`
	Payload   Payload `json:"payload"`
}

type Payload struct {
	Payment      *PaymentWrapper      `json:"payment,omitempty"`
	Order        *OrderWrapper        `json:"order,omitempty"`
	Subscription *SubscriptionWrapper `json:"subscription,omitempty"`
}

type PaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

// PaymentEntity is the payment object inside payment.* events.
type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type OrderWrapper struct {
	Entity OrderEntity `json:"entity"`
}

// OrderEntity is the order object inside order.* events.
type OrderEntity struct {
	ID      string `json:"id"`
	Receipt string `json:"receipt"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"`
}

type SubscriptionWrapper struct {
	Entity SubscriptionEntity `json:"entity"`
}

// SubscriptionEntity is the subscription object inside subscription.* events.
// Its id is the gateway reference the platform stores at order time.
type SubscriptionEntity struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OrderRef returns the gateway order id the event refers to, if any.
func (e *Event) OrderRef() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	if e.Payload.Subscription != nil {
		return e.Payload.Subscription.Entity.ID
	}
	return ""
}
