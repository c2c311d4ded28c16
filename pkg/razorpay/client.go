// Package razorpay wraps the Razorpay Go SDK with centralized auth,
// logging, and error mapping for the rest of the platform.
package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"
	rzputils "github.com/razorpay/razorpay-go/utils"

	"github.com/milkoapp/milko-backend/pkg/config"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

var (
	errKeyRequired           = errors.New("razorpay key id and secret are required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")
	errLoggerRequired        = errors.New("razorpay logger is required")
)

// OrderCreateParams carries the inputs for creating a gateway order.
type OrderCreateParams struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// OrderDescriptor is the subset of the gateway order the platform keeps.
type OrderDescriptor struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
}

// OrderCreator is the surface the subscription service depends on.
type OrderCreator interface {
	CreateOrder(ctx context.Context, params OrderCreateParams) (*OrderDescriptor, error)
}

// SignatureVerifier validates webhook payload signatures.
type SignatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

// Client exposes Razorpay primitives used by the platform.
type Client struct {
	sdk           *rzpsdk.Client
	webhookSecret string
	logger        *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errKeyRequired
	}

	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	c := &Client{
		sdk:           rzpsdk.NewClient(keyID, keySecret),
		webhookSecret: webhookSecret,
		logger:        logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// CreateOrder creates a gateway order denominated in paise.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*OrderDescriptor, error) {
	if params.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	currency := params.Currency
	if currency == "" {
		currency = "INR"
	}

	data := map[string]interface{}{
		"amount":   params.AmountPaise,
		"currency": currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		notes := make(map[string]interface{}, len(params.Notes))
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount_paise": params.AmountPaise,
		"currency":     currency,
		"receipt":      params.Receipt,
	})

	resp, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create razorpay order")
	}

	order, err := descriptorFromResponse(resp)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": order.ID,
		"status":   stringField(resp, "status"),
	})
	return order, nil
}

// VerifyWebhookSignature validates the X-Razorpay-Signature header against
// the raw request body.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c == nil || signature == "" {
		return false
	}
	return rzputils.VerifyWebhookSignature(string(body), signature, c.webhookSecret)
}

func descriptorFromResponse(resp map[string]interface{}) (*OrderDescriptor, error) {
	id := stringField(resp, "id")
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay order response missing id")
	}

	var amount int64
	switch v := resp["amount"].(type) {
	case float64:
		amount = int64(v)
	case int64:
		amount = v
	case int:
		amount = int64(v)
	}

	return &OrderDescriptor{
		ID:          id,
		AmountPaise: amount,
		Currency:    stringField(resp, "currency"),
		Receipt:     stringField(resp, "receipt"),
	}, nil
}

func stringField(resp map[string]interface{}, key string) string {
	if v, ok := resp[key].(string); ok {
		return v
	}
	return ""
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}
