package square

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/slabworks/slabdesk-backend/pkg/config"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAccessTokenRequired = errors.New("square access token is required")
	errLocationIDRequired  = errors.New("square location id is required")
	errInvalidSquareEnv    = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired      = errors.New("square logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

// Client exposes Square primitives with centralized auth, logging, idempotency, and error mapping.
type Client struct {
	sdk         *sqclient.Client
	accessToken string
	environment string
	locationID  string
	baseURL     string
	logger      *logger.Logger
}

// NewClient initializes the Square wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SquareConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}

	locationID := strings.TrimSpace(cfg.LocationID)
	if locationID == "" {
		return nil, errLocationIDRequired
	}

	baseURL := baseURLs[env]
	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURL),
		sqoption.WithToken(accessToken),
	)

	c := &Client{
		sdk:         sdk,
		accessToken: accessToken,
		environment: env,
		locationID:  locationID,
		baseURL:     baseURL,
		logger:      logg,
	}

	logg.Info(ctx, "square client initialized")
	return c, nil
}

// AccessToken returns the configured Square token.
func (c *Client) AccessToken() string {
	if c == nil {
		return ""
	}
	return c.accessToken
}

// Environment reports the normalized Square environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// LocationID returns the Square location all orders are created under.
func (c *Client) LocationID() string {
	if c == nil {
		return ""
	}
	return c.locationID
}

// NewIdempotencyKey returns a unique key for Square operations.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "sd"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

// DraftOrder bundles the identifiers Square hands back for a staged invoice.
type DraftOrder struct {
	OrderID   string
	InvoiceID string
	PublicURL string
	Version   int
}

// CreateDraftOrder stages an order and a draft invoice against it. The invoice
// stays in DRAFT until SendDraftInvoice publishes it, so a later supersede can
// abandon it without the recipient ever seeing a charge.
func (c *Client) CreateDraftOrder(ctx context.Context, params DraftOrderParams) (*DraftOrder, error) {
	if c == nil {
		return nil, errAccessTokenRequired
	}
	orderReq := params.toSquareOrderRequest(c.locationID, c.ensureIdempotencyKey("order.create", params.IdempotencyKey))
	c.log(ctx, "request", "create_draft_order", map[string]any{
		"location_id":  c.locationID,
		"reference_id": params.ReferenceID,
		"line_items":   len(params.LineItems),
	})

	orderResp, err := c.sdk.Orders.Create(ctx, orderReq)
	if err != nil {
		c.log(ctx, "error", "create_draft_order", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "create draft order")
	}

	order := orderResp.GetOrder()
	orderID := stringValue(order.GetID())

	invoiceReq := params.toSquareInvoiceRequest(orderID, c.locationID, c.ensureIdempotencyKey("invoice.create", params.IdempotencyKey))
	invoiceResp, err := c.sdk.Invoices.Create(ctx, invoiceReq)
	if err != nil {
		c.log(ctx, "error", "create_draft_order", map[string]any{"order_id": orderID, "error": err.Error()})
		return nil, c.mapSquareError(err, "create draft invoice")
	}

	invoice := invoiceResp.GetInvoice()
	draft := &DraftOrder{
		OrderID:   orderID,
		InvoiceID: stringValue(invoice.GetID()),
		PublicURL: stringValue(invoice.GetPublicURL()),
		Version:   intValue(invoice.GetVersion()),
	}
	c.log(ctx, "response", "create_draft_order", map[string]any{
		"order_id":   draft.OrderID,
		"invoice_id": draft.InvoiceID,
		"status":     invoiceStatusString(invoice.GetStatus()),
	})
	return draft, nil
}

// SendDraftInvoice publishes a draft invoice so Square delivers it to the recipient.
func (c *Client) SendDraftInvoice(ctx context.Context, params SendDraftParams) (*sq.Invoice, error) {
	if c == nil {
		return nil, errAccessTokenRequired
	}
	version := params.Version
	if version == 0 {
		current, err := c.GetInvoice(ctx, params.InvoiceID)
		if err != nil {
			return nil, err
		}
		version = intValue(current.GetVersion())
	}

	req := &sq.PublishInvoiceRequest{
		InvoiceID:      params.InvoiceID,
		Version:        version,
		IdempotencyKey: ptrString(c.ensureIdempotencyKey("invoice.publish", params.IdempotencyKey)),
	}
	c.log(ctx, "request", "send_draft_invoice", map[string]any{
		"invoice_id": params.InvoiceID,
		"version":    version,
	})

	resp, err := c.sdk.Invoices.Publish(ctx, req)
	if err != nil {
		c.log(ctx, "error", "send_draft_invoice", map[string]any{"invoice_id": params.InvoiceID, "error": err.Error()})
		return nil, c.mapSquareError(err, "publish invoice")
	}

	invoice := resp.GetInvoice()
	c.log(ctx, "response", "send_draft_invoice", map[string]any{
		"invoice_id": stringValue(invoice.GetID()),
		"status":     invoiceStatusString(invoice.GetStatus()),
	})
	return invoice, nil
}

// GetInvoice fetches the current state of an invoice, draft or published.
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*sq.Invoice, error) {
	if c == nil {
		return nil, errAccessTokenRequired
	}
	req := &sq.GetInvoicesRequest{InvoiceID: invoiceID}
	c.log(ctx, "request", "get_invoice", map[string]any{"invoice_id": invoiceID})

	resp, err := c.sdk.Invoices.Get(ctx, req)
	if err != nil {
		c.log(ctx, "error", "get_invoice", map[string]any{"error": err.Error()})
		return nil, c.mapSquareError(err, "get invoice")
	}

	invoice := resp.GetInvoice()
	c.log(ctx, "response", "get_invoice", map[string]any{
		"invoice_id": stringValue(invoice.GetID()),
		"status":     invoiceStatusString(invoice.GetStatus()),
	})
	return invoice, nil
}

func (c *Client) ensureIdempotencyKey(prefix, provided string) string {
	if strings.TrimSpace(provided) != "" {
		return provided
	}
	return c.NewIdempotencyKey(prefix)
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
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("square %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("square %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "nonce", "token", "cvv", "cvc", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapSquareError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *sqcore.APIError
	if errors.As(err, &apiErr) {
		code := domainCodeForStatus(apiErr.StatusCode)
		for _, sqErr := range c.extractSquareErrors(apiErr) {
			if sqErr == nil {
				continue
			}
			if sqErr.Code == sq.ErrorCodeIdempotencyKeyReused {
				code = pkgerrors.CodeIdempotency
				break
			}
			if sqErr.Category == sq.ErrorCategoryAuthenticationError {
				code = pkgerrors.CodeUnauthorized
				break
			}
		}
		return pkgerrors.Wrap(code, err, fmt.Sprintf("square %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeExternalService, err, fmt.Sprintf("square %s failed", op))
}

func (c *Client) extractSquareErrors(apiErr *sqcore.APIError) []*sq.Error {
	if apiErr == nil {
		return nil
	}
	inner := apiErr.Unwrap()
	if inner == nil {
		return nil
	}
	raw := strings.TrimSpace(inner.Error())
	if raw == "" {
		return nil
	}
	var payload struct {
		Errors []*sq.Error `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	return payload.Errors
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeExternalService
	}
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func intValue(ptr *int) int {
	if ptr == nil {
		return 0
	}
	return *ptr
}

func invoiceStatusString(status *sq.InvoiceStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}
