package square

import (
	"strconv"
	"strings"

	sq "github.com/square/square-go-sdk"
)

// DraftLineItem is one billable line on a staged order.
type DraftLineItem struct {
	Name        string
	Quantity    int64
	AmountCents int64
	Note        string
}

// DraftOrderParams groups the inputs for staging an order plus its draft invoice.
type DraftOrderParams struct {
	CustomerID     string
	ReferenceID    string
	Title          string
	Currency       string
	DueDate        string
	LineItems      []DraftLineItem
	IdempotencyKey string
}

func (p DraftOrderParams) toSquareOrderRequest(locationID, idempotencyKey string) *sq.CreateOrderRequest {
	order := &sq.Order{
		LocationID: locationID,
	}
	if trimmed := strings.TrimSpace(p.CustomerID); trimmed != "" {
		order.CustomerID = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.ReferenceID); trimmed != "" {
		order.ReferenceID = ptrString(trimmed)
	}
	for _, item := range p.LineItems {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		line := &sq.OrderLineItem{
			Quantity:       strconv.FormatInt(qty, 10),
			BasePriceMoney: moneyPtr(item.AmountCents, p.Currency),
		}
		if trimmed := strings.TrimSpace(item.Name); trimmed != "" {
			line.Name = ptrString(trimmed)
		}
		if trimmed := strings.TrimSpace(item.Note); trimmed != "" {
			line.Note = ptrString(trimmed)
		}
		order.LineItems = append(order.LineItems, line)
	}
	return &sq.CreateOrderRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		Order:          order,
	}
}

func (p DraftOrderParams) toSquareInvoiceRequest(orderID, locationID, idempotencyKey string) *sq.CreateInvoiceRequest {
	invoice := &sq.Invoice{
		OrderID:    ptrString(orderID),
		LocationID: ptrString(locationID),
	}
	if trimmed := strings.TrimSpace(p.CustomerID); trimmed != "" {
		invoice.PrimaryRecipient = &sq.InvoiceRecipient{CustomerID: ptrString(trimmed)}
	}
	if trimmed := strings.TrimSpace(p.Title); trimmed != "" {
		invoice.Title = ptrString(trimmed)
	}
	method := sq.InvoiceDeliveryMethodEmail
	invoice.DeliveryMethod = &method
	invoice.AcceptedPaymentMethods = &sq.InvoiceAcceptedPaymentMethods{
		Card: boolPtr(true),
	}
	request := &sq.InvoicePaymentRequest{}
	requestType := sq.InvoiceRequestTypeBalance
	request.RequestType = &requestType
	if trimmed := strings.TrimSpace(p.DueDate); trimmed != "" {
		request.DueDate = ptrString(trimmed)
	}
	invoice.PaymentRequests = []*sq.InvoicePaymentRequest{request}

	return &sq.CreateInvoiceRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		Invoice:        invoice,
	}
}

// SendDraftParams identifies the draft invoice to publish. Version 0 means
// "fetch the current version first".
type SendDraftParams struct {
	InvoiceID      string
	Version        int
	IdempotencyKey string
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func currencyPtr(code string) *sq.Currency {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		trimmed = "USD"
	}
	c := sq.Currency(trimmed)
	return &c
}

func moneyPtr(amount int64, currency string) *sq.Money {
	if amount == 0 {
		return nil
	}
	return &sq.Money{
		Amount:   int64Ptr(amount),
		Currency: currencyPtr(currency),
	}
}
