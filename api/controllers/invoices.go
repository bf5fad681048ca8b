package controllers

import (
	"net/http"
	"strings"

	"github.com/slabworks/slabdesk-backend/api/responses"
	"github.com/slabworks/slabdesk-backend/api/validators"
	"github.com/slabworks/slabdesk-backend/internal/billing"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/slabworks/slabdesk-backend/pkg/types"
)

// InvoicesList returns a cursor-paginated invoice listing, optionally scoped
// to one customer.
func InvoicesList(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		email := strings.TrimSpace(r.URL.Query().Get("email"))

		list, err := svc.ListInvoices(r.Context(), email, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// InvoiceDetail returns the expanded invoice view with line items.
func InvoiceDetail(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		invoiceID, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetInvoice(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type assembleAddressGroup struct {
	Address       types.ShippingAddress `json:"address"`
	SubmissionIDs []string              `json:"submission_ids" validate:"required,min=1,dive,uuid"`
}

type assembleRequest struct {
	CustomerEmail string                 `json:"customer_email,omitempty" validate:"omitempty,email"`
	SubmissionIDs []string               `json:"submission_ids,omitempty" validate:"omitempty,dive,uuid"`
	AddressGroups []assembleAddressGroup `json:"address_groups,omitempty" validate:"omitempty,dive"`
}

// InvoicesAssemble stages billing drafts for returned submissions and pushes
// them to the payment processor. Failures to push are reported per invoice;
// a rerun retries them.
func InvoicesAssemble(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var body assembleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := billing.AssembleInput{CustomerEmail: body.CustomerEmail}
		ids, err := parseUUIDList(body.SubmissionIDs, "submission id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SubmissionIDs = ids
		for _, group := range body.AddressGroups {
			groupIDs, err := parseUUIDList(group.SubmissionIDs, "submission id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.AddressGroups = append(input.AddressGroups, billing.AddressGroup{
				Address:       group.Address,
				SubmissionIDs: groupIDs,
			})
		}

		summaries, err := svc.AssembleBillingDrafts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"drafts": summaries})
	}
}

// InvoiceSend publishes the invoice's external draft to the invoice's
// customer.
func InvoiceSend(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		invoiceID, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendInvoice(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// InvoiceSplit breaks a multi-address invoice into one child per address and
// supersedes the parent.
func InvoiceSplit(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		invoiceID, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summaries, err := svc.SplitInvoice(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"invoices": summaries})
	}
}

// BillingSettingsGet returns the effective rate configuration.
func BillingSettingsGet(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		settings, err := svc.GetSettings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// BillingSettingsUpdate replaces the rate configuration.
func BillingSettingsUpdate(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var body billing.SettingsInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.UpdateSettings(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}
