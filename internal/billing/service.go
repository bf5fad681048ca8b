package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/pkg/config"
	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/metrics"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/slabworks/slabdesk-backend/pkg/square"
	"github.com/slabworks/slabdesk-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DraftProcessor is the payment-processor surface the assembler depends on.
type DraftProcessor interface {
	CreateDraftOrder(ctx context.Context, params square.DraftOrderParams) (*square.DraftOrder, error)
	SendDraftInvoice(ctx context.Context, params square.SendDraftParams) (*sq.Invoice, error)
}

// Service stages invoices for returned submissions and drives the external
// draft/send lifecycle.
type Service interface {
	AssembleBillingDrafts(ctx context.Context, input AssembleInput) ([]DraftSummary, error)
	SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*SendResult, error)
	SplitInvoice(ctx context.Context, invoiceID uuid.UUID) ([]DraftSummary, error)
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDetail, error)
	ListInvoices(ctx context.Context, email string, params pagination.Params) (*InvoiceList, error)
	GetSettings(ctx context.Context) (*SettingsDTO, error)
	UpdateSettings(ctx context.Context, input SettingsInput) (*SettingsDTO, error)
}

// ServiceParams groups dependencies for the billing service.
type ServiceParams struct {
	Repo          Repository
	LifecycleRepo lifecycle.Repository
	Tx            txRunner
	Processor     DraftProcessor
	Config        config.BillingConfig
	Metrics       *metrics.EngineMetrics
}

type service struct {
	repo          Repository
	lifecycleRepo lifecycle.Repository
	tx            txRunner
	processor     DraftProcessor
	cfg           config.BillingConfig
	metrics       *metrics.EngineMetrics
}

// NewService builds a billing service. Metrics may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	if params.LifecycleRepo == nil {
		return nil, fmt.Errorf("lifecycle repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("draft processor required")
	}
	return &service{
		repo:          params.Repo,
		lifecycleRepo: params.LifecycleRepo,
		tx:            params.Tx,
		processor:     params.Processor,
		cfg:           params.Config,
		metrics:       params.Metrics,
	}, nil
}

// cluster is one (customer, address) billing unit within an assembly run.
type cluster struct {
	email       string
	externalID  *string
	key         string
	address     *types.ShippingAddress
	submissions []models.Submission
}

// AssembleBillingDrafts stages one invoice per (customer, address key) over
// the eligible submissions, advances them to balance_due, then creates the
// external draft for each staged invoice. External failures leave the invoice
// open without a draft and are reported on the summary; a rerun picks them
// back up.
func (s *service) AssembleBillingDrafts(ctx context.Context, input AssembleInput) ([]DraftSummary, error) {
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if email == "" && len(input.SubmissionIDs) == 0 && len(input.AddressGroups) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email or submission ids required")
	}

	rate, err := s.resolveRates(ctx)
	if err != nil {
		return nil, err
	}

	clusters, err := s.collectClusters(ctx, input, email)
	if err != nil {
		return nil, err
	}
	// Retry only invoices for the customers this run actually covers, so a
	// submission-scoped assembly never drafts unrelated customers' invoices.
	retries, err := s.repo.FindOpenInvoicesWithoutDraft(ctx, coveredEmails(email, clusters))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending invoices")
	}
	if len(clusters) == 0 && len(retries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNoEligibleSubmissions, "no billable submissions found")
	}

	summaries := make([]DraftSummary, 0, len(clusters))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lifecycleRepo := s.lifecycleRepo.WithTx(tx)
		for _, c := range clusters {
			summary, err := s.stageCluster(ctx, repo, lifecycleRepo, c, rate)
			if err != nil {
				return err
			}
			summaries = append(summaries, *summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fold in previously staged invoices still waiting on an external draft.
	staged := make(map[uuid.UUID]struct{}, len(summaries))
	for _, summary := range summaries {
		staged[summary.InvoiceID] = struct{}{}
	}
	for i := range retries {
		if _, ok := staged[retries[i].ID]; ok {
			continue
		}
		summaries = append(summaries, summaryFromInvoice(&retries[i]))
	}

	for i := range summaries {
		if summaries[i].DraftID != "" {
			continue
		}
		draftID, draftURL, err := s.createExternalDraft(ctx, summaries[i].InvoiceID)
		if err != nil {
			summaries[i].Error = publicErrorCode(err)
			continue
		}
		summaries[i].DraftID = draftID
		summaries[i].DraftURL = draftURL
		summaries[i].Status = enums.InvoiceStatusDraft
	}
	return summaries, nil
}

func (s *service) collectClusters(ctx context.Context, input AssembleInput, email string) ([]*cluster, error) {
	if len(input.AddressGroups) > 0 {
		return s.clustersFromAddressGroups(ctx, input.AddressGroups)
	}

	var submissions []models.Submission
	var err error
	if len(input.SubmissionIDs) > 0 {
		submissions, err = s.repo.FindEligibleSubmissionsByID(ctx, input.SubmissionIDs)
	} else {
		submissions, err = s.repo.FindEligibleSubmissionsByEmail(ctx, email)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load eligible submissions")
	}
	return clusterByStoredAddress(submissions), nil
}

func (s *service) clustersFromAddressGroups(ctx context.Context, groups []AddressGroup) ([]*cluster, error) {
	var clusters []*cluster
	for i := range groups {
		group := groups[i]
		submissions, err := s.repo.FindEligibleSubmissionsByID(ctx, group.SubmissionIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load eligible submissions")
		}
		if len(submissions) == 0 {
			continue
		}
		address := group.Address
		key := AddressKey(&address)
		// One invoice per customer within the caller-provided group.
		byEmail := make(map[string]*cluster)
		for _, submission := range submissions {
			c, ok := byEmail[submission.CustomerEmail]
			if !ok {
				c = &cluster{
					email:      submission.CustomerEmail,
					externalID: submission.CustomerExternalID,
					key:        key,
					address:    &address,
				}
				byEmail[submission.CustomerEmail] = c
				clusters = append(clusters, c)
			}
			c.submissions = append(c.submissions, submission)
		}
	}
	return clusters, nil
}

// coveredEmails is the customer set an assembly run is allowed to touch: the
// requested email, if any, plus every customer resolved into a cluster.
func coveredEmails(email string, clusters []*cluster) []string {
	seen := make(map[string]struct{}, len(clusters)+1)
	var emails []string
	if email != "" {
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	for _, c := range clusters {
		if _, ok := seen[c.email]; ok {
			continue
		}
		seen[c.email] = struct{}{}
		emails = append(emails, c.email)
	}
	return emails
}

func clusterByStoredAddress(submissions []models.Submission) []*cluster {
	var clusters []*cluster
	index := make(map[string]*cluster)
	for _, submission := range submissions {
		key := submission.CustomerEmail + "\x00" + AddressKey(submission.ShippingAddress)
		c, ok := index[key]
		if !ok {
			c = &cluster{
				email:      submission.CustomerEmail,
				externalID: submission.CustomerExternalID,
				key:        AddressKey(submission.ShippingAddress),
				address:    submission.ShippingAddress,
			}
			index[key] = c
			clusters = append(clusters, c)
		}
		c.submissions = append(c.submissions, submission)
	}
	return clusters
}

// stageCluster upserts the invoice, its lines, and its submission links, then
// advances the covered submissions to balance_due. Runs inside the assembly
// transaction.
func (s *service) stageCluster(ctx context.Context, repo Repository, lifecycleRepo lifecycle.Repository, c *cluster, rate rates) (*DraftSummary, error) {
	invoice, err := repo.FindOpenInvoice(ctx, c.email, c.key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve open invoice")
	}
	if invoice == nil {
		invoice = &models.Invoice{
			CustomerEmail:      c.email,
			CustomerExternalID: c.externalID,
			AddressKey:         c.key,
			ShippingAddress:    c.address,
			Status:             enums.InvoiceStatusPending,
			Currency:           rate.Currency,
		}
		if _, err := repo.CreateInvoice(ctx, invoice); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}
	}

	items := buildLineItems(invoice.ID, c.submissions, rate)
	items = append(items, shippingLine(invoice.ID, rate))
	if err := repo.UpsertInvoiceItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "upsert invoice items")
	}

	links := make([]models.InvoiceSubmission, 0, len(c.submissions))
	codes := make([]string, 0, len(c.submissions))
	ids := make([]uuid.UUID, 0, len(c.submissions))
	for _, submission := range c.submissions {
		links = append(links, models.InvoiceSubmission{
			InvoiceID:      invoice.ID,
			SubmissionID:   submission.ID,
			SubmissionCode: submission.Code,
		})
		codes = append(codes, submission.Code)
		ids = append(ids, submission.ID)
	}
	if err := repo.UpsertInvoiceSubmissions(ctx, links); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "link submissions")
	}

	subtotal, shipping, err := repo.SumInvoiceItems(ctx, invoice.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "sum invoice items")
	}
	total := subtotal + shipping
	updates := map[string]any{
		"subtotal_cents": subtotal,
		"shipping_cents": shipping,
		"total_cents":    total,
	}
	if err := repo.UpdateInvoice(ctx, invoice.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "update invoice totals")
	}

	if len(ids) > 0 {
		below, err := enums.SubmissionStatusesBelow(enums.SubmissionStatusBalanceDue)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "rank balance_due")
		}
		updated, err := lifecycleRepo.AdvanceSubmissions(ctx, ids, enums.SubmissionStatusBalanceDue, below)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "advance submissions to balance_due")
		}
		if len(updated) > 0 {
			if _, err := lifecycleRepo.AdvanceCards(ctx, updated, enums.SubmissionStatusBalanceDue, below); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "cascade card statuses")
			}
		}
		s.metrics.AddStatusAdvances("submissions", len(updated))
	}

	return &DraftSummary{
		InvoiceID:     invoice.ID,
		Status:        invoice.Status,
		DraftID:       stringPtrValue(invoice.ExternalDraftID),
		DraftURL:      stringPtrValue(invoice.ExternalDraftURL),
		AddressKey:    c.key,
		Submissions:   codes,
		SubtotalCents: subtotal,
		TotalCents:    total,
	}, nil
}

func buildLineItems(invoiceID uuid.UUID, submissions []models.Submission, rate rates) []models.InvoiceItem {
	var items []models.InvoiceItem
	for _, submission := range submissions {
		if len(submission.Cards) == 0 {
			// Coarse fallback when no cards were itemized on intake.
			qty := submission.CardCount
			if qty < 1 {
				qty = 1
			}
			items = append(items, models.InvoiceItem{
				InvoiceID:      invoiceID,
				ItemID:         submission.ID,
				Kind:           enums.InvoiceItemKindSubmission,
				Description:    fmt.Sprintf("Grading services for %s", submission.Code),
				Qty:            qty,
				UnitPriceCents: rate.UnitRateCents,
				TotalCents:     qty * rate.UnitRateCents,
			})
			continue
		}
		for _, card := range submission.Cards {
			// The settings rate is the single per-unit source; upcharge_cents
			// is the only per-card adjustment.
			items = append(items, models.InvoiceItem{
				InvoiceID:      invoiceID,
				ItemID:         card.ID,
				Kind:           enums.InvoiceItemKindCard,
				Description:    card.Description,
				Qty:            1,
				UnitPriceCents: rate.UnitRateCents,
				UpchargeCents:  card.UpchargeCents,
				TotalCents:     rate.UnitRateCents + card.UpchargeCents,
			})
		}
	}
	return items
}

func shippingLine(invoiceID uuid.UUID, rate rates) models.InvoiceItem {
	return models.InvoiceItem{
		InvoiceID:      invoiceID,
		ItemID:         invoiceID,
		Kind:           enums.InvoiceItemKindShipping,
		Description:    "Return shipping",
		Qty:            1,
		UnitPriceCents: rate.ShippingCents,
		TotalCents:     rate.ShippingCents,
	}
}

// createExternalDraft creates the processor-side draft for a staged invoice
// and records the reference. Reuses an existing draft when one is present.
func (s *service) createExternalDraft(ctx context.Context, invoiceID uuid.UUID) (string, string, error) {
	invoice, err := s.repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if invoice.ExternalDraftID != nil {
		return *invoice.ExternalDraftID, stringPtrValue(invoice.ExternalDraftURL), nil
	}

	lineItems := make([]square.DraftLineItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lineItems = append(lineItems, square.DraftLineItem{
			Name:        item.Description,
			Quantity:    1,
			AmountCents: int64(item.TotalCents),
		})
	}
	draft, err := s.processor.CreateDraftOrder(ctx, square.DraftOrderParams{
		CustomerID:     stringPtrValue(invoice.CustomerExternalID),
		ReferenceID:    invoice.ID.String(),
		Title:          "Card grading services",
		Currency:       invoice.Currency,
		LineItems:      lineItems,
		IdempotencyKey: "invoice-" + invoice.ID.String(),
	})
	if err != nil {
		return "", "", err
	}

	updates := map[string]any{
		"external_draft_id":  draft.InvoiceID,
		"external_draft_url": draft.PublicURL,
	}
	if invoice.Status == enums.InvoiceStatusPending {
		updates["status"] = enums.InvoiceStatusDraft
	}
	if err := s.repo.UpdateInvoice(ctx, invoice.ID, updates); err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "record external draft")
	}
	s.metrics.IncDraftCreated()
	return draft.InvoiceID, draft.PublicURL, nil
}

// SendInvoice publishes the invoice's external draft to the invoice's
// customer. The invoice moves to sent only after the external call succeeds;
// a missing draft is created synchronously first.
func (s *service) SendInvoice(ctx context.Context, invoiceID uuid.UUID) (*SendResult, error) {
	if invoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	invoice, err := s.repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if !invoice.Status.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("invoice in status %s cannot be sent", invoice.Status))
	}

	draftID := stringPtrValue(invoice.ExternalDraftID)
	if draftID == "" {
		draftID, _, err = s.createExternalDraft(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
	}

	published, err := s.processor.SendDraftInvoice(ctx, square.SendDraftParams{
		InvoiceID:      draftID,
		IdempotencyKey: "send-" + invoice.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"status":  enums.InvoiceStatusSent,
		"sent_at": time.Now().UTC(),
	}
	if err := s.repo.UpdateInvoice(ctx, invoice.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "mark invoice sent")
	}
	s.metrics.IncInvoiceSent()

	externalStatus := ""
	if published != nil && published.Status != nil {
		externalStatus = string(*published.Status)
	}
	return &SendResult{
		InvoiceID:      invoice.ID,
		SentTo:         invoice.CustomerEmail,
		ExternalStatus: externalStatus,
	}, nil
}

// SplitInvoice supersedes a multi-address invoice and re-stages its
// submissions as one child invoice per address key. Submission statuses are
// untouched; they already sit at or past balance_due.
func (s *service) SplitInvoice(ctx context.Context, invoiceID uuid.UUID) ([]DraftSummary, error) {
	if invoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	parent, err := s.repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if !parent.Status.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("invoice in status %s cannot be split", parent.Status))
	}

	ids := make([]uuid.UUID, 0, len(parent.Submissions))
	for _, link := range parent.Submissions {
		ids = append(ids, link.SubmissionID)
	}
	submissions, err := s.repo.FindSubmissionsWithCards(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice submissions")
	}
	clusters := clusterByStoredAddress(submissions)
	if len(clusters) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invoice already covers a single address")
	}

	rate, err := s.resolveRates(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]DraftSummary, 0, len(clusters))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var firstChild uuid.UUID
		for _, c := range clusters {
			child := &models.Invoice{
				CustomerEmail:      parent.CustomerEmail,
				CustomerExternalID: parent.CustomerExternalID,
				AddressKey:         c.key,
				ShippingAddress:    c.address,
				Status:             enums.InvoiceStatusPending,
				Currency:           parent.Currency,
			}
			if _, err := repo.CreateInvoice(ctx, child); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create child invoice")
			}
			if firstChild == uuid.Nil {
				firstChild = child.ID
			}

			items := buildLineItems(child.ID, c.submissions, rate)
			items = append(items, shippingLine(child.ID, rate))
			if err := repo.UpsertInvoiceItems(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "upsert child items")
			}

			links := make([]models.InvoiceSubmission, 0, len(c.submissions))
			codes := make([]string, 0, len(c.submissions))
			for _, submission := range c.submissions {
				links = append(links, models.InvoiceSubmission{
					InvoiceID:      child.ID,
					SubmissionID:   submission.ID,
					SubmissionCode: submission.Code,
				})
				codes = append(codes, submission.Code)
			}
			if err := repo.UpsertInvoiceSubmissions(ctx, links); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "link child submissions")
			}

			subtotal, shipping, err := repo.SumInvoiceItems(ctx, child.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "sum child items")
			}
			if err := repo.UpdateInvoice(ctx, child.ID, map[string]any{
				"subtotal_cents": subtotal,
				"shipping_cents": shipping,
				"total_cents":    subtotal + shipping,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "update child totals")
			}

			summaries = append(summaries, DraftSummary{
				InvoiceID:     child.ID,
				Status:        enums.InvoiceStatusPending,
				AddressKey:    c.key,
				Submissions:   codes,
				SubtotalCents: subtotal,
				TotalCents:    subtotal + shipping,
			})
		}

		return repo.UpdateInvoice(ctx, parent.ID, map[string]any{
			"status":           enums.InvoiceStatusSuperseded,
			"superseded_by_id": firstChild,
		})
	})
	if err != nil {
		return nil, err
	}

	for i := range summaries {
		draftID, draftURL, err := s.createExternalDraft(ctx, summaries[i].InvoiceID)
		if err != nil {
			summaries[i].Error = publicErrorCode(err)
			continue
		}
		summaries[i].DraftID = draftID
		summaries[i].DraftURL = draftURL
		summaries[i].Status = enums.InvoiceStatusDraft
	}
	return summaries, nil
}

func (s *service) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	if invoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	invoice, err := s.repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoiceDetailFromModel(invoice), nil
}

func (s *service) ListInvoices(ctx context.Context, email string, params pagination.Params) (*InvoiceList, error) {
	list, err := s.repo.ListInvoicesByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return list, nil
}

func (s *service) GetSettings(ctx context.Context) (*SettingsDTO, error) {
	settings, err := s.repo.GetBillingSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load billing settings")
	}
	if settings == nil {
		return &SettingsDTO{
			UnitRateCents: s.cfg.DefaultUnitRateCents,
			ShippingCents: s.cfg.DefaultShippingCents,
			Currency:      s.cfg.Currency,
		}, nil
	}
	return settingsFromModel(settings), nil
}

func (s *service) UpdateSettings(ctx context.Context, input SettingsInput) (*SettingsDTO, error) {
	unitRate, err := ParseRateCents(input.UnitRate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse unit rate")
	}
	shipping, err := ParseRateCents(input.Shipping)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse shipping rate")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.cfg.Currency
	}
	settings := &models.BillingSettings{
		UnitRateCents: unitRate,
		ShippingCents: shipping,
		Currency:      currency,
	}
	if err := s.repo.SaveBillingSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save billing settings")
	}
	return settingsFromModel(settings), nil
}

func summaryFromInvoice(invoice *models.Invoice) DraftSummary {
	codes := make([]string, 0, len(invoice.Submissions))
	for _, link := range invoice.Submissions {
		codes = append(codes, link.SubmissionCode)
	}
	return DraftSummary{
		InvoiceID:     invoice.ID,
		Status:        invoice.Status,
		DraftID:       stringPtrValue(invoice.ExternalDraftID),
		DraftURL:      stringPtrValue(invoice.ExternalDraftURL),
		AddressKey:    invoice.AddressKey,
		Submissions:   codes,
		SubtotalCents: invoice.SubtotalCents,
		TotalCents:    invoice.TotalCents,
	}
}

func publicErrorCode(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return string(pkgerrors.CodeExternalService)
}

func stringPtrValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
