package invoicing

import "context"

// ListFilter narrows and pages invoice listings
type ListFilter struct {
	Status   Status
	Page     int
	PageSize int
}

// InvoiceRepository defines persistence operations for invoices within one
// tenant's database. Implementations are bound to a single tenant handle;
// multi-row writes run inside one transaction on that handle.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uint64) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Invoice, int64, error)

	// CreatePosted allocates the next system invoice id and inserts the
	// invoice with all of its items atomically, status posted.
	CreatePosted(ctx context.Context, inv *Invoice) error

	// SaveDraft upserts a draft: with an id the existing draft's header is
	// updated and its items replaced; without one a new invoice is created
	// with a freshly allocated system invoice id.
	SaveDraft(ctx context.Context, inv *Invoice) error

	// MarkPosted applies a successful submission: status posted, the business
	// number overwritten with the authority number, and the authority
	// reference recorded. Fails if the invoice is no longer a draft.
	MarkPosted(ctx context.Context, id uint64, authorityNumber string) error
}

// SubmissionResult is the raw transport-level result of a submission attempt
type SubmissionResult struct {
	StatusCode int
	Body       []byte
}

// Submitter sends a normalized invoice document to the tax authority.
// Retry and backoff policy belong to implementations, never to callers.
type Submitter interface {
	Submit(ctx context.Context, payload SubmissionPayload, environment string, credential string) (*SubmissionResult, error)
}
