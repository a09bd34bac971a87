package invoicing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/tenant"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

// fakeResolver hands out one fixed tenant and database handle
type fakeResolver struct {
	tenant *tenant.Tenant
	db     *gorm.DB
	err    error
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, identifier string) (*tenant.Tenant, *gorm.DB, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.tenant, f.db, nil
}

// fakeSubmitter records the submission and replays a canned gateway answer
type fakeSubmitter struct {
	result      *invoicing.SubmissionResult
	err         error
	calls       int
	payload     invoicing.SubmissionPayload
	environment string
	credential  string
}

func (f *fakeSubmitter) Submit(_ context.Context, payload invoicing.SubmissionPayload, environment, credential string) (*invoicing.SubmissionResult, error) {
	f.calls++
	f.payload = payload
	f.environment = environment
	f.credential = credential
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func sandboxTenant() *tenant.Tenant {
	tn := tenant.NewTenant("Khan Textiles", "7000007", "Sindh", "Karachi")
	tn.SandboxToken = "sb-token"
	tn.ProductionToken = "prod-token"
	return tn
}

func expectFindByID(mock sqlmock.Sqlmock, id uint64, status, number, scenario string) {
	rows := sqlmock.NewRows([]string{"id", "invoice_number", "status", "system_invoice_id", "scenario_id"})
	if scenario == "" {
		rows.AddRow(id, number, status, "INV-0001", nil)
	} else {
		rows.AddRow(id, number, status, "INV-0001", scenario)
	}
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = `).WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "invoice_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id"}))
}

func strptr(s string) *string { return &s }

func TestServiceSubmit(t *testing.T) {
	t.Run("accepted submission posts the authority number", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		submitter := &fakeSubmitter{result: &invoicing.SubmissionResult{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"validationResponse":{"statusCode":"00","invoiceNumber":"7000007DI42"}}`),
		}}
		svc := NewService(resolver, submitter, nil, zap.NewNop())

		expectFindByID(mock, 3, "draft", "DRAFT_1747119701593_abc123xyz", "SN001")
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		expectFindByID(mock, 3, "posted", "7000007DI42", "SN001")

		resp, err := svc.Submit(context.Background(), "7000007", SubmitRequest{InvoiceID: 3})

		require.NoError(t, err)
		assert.Equal(t, "7000007DI42", resp.InvoiceNumber)
		assert.Equal(t, "posted", resp.Status)
		assert.Equal(t, 1, submitter.calls)
		assert.Equal(t, "sandbox", submitter.environment)
		assert.Equal(t, "sb-token", submitter.credential)
		assert.Equal(t, "SN001", submitter.payload.ScenarioID)
		// Placeholder numbers never go to the authority as references.
		assert.Empty(t, submitter.payload.InvoiceRefNo)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("request scenario overrides the stored one", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		submitter := &fakeSubmitter{result: &invoicing.SubmissionResult{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"invoiceNumber":"7000007DI43"}`),
		}}
		svc := NewService(resolver, submitter, nil, zap.NewNop())

		expectFindByID(mock, 3, "draft", "DRAFT_1_abcdefghi", "SN001")
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		expectFindByID(mock, 3, "posted", "7000007DI43", "SN001")

		_, err := svc.Submit(context.Background(), "7000007", SubmitRequest{InvoiceID: 3, ScenarioID: strptr("SN018")})

		require.NoError(t, err)
		assert.Equal(t, "SN018", submitter.payload.ScenarioID)
	})

	t.Run("rejection surfaces the authority detail and persists nothing", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		submitter := &fakeSubmitter{result: &invoicing.SubmissionResult{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"validationResponse":{"statusCode":"01","error":"Sale type not valid"}}`),
		}}
		svc := NewService(resolver, submitter, nil, zap.NewNop())

		expectFindByID(mock, 3, "draft", "DRAFT_1_abcdefghi", "SN001")

		_, err := svc.Submit(context.Background(), "7000007", SubmitRequest{InvoiceID: 3})

		var subErr *shared.SubmissionError
		require.True(t, errors.As(err, &subErr))
		assert.Equal(t, "Sale type not valid", subErr.Detail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("only drafts are submittable", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		submitter := &fakeSubmitter{}
		svc := NewService(resolver, submitter, nil, zap.NewNop())

		expectFindByID(mock, 3, "posted", "INV-0001", "SN001")

		_, err := svc.Submit(context.Background(), "7000007", SubmitRequest{InvoiceID: 3})

		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
		assert.Zero(t, submitter.calls)
	})

	t.Run("a scenario id is required", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		submitter := &fakeSubmitter{}
		svc := NewService(resolver, submitter, nil, zap.NewNop())

		expectFindByID(mock, 3, "draft", "DRAFT_1_abcdefghi", "")

		_, err := svc.Submit(context.Background(), "7000007", SubmitRequest{InvoiceID: 3})

		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Zero(t, submitter.calls)
	})

	t.Run("production tenants submit with the production credential", func(t *testing.T) {
		db, mock := newMockDB(t)
		tn := sandboxTenant()
		tn.Environment = tenant.EnvironmentProduction
		resolver := &fakeResolver{tenant: tn, db: db}
		submitter := &fakeSubmitter{result: &invoicing.SubmissionResult{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"invoiceNumber":"7000007DI44"}`),
		}}
		svc := NewService(resolver, submitter, nil, zap.NewNop())

		expectFindByID(mock, 3, "draft", "DRAFT_1_abcdefghi", "SN001")
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		expectFindByID(mock, 3, "posted", "7000007DI44", "SN001")

		_, err := svc.Submit(context.Background(), "7000007", SubmitRequest{InvoiceID: 3})

		require.NoError(t, err)
		assert.Equal(t, "production", submitter.environment)
		assert.Equal(t, "prod-token", submitter.credential)
	})
}

func TestServiceSaveAndValidate(t *testing.T) {
	t.Run("structural violations stop before storage", func(t *testing.T) {
		resolver := &fakeResolver{}
		svc := NewService(resolver, &fakeSubmitter{}, nil, zap.NewNop())

		_, err := svc.SaveAndValidate(context.Background(), "7000007", InvoiceInput{})

		var valErr *shared.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.NotEmpty(t, valErr.Violations)
		assert.Zero(t, resolver.calls)
	})
}

func TestServiceCreate(t *testing.T) {
	t.Run("supplied number that already exists is a duplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		svc := NewService(resolver, &fakeSubmitter{}, nil, zap.NewNop())

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := svc.Create(context.Background(), "7000007", InvoiceInput{InvoiceRefNo: "INV-0001"})

		assert.True(t, errors.Is(err, shared.ErrDuplicateInvoiceNumber))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("resolver failure propagates untouched", func(t *testing.T) {
		resolver := &fakeResolver{err: shared.ErrTenantNotFound}
		svc := NewService(resolver, &fakeSubmitter{}, nil, zap.NewNop())

		_, err := svc.Create(context.Background(), "unknown", InvoiceInput{})

		assert.True(t, errors.Is(err, shared.ErrTenantNotFound))
	})

	t.Run("inactive tenant blocks writes", func(t *testing.T) {
		resolver := &fakeResolver{err: shared.ErrTenantInactive}
		svc := NewService(resolver, &fakeSubmitter{}, nil, zap.NewNop())

		_, err := svc.Create(context.Background(), "7000007", InvoiceInput{})

		assert.True(t, errors.Is(err, shared.ErrTenantInactive))
	})
}

func TestServiceList(t *testing.T) {
	t.Run("paging defaults are applied", func(t *testing.T) {
		db, mock := newMockDB(t)
		resolver := &fakeResolver{tenant: sandboxTenant(), db: db}
		svc := NewService(resolver, &fakeSubmitter{}, nil, zap.NewNop())

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		resp, err := svc.List(context.Background(), "7000007", ListRequest{Page: 0, PageSize: 5000})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.PageSize)
		assert.Zero(t, resp.Total)
	})
}
