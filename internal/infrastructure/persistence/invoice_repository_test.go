package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
)

func TestInvoiceRepositoryFindByID(t *testing.T) {
	t.Run("missing invoice maps to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), 404)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvoiceRepositoryExistsByNumber(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByNumber(context.Background(), "INV-0001")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// expectSequenceAllocation mocks the locked counter read and increment that
// back system invoice id allocation.
func expectSequenceAllocation(mock sqlmock.Sqlmock, current int64) {
	mock.ExpectQuery(`SELECT \* FROM "invoice_sequences" WHERE name = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).AddRow("invoices", current))
	mock.ExpectExec(`UPDATE "invoice_sequences" SET "value"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestInvoiceRepositoryCreatePosted(t *testing.T) {
	t.Run("allocates the next display sequence and posts", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		expectSequenceAllocation(mock, 2)
		mock.ExpectQuery(`INSERT INTO "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
		mock.ExpectCommit()

		inv := &invoicing.Invoice{InvoiceNumber: "CUSTOM-7"}
		require.NoError(t, repo.CreatePosted(context.Background(), inv))

		assert.Equal(t, uint64(10), inv.ID)
		assert.Equal(t, "INV-0003", inv.SystemInvoiceID)
		assert.Equal(t, "CUSTOM-7", inv.InvoiceNumber)
		assert.Equal(t, invoicing.StatusPosted, inv.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty number defaults to the system invoice id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		expectSequenceAllocation(mock, 0)
		mock.ExpectQuery(`INSERT INTO "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		inv := &invoicing.Invoice{}
		require.NoError(t, repo.CreatePosted(context.Background(), inv))

		assert.Equal(t, "INV-0001", inv.SystemInvoiceID)
		assert.Equal(t, "INV-0001", inv.InvoiceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate invoice number", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		expectSequenceAllocation(mock, 5)
		mock.ExpectQuery(`INSERT INTO "invoices"`).
			WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_invoices_invoice_number" (SQLSTATE 23505)`))
		mock.ExpectRollback()

		inv := &invoicing.Invoice{InvoiceNumber: "INV-0002"}
		err := repo.CreatePosted(context.Background(), inv)

		assert.True(t, errors.Is(err, shared.ErrDuplicateInvoiceNumber))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvoiceRepositorySaveDraft(t *testing.T) {
	t.Run("upserting a non-draft is an invalid state transition", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status", "system_invoice_id"}).
				AddRow(3, "posted", "INV-0003"))
		mock.ExpectRollback()

		inv := &invoicing.Invoice{ID: 3, Status: invoicing.StatusDraft}
		err := repo.SaveDraft(context.Background(), inv)

		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update without a number keeps the stored placeholder", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status", "system_invoice_id", "invoice_number"}).
				AddRow(7, "draft", "INV-0007", "DRAFT_1700000000000_abcdefghi"))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "invoice_items"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		inv := &invoicing.Invoice{ID: 7, Status: invoicing.StatusDraft}
		require.NoError(t, repo.SaveDraft(context.Background(), inv))

		assert.Equal(t, "DRAFT_1700000000000_abcdefghi", inv.InvoiceNumber)
		assert.Equal(t, "INV-0007", inv.SystemInvoiceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upserting a missing draft is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = `).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		inv := &invoicing.Invoice{ID: 404}
		err := repo.SaveDraft(context.Background(), inv)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvoiceRepositoryMarkPosted(t *testing.T) {
	t.Run("posts a draft", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.MarkPosted(context.Background(), 3, "7000007DI42")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already posted invoice is an invalid state transition", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.MarkPosted(context.Background(), 3, "7000007DI42")

		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing invoice is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := repo.MarkPosted(context.Background(), 404, "7000007DI42")

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
