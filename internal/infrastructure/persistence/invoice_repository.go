package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/persistence/models"
)

// invoiceSequenceName is the counter row backing system invoice ids
const invoiceSequenceName = "invoices"

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM.
// Each instance is bound to one tenant's database handle.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates an invoice repository over a tenant handle
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items by primary key
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uint64) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice with its items by business invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("invoice_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByNumber reports whether an invoice with the business number exists
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns invoices matching the filter, newest first, with the total
// count before paging
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.ListFilter) ([]invoicing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Preload("Items").Order("created_at DESC").Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, m := range invoiceModels {
		invoices[i] = *m.ToDomain()
	}
	return invoices, total, nil
}

// CreatePosted allocates the next system invoice id and inserts the invoice
// with all items in one transaction, status posted.
func (r *GormInvoiceRepository) CreatePosted(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, invoiceSequenceName)
		if err != nil {
			return err
		}
		inv.SystemInvoiceID = invoicing.FormatSystemInvoiceID(seq)
		if inv.InvoiceNumber == "" {
			// No externally supplied number; the display sequence doubles as
			// the business number.
			inv.InvoiceNumber = inv.SystemInvoiceID
		}
		inv.Status = invoicing.StatusPosted

		now := time.Now()
		inv.CreatedAt = now
		inv.UpdatedAt = now

		var model models.InvoiceModel
		model.FromDomain(inv)
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrDuplicateInvoiceNumber
			}
			return err
		}
		inv.ID = model.ID
		return nil
	})
}

// SaveDraft upserts a draft. Without an id a new invoice is created with a
// fresh system invoice id; with one the existing draft's header is updated
// and its items replaced wholesale.
func (r *GormInvoiceRepository) SaveDraft(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if inv.ID == 0 {
			seq, err := nextSequence(tx, invoiceSequenceName)
			if err != nil {
				return err
			}
			inv.SystemInvoiceID = invoicing.FormatSystemInvoiceID(seq)

			now := time.Now()
			inv.CreatedAt = now
			inv.UpdatedAt = now

			var model models.InvoiceModel
			model.FromDomain(inv)
			if err := tx.Create(&model).Error; err != nil {
				if isUniqueViolation(err) {
					return shared.ErrDuplicateInvoiceNumber
				}
				return err
			}
			inv.ID = model.ID
			return nil
		}

		var existing models.InvoiceModel
		if err := tx.First(&existing, "id = ?", inv.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if !invoicing.Status(existing.Status).CanUpdate() {
			return shared.ErrInvalidStateTransition
		}

		inv.SystemInvoiceID = existing.SystemInvoiceID
		if inv.InvoiceNumber == "" {
			// Clients are not required to echo the generated placeholder back.
			inv.InvoiceNumber = existing.InvoiceNumber
		}
		inv.CreatedAt = existing.CreatedAt
		inv.UpdatedAt = time.Now()

		var model models.InvoiceModel
		model.FromDomain(inv)
		items := model.Items
		model.Items = nil

		if err := tx.Omit("Items").Save(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrDuplicateInvoiceNumber
			}
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].InvoiceID = inv.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkPosted applies a successful submission to a draft: status posted, the
// business number overwritten with the authority number and the authority
// reference recorded. The status guard in the WHERE clause makes concurrent
// submissions of the same draft first-wins.
func (r *GormInvoiceRepository) MarkPosted(ctx context.Context, id uint64, authorityNumber string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND status = ?", id, string(invoicing.StatusDraft)).
			Updates(map[string]any{
				"invoice_number":     authorityNumber,
				"fbr_invoice_number": authorityNumber,
				"status":             string(invoicing.StatusPosted),
				"updated_at":         time.Now(),
			})
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return shared.ErrDuplicateInvoiceNumber
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.InvoiceModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrInvalidStateTransition
		}
		return nil
	})
}

// nextSequence increments and returns the named counter under a row lock.
// The lock is held until the surrounding transaction commits, so the insert
// that consumes the value and the increment are atomic together. A missing
// counter row is created on first use.
func nextSequence(tx *gorm.DB, name string) (int64, error) {
	var seq models.InvoiceSequenceModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.InvoiceSequenceModel{Name: name, Value: 0}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return 0, err
		}
		// Re-read under lock; a concurrent first use may have won the insert.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			First(&seq).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	seq.Value++
	if err := tx.Model(&models.InvoiceSequenceModel{}).
		Where("name = ?", name).
		Update("value", seq.Value).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
