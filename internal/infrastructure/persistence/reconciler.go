package persistence

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ColumnReport records the outcome of one attempted column addition
type ColumnReport struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Error  string `json:"error,omitempty"`
}

// ReconcileResult reports what a schema reconciliation pass did. A pass that
// added some columns and failed on others is partial, not failed; callers see
// exactly which columns remain missing.
type ReconcileResult struct {
	Database      string         `json:"database"`
	TablesSkipped []string       `json:"tablesSkipped,omitempty"`
	ColumnsAdded  []ColumnReport `json:"columnsAdded,omitempty"`
	ColumnsFailed []ColumnReport `json:"columnsFailed,omitempty"`
}

// Complete reports whether the pass left nothing missing
func (r *ReconcileResult) Complete() bool {
	return len(r.ColumnsFailed) == 0 && len(r.TablesSkipped) == 0
}

// Changed reports whether the pass altered anything
func (r *ReconcileResult) Changed() bool {
	return len(r.ColumnsAdded) > 0
}

// Reconciler compares a tenant database against the authoritative column
// inventory and adds whatever is missing. It is additive only.
type Reconciler struct {
	registry *Registry
	schema   []TableSpec
	logger   *zap.Logger
}

// NewReconciler creates a schema reconciler over the tenant registry
func NewReconciler(registry *Registry, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		registry: registry,
		schema:   TenantSchema(),
		logger:   logger,
	}
}

// Reconcile brings one tenant database up to the expected column set.
// Each column is attempted independently; one failure does not stop the pass.
func (r *Reconciler) Reconcile(ctx context.Context, dbName string) (*ReconcileResult, error) {
	db, err := r.registry.Get(dbName)
	if err != nil {
		return nil, ClassifyConnError(err, dbName)
	}

	result := &ReconcileResult{Database: dbName}

	for _, table := range r.schema {
		exists, err := r.tableExists(ctx, db, table.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table %s in %s: %w", table.Name, dbName, err)
		}
		if !exists {
			// Missing tables belong to schema initialization, not reconciliation.
			result.TablesSkipped = append(result.TablesSkipped, table.Name)
			r.logger.Warn("reconcile skipping missing table",
				zap.String("database", dbName),
				zap.String("table", table.Name))
			continue
		}

		existing, err := r.columnNames(ctx, db, table.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list columns of %s in %s: %w", table.Name, dbName, err)
		}

		for _, col := range table.Columns {
			if _, ok := existing[col.Name]; ok {
				continue
			}
			if err := r.addColumn(ctx, db, table.Name, col); err != nil {
				result.ColumnsFailed = append(result.ColumnsFailed, ColumnReport{
					Table:  table.Name,
					Column: col.Name,
					Error:  err.Error(),
				})
				r.logger.Error("reconcile column addition failed",
					zap.String("database", dbName),
					zap.String("table", table.Name),
					zap.String("column", col.Name),
					zap.Error(err))
				continue
			}
			result.ColumnsAdded = append(result.ColumnsAdded, ColumnReport{
				Table:  table.Name,
				Column: col.Name,
			})
			r.logger.Info("reconcile added column",
				zap.String("database", dbName),
				zap.String("table", table.Name),
				zap.String("column", col.Name))
		}
	}

	return result, nil
}

// addColumn adds one column with its full shape in a fixed statement order:
// type and default first, then nullability, then uniqueness. Each column runs
// in its own transaction so one failure cannot roll back earlier additions.
func (r *Reconciler) addColumn(ctx context.Context, db *gorm.DB, table string, col ColumnSpec) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmts := buildAddColumnStatements(table, col)
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// buildAddColumnStatements synthesizes the ALTER TABLE sequence for one column
func buildAddColumnStatements(table string, col ColumnSpec) []string {
	var stmts []string
	add := fmt.Sprintf(`ALTER TABLE %q ADD COLUMN IF NOT EXISTS %q %s`, table, col.Name, col.Type)
	if col.Default != "" {
		add += fmt.Sprintf(` DEFAULT %s`, col.Default)
	}
	stmts = append(stmts, add)
	if col.NotNull {
		// Backfill before the constraint so existing rows do not block it.
		if col.Default != "" {
			stmts = append(stmts, fmt.Sprintf(`UPDATE %q SET %q = %s WHERE %q IS NULL`,
				table, col.Name, col.Default, col.Name))
		}
		stmts = append(stmts, fmt.Sprintf(`ALTER TABLE %q ALTER COLUMN %q SET NOT NULL`, table, col.Name))
	}
	if col.Unique {
		stmts = append(stmts, fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %q (%q)`,
			uniqueIndexName(table, col.Name), table, col.Name))
	}
	return stmts
}

func uniqueIndexName(table, column string) string {
	return fmt.Sprintf("idx_%s_%s", table, strings.ReplaceAll(column, " ", "_"))
}

func (r *Reconciler) tableExists(ctx context.Context, db *gorm.DB, table string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?`, table).
		Scan(&count).Error
	return count > 0, err
}

func (r *Reconciler) columnNames(ctx context.Context, db *gorm.DB, table string) (map[string]struct{}, error) {
	var names []string
	err := db.WithContext(ctx).
		Raw(`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = ?`, table).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set, nil
}
