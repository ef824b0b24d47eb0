package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, employee_id, session_id, mode, number, date, item_count, total_quantity,
		       total_gross, total_add, total_less, total_bill_value, cash, card, upi, balance, created_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.EmployeeID, inv.SessionID, string(inv.Mode), inv.Number, inv.Date,
		inv.ItemCount, inv.TotalQuantity, inv.TotalGross, inv.TotalAdd, inv.TotalLess, inv.TotalBillValue,
		inv.Cash, inv.Card, inv.UPI, inv.Balance, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número o sesión ya facturada", domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: empleado inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea numerada.
func (r *InvoiceRepo) CreateLine(ctx context.Context, l *entity.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, line_no, product_id, product_name, barcode, serial_number,
		                           quantity, free_quantity, rate, net_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.InvoiceID, l.No, l.ProductID, l.ProductName, l.Barcode, l.SerialNumber,
		l.Quantity, l.FreeQuantity, l.Rate, l.NetAmount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// CreateAdjustment persiste un ajuste.
func (r *InvoiceRepo) CreateAdjustment(ctx context.Context, a *entity.InvoiceAdjustment) error {
	query := `
		INSERT INTO invoice_adjustments (id, invoice_id, account_id, account_name, account_type, add_amount, less_amount, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.InvoiceID, a.AccountID, a.AccountName, string(a.AccountType), a.AddAmount, a.LessAmount, a.Comments,
	)
	if err != nil {
		return fmt.Errorf("insert invoice adjustment: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID; nil si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLines líneas de la factura en orden de presentación.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, line_no, product_id, product_name, barcode, serial_number,
		       quantity, free_quantity, rate, net_amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.No, &l.ProductID, &l.ProductName, &l.Barcode, &l.SerialNumber,
			&l.Quantity, &l.FreeQuantity, &l.Rate, &l.NetAmount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetAdjustments ajustes de la factura.
func (r *InvoiceRepo) GetAdjustments(ctx context.Context, invoiceID string) ([]entity.InvoiceAdjustment, error) {
	query := `
		SELECT id, invoice_id, account_id, account_name, account_type, add_amount, less_amount, comments
		FROM invoice_adjustments WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice adjustments: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceAdjustment
	for rows.Next() {
		var a entity.InvoiceAdjustment
		var accountType string
		if err := rows.Scan(&a.ID, &a.InvoiceID, &a.AccountID, &a.AccountName, &accountType,
			&a.AddAmount, &a.LessAmount, &a.Comments); err != nil {
			return nil, fmt.Errorf("scan invoice adjustment: %w", err)
		}
		a.AccountType = entity.AccountType(accountType)
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListByEmployee facturas del empleado, más recientes primero, con el total para paginar.
func (r *InvoiceRepo) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.Invoice, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM invoices WHERE employee_id = $1`, employeeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE employee_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, employeeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var mode string
	err := row.Scan(
		&inv.ID, &inv.EmployeeID, &inv.SessionID, &mode, &inv.Number, &inv.Date,
		&inv.ItemCount, &inv.TotalQuantity, &inv.TotalGross, &inv.TotalAdd, &inv.TotalLess, &inv.TotalBillValue,
		&inv.Cash, &inv.Card, &inv.UPI, &inv.Balance, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Mode = entity.FlowMode(mode)
	return &inv, nil
}
