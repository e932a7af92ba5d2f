package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// DocumentsUseCase genera el recibo PDF de un pedido y la planilla de existencias.
type DocumentsUseCase struct {
	orders   repository.OrderRepository
	reports  repository.ReportRepository
	receipts ReceiptRenderer
	workbook StockWorkbookBuilder
	now      func() time.Time
}

// NewDocumentsUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentsUseCase(
	orders repository.OrderRepository,
	reports repository.ReportRepository,
	receipts ReceiptRenderer,
	workbook StockWorkbookBuilder,
) *DocumentsUseCase {
	return &DocumentsUseCase{
		orders:   orders,
		reports:  reports,
		receipts: receipts,
		workbook: workbook,
		now:      time.Now,
	}
}

// OrderReceipt genera el PDF del pedido.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el pedido no existe.
//   - domain.ErrInvalidInput     si el pedido está cancelado.
func (uc *DocumentsUseCase) OrderReceipt(ctx context.Context, orderID string) (pdfBytes []byte, filename string, err error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener pedido: %w", err)
	}
	if order == nil {
		return nil, "", domain.ErrNotFound
	}
	if order.Status == entity.OrderStatusCancelled {
		return nil, "", fmt.Errorf("%w: el pedido está cancelado", domain.ErrInvalidInput)
	}

	pdfBytes, err = uc.receipts.RenderOrderReceipt(ctx, order, uc.now())
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("pedido_%s.pdf", shortID(order.ID)), nil
}

// StockWorkbook exporta las existencias de items y materias primas.
func (uc *DocumentsUseCase) StockWorkbook(ctx context.Context) (data []byte, filename string, err error) {
	rows, err := uc.reports.StockSnapshot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("existencias: consulta: %w", err)
	}
	now := uc.now()
	data, err = uc.workbook.BuildStockWorkbook(ctx, rows, now)
	if err != nil {
		return nil, "", fmt.Errorf("existencias: planilla: %w", err)
	}
	return data, fmt.Sprintf("existencias_%s.xlsx", now.Format("20060102")), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
