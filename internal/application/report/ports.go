// Package report contiene los reportes de ventas, el dashboard y los documentos
// exportables (recibo de pedido y planilla de existencias).
package report

import (
	"context"
	"time"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// Cache almacena respuestas serializadas de reportes. Un miss devuelve (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReceiptRenderer genera el PDF de un pedido.
type ReceiptRenderer interface {
	RenderOrderReceipt(ctx context.Context, order *entity.Order, issuedAt time.Time) ([]byte, error)
}

// StockWorkbookBuilder genera la planilla de existencias.
type StockWorkbookBuilder interface {
	BuildStockWorkbook(ctx context.Context, rows []repository.StockRow, generatedAt time.Time) ([]byte, error)
}
