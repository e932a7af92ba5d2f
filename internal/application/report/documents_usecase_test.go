package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gmz-api/internal/application/report"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

type ordersByID map[string]*entity.Order

func (o ordersByID) Create(context.Context, *entity.Order) error { return nil }
func (o ordersByID) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return o[id], nil
}
func (o ordersByID) Update(context.Context, *entity.Order) error { return nil }
func (o ordersByID) UpdateStatus(context.Context, string, string) error { return nil }
func (o ordersByID) Delete(context.Context, string) error { return nil }
func (o ordersByID) List(context.Context, string, int, int) ([]*entity.Order, error) {
	return nil, nil
}

type stubRenderer struct{ got *entity.Order }

func (s *stubRenderer) RenderOrderReceipt(_ context.Context, o *entity.Order, _ time.Time) ([]byte, error) {
	s.got = o
	return []byte("%PDF-1.4"), nil
}

type stubWorkbook struct{ rows []repository.StockRow }

func (s *stubWorkbook) BuildStockWorkbook(_ context.Context, rows []repository.StockRow, _ time.Time) ([]byte, error) {
	s.rows = rows
	return []byte("PK"), nil
}

func TestOrderReceipt(t *testing.T) {
	orders := ordersByID{
		"0123456789abcdef": {ID: "0123456789abcdef", CustomerName: "Ana", Status: entity.OrderStatusDelivered},
		"cancelled":        {ID: "cancelled", Status: entity.OrderStatusCancelled},
	}
	renderer := &stubRenderer{}
	uc := report.NewDocumentsUseCase(orders, &fakeReports{}, renderer, &stubWorkbook{})

	pdf, name, err := uc.OrderReceipt(context.Background(), "0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, "pedido_01234567.pdf", name)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Equal(t, "Ana", renderer.got.CustomerName)

	_, _, err = uc.OrderReceipt(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = uc.OrderReceipt(context.Background(), "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockWorkbook(t *testing.T) {
	repo := &fakeReports{snapshot: []repository.StockRow{{Kind: "item", ID: "i1", Name: "Widget"}}}
	wb := &stubWorkbook{}
	uc := report.NewDocumentsUseCase(ordersByID{}, repo, &stubRenderer{}, wb)

	data, name, err := uc.StockWorkbook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data))
	assert.Regexp(t, `^existencias_\d{8}\.xlsx$`, name)
	assert.Len(t, wb.rows, 1)

	repo.failOn = "StockSnapshot"
	_, _, err = uc.StockWorkbook(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
}
