package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// OrderUseCase casos de uso de pedidos. Los pedidos referencian lotes de producción
// pero nunca descuentan stock.
type OrderUseCase struct {
	repo        repository.OrderRepository
	items       repository.ItemRepository
	itemBatches repository.LedgerRepository
	now         func() time.Time
}

// NewOrderUseCase construye el caso de uso. itemBatches debe ser el repositorio de lotes de items.
func NewOrderUseCase(repo repository.OrderRepository, items repository.ItemRepository, itemBatches repository.LedgerRepository) *OrderUseCase {
	return &OrderUseCase{repo: repo, items: items, itemBatches: itemBatches, now: time.Now}
}

// Create registra un pedido. Estado por defecto: preparing; fecha por defecto: ahora.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.OrderRequest) (*dto.OrderResponse, error) {
	now := uc.now()
	o := &entity.Order{ID: uuid.New().String(), Status: entity.OrderStatusPreparing}
	if err := uc.apply(ctx, o, in, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// GetByID obtiene un pedido con sus productos; (nil, nil) si no existe.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	return toOrderResponse(o), nil
}

// Update reemplaza datos y productos del pedido. Un cambio de estado sigue las reglas de UpdateStatus.
func (uc *OrderUseCase) Update(ctx context.Context, id string, in dto.OrderRequest) (*dto.OrderResponse, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	if in.Status != "" && in.Status != o.Status {
		if err := checkTransition(o.Status); err != nil {
			return nil, err
		}
	}
	if err := uc.apply(ctx, o, in, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// UpdateStatus cambia el estado del pedido.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, id, status string) (*dto.OrderResponse, error) {
	if !entity.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, status)
	}
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if o.Status == status {
		return toOrderResponse(o), nil
	}
	if err := checkTransition(o.Status); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o.Status = status
	o.LastUpdateDate = uc.now()
	return toOrderResponse(o), nil
}

// Delete elimina el pedido y sus productos.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// List lista pedidos filtrando por estado (vacío = todos).
func (uc *OrderUseCase) List(ctx context.Context, status string, limit, offset int) (*dto.OrderListResponse, error) {
	if status != "" && !entity.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, status)
	}
	list, err := uc.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// apply valida la entrada y la copia sobre o.
func (uc *OrderUseCase) apply(ctx context.Context, o *entity.Order, in dto.OrderRequest, now time.Time) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return fmt.Errorf("%w: customer_name es requerido", domain.ErrInvalidInput)
	}
	if in.Status != "" && !entity.ValidOrderStatus(in.Status) {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, in.Status)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price no puede ser negativo", domain.ErrInvalidInput)
	}
	if len(in.Products) == 0 {
		return fmt.Errorf("%w: el pedido debe tener al menos un producto", domain.ErrInvalidInput)
	}
	products := make([]entity.OrderProduct, 0, len(in.Products))
	for i, p := range in.Products {
		line, err := uc.product(ctx, o.ID, i, p)
		if err != nil {
			return err
		}
		products = append(products, line)
	}

	o.CustomerName = strings.TrimSpace(in.CustomerName)
	o.Location = in.Location
	o.ModeOfPayment = in.ModeOfPayment
	o.PaymentStatus = in.PaymentStatus
	o.Price = in.Price
	if in.Status != "" {
		o.Status = in.Status
	}
	switch {
	case in.Date != nil:
		o.Date = *in.Date
	case o.Date.IsZero():
		o.Date = now
	}
	o.LastUpdateDate = now
	o.Products = products
	return nil
}

func (uc *OrderUseCase) product(ctx context.Context, orderID string, i int, p dto.OrderProductRequest) (entity.OrderProduct, error) {
	if p.ItemID == "" {
		return entity.OrderProduct{}, fmt.Errorf("%w: products[%d].item_id es requerido", domain.ErrInvalidInput, i)
	}
	if !p.Quantity.GreaterThan(decimal.Zero) {
		return entity.OrderProduct{}, fmt.Errorf("%w: products[%d].quantity debe ser mayor que cero", domain.ErrInvalidInput, i)
	}
	item, err := uc.items.GetByID(ctx, p.ItemID)
	if err != nil {
		return entity.OrderProduct{}, err
	}
	if item == nil {
		return entity.OrderProduct{}, fmt.Errorf("%w: item %s", domain.ErrNotFound, p.ItemID)
	}
	if p.BatchID != "" {
		batch, err := uc.itemBatches.GetByID(ctx, p.BatchID)
		if err != nil {
			return entity.OrderProduct{}, err
		}
		if batch == nil || batch.SKUID != p.ItemID {
			return entity.OrderProduct{}, fmt.Errorf("%w: products[%d].batch_id no es un lote de %s", domain.ErrInvalidInput, i, item.Name)
		}
	}
	return entity.OrderProduct{
		OrderID:  orderID,
		ItemID:   p.ItemID,
		ItemName: item.Name,
		Quantity: p.Quantity,
		BatchID:  p.BatchID,
	}, nil
}

// checkTransition delivered y cancelled son estados finales.
func checkTransition(from string) error {
	if from == entity.OrderStatusDelivered || from == entity.OrderStatusCancelled {
		return fmt.Errorf("%w: el pedido ya está %s", domain.ErrConflict, from)
	}
	return nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	products := make([]dto.OrderProductResponse, 0, len(o.Products))
	for _, p := range o.Products {
		products = append(products, dto.OrderProductResponse{
			ItemID:   p.ItemID,
			ItemName: p.ItemName,
			Quantity: p.Quantity,
			BatchID:  p.BatchID,
		})
	}
	return &dto.OrderResponse{
		ID:             o.ID,
		CustomerName:   o.CustomerName,
		Date:           o.Date,
		Location:       o.Location,
		ModeOfPayment:  o.ModeOfPayment,
		PaymentStatus:  o.PaymentStatus,
		Status:         o.Status,
		Price:          o.Price,
		LastUpdateDate: o.LastUpdateDate,
		Products:       products,
	}
}
