package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderProductRequest línea de pedido. BatchID referencia un lote de producción (opcional).
type OrderProductRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	BatchID  string          `json:"batch_id"`
}

// OrderRequest entrada para crear o reemplazar un pedido.
type OrderRequest struct {
	CustomerName  string                `json:"customer_name" validate:"required"`
	Date          *time.Time            `json:"date"`
	Location      string                `json:"location"`
	ModeOfPayment string                `json:"mode_of_payment"`
	PaymentStatus string                `json:"payment_status"`
	Status        string                `json:"status"`
	Price         decimal.Decimal       `json:"price"`
	Products      []OrderProductRequest `json:"products"`
}

// UpdateOrderStatusRequest entrada para PATCH /orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderProductResponse línea de pedido.
type OrderProductResponse struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	BatchID  string          `json:"batch_id,omitempty"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID             string                 `json:"id"`
	CustomerName   string                 `json:"customer_name"`
	Date           time.Time              `json:"date"`
	Location       string                 `json:"location"`
	ModeOfPayment  string                 `json:"mode_of_payment"`
	PaymentStatus  string                 `json:"payment_status"`
	Status         string                 `json:"status"`
	Price          decimal.Decimal        `json:"price"`
	LastUpdateDate time.Time              `json:"last_update_date"`
	Products       []OrderProductResponse `json:"products"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
