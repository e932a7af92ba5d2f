package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// DeliveryHandler entregas de materia prima de proveedores.
type DeliveryHandler struct {
	ledger *ledger.Service
}

func NewDeliveryHandler(svc *ledger.Service) *DeliveryHandler {
	return &DeliveryHandler{ledger: svc}
}

// Create godoc
// @Summary      Registrar entrega
// @Description  Crea la entrega y su lote, suma a la materia prima y recalcula el costo promedio.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeliveryRequest  true  "Proveedor, materia prima, cantidad y costo"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var in dto.DeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx := c.UserContext()
	res, err := h.ledger.RecordDelivery(ctx, deliveryInput(in))
	if err != nil {
		return respondError(c, err)
	}
	d, err := h.ledger.GetDelivery(ctx, res.DeliveryID)
	if err != nil {
		return respondError(c, err)
	}
	out := toDeliveryResponse(d)
	out.BatchID = res.BatchID
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [get]
func (h *DeliveryHandler) GetByID(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	d, err := h.ledger.GetDelivery(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDeliveryResponse(d))
}

// List godoc
// @Summary      Listar entregas
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.DeliveryResponse
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	rows, err := h.ledger.ListDeliveries(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DeliveryResponse, 0, len(rows))
	for i := range rows {
		r := rows[i]
		resp := toDeliveryResponse(&r.SupplyDelivery)
		resp.SupplierName = r.SupplierName
		resp.MaterialName = r.MaterialName
		resp.BatchID = r.BatchID
		resp.Remaining = &r.Remaining
		out = append(out, resp)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar entrega
// @Description  La materia prima de una entrega no puede cambiar.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la entrega"
// @Param        body  body  dto.DeliveryRequest  true  "Nuevos datos"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [put]
func (h *DeliveryHandler) Update(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	var in dto.DeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx := c.UserContext()
	if err := h.ledger.UpdateDelivery(ctx, id, deliveryInput(in)); err != nil {
		return respondError(c, err)
	}
	d, err := h.ledger.GetDelivery(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDeliveryResponse(d))
}

// Delete godoc
// @Summary      Eliminar entrega
// @Description  Falla con 409 si su lote ya fue consumido.
// @Tags         deliveries
// @Security     Bearer
// @Param        id   path  string  true  "ID de la entrega"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	if err := h.ledger.DeleteDelivery(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func deliveryInput(in dto.DeliveryRequest) ledger.DeliveryInput {
	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	return ledger.DeliveryInput{
		SupplierID: in.SupplierID,
		MaterialID: in.MaterialID,
		Quantity:   in.Quantity,
		Cost:       in.Cost,
		Date:       date,
	}
}

func toDeliveryResponse(d *entity.SupplyDelivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:          d.ID,
		SupplierID:  d.SupplierID,
		MaterialID:  d.MaterialID,
		Quantity:    d.Quantity,
		Cost:        d.Cost,
		DeliveredAt: d.DeliveredAt,
	}
}
