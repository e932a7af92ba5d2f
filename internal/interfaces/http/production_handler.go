package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// ProductionHandler corridas de producción. Cada escritura pasa por el ledger.
type ProductionHandler struct {
	ledger *ledger.Service
}

func NewProductionHandler(svc *ledger.Service) *ProductionHandler {
	return &ProductionHandler{ledger: svc}
}

// Create godoc
// @Summary      Registrar producción
// @Description  Crea la producción, su lote y suma la cantidad al item en una sola transacción.
// @Tags         productions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "Item, cantidad y responsable"
// @Success      201   {object}  dto.ProductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/productions [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx := c.UserContext()
	res, err := h.ledger.RecordProduction(ctx, productionInput(in))
	if err != nil {
		return respondError(c, err)
	}
	prod, err := h.ledger.GetProduction(ctx, res.ProductionID)
	if err != nil {
		return respondError(c, err)
	}
	out := toProductionResponse(prod)
	out.BatchID = res.BatchID
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producción
// @Tags         productions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la producción"
// @Success      200  {object}  dto.ProductionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [get]
func (h *ProductionHandler) GetByID(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	prod, err := h.ledger.GetProduction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductionResponse(prod))
}

// List godoc
// @Summary      Listar producciones
// @Description  Más recientes primero, con el nombre del item y lo que queda del lote.
// @Tags         productions
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.ProductionResponse
// @Router       /api/productions [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	rows, err := h.ledger.ListProductions(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductionResponse, 0, len(rows))
	for i := range rows {
		r := rows[i]
		resp := toProductionResponse(&r.Production)
		resp.ItemName = r.ItemName
		resp.BatchID = r.BatchID
		resp.Remaining = &r.Remaining
		out = append(out, resp)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar producción
// @Description  Ajusta item y lote por la diferencia. Si cambia el item, el lote se reasigna.
// @Tags         productions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la producción"
// @Param        body  body  dto.ProductionRequest  true  "Nuevos datos"
// @Success      200   {object}  dto.ProductionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [put]
func (h *ProductionHandler) Update(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	var in dto.ProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx := c.UserContext()
	if err := h.ledger.UpdateProduction(ctx, id, productionInput(in)); err != nil {
		return respondError(c, err)
	}
	prod, err := h.ledger.GetProduction(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toProductionResponse(prod))
}

// Delete godoc
// @Summary      Eliminar producción
// @Description  Descuenta del item lo que queda del lote y elimina ambos.
// @Tags         productions
// @Security     Bearer
// @Param        id   path  string  true  "ID de la producción"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [delete]
func (h *ProductionHandler) Delete(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	if err := h.ledger.DeleteProduction(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func productionInput(in dto.ProductionRequest) ledger.ProductionInput {
	return ledger.ProductionInput{ItemID: in.ItemID, Quantity: in.Quantity, StaffName: in.StaffName}
}

func toProductionResponse(p *entity.Production) dto.ProductionResponse {
	return dto.ProductionResponse{
		ID:         p.ID,
		ItemID:     p.ItemID,
		Quantity:   p.Quantity,
		StaffName:  p.StaffName,
		ProducedAt: p.ProducedAt,
	}
}
