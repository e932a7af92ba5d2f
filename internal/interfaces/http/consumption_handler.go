package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// ConsumptionHandler bitácoras de consumo de materia prima.
type ConsumptionHandler struct {
	ledger *ledger.Service
}

func NewConsumptionHandler(svc *ledger.Service) *ConsumptionHandler {
	return &ConsumptionHandler{ledger: svc}
}

// Create godoc
// @Summary      Registrar bitácora de consumo
// @Description  Descuenta cada línea de su lote y de la materia prima. Las líneas inválidas se devuelven en rejected.
// @Tags         consumption-logs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumptionLogRequest  true  "Descripción, fecha y materiales"
// @Success      201   {object}  dto.ConsumptionResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/consumption-logs [post]
func (h *ConsumptionHandler) Create(c *fiber.Ctx) error {
	var in dto.ConsumptionLogRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.RecordConsumptionLog(c.UserContext(), consumptionInput(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toConsumptionResult(res))
}

// GetByID godoc
// @Summary      Obtener bitácora de consumo
// @Tags         consumption-logs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bitácora"
// @Success      200  {object}  dto.ConsumptionLogResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consumption-logs/{id} [get]
func (h *ConsumptionHandler) GetByID(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	log, err := h.ledger.GetConsumptionLog(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	out := toConsumptionLogResponse(log)
	out.Lines = make([]dto.ConsumptionLineResponse, 0, len(log.Lines))
	for _, l := range log.Lines {
		out.Lines = append(out.Lines, dto.ConsumptionLineResponse{
			MaterialID: l.MaterialID,
			BatchID:    l.BatchID,
			Quantity:   l.Quantity,
		})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar bitácoras de consumo
// @Tags         consumption-logs
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {array}  dto.ConsumptionLogResponse
// @Router       /api/consumption-logs [get]
func (h *ConsumptionHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	rows, err := h.ledger.ListConsumptionLogs(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ConsumptionLogResponse, 0, len(rows))
	for i := range rows {
		resp := toConsumptionLogResponse(&rows[i].ConsumptionLog)
		resp.MaterialNames = rows[i].MaterialNames
		out = append(out, resp)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar bitácora de consumo
// @Description  Devuelve a los lotes lo consumido antes y aplica las nuevas líneas.
// @Tags         consumption-logs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la bitácora"
// @Param        body  body  dto.ConsumptionLogRequest  true  "Nuevos datos"
// @Success      200   {object}  dto.ConsumptionResultResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/consumption-logs/{id} [put]
func (h *ConsumptionHandler) Update(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	var in dto.ConsumptionLogRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.UpdateConsumptionLog(c.UserContext(), id, consumptionInput(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toConsumptionResult(res))
}

// Delete godoc
// @Summary      Eliminar bitácora de consumo
// @Description  Devuelve lo consumido a cada lote y materia prima.
// @Tags         consumption-logs
// @Security     Bearer
// @Param        id   path  string  true  "ID de la bitácora"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/consumption-logs/{id} [delete]
func (h *ConsumptionHandler) Delete(c *fiber.Ctx) error {
	id, ok := requireID(c)
	if !ok {
		return missingID(c)
	}
	if err := h.ledger.DeleteConsumptionLog(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func consumptionInput(in dto.ConsumptionLogRequest) ledger.ConsumptionInput {
	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	uses := make([]ledger.MaterialUse, 0, len(in.Materials))
	for _, m := range in.Materials {
		uses = append(uses, ledger.MaterialUse{MaterialID: m.MaterialID, BatchID: m.BatchID, Quantity: m.Quantity})
	}
	return ledger.ConsumptionInput{Description: in.Description, Date: date, Materials: uses}
}

func toConsumptionResult(res *ledger.ConsumptionResult) dto.ConsumptionResultResponse {
	out := dto.ConsumptionResultResponse{
		ID:       res.LogID,
		Accepted: len(res.Accepted),
		Rejected: make([]dto.RejectedMaterialResponse, 0, len(res.Rejected)),
	}
	for _, r := range res.Rejected {
		out.Rejected = append(out.Rejected, dto.RejectedMaterialResponse{
			Index: r.Index,
			Material: dto.MaterialUseRequest{
				MaterialID: r.Use.MaterialID,
				BatchID:    r.Use.BatchID,
				Quantity:   r.Use.Quantity,
			},
			Reason: r.Reason,
		})
	}
	return out
}

func toConsumptionLogResponse(l *entity.ConsumptionLog) dto.ConsumptionLogResponse {
	return dto.ConsumptionLogResponse{ID: l.ID, Description: l.Description, LoggedAt: l.LoggedAt}
}
