package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
)

// LedgerHandler operaciones de mantenimiento del ledger.
type LedgerHandler struct {
	ledger *ledger.Service
}

func NewLedgerHandler(svc *ledger.Service) *LedgerHandler {
	return &LedgerHandler{ledger: svc}
}

// Reconcile godoc
// @Summary      Reconciliar existencias
// @Description  Compara la cantidad de cada item y materia prima con la suma de sus lotes. No corrige nada.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/ledger/reconcile [get]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	list, err := h.ledger.Reconcile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ReconcileResponse{
		Consistent:    len(list) == 0,
		Discrepancies: make([]dto.DiscrepancyResponse, 0, len(list)),
	}
	for _, d := range list {
		out.Discrepancies = append(out.Discrepancies, dto.DiscrepancyResponse{
			Kind:       string(d.Kind),
			SKUID:      d.SKUID,
			Name:       d.Name,
			Aggregate:  d.Aggregate,
			LedgerSum:  d.LedgerSum,
			Difference: d.Difference(),
		})
	}
	return c.JSON(out)
}
