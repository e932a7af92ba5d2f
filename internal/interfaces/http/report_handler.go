package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler resumen de ventas, dashboard y exportación de existencias.
type ReportHandler struct {
	sales *report.SalesUseCase
	docs  *report.DocumentsUseCase
}

func NewReportHandler(sales *report.SalesUseCase, docs *report.DocumentsUseCase) *ReportHandler {
	return &ReportHandler{sales: sales, docs: docs}
}

// SalesSummary godoc
// @Summary      Resumen de ventas
// @Description  Pedidos entregados por tramo. week: lunes a domingo. month: días del mes. year: meses. custom: cada día entre start y end.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        range  query  string  true   "week | month | year | custom"
// @Param        start  query  string  false  "Inicio (YYYY-MM-DD), solo custom"
// @Param        end    query  string  false  "Fin inclusive (YYYY-MM-DD), solo custom"
// @Success      200    {object}  dto.SalesSummaryDTO
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/reports/sales-summary [get]
func (h *ReportHandler) SalesSummary(c *fiber.Ctx) error {
	start, err := queryDate(c, "start")
	if err != nil {
		return invalidParams(c, "start debe tener formato YYYY-MM-DD")
	}
	end, err := queryDate(c, "end")
	if err != nil {
		return invalidParams(c, "end debe tener formato YYYY-MM-DD")
	}
	out, err := h.sales.SalesSummary(c.UserContext(), c.Query("range", report.RangeWeek), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Dashboard
// @Description  Pedidos por estado, ingresos del día, existencias bajas y resumen de la semana.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.sales.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StockExport godoc
// @Summary      Exportar existencias
// @Description  Planilla xlsx con items y materias primas, su valor y lotes activos.
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /api/reports/stock.xlsx [get]
func (h *ReportHandler) StockExport(c *fiber.Ctx) error {
	data, filename, err := h.docs.StockWorkbook(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}

// queryDate lee una fecha YYYY-MM-DD (o RFC3339); vacío = nil.
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func invalidParams(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: msg})
}
