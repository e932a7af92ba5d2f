package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/application/ledger/ledgertest"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	apphttp "github.com/jhoicas/gmz-api/internal/interfaces/http"
)

const (
	widgetID = "item-widget"
	resinID  = "mat-resin"
)

// ledgerApp monta los handlers del ledger sin auth sobre un almacén en memoria.
func ledgerApp(t *testing.T) (*fiber.App, *ledgertest.Store) {
	t.Helper()
	store := ledgertest.NewStore()
	store.AddItem(widgetID, "Widget")
	store.AddMaterial(resinID, "Resin")
	svc := ledger.NewService(store, store.Repositories(), nil, nil,
		ledger.WithClock(func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }))

	app := fiber.New()
	prod := apphttp.NewProductionHandler(svc)
	app.Post("/productions", prod.Create)
	app.Get("/productions", prod.List)
	app.Get("/productions/:id", prod.GetByID)
	app.Put("/productions/:id", prod.Update)
	app.Delete("/productions/:id", prod.Delete)

	del := apphttp.NewDeliveryHandler(svc)
	app.Post("/deliveries", del.Create)
	app.Delete("/deliveries/:id", del.Delete)

	cons := apphttp.NewConsumptionHandler(svc)
	app.Post("/consumption-logs", cons.Create)
	app.Get("/consumption-logs/:id", cons.GetByID)
	app.Delete("/consumption-logs/:id", cons.Delete)

	rec := apphttp.NewLedgerHandler(svc)
	app.Get("/ledger/reconcile", rec.Reconcile)
	return app, store
}

func send(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestProductionHandler_CrearEditarEliminar(t *testing.T) {
	app, store := ledgerApp(t)

	resp := send(t, app, http.MethodPost, "/productions", dto.ProductionRequest{
		ItemID: widgetID, Quantity: decimal.NewFromInt(20), StaffName: "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.ProductionResponse](t, resp)
	assert.NotEmpty(t, created.BatchID)
	assert.True(t, store.Item(widgetID).Quantity.Equal(decimal.NewFromInt(20)))

	resp = send(t, app, http.MethodPut, "/productions/"+created.ID, dto.ProductionRequest{
		ItemID: widgetID, Quantity: decimal.NewFromInt(15), StaffName: "Alice",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.ProductionResponse](t, resp)
	assert.True(t, updated.Quantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, store.Item(widgetID).Quantity.Equal(decimal.NewFromInt(15)))

	resp = send(t, app, http.MethodGet, "/productions", nil)
	list := decode[[]dto.ProductionResponse](t, resp)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Remaining)
	assert.True(t, list[0].Remaining.Equal(decimal.NewFromInt(15)))

	resp = send(t, app, http.MethodDelete, "/productions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, store.Item(widgetID).Quantity.IsZero())

	resp = send(t, app, http.MethodGet, "/productions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductionHandler_Validacion(t *testing.T) {
	app, _ := ledgerApp(t)

	resp := send(t, app, http.MethodPost, "/productions", dto.ProductionRequest{ItemID: widgetID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)

	resp = send(t, app, http.MethodPost, "/productions", dto.ProductionRequest{ItemID: "no-existe", Quantity: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductionHandler_EdicionSinStockRetorna409(t *testing.T) {
	app, store := ledgerApp(t)

	created := decode[dto.ProductionResponse](t, send(t, app, http.MethodPost, "/productions", dto.ProductionRequest{
		ItemID: widgetID, Quantity: decimal.NewFromInt(10),
	}))
	// el agregado quedó por debajo del lote; bajar la producción en 5 no cabe
	store.SetItemQuantity(widgetID, decimal.NewFromInt(2))

	resp := send(t, app, http.MethodPut, "/productions/"+created.ID, dto.ProductionRequest{
		ItemID: widgetID, Quantity: decimal.NewFromInt(5),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.True(t, store.Item(widgetID).Quantity.Equal(decimal.NewFromInt(2)), "la transacción se revierte")
}

func TestConsumptionHandler_RechazosYReverso(t *testing.T) {
	app, store := ledgerApp(t)

	resp := send(t, app, http.MethodPost, "/deliveries", dto.DeliveryRequest{
		SupplierID: "sup-1", MaterialID: resinID, Quantity: decimal.NewFromInt(100), Cost: decimal.NewFromInt(500),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	delivery := decode[dto.DeliveryResponse](t, resp)

	resp = send(t, app, http.MethodPost, "/consumption-logs", dto.ConsumptionLogRequest{
		Description: "lote de prueba",
		Materials: []dto.MaterialUseRequest{
			{MaterialID: resinID, BatchID: delivery.BatchID, Quantity: decimal.NewFromInt(30)},
			{MaterialID: resinID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decode[dto.ConsumptionResultResponse](t, resp)
	assert.Equal(t, 1, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 1, result.Rejected[0].Index)
	assert.Equal(t, ledger.RejectMissingBatch, result.Rejected[0].Reason)
	assert.True(t, store.Material(resinID).Quantity.Equal(decimal.NewFromInt(70)))

	resp = send(t, app, http.MethodGet, "/consumption-logs/"+result.ID, nil)
	logResp := decode[dto.ConsumptionLogResponse](t, resp)
	require.Len(t, logResp.Lines, 1)
	assert.Equal(t, delivery.BatchID, logResp.Lines[0].BatchID)

	// la entrega ya fue consumida
	resp = send(t, app, http.MethodDelete, "/deliveries/"+delivery.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = send(t, app, http.MethodDelete, "/consumption-logs/"+result.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, store.Material(resinID).Quantity.Equal(decimal.NewFromInt(100)))
}

func TestConsumptionHandler_ExcesoRetorna409(t *testing.T) {
	app, store := ledgerApp(t)

	delivery := decode[dto.DeliveryResponse](t, send(t, app, http.MethodPost, "/deliveries", dto.DeliveryRequest{
		SupplierID: "sup-1", MaterialID: resinID, Quantity: decimal.NewFromInt(10), Cost: decimal.NewFromInt(50),
	}))

	resp := send(t, app, http.MethodPost, "/consumption-logs", dto.ConsumptionLogRequest{
		Materials: []dto.MaterialUseRequest{{MaterialID: resinID, BatchID: delivery.BatchID, Quantity: decimal.NewFromInt(11)}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.True(t, store.Material(resinID).Quantity.Equal(decimal.NewFromInt(10)), "nada se aplica si una línea falla")
}

func TestLedgerHandler_Reconcile(t *testing.T) {
	app, store := ledgerApp(t)

	resp := send(t, app, http.MethodGet, "/ledger/reconcile", nil)
	out := decode[dto.ReconcileResponse](t, resp)
	assert.True(t, out.Consistent)
	assert.Empty(t, out.Discrepancies)

	store.SetItemQuantity(widgetID, decimal.NewFromInt(3))
	resp = send(t, app, http.MethodGet, "/ledger/reconcile", nil)
	out = decode[dto.ReconcileResponse](t, resp)
	assert.False(t, out.Consistent)
	require.Len(t, out.Discrepancies, 1)
	assert.Equal(t, widgetID, out.Discrepancies[0].SKUID)
	assert.True(t, out.Discrepancies[0].Difference.Equal(decimal.NewFromInt(3)))
}

// Un id que no es UUID se rechaza antes de llegar al almacén: 400, no 503.
func TestLedgerHandler_IDMalFormadoRetorna400(t *testing.T) {
	app, store := ledgerApp(t)
	resp := send(t, app, http.MethodPost, "/productions", dto.ProductionRequest{ItemID: widgetID, Quantity: decimal.NewFromInt(4)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	runs := store.Runs

	for _, path := range []string{"/productions/abc", "/deliveries/abc", "/consumption-logs/abc"} {
		resp := send(t, app, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		body := decode[dto.ErrorResponse](t, resp)
		assert.Equal(t, "INVALID_ID", body.Code, path)
		assert.False(t, body.Retryable, path)
	}
	resp = send(t, app, http.MethodGet, "/consumption-logs/42", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, runs, store.Runs, "no se abre ninguna transacción")
	assert.True(t, store.Item(widgetID).Quantity.Equal(decimal.NewFromInt(4)))
}

func TestLedgerHandler_FallaDeAlmacenEsReintentable(t *testing.T) {
	app, store := ledgerApp(t)
	store.FailOn("Productions.Create", fmt.Errorf("%w: conexión perdida", domain.ErrStore))

	resp := send(t, app, http.MethodPost, "/productions", dto.ProductionRequest{ItemID: widgetID, Quantity: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "STORE_UNAVAILABLE", body.Code)
	assert.True(t, body.Retryable)
	assert.True(t, store.Item(widgetID).Quantity.IsZero())
	assert.Zero(t, store.BatchCount(entity.LedgerKindItem))
}
