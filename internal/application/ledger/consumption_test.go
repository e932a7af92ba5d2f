package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entregas
// ──────────────────────────────────────────────────────────────────────────────

func TestDelivery_RegistrarEditarEliminar(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	res, err := svc.RecordDelivery(ctx, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("100"), Cost: qty("250")})
	require.NoError(t, err)
	mat := store.Material(resinID)
	assert.True(t, mat.Quantity.Equal(qty("100")))
	assert.True(t, mat.UnitCost.Equal(qty("2.5")), "costo promedio = 250/100, got %s", mat.UnitCost)
	batch, ok := store.Batch(entity.LedgerKindMaterial, res.BatchID)
	require.True(t, ok)
	assert.Equal(t, fixedNow, batch.LastUpdated)

	del, err := svc.GetDelivery(ctx, res.DeliveryID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, del.DeliveredAt, "fecha por defecto = ahora")

	require.NoError(t, svc.UpdateDelivery(ctx, res.DeliveryID, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("80"), Cost: qty("240")}))
	mat = store.Material(resinID)
	assert.True(t, mat.Quantity.Equal(qty("80")))
	assert.True(t, mat.UnitCost.Equal(qty("3")), "got %s", mat.UnitCost)
	batch, _ = store.Batch(entity.LedgerKindMaterial, res.BatchID)
	assert.True(t, batch.Quantity.Equal(qty("80")))

	require.NoError(t, svc.DeleteDelivery(ctx, res.DeliveryID))
	assert.True(t, store.Material(resinID).Quantity.IsZero())
	assert.False(t, store.HasDelivery(res.DeliveryID))
	assert.Zero(t, store.BatchCount(entity.LedgerKindMaterial))
}

func TestDelivery_Validacion(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	cases := []struct {
		name string
		in   ledger.DeliveryInput
		want error
	}{
		{"sin proveedor", ledger.DeliveryInput{MaterialID: resinID, Quantity: qty("1")}, domain.ErrInvalidInput},
		{"sin materia prima", ledger.DeliveryInput{SupplierID: supplier, Quantity: qty("1")}, domain.ErrInvalidInput},
		{"cantidad cero", ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID}, domain.ErrInvalidInput},
		{"costo negativo", ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("1"), Cost: qty("-1")}, domain.ErrInvalidInput},
		{"materia prima inexistente", ledger.DeliveryInput{SupplierID: supplier, MaterialID: "nope", Quantity: qty("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordDelivery(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDelivery_NoPermiteCambiarMateria(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	res, err := svc.RecordDelivery(ctx, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("10")})
	require.NoError(t, err)

	err = svc.UpdateDelivery(ctx, res.DeliveryID, ledger.DeliveryInput{SupplierID: supplier, MaterialID: glueID, Quantity: qty("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Reducir una entrega por debajo de lo ya consumido de su lote falla sin cambios.
func TestDelivery_ReducirBajoConsumido(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	res, err := svc.RecordDelivery(ctx, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("50")})
	require.NoError(t, err)
	_, err = svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: res.BatchID, Quantity: qty("40")},
	}})
	require.NoError(t, err)

	err = svc.UpdateDelivery(ctx, res.DeliveryID, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("30")})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("10")))
	assertConsistent(t, store, entity.LedgerKindMaterial, resinID)
}

// Tras un consumo parcial solo lo que queda del lote se revalora con el nuevo costo.
func TestDelivery_EditarCostoTrasConsumoParcial(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	res, err := svc.RecordDelivery(ctx, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("100"), Cost: qty("200")})
	require.NoError(t, err)
	_, err = svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: res.BatchID, Quantity: qty("30")},
	}})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateDelivery(ctx, res.DeliveryID, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("100"), Cost: qty("300")}))
	mat := store.Material(resinID)
	assert.True(t, mat.Quantity.Equal(qty("70")), "got %s", mat.Quantity)
	assert.True(t, mat.UnitCost.Equal(qty("3")), "got %s", mat.UnitCost)

	// Subir la cantidad con el mismo costo unitario no mueve el promedio.
	require.NoError(t, svc.UpdateDelivery(ctx, res.DeliveryID, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("110"), Cost: qty("330")}))
	mat = store.Material(resinID)
	assert.True(t, mat.Quantity.Equal(qty("80")), "got %s", mat.Quantity)
	assert.True(t, mat.UnitCost.Equal(qty("3")), "got %s", mat.UnitCost)
	assertConsistent(t, store, entity.LedgerKindMaterial, resinID)
}

// Editar o eliminar bloquea primero la fila de la entrega y después la materia prima.
func TestDelivery_BloqueaLaEntregaAntesQueLaMateria(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	res, err := svc.RecordDelivery(ctx, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("10")})
	require.NoError(t, err)
	want := []string{"Deliveries:" + res.DeliveryID, "Materials:" + resinID}

	store.ResetLocks()
	require.NoError(t, svc.UpdateDelivery(ctx, res.DeliveryID, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("12")}))
	assert.Equal(t, want, store.Locks())

	store.ResetLocks()
	require.NoError(t, svc.DeleteDelivery(ctx, res.DeliveryID))
	assert.Equal(t, want, store.Locks())
}

// Un lote con consumos registrados no se puede eliminar; nada cambia.
func TestDelivery_EliminarConConsumosEsConflicto(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	res, err := svc.RecordDelivery(ctx, ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty("50")})
	require.NoError(t, err)
	_, err = svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: res.BatchID, Quantity: qty("5")},
	}})
	require.NoError(t, err)

	err = svc.DeleteDelivery(ctx, res.DeliveryID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, store.HasDelivery(res.DeliveryID))
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("45")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Bitácoras de consumo
// ──────────────────────────────────────────────────────────────────────────────

func resinBatch(t *testing.T, svc *ledger.Service, q string) string {
	t.Helper()
	res, err := svc.RecordDelivery(context.Background(), ledger.DeliveryInput{SupplierID: supplier, MaterialID: resinID, Quantity: qty(q), Cost: qty("1")})
	require.NoError(t, err)
	return res.BatchID
}

// Resin con lote de 100: consumir 30 → 70; pedir 80 falla y deja 70.
func TestConsumption_EscenarioResin(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	batchID := resinBatch(t, svc, "100")

	res, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Description: "mezcla", Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("30")},
	}})
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 1)
	assert.Empty(t, res.Rejected)
	batch, _ := store.Batch(entity.LedgerKindMaterial, batchID)
	assert.True(t, batch.Quantity.Equal(qty("70")))
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("70")))

	_, err = svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("80")},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	batch, _ = store.Batch(entity.LedgerKindMaterial, batchID)
	assert.True(t, batch.Quantity.Equal(qty("70")))
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("70")))
}

// Lote con 5 y se piden 10: falla sin descontar nada, aunque otra línea previa sí tenía stock.
func TestConsumption_SinDescuentoParcial(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	big := resinBatch(t, svc, "100")
	small := resinBatch(t, svc, "5")

	_, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: big, Quantity: qty("20")},
		{MaterialID: resinID, BatchID: small, Quantity: qty("10")},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	b1, _ := store.Batch(entity.LedgerKindMaterial, big)
	b2, _ := store.Batch(entity.LedgerKindMaterial, small)
	assert.True(t, b1.Quantity.Equal(qty("100")), "la primera línea también se revierte")
	assert.True(t, b2.Quantity.Equal(qty("5")))
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("105")))
}

func TestConsumption_LineasRechazadasSeReportan(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	batchID := resinBatch(t, svc, "10")

	res, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("2")},
		{MaterialID: "", BatchID: batchID, Quantity: qty("1")},
		{MaterialID: resinID, BatchID: "", Quantity: qty("1")},
		{MaterialID: resinID, BatchID: batchID, Quantity: decimal.Zero},
	}})
	require.NoError(t, err)

	want := []ledger.RejectedMaterial{
		{Index: 1, Use: ledger.MaterialUse{BatchID: batchID, Quantity: qty("1")}, Reason: ledger.RejectMissingMaterial},
		{Index: 2, Use: ledger.MaterialUse{MaterialID: resinID, Quantity: qty("1")}, Reason: ledger.RejectMissingBatch},
		{Index: 3, Use: ledger.MaterialUse{MaterialID: resinID, BatchID: batchID, Quantity: decimal.Zero}, Reason: ledger.RejectQuantity},
	}
	decEq := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, res.Rejected, decEq); diff != "" {
		t.Errorf("rechazos (-want +got):\n%s", diff)
	}
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("8")))
}

func TestConsumption_TodasInvalidas(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	_, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, Quantity: qty("1")},
	}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.Runs, "la validación ocurre antes de abrir la transacción")
}

func TestConsumption_LoteDeOtraMateria(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	batchID := resinBatch(t, svc, "10")
	require.NoError(t, store.Repositories().Materials.AdjustQuantity(ctx, glueID, qty("10")))

	_, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: glueID, BatchID: batchID, Quantity: qty("1")},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("10")))
}

func TestConsumption_LoteInexistente(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: "nope", Quantity: qty("1")},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// updateConsumptionLog(log, []) devuelve todo al stock, igual que eliminar y registrar una bitácora vacía.
func TestConsumption_UpdateVacioEquivaleAReverso(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	batchID := resinBatch(t, svc, "100")

	res, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Description: "lote A", Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("25")},
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("5")},
	}})
	require.NoError(t, err)
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("70")))

	_, err = svc.UpdateConsumptionLog(ctx, res.LogID, ledger.ConsumptionInput{Description: "lote A"})
	require.NoError(t, err)

	batch, _ := store.Batch(entity.LedgerKindMaterial, batchID)
	assert.True(t, batch.Quantity.Equal(qty("100")))
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("100")))
	log, err := svc.GetConsumptionLog(ctx, res.LogID)
	require.NoError(t, err)
	assert.Empty(t, log.Lines, "no quedan débitos residuales")
}

func TestConsumption_UpdateReemplazaLineas(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	batchID := resinBatch(t, svc, "100")

	res, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("60")},
	}})
	require.NoError(t, err)

	// 60 → 90: solo posible porque primero se devuelven los 60 anteriores.
	newDate := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateConsumptionLog(ctx, res.LogID, ledger.ConsumptionInput{Description: "ajuste", Date: newDate, Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("90")},
	}})
	require.NoError(t, err)
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("10")))

	log, err := svc.GetConsumptionLog(ctx, res.LogID)
	require.NoError(t, err)
	assert.Equal(t, "ajuste", log.Description)
	assert.Equal(t, newDate, log.LoggedAt)
	require.Len(t, log.Lines, 1)
	assert.True(t, log.Lines[0].Quantity.Equal(qty("90")))

	// Un update imposible deja intacta la bitácora anterior.
	_, err = svc.UpdateConsumptionLog(ctx, res.LogID, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("101")},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	log, _ = svc.GetConsumptionLog(ctx, res.LogID)
	require.Len(t, log.Lines, 1)
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("10")))
}

// Las líneas se leen con la bitácora ya bloqueada; las materias se bloquean después.
func TestConsumption_BloqueaLaBitacoraAntesQueLasMaterias(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	batchID := resinBatch(t, svc, "50")
	res, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("10")},
	}})
	require.NoError(t, err)
	want := []string{"ConsumptionLogs:" + res.LogID, "Materials:" + resinID}

	store.ResetLocks()
	_, err = svc.UpdateConsumptionLog(ctx, res.LogID, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("20")},
	}})
	require.NoError(t, err)
	assert.Equal(t, want, store.Locks())

	store.ResetLocks()
	require.NoError(t, svc.DeleteConsumptionLog(ctx, res.LogID))
	assert.Equal(t, want, store.Locks())
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("50")))
}

func TestConsumption_Eliminar(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newTestService(t)
	batchID := resinBatch(t, svc, "40")

	res, err := svc.RecordConsumptionLog(ctx, ledger.ConsumptionInput{Materials: []ledger.MaterialUse{
		{MaterialID: resinID, BatchID: batchID, Quantity: qty("40")},
	}})
	require.NoError(t, err)
	batches, err := svc.ListBatches(ctx, entity.LedgerKindMaterial, resinID)
	require.NoError(t, err)
	assert.Empty(t, batches, "un lote en cero queda inactivo")
	assert.Equal(t, 1, store.BatchCount(entity.LedgerKindMaterial), "pero no se elimina")

	require.NoError(t, svc.DeleteConsumptionLog(ctx, res.LogID))
	assert.False(t, store.HasLog(res.LogID))
	assert.True(t, store.Material(resinID).Quantity.Equal(qty("40")))
	assertConsistent(t, store, entity.LedgerKindMaterial, resinID)

	assert.ErrorIs(t, svc.DeleteConsumptionLog(ctx, res.LogID), domain.ErrNotFound)
	assert.Contains(t, pub.types(), ledger.EventConsumptionReversed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	_, err := svc.RecordProduction(ctx, ledger.ProductionInput{ItemID: widgetID, Quantity: qty("10")})
	require.NoError(t, err)
	resinBatch(t, svc, "7")

	out, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	store.SetItemQuantity(widgetID, qty("12"))
	out, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, widgetID, out[0].SKUID)
	assert.Equal(t, entity.LedgerKindItem, out[0].Kind)
	assert.True(t, out[0].Difference().Equal(qty("2")))
}

func TestListBatches_TipoInvalido(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ListBatches(context.Background(), entity.LedgerKind("otro"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
