package usecase_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/application/ledger/ledgertest"
	"github.com/jhoicas/gmz-api/internal/application/usecase"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type categoryRepo struct{ byID map[string]*entity.Category }

func newCategoryRepo(cs ...*entity.Category) *categoryRepo {
	r := &categoryRepo{byID: map[string]*entity.Category{}}
	for _, c := range cs {
		r.byID[c.ID] = c
	}
	return r
}

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	for _, e := range r.byID {
		if e.Name == c.Name && e.Type == c.Type {
			return domain.ErrDuplicate
		}
	}
	r.byID[c.ID] = c
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	return r.byID[id], nil
}

func (r *categoryRepo) List(_ context.Context, t string) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range r.byID {
		if t == "" || c.Type == t {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type orderRepo struct{ byID map[string]*entity.Order }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	cp := *o
	r.byID[o.ID] = &cp
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepo) Update(ctx context.Context, o *entity.Order) error { return r.Create(ctx, o) }

func (r *orderRepo) UpdateStatus(_ context.Context, id, status string) error {
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *orderRepo) List(_ context.Context, status string, _, _ int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.byID {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

type supplierRepo struct {
	byID map[string]*entity.Supplier
}

func (r *supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	r.byID[s.ID] = s
	return nil
}
func (r *supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	return r.byID[id], nil
}
func (r *supplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	r.byID[s.ID] = s
	return nil
}
func (r *supplierRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}
func (r *supplierRepo) List(context.Context) ([]repository.SupplierRow, error) { return nil, nil }
func (r *supplierRepo) ListMaterials(context.Context, string) ([]*entity.RawMaterial, error) {
	return nil, nil
}

var (
	_ repository.CategoryRepository = (*categoryRepo)(nil)
	_ repository.OrderRepository    = (*orderRepo)(nil)
	_ repository.SupplierRepository = (*supplierRepo)(nil)
)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	catInventory = &entity.Category{ID: "cat-inv", Name: "Terminados", Type: entity.CategoryTypeInventory}
	catRaw       = &entity.Category{ID: "cat-raw", Name: "Químicos", Type: entity.CategoryTypeRawMaterial}
)

// ── items y materias primas ───────────────────────────────────────────────────

func TestItemUseCase_CreateYUpdate(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	uc := usecase.NewItemUseCase(store.Repositories().Items, newCategoryRepo(catInventory, catRaw))

	out, err := uc.Create(ctx, dto.CreateItemRequest{Name: "  Jabón  ", CategoryID: catInventory.ID, Price: qty("12.50")})
	require.NoError(t, err)
	assert.Equal(t, "Jabón", out.Name)
	assert.True(t, out.Quantity.IsZero(), "la cantidad inicia en 0")

	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "X", CategoryID: catRaw.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "categoría de otro tipo")
	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "X", CategoryID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateItemRequest{Name: "X", Price: qty("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	newPrice := qty("15")
	upd, err := uc.Update(ctx, out.ID, dto.UpdateItemRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, upd.Price.Equal(newPrice))
	assert.Equal(t, "Jabón", upd.Name)

	missing, err := uc.Update(ctx, "nope", dto.UpdateItemRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMaterialUseCase_Create(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	uc := usecase.NewMaterialUseCase(store.Repositories().Materials, newCategoryRepo(catInventory, catRaw))

	out, err := uc.Create(ctx, dto.CreateMaterialRequest{Name: "Resina", CategoryID: catRaw.ID})
	require.NoError(t, err)
	assert.True(t, out.UnitCost.IsZero())

	_, err = uc.Create(ctx, dto.CreateMaterialRequest{Name: "Resina", CategoryID: catInventory.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Resina", got.Name)
}

func TestCategoryUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCategoryUseCase(newCategoryRepo())

	_, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: "Químicos", Type: entity.CategoryTypeRawMaterial})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateCategoryRequest{Name: "Químicos", Type: entity.CategoryTypeRawMaterial})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, dto.CreateCategoryRequest{Name: "Otro", Type: "Services"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx, entity.CategoryTypeInventory)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = uc.List(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── proveedores ───────────────────────────────────────────────────────────────

func TestSupplierUseCase_NormalizaMaterias(t *testing.T) {
	ctx := context.Background()
	store := ledgertest.NewStore()
	store.AddMaterial("m2", "Glue")
	store.AddMaterial("m1", "Resin")
	uc := usecase.NewSupplierUseCase(&supplierRepo{byID: map[string]*entity.Supplier{}}, store.Repositories().Materials)

	out, err := uc.Create(ctx, dto.SupplierRequest{Name: "ACME", MaterialIDs: []string{"m2", "m1", "", "m2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, out.MaterialIDs)

	_, err = uc.Create(ctx, dto.SupplierRequest{Name: "ACME", MaterialIDs: []string{"m9"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ListMaterials(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── pedidos ───────────────────────────────────────────────────────────────────

type orderFixture struct {
	uc      *usecase.OrderUseCase
	repo    *orderRepo
	store   *ledgertest.Store
	batchID string
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	store := ledgertest.NewStore()
	store.AddItem("it-1", "Widget")
	store.AddItem("it-2", "Gadget")
	svc := ledger.NewService(store, store.Repositories(), nil, nil)
	res, err := svc.RecordProduction(context.Background(), ledger.ProductionInput{ItemID: "it-1", Quantity: qty("10")})
	require.NoError(t, err)

	repo := &orderRepo{byID: map[string]*entity.Order{}}
	repos := store.Repositories()
	return orderFixture{
		uc:      usecase.NewOrderUseCase(repo, repos.Items, repos.ItemBatches),
		repo:    repo,
		store:   store,
		batchID: res.BatchID,
	}
}

func TestOrderUseCase_CreateNoDescuentaStock(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	out, err := f.uc.Create(ctx, dto.OrderRequest{
		CustomerName: "Ana",
		Price:        qty("100"),
		Products:     []dto.OrderProductRequest{{ItemID: "it-1", Quantity: qty("4"), BatchID: f.batchID}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPreparing, out.Status)
	assert.False(t, out.Date.IsZero())
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Widget", out.Products[0].ItemName)

	assert.True(t, f.store.Item("it-1").Quantity.Equal(qty("10")), "los pedidos no tocan el stock")
	batch, _ := f.store.Batch(entity.LedgerKindItem, f.batchID)
	assert.True(t, batch.Quantity.Equal(qty("10")))
}

func TestOrderUseCase_Validacion(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	cases := []struct {
		name string
		in   dto.OrderRequest
		want error
	}{
		{"sin cliente", dto.OrderRequest{Products: []dto.OrderProductRequest{{ItemID: "it-1", Quantity: qty("1")}}}, domain.ErrInvalidInput},
		{"sin productos", dto.OrderRequest{CustomerName: "Ana"}, domain.ErrInvalidInput},
		{"estado desconocido", dto.OrderRequest{CustomerName: "Ana", Status: "shipped", Products: []dto.OrderProductRequest{{ItemID: "it-1", Quantity: qty("1")}}}, domain.ErrInvalidInput},
		{"cantidad cero", dto.OrderRequest{CustomerName: "Ana", Products: []dto.OrderProductRequest{{ItemID: "it-1"}}}, domain.ErrInvalidInput},
		{"item inexistente", dto.OrderRequest{CustomerName: "Ana", Products: []dto.OrderProductRequest{{ItemID: "nope", Quantity: qty("1")}}}, domain.ErrNotFound},
		{"lote de otro item", dto.OrderRequest{CustomerName: "Ana", Products: []dto.OrderProductRequest{{ItemID: "it-2", Quantity: qty("1"), BatchID: f.batchID}}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.repo.byID)
}

func TestOrderUseCase_TransicionesDeEstado(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out, err := f.uc.Create(ctx, dto.OrderRequest{
		CustomerName: "Ana", Date: &date,
		Products: []dto.OrderProductRequest{{ItemID: "it-1", Quantity: qty("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, date, out.Date)

	got, err := f.uc.UpdateStatus(ctx, out.ID, entity.OrderStatusOnDelivery)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusOnDelivery, got.Status)

	_, err = f.uc.UpdateStatus(ctx, out.ID, entity.OrderStatusDelivered)
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, out.ID, entity.OrderStatusPreparing)
	assert.ErrorIs(t, err, domain.ErrConflict, "delivered es final")

	_, err = f.uc.UpdateStatus(ctx, out.ID, entity.OrderStatusDelivered)
	assert.NoError(t, err, "mismo estado es idempotente")

	_, err = f.uc.UpdateStatus(ctx, out.ID, "lost")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.UpdateStatus(ctx, "nope", entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.uc.List(ctx, entity.OrderStatusDelivered, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
