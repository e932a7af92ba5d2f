// Package ledgertest provee una implementación en memoria de los repositorios del ledger y de
// ledger.TxRunner, con rollback real (snapshot/restore) para tests de aplicación y HTTP.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

type state struct {
	items       map[string]entity.Item
	materials   map[string]entity.RawMaterial
	batches     map[entity.LedgerKind]map[string]entity.LedgerEntry
	productions map[string]entity.Production
	deliveries  map[string]entity.SupplyDelivery
	logs        map[string]entity.ConsumptionLog
}

func newState() state {
	return state{
		items:     map[string]entity.Item{},
		materials: map[string]entity.RawMaterial{},
		batches: map[entity.LedgerKind]map[string]entity.LedgerEntry{
			entity.LedgerKindItem:     {},
			entity.LedgerKindMaterial: {},
		},
		productions: map[string]entity.Production{},
		deliveries:  map[string]entity.SupplyDelivery{},
		logs:        map[string]entity.ConsumptionLog{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for kind, m := range s.batches {
		for k, v := range m {
			c.batches[kind][k] = v
		}
	}
	for k, v := range s.productions {
		c.productions[k] = v
	}
	for k, v := range s.deliveries {
		c.deliveries[k] = v
	}
	for k, v := range s.logs {
		v.Lines = append([]entity.ConsumptionLine(nil), v.Lines...)
		c.logs[k] = v
	}
	return c
}

// Store almacén en memoria. Run serializa las transacciones y restaura el estado si fn falla.
type Store struct {
	mu     sync.Mutex
	st     state
	faults map[string]error
	locks  []string // filas bloqueadas, en orden, como "Repo:id"
	Runs   int      // transacciones ejecutadas
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), faults: map[string]error{}}
}

var (
	_ ledger.TxRunner                     = (*Store)(nil)
	_ repository.ItemRepository           = itemRepo{}
	_ repository.RawMaterialRepository    = materialRepo{}
	_ repository.LedgerRepository         = batchRepo{}
	_ repository.ProductionRepository     = productionRepo{}
	_ repository.SupplyDeliveryRepository = deliveryRepo{}
	_ repository.ConsumptionLogRepository = logRepo{}
)

// Run ejecuta fn con repositorios sobre el estado; si fn devuelve error el estado vuelve al snapshot.
func (s *Store) Run(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Runs++
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	snapshot := s.st.clone()
	if err := fn(s.Repositories()); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// FailOn hace que la operación op (ej. "Productions.Create") devuelva err una vez.
func (s *Store) FailOn(op string, err error) {
	s.faults[op] = err
}

// Locks devuelve las filas bloqueadas desde el último ResetLocks, en el orden en que se pidieron.
func (s *Store) Locks() []string {
	return append([]string(nil), s.locks...)
}

// ResetLocks olvida los bloqueos registrados.
func (s *Store) ResetLocks() { s.locks = nil }

func (s *Store) lock(repo, id string) { s.locks = append(s.locks, repo+":"+id) }

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// Repositories devuelve los repositorios en memoria.
func (s *Store) Repositories() ledger.Repositories {
	return ledger.Repositories{
		Items:           itemRepo{s},
		Materials:       materialRepo{s},
		ItemBatches:     batchRepo{s: s, kind: entity.LedgerKindItem},
		MaterialBatches: batchRepo{s: s, kind: entity.LedgerKindMaterial},
		Productions:     productionRepo{s},
		Deliveries:      deliveryRepo{s},
		ConsumptionLogs: logRepo{s},
	}
}

// ── Helpers de inspección ───────────────────────────────────────────────────

// AddItem inserta un item con cantidad cero.
func (s *Store) AddItem(id, name string) {
	now := time.Now()
	s.st.items[id] = entity.Item{ID: id, Name: name, Price: decimal.Zero, Quantity: decimal.Zero, CreatedAt: now, UpdatedAt: now}
}

// AddMaterial inserta una materia prima con cantidad cero.
func (s *Store) AddMaterial(id, name string) {
	now := time.Now()
	s.st.materials[id] = entity.RawMaterial{ID: id, Name: name, Quantity: decimal.Zero, UnitCost: decimal.Zero, CreatedAt: now, UpdatedAt: now}
}

// Item devuelve una copia del item.
func (s *Store) Item(id string) entity.Item { return s.st.items[id] }

// Material devuelve una copia de la materia prima.
func (s *Store) Material(id string) entity.RawMaterial { return s.st.materials[id] }

// Batch devuelve el lote y si existe.
func (s *Store) Batch(kind entity.LedgerKind, id string) (entity.LedgerEntry, bool) {
	b, ok := s.st.batches[kind][id]
	return b, ok
}

// BatchCount número de lotes (activos o no) de un tipo.
func (s *Store) BatchCount(kind entity.LedgerKind) int { return len(s.st.batches[kind]) }

// SetItemQuantity fuerza el agregado (simula datos corruptos para reconcile).
func (s *Store) SetItemQuantity(id string, q decimal.Decimal) {
	it := s.st.items[id]
	it.Quantity = q
	s.st.items[id] = it
}

// LedgerSum suma los lotes de un SKU.
func (s *Store) LedgerSum(kind entity.LedgerKind, skuID string) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range s.st.batches[kind] {
		if b.SKUID == skuID {
			sum = sum.Add(b.Quantity)
		}
	}
	return sum
}

// HasProduction indica si la producción existe.
func (s *Store) HasProduction(id string) bool {
	_, ok := s.st.productions[id]
	return ok
}

// HasDelivery indica si la entrega existe.
func (s *Store) HasDelivery(id string) bool {
	_, ok := s.st.deliveries[id]
	return ok
}

// HasLog indica si la bitácora existe.
func (s *Store) HasLog(id string) bool {
	_, ok := s.st.logs[id]
	return ok
}

// ── Items ───────────────────────────────────────────────────────────────────

type itemRepo struct{ s *Store }

func (r itemRepo) Create(_ context.Context, it *entity.Item) error {
	if err := r.s.fault("Items.Create"); err != nil {
		return err
	}
	r.s.st.items[it.ID] = *it
	return nil
}

func (r itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.s.st.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if err := r.s.fault("Items.GetForUpdate"); err != nil {
		return nil, err
	}
	r.s.lock("Items", id)
	return r.GetByID(ctx, id)
}

func (r itemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	list := make([]*entity.Item, 0, len(r.s.st.items))
	for _, it := range r.s.st.items {
		it := it
		list = append(list, &it)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r itemRepo) Update(_ context.Context, it *entity.Item) error {
	cur, ok := r.s.st.items[it.ID]
	if !ok {
		return domain.ErrNotFound
	}
	it.Quantity = cur.Quantity
	r.s.st.items[it.ID] = *it
	return nil
}

func (r itemRepo) Delete(_ context.Context, id string) error {
	for _, b := range r.s.st.batches[entity.LedgerKindItem] {
		if b.SKUID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.st.items, id)
	return nil
}

func (r itemRepo) AdjustQuantity(_ context.Context, id string, delta decimal.Decimal) error {
	if err := r.s.fault("Items.AdjustQuantity"); err != nil {
		return err
	}
	it, ok := r.s.st.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := it.Quantity.Add(delta)
	if next.LessThan(decimal.Zero) {
		return domain.ErrInsufficientStock
	}
	it.Quantity = next
	r.s.st.items[id] = it
	return nil
}

// ── Materias primas ─────────────────────────────────────────────────────────

type materialRepo struct{ s *Store }

func (r materialRepo) Create(_ context.Context, m *entity.RawMaterial) error {
	if err := r.s.fault("Materials.Create"); err != nil {
		return err
	}
	r.s.st.materials[m.ID] = *m
	return nil
}

func (r materialRepo) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	m, ok := r.s.st.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r materialRepo) GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error) {
	if err := r.s.fault("Materials.GetForUpdate"); err != nil {
		return nil, err
	}
	r.s.lock("Materials", id)
	return r.GetByID(ctx, id)
}

func (r materialRepo) List(_ context.Context, limit, offset int) ([]*entity.RawMaterial, error) {
	list := make([]*entity.RawMaterial, 0, len(r.s.st.materials))
	for _, m := range r.s.st.materials {
		m := m
		list = append(list, &m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r materialRepo) Update(_ context.Context, m *entity.RawMaterial) error {
	cur, ok := r.s.st.materials[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	m.Quantity = cur.Quantity
	m.UnitCost = cur.UnitCost
	r.s.st.materials[m.ID] = *m
	return nil
}

func (r materialRepo) Delete(_ context.Context, id string) error {
	for _, b := range r.s.st.batches[entity.LedgerKindMaterial] {
		if b.SKUID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.st.materials, id)
	return nil
}

func (r materialRepo) AdjustQuantity(_ context.Context, id string, delta decimal.Decimal) error {
	if err := r.s.fault("Materials.AdjustQuantity"); err != nil {
		return err
	}
	m, ok := r.s.st.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := m.Quantity.Add(delta)
	if next.LessThan(decimal.Zero) {
		return domain.ErrInsufficientStock
	}
	m.Quantity = next
	r.s.st.materials[id] = m
	return nil
}

func (r materialRepo) UpdateUnitCost(_ context.Context, id string, cost decimal.Decimal) error {
	m, ok := r.s.st.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.UnitCost = cost
	r.s.st.materials[id] = m
	return nil
}

// ── Lotes ───────────────────────────────────────────────────────────────────

type batchRepo struct {
	s    *Store
	kind entity.LedgerKind
}

func (r batchRepo) m() map[string]entity.LedgerEntry { return r.s.st.batches[r.kind] }

func (r batchRepo) Kind() entity.LedgerKind { return r.kind }

func (r batchRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	if err := r.s.fault(r.op("Create")); err != nil {
		return err
	}
	e.Kind = r.kind
	r.m()[e.ID] = *e
	return nil
}

func (r batchRepo) GetByID(_ context.Context, id string) (*entity.LedgerEntry, error) {
	e, ok := r.m()[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r batchRepo) GetBySource(_ context.Context, sourceID string) (*entity.LedgerEntry, error) {
	for _, e := range r.m() {
		if e.SourceID == sourceID {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (r batchRepo) Adjust(_ context.Context, id string, delta decimal.Decimal) error {
	if err := r.s.fault(r.op("Adjust")); err != nil {
		return err
	}
	e, ok := r.m()[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := e.Quantity.Add(delta)
	if next.LessThan(decimal.Zero) {
		return domain.ErrInsufficientStock
	}
	e.Quantity = next
	e.LastUpdated = time.Now()
	r.m()[id] = e
	return nil
}

func (r batchRepo) Reassign(_ context.Context, id, skuID string) error {
	e, ok := r.m()[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.SKUID = skuID
	r.m()[id] = e
	return nil
}

func (r batchRepo) Delete(_ context.Context, id string) error {
	if err := r.s.fault(r.op("Delete")); err != nil {
		return err
	}
	if r.kind == entity.LedgerKindMaterial {
		for _, l := range r.s.st.logs {
			for _, line := range l.Lines {
				if line.BatchID == id {
					return domain.ErrConflict
				}
			}
		}
	}
	delete(r.m(), id)
	return nil
}

func (r batchRepo) ListActiveBySKU(_ context.Context, skuID string) ([]*entity.LedgerEntry, error) {
	return r.list(func(e entity.LedgerEntry) bool { return e.SKUID == skuID && e.Active() }), nil
}

func (r batchRepo) ListActive(_ context.Context) ([]*entity.LedgerEntry, error) {
	return r.list(func(e entity.LedgerEntry) bool { return e.Active() }), nil
}

func (r batchRepo) SumBySKU(_ context.Context) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, e := range r.m() {
		out[e.SKUID] = out[e.SKUID].Add(e.Quantity)
	}
	return out, nil
}

func (r batchRepo) list(keep func(entity.LedgerEntry) bool) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for _, e := range r.m() {
		if keep(e) {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].LastUpdated.Before(out[j].LastUpdated)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r batchRepo) op(name string) string {
	if r.kind == entity.LedgerKindItem {
		return "ItemBatches." + name
	}
	return "MaterialBatches." + name
}

// ── Producciones ────────────────────────────────────────────────────────────

type productionRepo struct{ s *Store }

func (r productionRepo) Create(_ context.Context, p *entity.Production) error {
	if err := r.s.fault("Productions.Create"); err != nil {
		return err
	}
	r.s.st.productions[p.ID] = *p
	return nil
}

func (r productionRepo) GetByID(_ context.Context, id string) (*entity.Production, error) {
	p, ok := r.s.st.productions[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productionRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Production, error) {
	if err := r.s.fault("Productions.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	r.s.lock("Productions", id)
	return r.GetByID(ctx, id)
}

func (r productionRepo) Update(_ context.Context, p *entity.Production) error {
	if err := r.s.fault("Productions.Update"); err != nil {
		return err
	}
	r.s.st.productions[p.ID] = *p
	return nil
}

func (r productionRepo) Delete(_ context.Context, id string) error {
	if err := r.s.fault("Productions.Delete"); err != nil {
		return err
	}
	delete(r.s.st.productions, id)
	return nil
}

func (r productionRepo) List(_ context.Context, limit, offset int) ([]repository.ProductionRow, error) {
	rows := make([]repository.ProductionRow, 0, len(r.s.st.productions))
	for _, p := range r.s.st.productions {
		row := repository.ProductionRow{Production: p, ItemName: r.s.st.items[p.ItemID].Name}
		for _, b := range r.s.st.batches[entity.LedgerKindItem] {
			if b.SourceID == p.ID {
				row.BatchID, row.Remaining = b.ID, b.Quantity
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProducedAt.After(rows[j].ProducedAt) })
	return page(rows, limit, offset), nil
}

// ── Entregas ────────────────────────────────────────────────────────────────

type deliveryRepo struct{ s *Store }

func (r deliveryRepo) Create(_ context.Context, d *entity.SupplyDelivery) error {
	if err := r.s.fault("Deliveries.Create"); err != nil {
		return err
	}
	r.s.st.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) GetByID(_ context.Context, id string) (*entity.SupplyDelivery, error) {
	d, ok := r.s.st.deliveries[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r deliveryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SupplyDelivery, error) {
	if err := r.s.fault("Deliveries.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	r.s.lock("Deliveries", id)
	return r.GetByID(ctx, id)
}

func (r deliveryRepo) Update(_ context.Context, d *entity.SupplyDelivery) error {
	if err := r.s.fault("Deliveries.Update"); err != nil {
		return err
	}
	r.s.st.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) Delete(_ context.Context, id string) error {
	if err := r.s.fault("Deliveries.Delete"); err != nil {
		return err
	}
	delete(r.s.st.deliveries, id)
	return nil
}

func (r deliveryRepo) List(_ context.Context, limit, offset int) ([]repository.DeliveryRow, error) {
	rows := make([]repository.DeliveryRow, 0, len(r.s.st.deliveries))
	for _, d := range r.s.st.deliveries {
		row := repository.DeliveryRow{SupplyDelivery: d, MaterialName: r.s.st.materials[d.MaterialID].Name}
		for _, b := range r.s.st.batches[entity.LedgerKindMaterial] {
			if b.SourceID == d.ID {
				row.BatchID, row.Remaining = b.ID, b.Quantity
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DeliveredAt.After(rows[j].DeliveredAt) })
	return page(rows, limit, offset), nil
}

// ── Bitácoras de consumo ────────────────────────────────────────────────────

type logRepo struct{ s *Store }

func (r logRepo) Create(_ context.Context, l *entity.ConsumptionLog) error {
	if err := r.s.fault("ConsumptionLogs.Create"); err != nil {
		return err
	}
	c := *l
	c.Lines = nil
	r.s.st.logs[l.ID] = c
	return nil
}

func (r logRepo) GetByID(_ context.Context, id string) (*entity.ConsumptionLog, error) {
	l, ok := r.s.st.logs[id]
	if !ok {
		return nil, nil
	}
	l.Lines = append([]entity.ConsumptionLine(nil), l.Lines...)
	return &l, nil
}

func (r logRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ConsumptionLog, error) {
	if err := r.s.fault("ConsumptionLogs.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	r.s.lock("ConsumptionLogs", id)
	return r.GetByID(ctx, id)
}

func (r logRepo) Update(_ context.Context, l *entity.ConsumptionLog) error {
	cur, ok := r.s.st.logs[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Description = l.Description
	cur.LoggedAt = l.LoggedAt
	r.s.st.logs[l.ID] = cur
	return nil
}

func (r logRepo) Delete(_ context.Context, id string) error {
	delete(r.s.st.logs, id)
	return nil
}

func (r logRepo) AddLine(_ context.Context, line entity.ConsumptionLine) error {
	if err := r.s.fault("ConsumptionLogs.AddLine"); err != nil {
		return err
	}
	l, ok := r.s.st.logs[line.LogID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Lines = append(l.Lines, line)
	r.s.st.logs[line.LogID] = l
	return nil
}

func (r logRepo) DeleteLines(_ context.Context, logID string) error {
	l, ok := r.s.st.logs[logID]
	if !ok {
		return nil
	}
	l.Lines = nil
	r.s.st.logs[logID] = l
	return nil
}

func (r logRepo) List(_ context.Context, limit, offset int) ([]repository.ConsumptionLogRow, error) {
	rows := make([]repository.ConsumptionLogRow, 0, len(r.s.st.logs))
	for _, l := range r.s.st.logs {
		row := repository.ConsumptionLogRow{ConsumptionLog: l}
		for _, line := range l.Lines {
			row.MaterialNames = append(row.MaterialNames, r.s.st.materials[line.MaterialID].Name)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].LoggedAt.After(rows[j].LoggedAt) })
	return page(rows, limit, offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return list[:0]
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
