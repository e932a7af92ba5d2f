package report_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/gmz-api/internal/application/report"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// miércoles
var fixedNow = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type fakeReports struct {
	counts    []repository.DailyCount
	byStatus  map[string]int
	revenue   decimal.Decimal
	low       []repository.StockRow
	snapshot  []repository.StockRow
	failOn    string
	calls     atomic.Int32
	lastRange [2]time.Time
	mu        sync.Mutex
}

func (f *fakeReports) fail(op string) error {
	if f.failOn == op {
		return domain.ErrStore
	}
	return nil
}

func (f *fakeReports) CountDeliveredByDay(_ context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastRange = [2]time.Time{from, to}
	f.mu.Unlock()
	var out []repository.DailyCount
	for _, c := range f.counts {
		if !c.Day.Before(from) && c.Day.Before(to) {
			out = append(out, c)
		}
	}
	return out, f.fail("CountDeliveredByDay")
}

func (f *fakeReports) CountOrdersByStatus(context.Context) (map[string]int, error) {
	f.calls.Add(1)
	return f.byStatus, f.fail("CountOrdersByStatus")
}

func (f *fakeReports) DeliveredRevenue(context.Context, time.Time, time.Time) (decimal.Decimal, error) {
	f.calls.Add(1)
	return f.revenue, f.fail("DeliveredRevenue")
}

func (f *fakeReports) LowStock(context.Context, decimal.Decimal, int) ([]repository.StockRow, error) {
	f.calls.Add(1)
	return f.low, f.fail("LowStock")
}

func (f *fakeReports) StockSnapshot(context.Context) ([]repository.StockRow, error) {
	f.calls.Add(1)
	return f.snapshot, f.fail("StockSnapshot")
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, v []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = v
	return nil
}

func newSales(repo *fakeReports, cache report.Cache) *report.SalesUseCase {
	return report.NewSalesUseCase(repo, cache, report.SalesConfig{
		LowStockThreshold: decimal.NewFromInt(5),
		Location:          time.UTC,
	}, nil).WithClock(func() time.Time { return fixedNow })
}

func TestSalesSummary_SemanaEmpiezaEnLunes(t *testing.T) {
	repo := &fakeReports{counts: []repository.DailyCount{
		{Day: day(2024, 3, 10), Count: 9}, // domingo anterior
		{Day: day(2024, 3, 11), Count: 2}, // lunes
		{Day: day(2024, 3, 13), Count: 3},
		{Day: day(2024, 3, 17), Count: 1}, // domingo
		{Day: day(2024, 3, 18), Count: 5}, // lunes siguiente
	}}
	out, err := newSales(repo, nil).SalesSummary(context.Background(), report.RangeWeek, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-11", out.From)
	assert.Equal(t, "2024-03-17", out.To)
	require.Len(t, out.Buckets, 7)
	got := make([]int, 7)
	for i, b := range out.Buckets {
		got[i] = b.Count
	}
	assert.Equal(t, []int{2, 0, 3, 0, 0, 0, 1}, got)
	assert.Equal(t, "Lun", out.Buckets[0].Label)
	assert.Equal(t, 6, out.Total)
}

func TestSalesSummary_MesYAnio(t *testing.T) {
	repo := &fakeReports{counts: []repository.DailyCount{
		{Day: day(2024, 1, 5), Count: 4},
		{Day: day(2024, 3, 1), Count: 1},
		{Day: day(2024, 3, 31), Count: 2},
	}}
	uc := newSales(repo, nil)

	month, err := uc.SalesSummary(context.Background(), report.RangeMonth, nil, nil)
	require.NoError(t, err)
	require.Len(t, month.Buckets, 31)
	assert.Equal(t, 1, month.Buckets[0].Count)
	assert.Equal(t, 2, month.Buckets[30].Count)
	assert.Equal(t, 3, month.Total)

	year, err := uc.SalesSummary(context.Background(), report.RangeYear, nil, nil)
	require.NoError(t, err)
	require.Len(t, year.Buckets, 12)
	assert.Equal(t, 4, year.Buckets[0].Count)
	assert.Equal(t, 3, year.Buckets[2].Count)
	assert.Equal(t, "Marzo", year.Buckets[2].Label)
	assert.Equal(t, 7, year.Total)
}

func TestSalesSummary_Personalizado(t *testing.T) {
	repo := &fakeReports{counts: []repository.DailyCount{
		{Day: day(2024, 2, 29), Count: 2},
		{Day: day(2024, 3, 2), Count: 1},
		{Day: day(2024, 3, 3), Count: 8},
	}}
	uc := newSales(repo, nil)
	start, end := day(2024, 2, 28), day(2024, 3, 2)

	out, err := uc.SalesSummary(context.Background(), report.RangeCustom, &start, &end)
	require.NoError(t, err)
	require.Len(t, out.Buckets, 4, "ambos extremos inclusive; 2024 es bisiesto")
	assert.Equal(t, "2024-02-29", out.Buckets[1].Label)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, day(2024, 3, 3), repo.lastRange[1], "el fin se consulta como [start, end+1)")

	_, err = uc.SalesSummary(context.Background(), report.RangeCustom, &end, &start)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.SalesSummary(context.Background(), report.RangeCustom, &start, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	far := start.AddDate(2, 0, 0)
	_, err = uc.SalesSummary(context.Background(), report.RangeCustom, &start, &far)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.SalesSummary(context.Background(), "decade", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSalesSummary_UsaCache(t *testing.T) {
	repo := &fakeReports{counts: []repository.DailyCount{{Day: day(2024, 3, 12), Count: 1}}}
	cache := &memCache{data: map[string][]byte{}}
	uc := newSales(repo, cache)

	first, err := uc.SalesSummary(context.Background(), report.RangeWeek, nil, nil)
	require.NoError(t, err)
	second, err := uc.SalesSummary(context.Background(), report.RangeWeek, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, repo.calls.Load())
}

func TestSalesSummary_CacheCaidoNoFalla(t *testing.T) {
	repo := &fakeReports{}
	cache := &memCache{err: errors.New("redis: connection refused")}
	_, err := newSales(repo, cache).SalesSummary(context.Background(), report.RangeWeek, nil, nil)
	assert.NoError(t, err)
}

func TestDashboard(t *testing.T) {
	repo := &fakeReports{
		counts:   []repository.DailyCount{{Day: day(2024, 3, 13), Count: 4}},
		byStatus: map[string]int{"preparing": 2, "delivered": 4},
		revenue:  decimal.RequireFromString("1234.567"),
		low:      []repository.StockRow{{Kind: "material", ID: "m1", Name: "Resin", Quantity: decimal.NewFromInt(3)}},
	}
	out, err := newSales(repo, nil).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, out.DeliveredToday)
	assert.Equal(t, 2, out.OrdersByStatus["preparing"])
	assert.True(t, out.MonthlyRevenue.Equal(decimal.RequireFromString("1234.57")))
	require.Len(t, out.LowStock, 1)
	assert.Equal(t, "Resin", out.LowStock[0].Name)
	assert.Equal(t, "Marzo 2024", out.DateLabel)
}

func TestDashboard_ErrorDeConsulta(t *testing.T) {
	repo := &fakeReports{failOn: "LowStock"}
	_, err := newSales(repo, nil).Dashboard(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Contains(t, err.Error(), "stock bajo")
}
