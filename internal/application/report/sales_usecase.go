package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
	"github.com/jhoicas/gmz-api/pkg/logger"
)

// Rangos del resumen de ventas.
const (
	RangeWeek   = "week"
	RangeMonth  = "month"
	RangeYear   = "year"
	RangeCustom = "custom"
)

const (
	dashboardLowStockLimit = 10
	maxCustomDays          = 366
	defaultCacheTTL        = time.Minute
)

var (
	weekdayLabels = [...]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}
	monthNames    = [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
)

// SalesConfig parámetros del caso de uso de ventas.
type SalesConfig struct {
	CacheTTL          time.Duration   // 0 = un minuto
	LowStockThreshold decimal.Decimal // SKUs con cantidad <= umbral aparecen en el dashboard
	Location          *time.Location  // zona para calcular días; nil = time.Local
}

// SalesUseCase resumen de pedidos entregados y dashboard del back office.
//
// Fuente de datos: ReportRepository (consultas read-only). Las respuestas se
// cachean si hay Cache; un fallo del caché se registra y se consulta la base.
type SalesUseCase struct {
	repo  repository.ReportRepository
	cache Cache
	cfg   SalesConfig
	log   *logger.Logger
	now   func() time.Time
}

// NewSalesUseCase construye el caso de uso. cache y log pueden ser nil.
func NewSalesUseCase(repo repository.ReportRepository, cache Cache, cfg SalesConfig, log *logger.Logger) *SalesUseCase {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SalesUseCase{repo: repo, cache: cache, cfg: cfg, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *SalesUseCase) WithClock(now func() time.Time) *SalesUseCase {
	uc.now = now
	return uc
}

// period rango [From, To) de un resumen y cómo se agrupan sus días.
type period struct {
	rng  string
	from time.Time
	to   time.Time
}

func (uc *SalesUseCase) period(rng string, start, end *time.Time) (period, error) {
	today := midnight(uc.now().In(uc.cfg.Location))
	switch rng {
	case RangeWeek:
		monday := today.AddDate(0, 0, -mondayIndex(today))
		return period{rng, monday, monday.AddDate(0, 0, 7)}, nil
	case RangeMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return period{rng, first, first.AddDate(0, 1, 0)}, nil
	case RangeYear:
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return period{rng, first, first.AddDate(1, 0, 0)}, nil
	case RangeCustom:
		if start == nil || end == nil {
			return period{}, fmt.Errorf("%w: start y end son requeridos para range=custom", domain.ErrInvalidInput)
		}
		from := midnight(start.In(uc.cfg.Location))
		to := midnight(end.In(uc.cfg.Location)).AddDate(0, 0, 1)
		if !to.After(from) {
			return period{}, fmt.Errorf("%w: end debe ser igual o posterior a start", domain.ErrInvalidInput)
		}
		if days := dayCount(from, to); days > maxCustomDays {
			return period{}, fmt.Errorf("%w: el rango no puede superar %d días", domain.ErrInvalidInput, maxCustomDays)
		}
		return period{rng, from, to}, nil
	default:
		return period{}, fmt.Errorf("%w: range debe ser week, month, year o custom", domain.ErrInvalidInput)
	}
}

// SalesSummary cuenta pedidos entregados por tramo del rango:
//   - week: lunes (0) a domingo (6) de la semana actual.
//   - month: días del mes actual.
//   - year: meses del año actual.
//   - custom: cada día entre start y end, ambos inclusive.
//
// Devuelve todos los tramos del rango, incluidos los que tienen cero pedidos.
func (uc *SalesUseCase) SalesSummary(ctx context.Context, rng string, start, end *time.Time) (*dto.SalesSummaryDTO, error) {
	p, err := uc.period(rng, start, end)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("report:sales:%s:%s:%s", p.rng, p.from.Format(time.DateOnly), p.to.Format(time.DateOnly))
	var out dto.SalesSummaryDTO
	if uc.cached(ctx, key, &out) {
		return &out, nil
	}

	counts, err := uc.repo.CountDeliveredByDay(ctx, p.from, p.to)
	if err != nil {
		return nil, fmt.Errorf("reporte: ventas por día: %w", err)
	}
	out = buildSummary(p, counts)
	uc.store(ctx, key, out)
	return &out, nil
}

func buildSummary(p period, counts []repository.DailyCount) dto.SalesSummaryDTO {
	var buckets []dto.SalesBucketDTO
	index := make(map[string]int) // fecha o número de tramo → posición en buckets
	add := func(key string, b dto.SalesBucketDTO) {
		index[key] = len(buckets)
		buckets = append(buckets, b)
	}
	keyOf := func(day time.Time) string {
		switch p.rng {
		case RangeWeek:
			return strconv.Itoa(mondayIndex(day))
		case RangeMonth:
			return strconv.Itoa(day.Day())
		case RangeYear:
			return strconv.Itoa(int(day.Month()))
		default:
			return day.Format(time.DateOnly)
		}
	}

	switch p.rng {
	case RangeWeek:
		for i, l := range weekdayLabels {
			add(strconv.Itoa(i), dto.SalesBucketDTO{Bucket: i, Label: l})
		}
	case RangeYear:
		for m, name := range monthNames {
			add(strconv.Itoa(m+1), dto.SalesBucketDTO{Bucket: m + 1, Label: name})
		}
	default:
		for d := p.from; d.Before(p.to); d = d.AddDate(0, 0, 1) {
			label := strconv.Itoa(d.Day())
			if p.rng == RangeCustom {
				label = d.Format(time.DateOnly)
			}
			add(keyOf(d), dto.SalesBucketDTO{Bucket: d.Day(), Label: label})
		}
	}

	total := 0
	for _, c := range counts {
		day := time.Date(c.Day.Year(), c.Day.Month(), c.Day.Day(), 0, 0, 0, 0, p.from.Location())
		if day.Before(p.from) || !day.Before(p.to) {
			continue
		}
		if i, ok := index[keyOf(day)]; ok {
			buckets[i].Count += c.Count
			total += c.Count
		}
	}
	return dto.SalesSummaryDTO{
		Range:   p.rng,
		From:    p.from.Format(time.DateOnly),
		To:      p.to.AddDate(0, 0, -1).Format(time.DateOnly),
		Total:   total,
		Buckets: buckets,
	}
}

// Dashboard KPIs del día y del mes en curso más los SKUs con poco stock.
//
// Cuatro consultas en paralelo (errgroup): pedidos por estado, entregados hoy,
// ingreso del mes y stock bajo. La primera que falla cancela las demás.
func (uc *SalesUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	now := uc.now().In(uc.cfg.Location)
	todayStart := midnight(now)
	tomorrow := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	key := "report:dashboard:" + todayStart.Format(time.DateOnly)
	var out dto.DashboardDTO
	if uc.cached(ctx, key, &out) {
		return &out, nil
	}

	var (
		byStatus map[string]int
		today    []repository.DailyCount
		revenue  decimal.Decimal
		low      []repository.StockRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = uc.repo.CountOrdersByStatus(gctx)
		return wrap("pedidos por estado", err)
	})
	g.Go(func() (err error) {
		today, err = uc.repo.CountDeliveredByDay(gctx, todayStart, tomorrow)
		return wrap("entregados hoy", err)
	})
	g.Go(func() (err error) {
		revenue, err = uc.repo.DeliveredRevenue(gctx, monthStart, tomorrow)
		return wrap("ingreso del mes", err)
	})
	g.Go(func() (err error) {
		low, err = uc.repo.LowStock(gctx, uc.cfg.LowStockThreshold, dashboardLowStockLimit)
		return wrap("stock bajo", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	delivered := 0
	for _, c := range today {
		delivered += c.Count
	}
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	out = dto.DashboardDTO{
		OrdersByStatus: byStatus,
		DeliveredToday: delivered,
		MonthlyRevenue: revenue.Round(2),
		LowStock:       toStockLevels(low),
		DateLabel:      monthLabel(now),
	}
	uc.store(ctx, key, out)
	return &out, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}

func (uc *SalesUseCase) cached(ctx context.Context, key string, dst interface{}) bool {
	if uc.cache == nil {
		return false
	}
	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("caché de reportes no disponible")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("entrada de caché inválida")
		return false
	}
	return true
}

func (uc *SalesUseCase) store(ctx context.Context, key string, v interface{}) {
	if uc.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.cfg.CacheTTL); err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("no se pudo guardar en caché")
	}
}

func toStockLevels(rows []repository.StockRow) []dto.StockLevelDTO {
	out := make([]dto.StockLevelDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockLevelDTO{
			Kind:       r.Kind,
			ID:         r.ID,
			Name:       r.Name,
			Category:   r.CategoryName,
			Quantity:   r.Quantity,
			UnitValue:  r.UnitValue,
			ActiveLots: r.ActiveLots,
		})
	}
	return out
}

// mondayIndex 0 = lunes ... 6 = domingo.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayCount(from, to time.Time) int {
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		n++
		if n > maxCustomDays {
			break
		}
	}
	return n
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}
