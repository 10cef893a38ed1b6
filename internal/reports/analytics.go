// Package reports builds sales analytics, feedback summaries and the
// spreadsheet and PDF documents derived from them.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// PaidStatus is the payment status counted as revenue.
const PaidStatus = "success"

// Service computes reports from stored orders.
type Service struct {
	store repository.Store
	now   func() time.Time
}

// NewService constructs a Service. A nil clock falls back to time.Now.
func NewService(store repository.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// PeriodStats summarises orders placed in a period.
type PeriodStats struct {
	Orders           int     `json:"orders"`
	Revenue          float64 `json:"revenue"`
	SuccessfulOrders int     `json:"successful_orders"`
}

// OverallStats summarises every order ever placed.
type OverallStats struct {
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	PendingOrders int64   `json:"pending_orders"`
}

// Dashboard is the admin landing page summary.
type Dashboard struct {
	Today   PeriodStats  `json:"today"`
	Month   PeriodStats  `json:"month"`
	Overall OverallStats `json:"overall"`
}

// ItemSales aggregates one dish across orders.
type ItemSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// HourStats aggregates paid orders by hour of day.
type HourStats struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DayStats aggregates paid orders by calendar day.
type DayStats struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// CategoryStats aggregates paid order lines by menu category.
type CategoryStats struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DailyReport covers a single calendar day.
type DailyReport struct {
	Date             string      `json:"date"`
	TotalOrders      int         `json:"total_orders"`
	SuccessfulOrders int         `json:"successful_orders"`
	FailedOrders     int         `json:"failed_orders"`
	Revenue          float64     `json:"revenue"`
	AvgOrderValue    float64     `json:"avg_order_value"`
	TopItems         []ItemSales `json:"top_items"`
	HourlyStats      []HourStats `json:"hourly_stats"`
}

// MonthlyReport covers a calendar month.
type MonthlyReport struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	MonthName         string          `json:"month_name"`
	TotalOrders       int             `json:"total_orders"`
	SuccessfulOrders  int             `json:"successful_orders"`
	FailedOrders      int             `json:"failed_orders"`
	Revenue           float64         `json:"revenue"`
	AvgOrderValue     float64         `json:"avg_order_value"`
	TopItems          []ItemSales     `json:"top_items"`
	CategoryBreakdown []CategoryStats `json:"category_breakdown"`
	DailyStats        []DayStats      `json:"daily_stats"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *Service) ordersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	orders, err := s.store.Orders().Find(ctx, repository.OrderFilter{From: &from, To: &to, OldestFirst: true})
	return orders, utils.Persistence(err)
}

func paid(orders []models.Order) []models.Order {
	var out []models.Order
	for _, o := range orders {
		if o.PaymentStatus == PaidStatus {
			out = append(out, o)
		}
	}
	return out
}

func countPayment(orders []models.Order, status string) int {
	n := 0
	for _, o := range orders {
		if o.PaymentStatus == status {
			n++
		}
	}
	return n
}

func revenue(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(decimal.NewFromFloat(o.GrandTotal))
	}
	return total
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func average(total decimal.Decimal, n int) float64 {
	if n == 0 {
		return 0
	}
	return money(total.Div(decimal.NewFromInt(int64(n))))
}

func period(orders []models.Order) PeriodStats {
	p := paid(orders)
	return PeriodStats{Orders: len(orders), Revenue: money(revenue(p)), SuccessfulOrders: len(p)}
}

// Dashboard returns today's, this month's and all-time figures.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := startOfDay(s.now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	month, err := s.ordersBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	var todays []models.Order
	for _, o := range month {
		if !o.CreatedAt.Before(today) {
			todays = append(todays, o)
		}
	}

	total, err := s.store.Orders().Count(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, utils.Persistence(err)
	}
	pending, err := s.store.Orders().Count(ctx, repository.OrderFilter{
		Statuses: []models.OrderStatus{models.StatusPending, models.StatusConfirmed, models.StatusPreparing},
	})
	if err != nil {
		return nil, utils.Persistence(err)
	}
	paidOrders, err := s.store.Orders().Find(ctx, repository.OrderFilter{PaymentStatus: PaidStatus})
	if err != nil {
		return nil, utils.Persistence(err)
	}

	return &Dashboard{
		Today: period(todays),
		Month: period(month),
		Overall: OverallStats{
			TotalOrders:   total,
			TotalRevenue:  money(revenue(paidOrders)),
			PendingOrders: pending,
		},
	}, nil
}

func itemSales(orders []models.Order) []ItemSales {
	byName := map[string]*ItemSales{}
	revenueByName := map[string]decimal.Decimal{}
	var names []string
	for _, o := range orders {
		for _, item := range o.Items {
			agg, ok := byName[item.Name]
			if !ok {
				agg = &ItemSales{Name: item.Name}
				byName[item.Name] = agg
				names = append(names, item.Name)
			}
			agg.Quantity += item.Quantity
			revenueByName[item.Name] = revenueByName[item.Name].Add(decimal.NewFromFloat(item.Subtotal))
		}
	}
	out := make([]ItemSales, 0, len(names))
	for _, name := range names {
		agg := byName[name]
		agg.Revenue = money(revenueByName[name])
		out = append(out, *agg)
	}
	return out
}

func top(items []ItemSales, less func(a, b ItemSales) bool, n int) []ItemSales {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// Daily builds the report for the day containing date.
func (s *Service) Daily(ctx context.Context, date time.Time) (*DailyReport, error) {
	start := startOfDay(date)
	orders, err := s.ordersBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	p := paid(orders)
	total := revenue(p)

	hours := make([]HourStats, 24)
	hourRevenue := make([]decimal.Decimal, 24)
	for _, o := range p {
		h := o.CreatedAt.In(start.Location()).Hour()
		hours[h].Orders++
		hourRevenue[h] = hourRevenue[h].Add(decimal.NewFromFloat(o.GrandTotal))
	}
	var hourly []HourStats
	for h := range hours {
		if hours[h].Orders == 0 {
			continue
		}
		hourly = append(hourly, HourStats{Hour: h, Orders: hours[h].Orders, Revenue: money(hourRevenue[h])})
	}

	return &DailyReport{
		Date:             start.Format("2006-01-02"),
		TotalOrders:      len(orders),
		SuccessfulOrders: len(p),
		FailedOrders:     countPayment(orders, "failed"),
		Revenue:          money(total),
		AvgOrderValue:    average(total, len(p)),
		TopItems:         top(itemSales(p), func(a, b ItemSales) bool { return a.Quantity > b.Quantity }, 10),
		HourlyStats:      hourly,
	}, nil
}

// Monthly builds the report for a calendar month in loc.
func (s *Service) Monthly(ctx context.Context, year int, month time.Month, loc *time.Location) (*MonthlyReport, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	orders, err := s.ordersBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	p := paid(orders)
	total := revenue(p)

	days := end.AddDate(0, 0, -1).Day()
	daily := make([]DayStats, days)
	dayRevenue := make([]decimal.Decimal, days)
	for i := range daily {
		daily[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	for _, o := range p {
		d := o.CreatedAt.In(loc).Day() - 1
		daily[d].Orders++
		dayRevenue[d] = dayRevenue[d].Add(decimal.NewFromFloat(o.GrandTotal))
	}
	for i := range daily {
		daily[i].Revenue = money(dayRevenue[i])
	}

	categories, err := s.categoryBreakdown(ctx, p)
	if err != nil {
		return nil, err
	}

	return &MonthlyReport{
		Year:              year,
		Month:             int(month),
		MonthName:         month.String(),
		TotalOrders:       len(orders),
		SuccessfulOrders:  len(p),
		FailedOrders:      countPayment(orders, "failed"),
		Revenue:           money(total),
		AvgOrderValue:     average(total, len(p)),
		TopItems:          top(itemSales(p), func(a, b ItemSales) bool { return a.Revenue > b.Revenue }, 10),
		CategoryBreakdown: categories,
		DailyStats:        daily,
	}, nil
}

func (s *Service) categoryBreakdown(ctx context.Context, orders []models.Order) ([]CategoryStats, error) {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, o := range orders {
		for _, item := range o.Items {
			if item.FoodID != nil && !seen[*item.FoodID] {
				seen[*item.FoodID] = true
				ids = append(ids, *item.FoodID)
			}
		}
	}
	foods, err := s.store.Foods().FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Persistence(err)
	}
	category := make(map[uuid.UUID]string, len(foods))
	for _, f := range foods {
		category[f.ID] = f.Category
	}

	stats := map[string]*CategoryStats{}
	amounts := map[string]decimal.Decimal{}
	var order []string
	for _, o := range orders {
		for _, item := range o.Items {
			name := "Other"
			if item.FoodID != nil {
				if c, ok := category[*item.FoodID]; ok {
					name = c
				}
			}
			st, ok := stats[name]
			if !ok {
				st = &CategoryStats{Category: name}
				stats[name] = st
				order = append(order, name)
			}
			st.Quantity += item.Quantity
			amounts[name] = amounts[name].Add(decimal.NewFromFloat(item.Subtotal))
		}
	}

	out := make([]CategoryStats, 0, len(order))
	for _, name := range order {
		st := stats[name]
		st.Revenue = money(amounts[name])
		out = append(out, *st)
	}
	return out, nil
}

// KitchenStats counts today's orders per kitchen status.
func (s *Service) KitchenStats(ctx context.Context) (map[models.OrderStatus]int, error) {
	today := startOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)
	orders, err := s.store.Orders().Find(ctx, repository.OrderFilter{
		From:     &today,
		To:       &tomorrow,
		Statuses: []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusDelivered},
	})
	if err != nil {
		return nil, utils.Persistence(err)
	}

	stats := map[models.OrderStatus]int{
		models.StatusConfirmed: 0,
		models.StatusPreparing: 0,
		models.StatusReady:     0,
		models.StatusDelivered: 0,
	}
	for _, o := range orders {
		stats[o.Status]++
	}
	return stats, nil
}
