package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository/memstore"
)

var now = time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

type seeder struct {
	t     *testing.T
	store *memstore.Store
	n     int
}

func (s *seeder) order(created time.Time, status models.OrderStatus, payment string, total float64, items ...models.OrderItem) *models.Order {
	s.t.Helper()
	s.n++
	o := &models.Order{
		OrderNumber:   "ORD" + created.Format("060102") + string(rune('A'+s.n)),
		UserID:        uuid.New(),
		CustomerName:  "Guest",
		Status:        status,
		PaymentStatus: payment,
		GrandTotal:    total,
		Items:         items,
	}
	o.CreatedAt = created
	require.NoError(s.t, s.store.Orders().Create(context.Background(), o))
	return o
}

func setup(t *testing.T) (*Service, *seeder, *models.FoodItem) {
	t.Helper()
	store := memstore.New()
	naan := &models.FoodItem{Name: "Garlic Naan", Category: "Indian", Price: 50}
	require.NoError(t, store.Foods().Create(context.Background(), naan))
	return NewService(store, func() time.Time { return now }), &seeder{t: t, store: store}, naan
}

func TestDailyReport(t *testing.T) {
	svc, seed, naan := setup(t)

	seed.order(now.Add(-2*time.Hour), models.StatusDelivered, "success", 150,
		models.OrderItem{FoodID: &naan.ID, Name: "Garlic Naan", Quantity: 3, Subtotal: 150})
	seed.order(now.Add(-90*time.Minute), models.StatusDelivered, "success", 249.5,
		models.OrderItem{Name: "Lassi", Quantity: 1, Subtotal: 99.5},
		models.OrderItem{FoodID: &naan.ID, Name: "Garlic Naan", Quantity: 3, Subtotal: 150})
	seed.order(now.Add(-time.Hour), models.StatusCancelled, "failed", 80)
	seed.order(now.AddDate(0, 0, -1), models.StatusDelivered, "success", 999)

	report, err := svc.Daily(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-15", report.Date)
	assert.Equal(t, 3, report.TotalOrders)
	assert.Equal(t, 2, report.SuccessfulOrders)
	assert.Equal(t, 1, report.FailedOrders)
	assert.Equal(t, 399.5, report.Revenue)
	assert.Equal(t, 199.75, report.AvgOrderValue)
	require.Len(t, report.TopItems, 2)
	assert.Equal(t, ItemSales{Name: "Garlic Naan", Quantity: 6, Revenue: 300}, report.TopItems[0])
	require.Len(t, report.HourlyStats, 1)
	assert.Equal(t, 18, report.HourlyStats[0].Hour)
	assert.Equal(t, 2, report.HourlyStats[0].Orders)

	var buf bytes.Buffer
	require.NoError(t, WriteDailyXLSX(&buf, report))
	book, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 3)
	assert.Equal(t, "Top Items", book.Sheets[1].Name)
	assert.Equal(t, "Garlic Naan", book.Sheets[1].Rows[1].Cells[0].Value)
}

func TestMonthlyReportAndDashboard(t *testing.T) {
	svc, seed, naan := setup(t)

	seed.order(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), models.StatusDelivered, "success", 100,
		models.OrderItem{FoodID: &naan.ID, Name: "Garlic Naan", Quantity: 2, Subtotal: 100})
	seed.order(now.Add(-time.Hour), models.StatusPreparing, "pending", 60,
		models.OrderItem{Name: "Chai", Quantity: 2, Subtotal: 60})
	seed.order(time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), models.StatusDelivered, "success", 500)

	report, err := svc.Monthly(context.Background(), 2024, time.March, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "March", report.MonthName)
	assert.Equal(t, 2, report.TotalOrders)
	assert.Equal(t, 1, report.SuccessfulOrders)
	assert.Equal(t, 100.0, report.Revenue)
	assert.Len(t, report.DailyStats, 31)
	assert.Equal(t, 1, report.DailyStats[0].Orders)
	assert.Equal(t, []CategoryStats{{Category: "Indian", Quantity: 2, Revenue: 100}}, report.CategoryBreakdown)

	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PeriodStats{Orders: 1, Revenue: 0, SuccessfulOrders: 0}, dash.Today)
	assert.Equal(t, PeriodStats{Orders: 2, Revenue: 100, SuccessfulOrders: 1}, dash.Month)
	assert.Equal(t, OverallStats{TotalOrders: 3, TotalRevenue: 600, PendingOrders: 1}, dash.Overall)

	stats, err := svc.KitchenStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.StatusPreparing])
	assert.Equal(t, 0, stats[models.StatusDelivered])
}

func TestFeedbackSummary(t *testing.T) {
	svc, seed, _ := setup(t)

	for i, rating := range []int{5, 4, 4} {
		o := seed.order(now.Add(-time.Duration(i)*time.Hour), models.StatusDelivered, "success", 100)
		r := rating
		date := now.Add(-time.Duration(i) * time.Minute)
		o.HasFeedback = true
		o.Rating = &r
		o.FeedbackDate = &date
		require.NoError(t, seed.store.Orders().Save(context.Background(), o))
	}
	seed.order(now, models.StatusDelivered, "success", 100)

	summary, err := svc.FeedbackSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalFeedback)
	assert.Equal(t, 4.33, summary.AverageRating)
	assert.Equal(t, 2, summary.RatingDistribution[4])
	assert.Equal(t, 0, summary.RatingDistribution[1])
	require.Len(t, summary.RecentFeedback, 3)
	assert.Equal(t, 5, summary.RecentFeedback[0].Rating)
}

func TestReceiptIsPDF(t *testing.T) {
	order := &models.Order{
		OrderNumber:   "ORD2403150042",
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		OrderType:     models.OrderTypeDineIn,
		TableNumber:   "4",
		Status:        models.StatusDelivered,
		Items:         []models.OrderItem{{Name: "Paneer Tikka", Quantity: 1, Price: 220, Subtotal: 220, SpiceLevel: "spicy"}},
		Subtotal:      220,
		CouponCode:    "SAVE10",
		GrandTotal:    198,
		PaymentMethod: "cash",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReceipt(&buf, order, "AR Food"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
