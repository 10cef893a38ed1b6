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

// RecentFeedback is one entry of the feedback summary's recent list.
type RecentFeedback struct {
	OrderID      uuid.UUID  `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerName string     `json:"customer_name"`
	Rating       int        `json:"rating"`
	Feedback     string     `json:"feedback"`
	FeedbackDate *time.Time `json:"feedback_date"`
}

// FeedbackSummary aggregates the ratings customers left on their orders.
type FeedbackSummary struct {
	TotalFeedback      int              `json:"total_feedback"`
	AverageRating      float64          `json:"average_rating"`
	RatingDistribution map[int]int      `json:"rating_distribution"`
	RecentFeedback     []RecentFeedback `json:"recent_feedback"`
}

// FeedbackSummary summarises order ratings with the ten most recent entries.
func (s *Service) FeedbackSummary(ctx context.Context) (*FeedbackSummary, error) {
	yes := true
	orders, err := s.store.Orders().Find(ctx, repository.OrderFilter{HasFeedback: &yes})
	if err != nil {
		return nil, utils.Persistence(err)
	}

	summary := &FeedbackSummary{RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum, rated := 0, 0
	for _, o := range orders {
		if o.Rating == nil {
			continue
		}
		rated++
		sum += *o.Rating
		summary.RatingDistribution[*o.Rating]++
		summary.RecentFeedback = append(summary.RecentFeedback, RecentFeedback{
			OrderID:      o.ID,
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerName,
			Rating:       *o.Rating,
			Feedback:     o.CustomerFeedback,
			FeedbackDate: o.FeedbackDate,
		})
	}
	summary.TotalFeedback = rated
	if rated > 0 {
		summary.AverageRating = money(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(rated))))
	}

	sort.SliceStable(summary.RecentFeedback, func(i, j int) bool {
		a, b := summary.RecentFeedback[i].FeedbackDate, summary.RecentFeedback[j].FeedbackDate
		return a != nil && (b == nil || a.After(*b))
	})
	if len(summary.RecentFeedback) > 10 {
		summary.RecentFeedback = summary.RecentFeedback[:10]
	}
	return summary, nil
}

// FeedbackStats averages the detailed feedback records.
type FeedbackStats struct {
	TotalFeedback     int     `json:"total_feedback"`
	AvgShopRating     float64 `json:"avg_shop_rating"`
	AvgServiceQuality float64 `json:"avg_service_quality"`
	AvgDeliverySpeed  float64 `json:"avg_delivery_speed"`
}

// FeedbackStats computes averages over every detailed feedback. Unset
// optional scores are left out of their average.
func (s *Service) FeedbackStats(ctx context.Context) (*FeedbackStats, error) {
	all, err := s.store.Feedback().All(ctx)
	if err != nil {
		return nil, utils.Persistence(err)
	}

	var shop, service, speed []int
	for _, f := range all {
		shop = append(shop, f.ShopRating)
		if f.ServiceQuality > 0 {
			service = append(service, f.ServiceQuality)
		}
		if f.DeliverySpeed > 0 {
			speed = append(speed, f.DeliverySpeed)
		}
	}

	return &FeedbackStats{
		TotalFeedback:     len(all),
		AvgShopRating:     mean(shop),
		AvgServiceQuality: mean(service),
		AvgDeliverySpeed:  mean(speed),
	}, nil
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return money(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(values)))))
}

// RatedItems lists menu items that have at least one rating, best first.
func (s *Service) RatedItems(ctx context.Context) ([]models.FoodItem, error) {
	foods, err := s.store.Foods().Find(ctx, repository.FoodFilter{})
	if err != nil {
		return nil, utils.Persistence(err)
	}
	var rated []models.FoodItem
	for _, f := range foods {
		if f.TotalRatings > 0 {
			rated = append(rated, f)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].AverageRating != rated[j].AverageRating {
			return rated[i].AverageRating > rated[j].AverageRating
		}
		return rated[i].TotalRatings > rated[j].TotalRatings
	})
	return rated, nil
}
