// Package seed loads staff accounts, the menu and coupons from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// File is the document layout.
type File struct {
	Staff   []Staff  `yaml:"staff"`
	Menu    []Food   `yaml:"menu"`
	Coupons []Coupon `yaml:"coupons"`
}

// Staff is a chef or admin account.
type Staff struct {
	Phone string      `yaml:"phone"`
	Name  string      `yaml:"name"`
	Email string      `yaml:"email"`
	Role  models.Role `yaml:"role"`
}

// Food is a menu entry.
type Food struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Price       float64  `yaml:"price"`
	IsVeg       bool     `yaml:"is_veg"`
	Available   *bool    `yaml:"available"`
	PrepTime    int      `yaml:"prep_time"`
	ImageURL    string   `yaml:"image_url"`
	ModelURL    string   `yaml:"model_url"`
	Ingredients []string `yaml:"ingredients"`
}

// Coupon is a discount code. Validity is relative to the time of seeding.
type Coupon struct {
	Code          string   `yaml:"code"`
	Description   string   `yaml:"description"`
	DiscountType  string   `yaml:"discount_type"`
	DiscountValue float64  `yaml:"discount_value"`
	MinOrderValue float64  `yaml:"min_order_value"`
	MaxDiscount   *float64 `yaml:"max_discount"`
	UsageLimit    *int     `yaml:"usage_limit"`
	ValidDays     int      `yaml:"valid_days"`
}

// Result counts the records created by Apply.
type Result struct {
	Staff   int
	Foods   int
	Coupons int
}

// Load parses and checks a seed document.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) check() error {
	for _, s := range f.Staff {
		if !utils.ValidPhone(s.Phone) {
			return fmt.Errorf("staff %q: invalid phone %q", s.Name, s.Phone)
		}
		if s.Role != models.RoleChef && s.Role != models.RoleAdmin {
			return fmt.Errorf("staff %q: role must be chef or admin", s.Name)
		}
	}
	for _, food := range f.Menu {
		if food.Name == "" || food.Price <= 0 {
			return fmt.Errorf("menu item %q: name and positive price are required", food.Name)
		}
		if !models.IsFoodCategory(food.Category) {
			return fmt.Errorf("menu item %q: unknown category %q", food.Name, food.Category)
		}
	}
	for _, c := range f.Coupons {
		if c.Code == "" || c.DiscountValue <= 0 {
			return fmt.Errorf("coupon %q: code and discount value are required", c.Code)
		}
		if c.DiscountType != models.DiscountPercentage && c.DiscountType != models.DiscountFixed {
			return fmt.Errorf("coupon %q: unknown discount type %q", c.Code, c.DiscountType)
		}
	}
	return nil
}

// Apply stores every record that does not exist yet. Staff are matched by
// phone and get their role updated; foods by name; coupons by code.
func Apply(ctx context.Context, store repository.Store, f *File, now time.Time) (Result, error) {
	var res Result

	for _, s := range f.Staff {
		phone := utils.CleanPhone(s.Phone)
		user, err := store.Users().FindByPhone(ctx, phone)
		if errors.Is(err, repository.ErrNotFound) {
			user = &models.User{Phone: phone}
			res.Staff++
		} else if err != nil {
			return res, err
		}
		user.Name = s.Name
		user.Email = s.Email
		user.Role = s.Role
		user.IsVerified = true
		if err := store.Users().Save(ctx, user); err != nil {
			return res, err
		}
	}

	existing, err := store.Foods().Find(ctx, repository.FoodFilter{})
	if err != nil {
		return res, err
	}
	names := make(map[string]bool, len(existing))
	for _, food := range existing {
		names[strings.ToLower(food.Name)] = true
	}
	for _, food := range f.Menu {
		if names[strings.ToLower(food.Name)] {
			continue
		}
		item := &models.FoodItem{
			Name:        food.Name,
			Description: food.Description,
			Category:    food.Category,
			Price:       food.Price,
			IsVeg:       food.IsVeg,
			IsAvailable: food.Available == nil || *food.Available,
			PrepTime:    food.PrepTime,
			ImageURL:    food.ImageURL,
			ModelURL:    food.ModelURL,
			Ingredients: food.Ingredients,
		}
		if err := store.Foods().Create(ctx, item); err != nil {
			return res, err
		}
		names[strings.ToLower(food.Name)] = true
		res.Foods++
	}

	for _, c := range f.Coupons {
		code := strings.ToUpper(c.Code)
		if _, err := store.Coupons().FindByCode(ctx, code); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return res, err
		}
		days := c.ValidDays
		if days <= 0 {
			days = 30
		}
		coupon := &models.Coupon{
			Code:          code,
			Description:   c.Description,
			DiscountType:  c.DiscountType,
			DiscountValue: c.DiscountValue,
			MinOrderValue: c.MinOrderValue,
			MaxDiscount:   c.MaxDiscount,
			UsageLimit:    c.UsageLimit,
			ValidFrom:     now,
			ValidUntil:    now.AddDate(0, 0, days),
			IsActive:      true,
		}
		if err := store.Coupons().Create(ctx, coupon); err != nil {
			return res, err
		}
		res.Coupons++
	}

	return res, nil
}
