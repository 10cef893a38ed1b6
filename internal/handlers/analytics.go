package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/reports"
)

// AnalyticsHandler serves sales reports.
type AnalyticsHandler struct {
	reports *reports.Service
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(service *reports.Service) *AnalyticsHandler {
	return &AnalyticsHandler{reports: service}
}

// Dashboard returns today, month-to-date and overall figures.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dashboard})
}

func parseReportDate(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return day, nil
}

// DailyReport returns the report for ?date= (default today).
func (h *AnalyticsHandler) DailyReport(c *fiber.Ctx) error {
	day, err := parseReportDate(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Daily(c.UserContext(), day)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": report})
}

// ExportDailyReport downloads the daily report as an Excel workbook.
func (h *AnalyticsHandler) ExportDailyReport(c *fiber.Ctx) error {
	day, err := parseReportDate(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Daily(c.UserContext(), day)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := reports.WriteDailyXLSX(&buf, report); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build workbook")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="daily-report-%s.xlsx"`, report.Date))
	return c.Send(buf.Bytes())
}

// MonthlyReport returns the report for ?year=&month= (default current month).
func (h *AnalyticsHandler) MonthlyReport(c *fiber.Ctx) error {
	now := time.Now()
	year, err := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	if err != nil || year < 2000 || year > 9999 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid year")
	}
	month, err := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		return fiber.NewError(fiber.StatusBadRequest, "month must be between 1 and 12")
	}

	report, err := h.reports.Monthly(c.UserContext(), year, time.Month(month), time.Local)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": report})
}
