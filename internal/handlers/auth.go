package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/config"
	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	store repository.Store
	cfg   *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(store repository.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// SendOTP issues a one-time code for the phone, creating the account on first use.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	phone := utils.CleanPhone(req.Phone)
	if !utils.ValidPhone(phone) {
		return fiber.NewError(fiber.StatusBadRequest, "phone number must have at least 10 digits")
	}

	ctx := c.UserContext()
	user, err := h.store.Users().FindByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{Phone: phone, Role: models.RoleCustomer}
	} else if err != nil {
		return utils.Persistence(err)
	}

	// Phone lists promote accounts but never demote seeded staff.
	if role := h.cfg.RoleForPhone(phone); role != models.RoleCustomer {
		user.Role = role
	}

	otp := h.cfg.DevOTP
	hash, err := utils.HashOTP(otp)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate OTP")
	}
	expires := time.Now().Add(h.cfg.OTPTTL)
	user.OTPHash = hash
	user.OTPExpiresAt = &expires

	if err := h.store.Users().Save(ctx, user); err != nil {
		return utils.Persistence(err)
	}

	log.Printf("[Auth] OTP issued for %s (%s)", phone, user.Role)

	resp := fiber.Map{
		"success":    true,
		"message":    "OTP sent successfully",
		"expires_at": expires,
	}
	if !h.cfg.IsProduction() {
		resp["otp"] = otp
	}
	return c.JSON(resp)
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyOTP checks the code and returns an access token.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	user, err := h.store.Users().FindByPhone(ctx, utils.CleanPhone(req.Phone))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user not found, request an OTP first")
	} else if err != nil {
		return utils.Persistence(err)
	}

	now := time.Now()
	if user.OTPExpiresAt == nil || user.OTPExpiresAt.Before(now) {
		return fiber.NewError(fiber.StatusBadRequest, "OTP expired")
	}
	if !utils.CheckOTP(user.OTPHash, req.OTP) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid OTP")
	}

	user.IsVerified = true
	user.IsOnline = true
	user.LastLogin = &now
	user.OTPHash = ""
	user.OTPExpiresAt = nil
	if err := h.store.Users().Save(ctx, user); err != nil {
		return utils.Persistence(err)
	}

	record := models.LoginRecord{LoginTime: now, IPAddress: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
	if err := h.store.Users().AddLogin(ctx, user.ID, record, models.MaxLoginHistory); err != nil {
		log.Printf("[Auth] failed to record login for %s: %v", user.ID, err)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.Claims{
		UserID: user.ID,
		Phone:  user.Phone,
		Role:   string(user.Role),
	}, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdateProfile sets the caller's display name and email.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	user.Name = req.Name
	user.Email = req.Email
	if err := h.store.Users().Save(c.UserContext(), user); err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// Logout marks the caller offline. Tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	user.IsOnline = false
	if err := h.store.Users().Save(c.UserContext(), user); err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "logged out"})
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

func (h *AuthHandler) currentUser(c *fiber.Ctx) (*models.User, error) {
	actor, err := currentActor(c)
	if err != nil {
		return nil, err
	}
	user, err := h.store.Users().FindByID(c.UserContext(), actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		return nil, utils.Persistence(err)
	}
	return user, nil
}
