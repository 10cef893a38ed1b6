package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
)

func TestLoadReadsPhoneLists(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PHONES", "9000000001, 9000000002")
	t.Setenv("CHEF_PHONES", "9000000003")
	t.Setenv("OTP_TTL_MINUTES", "10")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"9000000001", "9000000002"}, cfg.AdminPhones)
	assert.Equal(t, []string{"9000000003"}, cfg.ChefPhones)
	assert.Equal(t, "123456", cfg.DevOTP)
	assert.Equal(t, "10m0s", cfg.OTPTTL.String())
}

func TestRoleForPhone(t *testing.T) {
	cfg := &Config{
		AdminPhones: []string{"1111111111"},
		ChefPhones:  []string{"1111111111", "2222222222"},
	}

	assert.Equal(t, models.RoleAdmin, cfg.RoleForPhone("1111111111"))
	assert.Equal(t, models.RoleChef, cfg.RoleForPhone("2222222222"))
	assert.Equal(t, models.RoleCustomer, cfg.RoleForPhone("3333333333"))
}
