package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenantProfile(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates profile with defaults", func(t *testing.T) {
		profile, err := NewTenantProfile(tenantID, "Main St Garage", "ON")
		require.NoError(t, err)

		assert.Equal(t, DefaultPaymentTermDays, profile.PaymentTermDays)
		assert.False(t, profile.UseCustomTaxRate)
		assert.Nil(t, profile.StockPoolID)
		assert.Nil(t, profile.EffectiveCustomRate())
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewTenantProfile(uuid.Nil, "Main St Garage", "ON")
		assert.Error(t, err)
	})

	t.Run("rejects empty jurisdiction", func(t *testing.T) {
		_, err := NewTenantProfile(tenantID, "Main St Garage", "")
		assert.Error(t, err)
	})
}

func TestTenantProfile_CustomTaxRate(t *testing.T) {
	profile, err := NewTenantProfile(uuid.New(), "Main St Garage", "ON")
	require.NoError(t, err)

	require.NoError(t, profile.SetCustomTaxRate(decimal.RequireFromString("0.08")))
	taxRate := profile.EffectiveCustomRate()
	require.NotNil(t, taxRate)
	assert.Equal(t, "0.08", taxRate.String())

	profile.ClearCustomTaxRate()
	assert.Nil(t, profile.EffectiveCustomRate())

	assert.Error(t, profile.SetCustomTaxRate(decimal.RequireFromString("-0.01")))
}

func TestTenantProfile_DueDateFrom(t *testing.T) {
	profile, err := NewTenantProfile(uuid.New(), "Main St Garage", "ON")
	require.NoError(t, err)
	require.NoError(t, profile.SetPaymentTermDays(15))

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC), profile.DueDateFrom(issued))

	assert.Error(t, profile.SetPaymentTermDays(-1))
}

func TestTenantProfile_StockPool(t *testing.T) {
	profile, err := NewTenantProfile(uuid.New(), "Main St Garage", "ON")
	require.NoError(t, err)

	pool := uuid.New()
	require.NoError(t, profile.JoinStockPool(pool))
	require.NotNil(t, profile.StockPoolID)
	assert.Equal(t, pool, *profile.StockPoolID)

	profile.LeaveStockPool()
	assert.Nil(t, profile.StockPoolID)

	assert.Error(t, profile.JoinStockPool(uuid.Nil))
}

func TestTenantProfile_InvoiceSequenceOverride(t *testing.T) {
	profile, err := NewTenantProfile(uuid.New(), "Main St Garage", "ON")
	require.NoError(t, err)
	assert.Nil(t, profile.InvoiceSeqOverride)

	require.NoError(t, profile.OverrideNextInvoiceSequence(500))
	require.NotNil(t, profile.InvoiceSeqOverride)
	assert.Equal(t, int64(500), *profile.InvoiceSeqOverride)

	profile.ClearInvoiceSequenceOverride()
	assert.Nil(t, profile.InvoiceSeqOverride)

	assert.Error(t, profile.OverrideNextInvoiceSequence(0))
	assert.Error(t, profile.OverrideNextInvoiceSequence(-3))
}
