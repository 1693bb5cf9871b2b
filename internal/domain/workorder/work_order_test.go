package workorder

import (
	"testing"
	"time"

	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *WorkOrder {
	t.Helper()
	order, err := NewWorkOrder(uuid.New(), uuid.New(), uuid.New(), "Brake service")
	require.NoError(t, err)
	return order
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestWorkOrder_Complete(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.Start())

	now := time.Now()
	transitioned, err := order.Complete(now)
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, StatusCompleted, order.Status)
	assert.Equal(t, MechanicStatusMarkedComplete, order.MechanicStatus)
	require.NotNil(t, order.CompletedAt)
	assert.Equal(t, now, *order.CompletedAt)

	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeWorkOrderCompleted, events[0].EventType())
}

func TestWorkOrder_CompleteIsIdempotent(t *testing.T) {
	order := newTestOrder(t)
	first := time.Now()
	transitioned, err := order.Complete(first)
	require.NoError(t, err)
	require.True(t, transitioned)
	order.ClearDomainEvents()

	transitioned, err = order.Complete(first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, transitioned, "re-completing is a no-op, not a re-trigger")
	assert.Equal(t, first, *order.CompletedAt, "completion timestamp is set exactly once")
	assert.Empty(t, order.GetDomainEvents(), "no second completed event")
}

func TestWorkOrder_CompleteFromCancelled(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.Cancel())

	_, err := order.Complete(time.Now())
	assert.Error(t, err)
}

func TestWorkOrder_CancelFromTerminal(t *testing.T) {
	order := newTestOrder(t)
	_, err := order.Complete(time.Now())
	require.NoError(t, err)

	assert.Error(t, order.Cancel(), "completed is terminal")
}

func TestWorkOrder_AttachInvoice(t *testing.T) {
	order := newTestOrder(t)
	invoiceID := uuid.New()

	assert.Error(t, order.AttachInvoice(invoiceID), "only a completed order carries an invoice")

	_, err := order.Complete(time.Now())
	require.NoError(t, err)
	require.NoError(t, order.AttachInvoice(invoiceID))
	require.NotNil(t, order.InvoiceID)
	assert.Equal(t, invoiceID, *order.InvoiceID)
}

func TestWorkOrder_AddItem(t *testing.T) {
	order := newTestOrder(t)
	productID := uuid.New()
	rate := valueobject.NewMoneyUSDFromFloat(25)

	first, err := order.AddItem(ItemTypePart, "Oil filter", &productID, decimal.NewFromInt(1), rate)
	require.NoError(t, err)
	second, err := order.AddItem(ItemTypeLabor, "Oil change", nil, decimal.RequireFromString("0.5"), valueobject.NewMoneyUSDFromFloat(90))
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	t.Run("part item requires product", func(t *testing.T) {
		_, err := order.AddItem(ItemTypePart, "Mystery part", nil, decimal.NewFromInt(1), rate)
		assert.Error(t, err)
	})
	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := order.AddItem(ItemTypeFee, "Disposal", nil, decimal.Zero, rate)
		assert.Error(t, err)
	})
	t.Run("no items after completion", func(t *testing.T) {
		_, err := order.Complete(time.Now())
		require.NoError(t, err)
		_, err = order.AddItem(ItemTypeFee, "Disposal", nil, decimal.NewFromInt(1), rate)
		assert.Error(t, err)
	})
}

func TestWorkOrder_MechanicStatus(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.Start())
	require.NoError(t, order.UpdateMechanicStatus(MechanicStatusPaused))
	assert.Equal(t, MechanicStatusPaused, order.MechanicStatus)

	assert.Error(t, order.UpdateMechanicStatus(MechanicStatus("lunch")))

	_, err := order.Complete(time.Now())
	require.NoError(t, err)
	assert.Error(t, order.UpdateMechanicStatus(MechanicStatusInProgress), "terminal orders are frozen")
}

func TestMaintenanceTask_Close(t *testing.T) {
	task, err := NewMaintenanceTask(uuid.New(), uuid.New(), "Oil change", nil)
	require.NoError(t, err)
	require.True(t, task.IsOpen())

	servicedAt := time.Now()
	require.NoError(t, task.Close(servicedAt, 84000))
	assert.False(t, task.IsOpen())
	require.NotNil(t, task.ServicedAt)
	assert.Equal(t, servicedAt, *task.ServicedAt)
	require.NotNil(t, task.ServicedKms)
	assert.Equal(t, int64(84000), *task.ServicedKms)

	// closing again keeps the original stamp
	require.NoError(t, task.Close(servicedAt.Add(time.Hour), 90000))
	assert.Equal(t, servicedAt, *task.ServicedAt)
	assert.Equal(t, int64(84000), *task.ServicedKms)
}

func TestMaintenanceTask_CloseRejectsNegativeMileage(t *testing.T) {
	task, err := NewMaintenanceTask(uuid.New(), uuid.New(), "Tire rotation", nil)
	require.NoError(t, err)
	assert.Error(t, task.Close(time.Now(), -1))
}
