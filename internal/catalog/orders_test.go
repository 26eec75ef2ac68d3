package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLookupNormalizesInputs(t *testing.T) {
	svc := NewOrderService(testOrders())

	tests := []struct {
		name        string
		email       string
		orderNumber string
		found       bool
	}{
		{"exact", "john.doe@example.com", "#W001", true},
		{"uppercase email", "JOHN.DOE@EXAMPLE.COM", "#W001", true},
		{"lowercase number without prefix", "john.doe@example.com", "w001", true},
		{"surrounding whitespace", " john.doe@example.com ", " #w001 ", true},
		{"wrong email", "nobody@example.com", "#W001", false},
		{"wrong number", "john.doe@example.com", "#W999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, ok := svc.Lookup(tt.email, tt.orderNumber)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, " John Doe", order.CustomerName)
			}
		})
	}
}

func TestOrderTracking(t *testing.T) {
	svc := NewOrderService(testOrders())

	order, ok := svc.Lookup("john.doe@example.com", "#W001")
	require.True(t, ok)
	assert.True(t, order.HasTracking())
	assert.Equal(t, "https://tools.usps.com/go/TrackConfirmAction?tLabels=TRK123456789", order.TrackingURL())

	order, ok = svc.Lookup("alice.johnson@example.com", "#W003")
	require.True(t, ok)
	assert.Equal(t, StatusFulfilled, order.Status)
	assert.False(t, order.HasTracking())
	assert.Empty(t, order.TrackingURL())
}

func TestNormalizeOrderNumber(t *testing.T) {
	assert.Equal(t, "#W001", NormalizeOrderNumber("w001"))
	assert.Equal(t, "#W001", NormalizeOrderNumber("#w001"))
	assert.Equal(t, "#W001", NormalizeOrderNumber("  W001  "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.COM "))
}
