// AngelaMos | 2026
// status_test.go

package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValidate(t *testing.T) {
	for _, s := range Statuses {
		assert.NoError(t, s.Validate(), s)
	}

	assert.ErrorIs(t, Status("Cancelado").Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, Status("").Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, Status("pago (em preparação)").Validate(), ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"Pendente", StatusPending},
		{"  pendente ", StatusPending},
		{"pending", StatusPending},
		{"Pago (Em preparação)", StatusPaid},
		{"PAID", StatusPaid},
		{"in_preparation", StatusPaid},
		{"Entregue", StatusDelivered},
		{"delivered", StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("Pago")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanTransitionStrict(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusDelivered, true},
		{StatusPaid, StatusPending, true},
		{StatusPaid, StatusPaid, true},
		{StatusPaid, StatusDelivered, true},
		{StatusDelivered, StatusDelivered, true},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to, true))
		})
	}
}

func TestCanTransitionLenientAllowsEverything(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			assert.True(t, CanTransition(from, to, false), "%s -> %s", from, to)
		}
	}
}

func TestTimestampColumn(t *testing.T) {
	assert.Equal(t, "", StatusPending.timestampColumn())
	assert.Equal(t, "paid_at", StatusPaid.timestampColumn())
	assert.Equal(t, "delivered_at", StatusDelivered.timestampColumn())
}
