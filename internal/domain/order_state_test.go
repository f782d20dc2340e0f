package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShipmentStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected ShipmentStatus
		wantErr  bool
	}{
		{in: "pending", expected: ShipmentPending},
		{in: "confirm", expected: ShipmentConfirm},
		{in: "Shipped", expected: ShipmentShipped},
		{in: "delivered", expected: ShipmentDelivered},
		{in: "canceled", expected: ShipmentCanceled},
		{in: "cancelled", expected: ShipmentCanceled},
		{in: "lost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShipmentStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIllegalTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOrder_Transition(t *testing.T) {
	tests := []struct {
		name           string
		from           ShipmentStatus
		to             ShipmentStatus
		actor          Actor
		expectedErr    bool
		expectedStatus OrderStatus
	}{
		{name: "artist confirms", from: ShipmentPending, to: ShipmentConfirm, actor: ActorArtist, expectedStatus: StatusPaid},
		{name: "null shipment acts as pending", from: ShipmentNone, to: ShipmentConfirm, actor: ActorArtist, expectedStatus: StatusPaid},
		{name: "artist ships", from: ShipmentConfirm, to: ShipmentShipped, actor: ActorArtist, expectedStatus: StatusPaid},
		{name: "delivery completes order", from: ShipmentShipped, to: ShipmentDelivered, actor: ActorAdmin, expectedStatus: StatusCompleted},
		{name: "buyer cancels pending", from: ShipmentPending, to: ShipmentCanceled, actor: ActorBuyer, expectedStatus: StatusCanceled},
		{name: "buyer cannot cancel confirmed", from: ShipmentConfirm, to: ShipmentCanceled, actor: ActorBuyer, expectedErr: true},
		{name: "artist cancels confirmed", from: ShipmentConfirm, to: ShipmentCanceled, actor: ActorArtist, expectedStatus: StatusCanceled},
		{name: "buyer cannot advance", from: ShipmentPending, to: ShipmentConfirm, actor: ActorBuyer, expectedErr: true},
		{name: "no skipping", from: ShipmentPending, to: ShipmentShipped, actor: ActorArtist, expectedErr: true},
		{name: "no going back", from: ShipmentDelivered, to: ShipmentPending, actor: ActorAdmin, expectedErr: true},
		{name: "shipped cannot cancel", from: ShipmentShipped, to: ShipmentCanceled, actor: ActorAdmin, expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: StatusPaid, ShipmentStatus: tt.from}
			err := o.Transition(tt.to, tt.actor)
			if tt.expectedErr {
				assert.True(t, errors.Is(err, ErrIllegalTransition))
				assert.Equal(t, tt.from, o.ShipmentStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.ShipmentStatus)
			assert.Equal(t, tt.expectedStatus, o.Status)
		})
	}
}

func TestOrder_TransitionRequiresPaid(t *testing.T) {
	o := &Order{Status: StatusCanceled, ShipmentStatus: ShipmentCanceled}
	err := o.Transition(ShipmentConfirm, ActorAdmin)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestOrder_Deletable(t *testing.T) {
	assert.False(t, (&Order{Status: StatusPaid}).Deletable())
	assert.False(t, (&Order{Status: StatusPending}).Deletable())
	assert.True(t, (&Order{Status: StatusCompleted}).Deletable())
	assert.True(t, (&Order{Status: StatusCanceled}).Deletable())
}
