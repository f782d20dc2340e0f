package domain

import (
	"fmt"
	"strings"
)

type ShipmentStatus string

const (
	ShipmentNone      ShipmentStatus = ""
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentConfirm   ShipmentStatus = "confirm"
	ShipmentShipped   ShipmentStatus = "shipped"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentCanceled  ShipmentStatus = "canceled"
)

// Actor is the side of the marketplace requesting a transition.
type Actor string

const (
	ActorBuyer  Actor = "buyer"
	ActorArtist Actor = "artist"
	ActorAdmin  Actor = "admin"
)

// ParseShipmentStatus accepts the stored spellings, including "cancelled".
func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return ShipmentPending, nil
	case "confirm", "confirmed":
		return ShipmentConfirm, nil
	case "shipped":
		return ShipmentShipped, nil
	case "delivered":
		return ShipmentDelivered, nil
	case "canceled", "cancelled":
		return ShipmentCanceled, nil
	}
	return "", fmt.Errorf("%w: unknown shipment status %q", ErrIllegalTransition, s)
}

func (s ShipmentStatus) normalized() ShipmentStatus {
	if s == ShipmentNone {
		return ShipmentPending
	}
	if s == "cancelled" {
		return ShipmentCanceled
	}
	return s
}

func (s ShipmentStatus) IsTerminal() bool {
	n := s.normalized()
	return n == ShipmentDelivered || n == ShipmentCanceled
}

type transition struct {
	from, to ShipmentStatus
}

var allowedTransitions = map[transition][]Actor{
	{ShipmentPending, ShipmentConfirm}:   {ActorArtist, ActorAdmin},
	{ShipmentConfirm, ShipmentShipped}:   {ActorArtist, ActorAdmin},
	{ShipmentShipped, ShipmentDelivered}: {ActorArtist, ActorAdmin},
	{ShipmentPending, ShipmentCanceled}:  {ActorBuyer, ActorArtist, ActorAdmin},
	{ShipmentConfirm, ShipmentCanceled}:  {ActorArtist, ActorAdmin},
}

// CanTransitionTo reports whether actor may move a shipment from s to target.
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus, actor Actor) bool {
	actors, ok := allowedTransitions[transition{s.normalized(), target.normalized()}]
	if !ok {
		return false
	}
	for _, a := range actors {
		if a == actor {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Transition moves the shipment sub-state and derives the order status.
// Only paid orders have a live shipment.
func (o *Order) Transition(target ShipmentStatus, actor Actor) error {
	if o.Status != StatusPaid {
		return fmt.Errorf("%w: order is %s", ErrIllegalTransition, o.Status)
	}
	current := o.ShipmentStatus.normalized()
	if !current.CanTransitionTo(target, actor) {
		return fmt.Errorf("%w: %s -> %s by %s", ErrIllegalTransition, current, target, actor)
	}

	o.ShipmentStatus = target.normalized()
	switch o.ShipmentStatus {
	case ShipmentDelivered:
		o.Status = StatusCompleted
	case ShipmentCanceled:
		o.Status = StatusCanceled
	}
	return nil
}

// Deletable reports whether the buyer may remove the record.
func (o *Order) Deletable() bool {
	return o.Status.IsTerminal()
}
