package handlers

import (
	"testing"

	"phonestore/internal/models"
)

func TestValidateStatusTransitionForwardChain(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusShipping},
		{models.OrderStatusConfirmed, models.OrderStatusShipping},
		{models.OrderStatusShipping, models.OrderStatusDelivered},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
	}
	for _, tt := range allowed {
		if err := validateStatusTransition(tt.from, tt.to); err != nil {
			t.Errorf("expected %s -> %s to be allowed, got %v", tt.from, tt.to, err)
		}
	}
}

func TestValidateStatusTransitionRejectsBackwardMoves(t *testing.T) {
	rejected := []struct{ from, to string }{
		{models.OrderStatusConfirmed, models.OrderStatusPending},
		{models.OrderStatusShipping, models.OrderStatusConfirmed},
		{models.OrderStatusDelivered, models.OrderStatusShipping},
	}
	for _, tt := range rejected {
		if err := validateStatusTransition(tt.from, tt.to); err == nil {
			t.Errorf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}
}

func TestValidateStatusTransitionCancelOnlyBeforeShipping(t *testing.T) {
	for _, from := range []string{models.OrderStatusShipping, models.OrderStatusDelivered} {
		if err := validateStatusTransition(from, models.OrderStatusCancelled); err == nil {
			t.Errorf("expected cancel from %s to be rejected", from)
		}
	}
}

func TestValidateStatusTransitionCancelledIsTerminal(t *testing.T) {
	for _, to := range []string{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		if err := validateStatusTransition(models.OrderStatusCancelled, to); err == nil {
			t.Errorf("expected cancelled -> %s to be rejected", to)
		}
	}
}

func TestValidateStatusTransitionRejectsUnknownAndSameStatus(t *testing.T) {
	if err := validateStatusTransition(models.OrderStatusPending, "done"); err == nil {
		t.Error("expected unknown target status to be rejected")
	}
	if err := validateStatusTransition(models.OrderStatusShipping, models.OrderStatusShipping); err == nil {
		t.Error("expected same-status transition to be rejected")
	}
}
