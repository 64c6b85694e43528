package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-produccion/internal/domain"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", domain.Invalid("quantity", "debe ser positiva"), domain.ErrInvalidInput},
		{"not found", domain.NotFound("ítem", "X"), domain.ErrNotFound},
		{"invalid state", &domain.InvalidStateError{Resource: "orden", ID: "1", Status: "completed", Expected: "pending"}, domain.ErrInvalidState},
		{"insufficient", &domain.InsufficientStockError{ItemID: "A", Required: 3, Available: 1}, domain.ErrInsufficientStock},
		{"conflict", &domain.ConcurrencyConflictError{Operation: "execute", Err: context.DeadlineExceeded}, domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("capa externa: %w", tc.err)
			assert.True(t, errors.Is(wrapped, tc.sentinel), "errors.Is debe reconocer el centinela a través del wrap")
		})
	}
}

func TestInsufficientStockError_CarriesShortage(t *testing.T) {
	err := fmt.Errorf("ejecutar: %w", &domain.InsufficientStockError{ItemID: "A", ColorID: "azul", Required: 4, Available: 2})

	var short *domain.InsufficientStockError
	if assert.True(t, errors.As(err, &short)) {
		assert.Equal(t, "A", short.ItemID)
		assert.Equal(t, int64(4), short.Required)
		assert.Equal(t, int64(2), short.Available)
	}
	assert.Contains(t, err.Error(), "color azul")
}

func TestConcurrencyConflictError_Unwraps(t *testing.T) {
	err := &domain.ConcurrencyConflictError{Operation: "lock", Err: context.DeadlineExceeded}
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
