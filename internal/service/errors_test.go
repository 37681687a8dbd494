package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		kind        domain.ErrorKind
		recoverable bool
	}{
		{"nil", nil, "", false},
		{"not found", service.ErrEventNotFound, domain.ErrorKindNotFound, true},
		{"wrapped not found", fmt.Errorf("lookup: %w", service.ErrCustomerNotFound), domain.ErrorKindNotFound, true},
		{"over payment", service.ErrOverPayment, domain.ErrorKindValidation, true},
		{"conflict", service.ErrConflict, domain.ErrorKindValidation, true},
		{"closed contract", service.ErrContractClosed, domain.ErrorKindStateGuard, false},
		{"unsigned contract", service.ErrContractNotSigned, domain.ErrorKindStateGuard, false},
		{"support assigned", service.ErrSupportAlreadyAssigned, domain.ErrorKindStateGuard, false},
		{"permission", service.ErrPermissionDenied, domain.ErrorKindPermission, false},
		{"unauthorized", service.ErrUnauthorized, domain.ErrorKindAuth, false},
		{"storage", fmt.Errorf("failed to save: %w: %w", service.ErrStorage, errors.New("disk full")), domain.ErrorKindStorage, false},
		{"unknown", errors.New("boom"), domain.ErrorKindInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, service.Kind(tt.err))
			assert.Equal(t, tt.recoverable, service.IsRecoverable(tt.err))
		})
	}
}
