package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		verbose     bool
		wantStatus  int
		wantCode    string
		wantDetails bool
	}{
		{
			name:       "validation",
			err:        Validation("CART_EMPTY", "Cart is empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "CART_EMPTY",
		},
		{
			name:       "conflict is reported as bad request",
			err:        Conflict("DUPLICATE", "Order already exists"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "DUPLICATE",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("lookup: %w", NotFound("ORDER_NOT_FOUND", "Order not found")),
			wantStatus: http.StatusNotFound,
			wantCode:   "ORDER_NOT_FOUND",
		},
		{
			name:       "forbidden",
			err:        ErrAdminRequired,
			wantStatus: http.StatusForbidden,
			wantCode:   "ADMIN_REQUIRED",
		},
		{
			name:       "unauthorized",
			err:        ErrInvalidToken,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_TOKEN",
		},
		{
			name:       "plain error is opaque outside development",
			err:        stderrors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:        "plain error exposes message in development",
			err:         stderrors.New("connection refused"),
			verbose:     true,
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantDetails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err, tt.verbose)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantDetails, httpErr.Details != nil)
			assert.False(t, httpErr.ToErrorResponse().Success)
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	sentinel := Validation("MINIMUM_ORDER_NOT_MET", "Minimum order amount not met")
	formatted := Validation("MINIMUM_ORDER_NOT_MET", "Minimum order amount of $50.00 required")

	assert.True(t, stderrors.Is(formatted, sentinel))
	assert.True(t, stderrors.Is(fmt.Errorf("wrap: %w", formatted), sentinel))
	assert.False(t, stderrors.Is(formatted, ErrInvalidID))
}

func TestError_WithDetailsCopies(t *testing.T) {
	base := Validation("MISSING_FIELDS", "Missing shipping fields")
	withDetails := base.WithDetails([]string{"phone"})

	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"phone"}, withDetails.Details)
}
