package middleware

import (
	"errors"
	"testing"

	"github.com/freshstock/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receiptPayload struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required"`
	Zone      string `json:"zone" binding:"omitempty,oneof=AMBIENT CHILL FREEZE"`
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	t.Run("reports json field names with readable messages", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(receiptPayload{
			ProductID: "not-a-uuid",
			Quantity:  "10",
			Zone:      "ATTIC",
		})
		require.Error(t, err)

		resp := FormatValidationErrors(err, "req-42")
		require.NotNil(t, resp.Error)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)

		byField := map[string]string{}
		for _, d := range resp.Error.Details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "Must be a valid UUID", byField["product_id"])
		assert.Equal(t, "Must be one of: AMBIENT CHILL FREEZE", byField["zone"])
	})

	t.Run("missing required field", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(receiptPayload{
			ProductID: "5b2ac4e3-6b8d-4c9f-9e2f-0d6a9c33d101",
		})
		require.Error(t, err)

		resp := FormatValidationErrors(err, "")
		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "quantity", resp.Error.Details[0].Field)
		assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
	})

	t.Run("non-validator error falls back to bad request", func(t *testing.T) {
		resp := FormatValidationErrors(errors.New("unexpected EOF"), "req-9")
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "unexpected EOF", resp.Error.Message)
		assert.Empty(t, resp.Error.Details)
	})
}
