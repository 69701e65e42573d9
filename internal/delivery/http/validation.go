package http

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom/backend/internal/usecase"
)

// RegisterValidations installs the custom "upc" binding tag on gin's
// validator engine. A field tagged `binding:"upc"` must sanitize to a valid
// barcode, so malformed codes are rejected at bind time.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("upc", func(fl validator.FieldLevel) bool {
		_, err := usecase.SanitizeBarcode(fl.Field().String())
		return err == nil
	})
}
