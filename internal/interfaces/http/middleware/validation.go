package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/farmops/backend/internal/domain/accounting"
)

// SetupValidator configures the gin binding validator with JSON field
// names and the domain enum tags used in request DTOs.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("invoice_direction", func(fl validator.FieldLevel) bool {
		return accounting.InvoiceDirection(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("module_type", func(fl validator.FieldLevel) bool {
		return accounting.ModuleType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("relation_type", func(fl validator.FieldLevel) bool {
		return accounting.RelationType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("rule_kind", func(fl validator.FieldLevel) bool {
		return accounting.RuleKind(fl.Field().String()).IsValid()
	})
}
