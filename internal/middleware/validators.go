package middleware

import (
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators gin 바인딩에 도메인 검증 태그 등록 (sido, facility_type, region_key)
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("sido", func(fl validator.FieldLevel) bool {
		return model.IsValidSido(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("facility_type", func(fl validator.FieldLevel) bool {
		return model.IsValidFacilityType(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("region_key", func(fl validator.FieldLevel) bool {
		_, _, ok := model.ParseRegionKey(fl.Field().String())
		return ok
	})
}
