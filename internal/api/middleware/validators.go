package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SaluSL/planimbly/internal/roster"
)

// RegisterValidators 注册自定义绑定校验规则
//   - clock:    HH:MM 或 HH:MM:SS
//   - weekdays: []int，每项为 ISO 星期 1-7
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding 校验引擎不是 validator.Validate")
	}
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return err
	}
	return v.RegisterValidation("weekdays", validateWeekdays)
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := roster.ParseClock(fl.Field().String())
	return err == nil
}

func validateWeekdays(fl validator.FieldLevel) bool {
	days, ok := fl.Field().Interface().([]int)
	if !ok {
		return false
	}
	_, err := roster.NewActiveDays(days...)
	return err == nil
}
