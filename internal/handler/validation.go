package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/user/streamly/internal/model"
)

// Register the subscription tier rule on gin's validator so request
// structs can use binding:"tier".
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
			return model.TierRank(fl.Field().String()) >= 0
		})
	}
}
