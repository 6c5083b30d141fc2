package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/veaiops/veaiops/internal/model"
)

// agentTypeValidator accepts the known agent types.
func agentTypeValidator(fl validator.FieldLevel) bool {
	switch model.AgentType(fl.Field().String()) {
	case model.AgentTypeInterest, model.AgentTypeReply, model.AgentTypeThreshold:
		return true
	}
	return false
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Failure to register means the tag name is taken; that's a
		// programming error, not a runtime condition.
		if err := v.RegisterValidation("agenttype", agentTypeValidator); err != nil {
			panic(err)
		}
	}
}
