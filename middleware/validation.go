package middleware

import (
	"github.com/go-playground/validator/v10"

	"github.com/saiset-co/sai-strate/types"
	"github.com/saiset-co/sai-strate/utils"
)

// ValidatedBodyKey is the context key holding the decoded request body.
const ValidatedBodyKey = "validation.body"

// ValidationMiddleware decodes the request body into a caller-supplied target
// and validates it with struct tags. Failures terminate the invocation
// through the error responder, so the error handler must run first.
type ValidationMiddleware struct {
	validate *validator.Validate
	target   func() interface{}
}

// NewValidationMiddleware creates the middleware; target returns a fresh
// pointer to the struct the body decodes into.
func NewValidationMiddleware(target func() interface{}) *ValidationMiddleware {
	return &ValidationMiddleware{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		target:   target,
	}
}

func (v *ValidationMiddleware) Name() string { return "validation" }

func (v *ValidationMiddleware) Dependencies() []any {
	return []any{"errorHandler"}
}

func (v *ValidationMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	send, ok := responder(c)
	if !ok {
		return types.NewErrorf("validation middleware requires the error responder capability")
	}

	payload := v.target()

	if err := utils.UnmarshalInto(req.Body(), payload); err != nil {
		return send("invalid_json", "request body is not valid JSON", 400, nil)
	}

	if err := v.validate.Struct(payload); err != nil {
		fields := map[string]interface{}{}
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrs {
				fields[fieldErr.Field()] = fieldErr.Tag()
			}
		}
		return send("validation_failed", "request body validation failed", 422,
			map[string]interface{}{"fields": fields})
	}

	c.Set(ValidatedBodyKey, payload)

	return next()
}
