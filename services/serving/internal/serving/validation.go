package serving

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func ValidateGroupCreate(ctx context.Context, req GroupCreateRequest) []string {
	errs := validationErrors(validate.StructCtx(ctx, req))
	if strings.TrimSpace(req.Name) == "" && !contains(errs, "name is required") {
		errs = append(errs, "name is required")
	}
	for i, item := range req.Items {
		msg := fmt.Sprintf("items[%d].name is required", i)
		if strings.TrimSpace(item.Name) == "" && !contains(errs, msg) {
			errs = append(errs, msg)
		}
	}
	return errs
}

func ValidateGroupUpdate(ctx context.Context, req GroupUpdateRequest) []string {
	errs := validationErrors(validate.StructCtx(ctx, req))
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, "name cannot be blank")
	}
	return errs
}

func ValidateItemCreate(ctx context.Context, req ItemCreateRequest) []string {
	errs := validationErrors(validate.StructCtx(ctx, req))
	if strings.TrimSpace(req.Name) == "" && !contains(errs, "name is required") {
		errs = append(errs, "name is required")
	}
	return errs
}

func ValidateItemUpdate(ctx context.Context, req ItemUpdateRequest) []string {
	errs := validationErrors(validate.StructCtx(ctx, req))
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, "name cannot be blank")
	}
	return errs
}

func ValidateRedistribute(ctx context.Context, req RedistributeRequest) []string {
	return validationErrors(validate.StructCtx(ctx, req))
}

// validationErrors flattens validator output into "field rule" messages.
func validationErrors(err error) []string {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	var out []string
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "gte":
			out = append(out, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		case "max", "min":
			out = append(out, fmt.Sprintf("%s length must be %s %s", field, fe.Tag(), fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
