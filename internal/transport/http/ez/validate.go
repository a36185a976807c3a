package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"redflix-api/internal/core/apperr"
)

var tagNameOnce sync.Once

func engine() (*validator.Validate, bool) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	return v, ok
}

// initValidator 让错误信息里用 json 字段名；只生效一次
func initValidator() {
	v, ok := engine()
	if !ok {
		return
	}
	tagNameOnce.Do(func() {
		v.RegisterTagNameFunc(fieldName)
	})
}

func fieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" {
		name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	}
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// RegisterValidation 注册 binding 标签，例如 "movietype"；重复注册覆盖
func RegisterValidation(tag string, ok func(string) bool) {
	initValidator()
	v, found := engine()
	if !found {
		panic("ez: gin validator engine is not go-playground/validator")
	}
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("ez: register validation %q: %v", tag, err))
	}
}

// BindError 绑定/校验错误统一转为 BadRequest，信息可读
func BindError(err error) error {
	var (
		ve     validator.ValidationErrors
		tooBig *http.MaxBytesError
		syn    *json.SyntaxError
		typ    *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &ve):
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperr.BadRequest(strings.Join(msgs, " "))
	case errors.As(err, &tooBig):
		return apperr.BadRequest("Request body too large.")
	case errors.Is(err, io.EOF):
		return apperr.BadRequest("Request body is empty.")
	case errors.As(err, &syn), errors.As(err, &typ):
		return apperr.BadRequest("Malformed request body.")
	default:
		return apperr.BadRequest(err.Error())
	}
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s cannot be empty.", f)
	case "email":
		return "Invalid email."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long.", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long.", f, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s must be alphanumeric.", f)
	case "url":
		return fmt.Sprintf("%s must be a valid URL.", f)
	case "movietype":
		return fmt.Sprintf("%s must be one of the available movie types.", f)
	default:
		return fmt.Sprintf("%s is invalid.", f)
	}
}
