package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/quickkart/marketplace/internal/domain/money"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds a JSON body; field errors are named after json tags.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(ctx, err, out, "json"))
		return false
	}
	return true
}

// BindForm binds multipart or urlencoded fields; field errors are named after form tags.
func BindForm(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBind(out); err != nil {
		RespondBadRequest(ctx, "Invalid form data", bindErrorDetails(ctx, err, out, "form"))
		return false
	}
	return true
}

func bindErrorDetails(ctx *gin.Context, err error, out interface{}, tag string) interface{} {
	dto := structType(out)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			name := wireName(dto, fe.StructField(), tag)
			fields = append(fields, FieldError{
				Field:   name,
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: fieldMessage(name, fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		name := wireName(dto, lastSegment(typeErr.Field), tag)
		return typeMismatch("json", "invalid_json_type", name, fmt.Sprintf("must be of type %s", typeErr.Type))
	}

	// price is parsed by money.Cents, which fails the same way from JSON and forms
	if errors.Is(err, money.ErrInvalidAmount) {
		name := wireNameOfType(dto, reflect.TypeOf(money.Cents(0)), tag)
		return typeMismatch(tag, "invalid_"+tag+"_type", name, fieldMessage(name, "type", ""))
	}

	var numErr *strconv.NumError
	if tag == "form" && errors.As(err, &numErr) {
		name := formFieldWithValue(ctx, numErr.Num)
		return typeMismatch("form", "invalid_form_type", name, "must be a whole number")
	}

	return gin.H{"reason": err.Error()}
}

func typeMismatch(source, code, field, message string) gin.H {
	return gin.H{
		source:  code,
		"field": field,
		"fields": []FieldError{
			{Field: field, Rule: "type", Message: message},
		},
	}
}

func structType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

func lastSegment(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// wireName returns the json or form name of a DTO field. Request DTOs are flat.
func wireName(dto reflect.Type, structField, tag string) string {
	if dto == nil {
		return structField
	}

	if sf, ok := dto.FieldByName(structField); ok {
		return tagName(sf, tag)
	}

	// json errors report the wire name already
	for i := 0; i < dto.NumField(); i++ {
		if tagName(dto.Field(i), "json") == structField {
			return tagName(dto.Field(i), tag)
		}
	}
	return structField
}

func wireNameOfType(dto reflect.Type, want reflect.Type, tag string) string {
	if dto == nil {
		return ""
	}
	for i := 0; i < dto.NumField(); i++ {
		sf := dto.Field(i)
		if sf.Type == want || (sf.Type.Kind() == reflect.Pointer && sf.Type.Elem() == want) {
			return tagName(sf, tag)
		}
	}
	return ""
}

func tagName(sf reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

// formFieldWithValue finds which submitted form field carried value.
func formFieldWithValue(ctx *gin.Context, value string) string {
	if ctx.Request.MultipartForm != nil {
		for k, vs := range ctx.Request.MultipartForm.Value {
			for _, v := range vs {
				if v == value {
					return k
				}
			}
		}
	}
	for k, vs := range ctx.Request.PostForm {
		for _, v := range vs {
			if v == value {
				return k
			}
		}
	}
	return ""
}

var fieldMessages = map[string]string{
	"email.required":    "is required",
	"email.email":       "must be a valid email address such as name@example.com",
	"password.min":      "must be at least %s characters",
	"password.max":      "must be at most %s characters",
	"role.oneof":        "must be customer or seller",
	"storeName.max":     "must be at most %s characters",
	"price.gt":          "must be greater than zero",
	"price.type":        "must be a decimal amount such as 9.99",
	"quantity.required": "is required; use 0 to list the product as sold out",
	"quantity.min":      "cannot be negative",
	"quantity.max":      "must be at most %s units",
	"productId.uuid":    "must be the id of a listed product",
	"description.max":   "must be at most %s characters",
	"name.max":          "must be at most %s characters",
}

func fieldMessage(field, rule, param string) string {
	if msg, ok := fieldMessages[field+"."+rule]; ok {
		if strings.Contains(msg, "%s") {
			return fmt.Sprintf(msg, param)
		}
		return msg
	}

	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "gt":
		return "must be greater than " + param
	case "uuid":
		return "must be a valid UUID"
	}

	if param != "" {
		return fmt.Sprintf("failed %s validation (%s)", rule, param)
	}
	return "failed " + rule + " validation"
}
