package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/http/handlers"
)

type bindDetails struct {
	JSON   string                `json:"json"`
	Form   string                `json:"form"`
	Field  string                `json:"field"`
	Fields []handlers.FieldError `json:"fields"`
}

func signupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/auth/signup", func(ctx *gin.Context) {
		var req principal.SignUpRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func addProductRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/seller/products", func(ctx *gin.Context) {
		var req product.CreateProductRequest
		if !handlers.BindForm(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func decodeBindError(t *testing.T, w *httptest.ResponseRecorder) (string, bindDetails) {
	t.Helper()

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Code    string      `json:"code"`
			Details bindDetails `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	return resp.Error.Code, resp.Error.Details
}

func fieldsByName(fields []handlers.FieldError) map[string]handlers.FieldError {
	out := make(map[string]handlers.FieldError, len(fields))
	for _, f := range fields {
		out[f.Field] = f
	}
	return out
}

func TestBindJSON_SignupFieldErrors(t *testing.T) {
	body := `{"email":"not-an-email","password":"short","role":"admin","storeName":""}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	signupRouter().ServeHTTP(w, req)

	code, details := decodeBindError(t, w)
	if code != "invalid_request" {
		t.Fatalf("unexpected code %q", code)
	}

	tests := []struct {
		field   string
		rule    string
		message string
	}{
		{field: "email", rule: "email", message: "must be a valid email address such as name@example.com"},
		{field: "password", rule: "min", message: "must be at least 8 characters"},
		{field: "name", rule: "required", message: "is required"},
		{field: "role", rule: "oneof", message: "must be customer or seller"},
	}

	found := fieldsByName(details.Fields)
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fe, ok := found[tt.field]
			if !ok {
				t.Fatalf("missing field error for %q: %+v", tt.field, details.Fields)
			}
			if fe.Rule != tt.rule || fe.Message != tt.message {
				t.Fatalf("got %+v, want rule %q message %q", fe, tt.rule, tt.message)
			}
		})
	}
}

func TestBindJSON_SignupMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	signupRouter().ServeHTTP(w, req)

	_, details := decodeBindError(t, w)
	if details.JSON != "invalid_json_syntax" {
		t.Fatalf("expected invalid_json_syntax, got %+v", details)
	}
}

func TestBindJSON_QuantityTypeMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.PATCH("/seller/products/:id/quantity", func(ctx *gin.Context) {
		var req product.UpdateQuantityRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPatch, "/seller/products/p1/quantity", bytes.NewBufferString(`{"quantity":"ten"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	_, details := decodeBindError(t, w)
	if details.JSON != "invalid_json_type" || details.Field != "quantity" {
		t.Fatalf("unexpected details %+v", details)
	}
	if len(details.Fields) != 1 || details.Fields[0].Rule != "type" {
		t.Fatalf("expected one type error, got %+v", details.Fields)
	}
}

func TestBindForm_AddProductFieldErrors(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{
		"name":     "Saffron",
		"quantity": "-1",
		"price":    "0",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/seller/products", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	addProductRouter().ServeHTTP(w, req)

	_, details := decodeBindError(t, w)
	found := fieldsByName(details.Fields)

	want := map[string]string{
		"quantity":    "cannot be negative",
		"price":       "is required",
		"description": "is required",
	}
	for field, message := range want {
		fe, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, details.Fields)
		}
		if fe.Message != message {
			t.Fatalf("field %q: got message %q, want %q", field, fe.Message, message)
		}
	}
	if _, ok := found["name"]; ok {
		t.Fatalf("name was valid: %+v", details.Fields)
	}
}

func TestBindForm_AddProductBadPrice(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{
		"name":        "Saffron",
		"quantity":    "3",
		"price":       "cheap",
		"description": "threads",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/seller/products", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	addProductRouter().ServeHTTP(w, req)

	_, details := decodeBindError(t, w)
	if details.Form != "invalid_form_type" || details.Field != "price" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Fields[0].Message != "must be a decimal amount such as 9.99" {
		t.Fatalf("unexpected message %q", details.Fields[0].Message)
	}
}

func TestBindForm_AddProductNonNumericQuantity(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{
		"name":        "Saffron",
		"quantity":    "lots",
		"price":       "4.50",
		"description": "threads",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/seller/products", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	addProductRouter().ServeHTTP(w, req)

	_, details := decodeBindError(t, w)
	if details.Form != "invalid_form_type" || details.Field != "quantity" {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Fields[0].Rule != "type" || details.Fields[0].Message != "must be a whole number" {
		t.Fatalf("unexpected field error %+v", details.Fields[0])
	}
}
