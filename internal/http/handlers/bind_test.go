package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/parcelhub/parcelhub/internal/http/handlers"
)

type bindTarget struct {
	Email  string  `json:"email" binding:"required,email"`
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

type errBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []handlers.FieldError `json:"fields"`
			JSON   string                `json:"json"`
		} `json:"details"`
	} `json:"error"`
}

func bindProbe() *gin.Engine {
	r := gin.New()

	r.POST("/probe", func(ctx *gin.Context) {
		var target bindTarget

		if !handlers.BindJSON(ctx, &target) {
			return
		}

		ctx.Status(http.StatusNoContent)
	})

	return r
}

func TestBindJSON(t *testing.T) {
	r := bindProbe()

	t.Run("valid_body_passes_through", func(t *testing.T) {
		w := postJSON(r, "/probe", `{"email":"a@x.com","weight":1.5}`)

		if w.Code != http.StatusNoContent {
			t.Fatalf("got status %d, want 204, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("field_errors_use_json_names", func(t *testing.T) {
		w := postJSON(r, "/probe", `{"email":"not-an-email","weight":0}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
		}

		var body errBody

		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal error body: %v", err)
		}

		if body.Error.Code != "invalid_request" {
			t.Fatalf("got code %q, want invalid_request", body.Error.Code)
		}

		byField := make(map[string]handlers.FieldError)

		for _, fe := range body.Error.Details.Fields {
			byField[fe.Field] = fe
		}

		if fe, ok := byField["email"]; !ok || fe.Rule != "email" {
			t.Fatalf("missing email field error, got %+v", body.Error.Details.Fields)
		}

		if fe, ok := byField["weight"]; !ok || fe.Rule != "required" {
			// zero value trips `required` before `gt`
			t.Fatalf("missing weight field error, got %+v", body.Error.Details.Fields)
		}
	})

	t.Run("syntax_error", func(t *testing.T) {
		w := postJSON(r, "/probe", `{"email": "a@x.com",`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400", w.Code)
		}
	})

	t.Run("type_mismatch_names_field", func(t *testing.T) {
		w := postJSON(r, "/probe", `{"email":"a@x.com","weight":"heavy"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400", w.Code)
		}

		var body errBody

		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal error body: %v", err)
		}

		if body.Error.Details.JSON != "invalid_json_type" {
			t.Fatalf("got details.json %q, want invalid_json_type", body.Error.Details.JSON)
		}
	})
}
