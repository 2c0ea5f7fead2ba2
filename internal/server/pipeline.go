package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/seasworth/seasworthai/internal/api"
	"github.com/seasworth/seasworthai/internal/config"
)

// endpoint describes one proxied capability. The shared executor guards the
// credential, binds and validates Req, calls out and renders Resp.
type endpoint[Req, Resp any] struct {
	name string
	// credential is checked on every request; empty means none is needed.
	credential config.Credential
	call       func(ctx context.Context, apiKey string, req Req) (Resp, error)
}

// handle builds the gin handler for ep. Failures are attached with c.Error
// and rendered by errorEnvelope.
func handle[Req, Resp any](s *Server, ep endpoint[Req, Resp]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var apiKey string
		if ep.credential != "" {
			key, ok := s.config.Credentials.Lookup(ep.credential)
			if !ok {
				_ = c.Error(api.ErrConfiguration(string(ep.credential)))
				return
			}
			apiKey = key
		}

		var req Req
		if err := bindRequest(c, &req); err != nil {
			_ = c.Error(err)
			return
		}

		resp, err := ep.call(c.Request.Context(), apiKey, req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		loggerFrom(c).Debug("Request completed", "endpoint", ep.name)
		c.JSON(http.StatusOK, resp)
	}
}

// bindRequest decodes the query string (GET) or JSON body into req and runs
// the binding validator. Validation failures echo what was received.
func bindRequest(c *gin.Context, req any) error {
	registerFieldNames()

	if c.Request.Method == http.MethodGet {
		received := c.Request.URL.Query()
		if err := c.ShouldBindQuery(req); err != nil {
			return validationError(err, received)
		}
		return nil
	}

	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return api.ErrRequestTooLarge(tooLarge.Limit)
		}
		return api.WrapError(err, http.StatusBadRequest, "Failed to read request body.")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		return api.ErrBadRequest("Invalid JSON body.")
	}
	received := json.RawMessage(raw)

	if err := json.Unmarshal(raw, req); err != nil {
		return api.ErrValidation("Invalid request body.", received)
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return validationError(err, received)
	}
	return nil
}

func validationError(err error, received any) *api.StatusError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return api.ErrValidation(describeFieldError(verrs[0]), received)
	}
	return api.ErrValidation("Invalid request.", received)
}

// describeFieldError renders e.g. "message is required." or
// "messages[0].role must be one of: system user assistant."
func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	case "url":
		return field + " must be a valid URL."
	default:
		return field + " is invalid."
	}
}

var fieldNamesOnce sync.Once

// registerFieldNames makes validation errors use JSON field names.
func registerFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
}
