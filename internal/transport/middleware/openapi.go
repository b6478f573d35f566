package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

// LoadOpenAPI parses and validates an OpenAPI 3 document.
func LoadOpenAPI(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIValidator checks requests under prefix against doc before they
// reach a handler. Paths the document does not describe pass through so the
// router can answer 404 or 405 itself.
func OpenAPIValidator(doc *openapi3.T, prefix string, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	// paths are matched after the prefix is stripped, so servers must not
	// take part in routing
	routed := *doc
	routed.Servers = nil

	router, err := legacyrouter.NewRouter(&routed)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	base := transport.NewBaseHandler(logger)
	options := &openapi3filter.Options{MultiError: false}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			probe := r.Clone(r.Context())
			probe.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
			probe.URL.RawPath = ""

			route, pathParams, err := router.FindRoute(probe)
			if err != nil {
				var routeErr *routers.RouteError
				if !errors.As(err, &routeErr) {
					logger.Warn("openapi route lookup failed", "error", err, "path", r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil && r.Body != http.NoBody {
				body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
				if err != nil {
					base.WriteAppError(w, internal.NewValidationError("failed to read request body", internal.ErrCodeInvalidBody))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				probe.Body = io.NopCloser(bytes.NewReader(body))
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    probe,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("request rejected by openapi validation",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"trace_id", internal.TraceIDFromContext(r.Context()))
				base.WriteAppError(w, requestValidationError(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func requestValidationError(err error) *internal.AppError {
	field := "request"
	message := err.Error()
	code := internal.ErrCodeValidationFailed

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			field = reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			field = "body"
			code = internal.ErrCodeInvalidBody
		}
		if reqErr.Reason != "" {
			message = reqErr.Reason
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			if path := schemaErr.JSONPointer(); len(path) > 0 {
				field = strings.Join(path, ".")
			}
			message = fmt.Sprintf("%s %s", field, schemaErr.Reason)
		}
	}

	return internal.NewValidationFieldError(field, message, code)
}
