// Package gofeatureflag provides an OpenFeature provider backed by the
// GO Feature Flag relay proxy.
//
// Example:
//
//	provider, err := gofeatureflag.New(
//	    gofeatureflag.WithEndpoint("http://localhost:1031"),
//	    gofeatureflag.WithTimeout(5 * time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	openfeature.SetProvider(provider)
//	client := openfeature.NewClient("my-app")
//
//	enabled, _ := client.BooleanValue(ctx, "new-feature", false,
//	    openfeature.NewEvaluationContext("user-123", map[string]any{"admin": true}))
//
// Evaluations never fail the host application: transport and backend errors
// resolve to the caller's default value, with the error reported in the
// resolution detail.
package gofeatureflag

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/open-feature/go-sdk/openfeature"

	"github.com/lcampit/gofeatureflag-provider/internal/goffapi"
	"github.com/lcampit/gofeatureflag-provider/internal/telemetry"
)

const providerName = "GO Feature Flag"

// Provider is an OpenFeature provider that resolves flags by calling the
// GO Feature Flag relay proxy. It holds no per-flag or per-subject state:
// every evaluation is an independent request/response exchange, so a single
// Provider is safe for concurrent use from any number of goroutines.
type Provider struct {
	client    goffapi.Client
	telemetry *telemetry.OTelProvider
}

var _ openfeature.FeatureProvider = (*Provider)(nil)

// New creates a new GO Feature Flag provider with the given options.
// An endpoint is required; see WithEndpoint.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tel, err := telemetry.NewOTel()
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: goffapi.NewHTTPClient(goffapi.Config{
			Endpoint:   cfg.endpoint,
			APIKey:     cfg.apiKey,
			Timeout:    cfg.timeout,
			Headers:    cfg.headers,
			HTTPClient: cfg.httpClient,
		}),
		telemetry: tel,
	}, nil
}

// Metadata returns the metadata of the provider.
func (p *Provider) Metadata() openfeature.Metadata {
	return openfeature.Metadata{Name: providerName}
}

// Hooks returns the hooks attached to the provider. There are none.
func (p *Provider) Hooks() []openfeature.Hook {
	return nil
}

// BooleanEvaluation resolves a boolean flag.
func (p *Provider) BooleanEvaluation(ctx context.Context, flag string, defaultValue bool, evalCtx openfeature.FlattenedContext) openfeature.BoolResolutionDetail {
	value, detail := resolve(ctx, p, flag, defaultValue, evalCtx, "boolean", coerceBool)
	return openfeature.BoolResolutionDetail{Value: value, ProviderResolutionDetail: detail}
}

// StringEvaluation resolves a string flag.
func (p *Provider) StringEvaluation(ctx context.Context, flag string, defaultValue string, evalCtx openfeature.FlattenedContext) openfeature.StringResolutionDetail {
	value, detail := resolve(ctx, p, flag, defaultValue, evalCtx, "string", coerceString)
	return openfeature.StringResolutionDetail{Value: value, ProviderResolutionDetail: detail}
}

// FloatEvaluation resolves a float flag.
func (p *Provider) FloatEvaluation(ctx context.Context, flag string, defaultValue float64, evalCtx openfeature.FlattenedContext) openfeature.FloatResolutionDetail {
	value, detail := resolve(ctx, p, flag, defaultValue, evalCtx, "float", coerceFloat)
	return openfeature.FloatResolutionDetail{Value: value, ProviderResolutionDetail: detail}
}

// IntEvaluation resolves an integer flag. JSON numbers carrying a fractional
// part do not coerce to int and report a type mismatch.
func (p *Provider) IntEvaluation(ctx context.Context, flag string, defaultValue int64, evalCtx openfeature.FlattenedContext) openfeature.IntResolutionDetail {
	value, detail := resolve(ctx, p, flag, defaultValue, evalCtx, "int", coerceInt)
	return openfeature.IntResolutionDetail{Value: value, ProviderResolutionDetail: detail}
}

// ObjectEvaluation resolves a structured flag.
func (p *Provider) ObjectEvaluation(ctx context.Context, flag string, defaultValue any, evalCtx openfeature.FlattenedContext) openfeature.InterfaceResolutionDetail {
	value, detail := resolve(ctx, p, flag, defaultValue, evalCtx, "object", coerceObject)
	return openfeature.InterfaceResolutionDetail{Value: value, ProviderResolutionDetail: detail}
}

// resolve is the single evaluation path shared by every flag type. It
// validates inputs before any network call, performs one request against the
// relay proxy, and maps the response into a resolution detail. All failures
// after validation degrade to the caller's default value.
func resolve[T any](ctx context.Context, p *Provider, flag string, defaultValue T, evalCtx openfeature.FlattenedContext, flagType string, coerce func(any) (T, bool)) (T, openfeature.ProviderResolutionDetail) {
	start := time.Now()
	ctx, span := p.telemetry.StartEvaluation(ctx, flag, flagType)
	defer span.End()

	if flag == "" {
		err := &InvalidFlagKeyError{}
		span.RecordError(err)
		p.telemetry.RecordError(ctx, flag, string(openfeature.GeneralCode))
		return defaultValue, openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewGeneralResolutionError(err.Error()),
			Reason:          openfeature.ErrorReason,
		}
	}

	targetingKey, err := targetingKeyFromContext(evalCtx)
	if err != nil {
		span.RecordError(err)
		p.telemetry.RecordError(ctx, flag, string(openfeature.TargetingKeyMissingCode))
		return defaultValue, openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewTargetingKeyMissingResolutionError(err.Error()),
			Reason:          openfeature.ErrorReason,
		}
	}

	req := goffapi.EvalRequest{
		User:         goffapi.NewUser(targetingKey, attributes(evalCtx)),
		DefaultValue: defaultValue,
	}

	resp, err := p.client.EvaluateFlag(ctx, flag, req)
	if err != nil {
		span.RecordError(err)
		resErr := resolutionErrorForTransport(err)
		p.telemetry.RecordError(ctx, flag, string(openfeature.GeneralCode))
		return defaultValue, openfeature.ProviderResolutionDetail{
			ResolutionError: resErr,
			Reason:          openfeature.ErrorReason,
		}
	}

	if resp.ErrorCode != "" {
		p.telemetry.RecordError(ctx, flag, resp.ErrorCode)
		return defaultValue, openfeature.ProviderResolutionDetail{
			ResolutionError: resolutionErrorForCode(resp.ErrorCode, flag),
			Reason:          openfeature.ErrorReason,
		}
	}

	// A disabled flag resolves to the caller's default without an error.
	if resp.Reason == string(openfeature.DisabledReason) {
		p.telemetry.RecordEvaluation(ctx, flag, resp.Reason, time.Since(start))
		return defaultValue, openfeature.ProviderResolutionDetail{
			Reason: openfeature.DisabledReason,
		}
	}

	value, ok := coerce(resp.Value)
	if !ok {
		mismatch := &TypeMismatchError{FlagKey: flag, Expected: flagType}
		span.RecordError(mismatch)
		p.telemetry.RecordError(ctx, flag, string(openfeature.TypeMismatchCode))
		return defaultValue, openfeature.ProviderResolutionDetail{
			ResolutionError: openfeature.NewTypeMismatchResolutionError(mismatch.Error()),
			Reason:          openfeature.ErrorReason,
		}
	}

	p.telemetry.RecordEvaluation(ctx, flag, resp.Reason, time.Since(start))
	return value, openfeature.ProviderResolutionDetail{
		Variant: resp.VariationType,
		Reason:  openfeature.Reason(resp.Reason),
	}
}

// targetingKeyFromContext extracts the mandatory targeting key.
func targetingKeyFromContext(evalCtx openfeature.FlattenedContext) (string, error) {
	v, ok := evalCtx[openfeature.TargetingKey]
	if !ok {
		return "", &TargetingKeyMissingError{}
	}
	key, ok := v.(string)
	if !ok || key == "" {
		return "", &TargetingKeyMissingError{}
	}
	return key, nil
}

// attributes returns the context attributes without the targeting key.
func attributes(evalCtx openfeature.FlattenedContext) map[string]any {
	attrs := make(map[string]any, len(evalCtx))
	for k, v := range evalCtx {
		if k == openfeature.TargetingKey {
			continue
		}
		attrs[k] = v
	}
	return attrs
}

// resolutionErrorForTransport classifies a failed network exchange.
func resolutionErrorForTransport(err error) openfeature.ResolutionError {
	var httpErr *goffapi.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return openfeature.NewFlagNotFoundResolutionError(httpErr.Error())
		case http.StatusUnauthorized, http.StatusForbidden:
			return openfeature.NewGeneralResolutionError("authentication/authorization error")
		default:
			return openfeature.NewGeneralResolutionError(httpErr.Error())
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return openfeature.NewGeneralResolutionError("evaluation request timed out")
	}
	return openfeature.NewGeneralResolutionError(err.Error())
}

// resolutionErrorForCode maps a relay proxy error code to a resolution error.
func resolutionErrorForCode(code, flag string) openfeature.ResolutionError {
	switch openfeature.ErrorCode(code) {
	case openfeature.FlagNotFoundCode:
		return openfeature.NewFlagNotFoundResolutionError("flag " + flag + " was not found")
	case openfeature.TypeMismatchCode:
		return openfeature.NewTypeMismatchResolutionError("flag " + flag + " resolved to an unexpected type")
	case openfeature.ParseErrorCode:
		return openfeature.NewParseErrorResolutionError("flag " + flag + " configuration could not be parsed")
	case openfeature.TargetingKeyMissingCode:
		return openfeature.NewTargetingKeyMissingResolutionError((&TargetingKeyMissingError{}).Error())
	case openfeature.InvalidContextCode:
		return openfeature.NewInvalidContextResolutionError("evaluation context rejected by the relay proxy")
	case openfeature.ProviderNotReadyCode:
		return openfeature.NewProviderNotReadyResolutionError("relay proxy is not ready")
	default:
		return openfeature.NewGeneralResolutionError("flag " + flag + " evaluation failed: " + code)
	}
}

func coerceBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func coerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		// JSON numbers decode as float64; only whole numbers are ints.
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func coerceObject(v any) (any, bool) {
	return v, true
}
