package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanKeyPrefixes are the namespaces set by the pipeline ("dataset.",
// "aggregate."), the failure paths ("error."), the HTTP middleware ("http.")
// and the MCP tool wrappers ("mcp.").
var spanKeyPrefixes = []string{
	"dataset.",
	"aggregate.",
	"error.",
	"http.",
	"mcp.",
}

// spanKeys are exact keys allowed outside those namespaces.
var spanKeys = map[string]bool{
	"error": true,
}

// privateKeyPrefixes carry respondent data and are stripped even when a
// caller nests them under an allowed namespace.
var privateKeyPrefixes = []string{
	"user.",
	"respondent.",
}

var privateKeys = map[string]bool{
	"email":         true,
	"request.body":  true,
	"response.body": true,
}

type keyVerdict int

const (
	keyAllowed keyVerdict = iota
	keyPrivate
	keyUnknown
)

func (v keyVerdict) String() string {
	switch v {
	case keyAllowed:
		return "allowed"
	case keyPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// classifyKey decides whether an attribute key may leave the process.
// Private keys win over allowed namespaces.
func classifyKey(key string) keyVerdict {
	if privateKeys[key] || hasAnyPrefix(key, privateKeyPrefixes) || hasAnySegment(key, privateKeyPrefixes) {
		return keyPrivate
	}

	if spanKeys[key] || hasAnyPrefix(key, spanKeyPrefixes) {
		return keyAllowed
	}

	return keyUnknown
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// hasAnySegment reports whether a private namespace appears after the first
// dot, as in "dataset.respondent.id".
func hasAnySegment(key string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.Contains(key, "."+prefix) {
			return true
		}
	}

	return false
}

// attributeFilter strips span attributes outside the known namespaces
// before the delegate exports them.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
}

// NewAttributeFilter wraps delegate so exported spans only carry dataset,
// aggregate, error, http and mcp attributes. Respondent data is always
// stripped. A non-nil logger receives one warning per dropped key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) keep(spanName, key string) bool {
	verdict := classifyKey(key)
	if verdict == keyAllowed {
		return true
	}

	if f.logger != nil {
		f.logger.Warn("span attribute dropped", "span", spanName, "key", key, "verdict", verdict.String())
	}

	return false
}

// filteredSpan is a read-only view exposing the kept attributes only.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.keep(s.Name(), string(kv.Key)) {
			kept = append(kept, kv)
		}
	}

	return kept
}
