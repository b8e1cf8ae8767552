// Package metrics names the counters and timings the back office emits.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/noe-create/medidhub-cpv-sub001/internal/observability/errors"
	"github.com/noe-create/medidhub-cpv-sub001/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// LoginMetric describes one login attempt.
type LoginMetric struct {
	// Method is "password" or "external".
	Method string
	// Reason labels an expected failure (e.g. "invalid_credentials"). Empty with a
	// non-nil Err means an unexpected error.
	Reason   string
	Err      error
	Duration time.Duration
}

// EmitLogin counts the attempt and records its latency.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"method": in.Method, "result": ResultSuccess}
	switch {
	case in.Reason != "":
		tags["result"] = ResultFailure
		tags["reason"] = in.Reason
	case in.Err != nil:
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("auth.login", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.login.duration", in.Duration, CloneTags(tags))
	}
}

// EmitDenied counts a permission the gate refused to a logged-in user.
func EmitDenied(sink statsd.Sink, permission string) {
	if sink == nil {
		return
	}
	sink.Count("auth.denied", 1, map[string]string{"permission": permission})
}

// RequestMetric describes one HTTP request. Route must be a bounded label, never a raw path.
type RequestMetric struct {
	Method   string
	Route    string
	Status   int
	Duration time.Duration
}

// EmitRequest counts the request and records its latency.
func EmitRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"method":       in.Method,
		"route":        in.Route,
		"status_class": strconv.Itoa(in.Status/100) + "xx",
	}
	sink.Count("http.request", 1, tags)
	sink.Timing("http.request.duration", in.Duration, CloneTags(tags))
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
