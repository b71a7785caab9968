package metrics

import (
	"time"

	obserrors "github.com/hirewire/hirewire-api/internal/observability/errors"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// TransitionMetric captures details about a lifecycle transition for metric emission.
type TransitionMetric struct {
	Entity     string
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitTransition emits standardised lifecycle transition metrics.
func EmitTransition(sink statsd.Sink, in TransitionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"entity":     in.Entity,
		"transition": in.Transition,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("lifecycle.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("lifecycle.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
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
