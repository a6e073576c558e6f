package track

import (
	"context"
	"sort"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// mergeBitrates returns the union of sets, lowest first.
func mergeBitrates(sets ...[]int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, set := range sets {
		for _, b := range set {
			if _, ok := seen[b]; ok || b <= 0 {
				continue
			}
			seen[b] = struct{}{}
			out = append(out, b)
		}
	}
	sort.Ints(out)
	return out
}

// droppedBitrates lists the bitrates of previous that current no longer has.
func droppedBitrates(previous, current model.Variants) []int {
	var out []int
	for _, b := range previous.Bitrates() {
		if _, ok := current[b]; !ok {
			out = append(out, b)
		}
	}
	return out
}

// sharedBitrates lists the requested bitrates that previous already serves.
// An empty request stands for every configured bitrate.
func sharedBitrates(previous model.Variants, requested, configured []int) []int {
	if len(requested) == 0 {
		requested = configured
	}
	var out []int
	for _, b := range mergeBitrates(requested) {
		if _, ok := previous[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// queueInvalidation hands a failed CDN invalidation to the worker and reports whether it was queued.
func queueInvalidation(ctx context.Context, dispatcher port.TaskDispatcher, invErr *delivery.InvalidationFailedError) bool {
	logger.Warnf(ctx, "⚠️  %v, queuing a retry", invErr)
	if err := dispatcher.EnqueueInvalidation(ctx, invErr.AssetID, invErr.Paths); err != nil {
		logger.Errorf(ctx, "❌  could not queue cdn invalidation for %q: %v", invErr.AssetID, err)
		return false
	}
	return true
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
