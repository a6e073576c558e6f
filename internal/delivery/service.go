// Package delivery stores audio assets as one object per bitrate, resolves which
// variant a subscription tier streams, and keeps the CDN in front of them consistent.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

const (
	DefaultRegion         = "us-east-1"
	DefaultExtension      = "mp3"
	PresignedUploadExpiry = time.Hour

	defaultCallTimeout = 30 * time.Second
	defaultMaxRetries  = 2
)

// DefaultBitrates are the variants produced when a caller does not ask for specific ones.
var DefaultBitrates = []int{128, 192, 320}

// Options configures a Service. Store is nil when no storage credentials are available.
type Options struct {
	Store      port.ObjectStore
	CDN        port.CDN
	Transcoder port.Transcoder
	Observer   port.DeliveryObserver

	BucketName     string
	DistributionID string
	Region         string
	Bitrates       []int

	// MaxRetries bounds retries of a single variant write. Zero means the default, negative disables.
	MaxRetries  int
	CallTimeout time.Duration
	NewBackOff  func() backoff.BackOff
	Now         func() time.Time
}

// Service is the tiered media storage service. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	store      port.ObjectStore
	cdn        port.CDN
	transcoder port.Transcoder
	observer   port.DeliveryObserver

	bucketName     string
	distributionID string
	region         string
	bitrates       []int

	callTimeout time.Duration
	maxRetries  int
	newBackOff  func() backoff.BackOff
	now         func() time.Time
}

// compile-time check: *Service must satisfy port.MediaDelivery
var _ port.MediaDelivery = (*Service)(nil)

func New(opts Options) *Service {
	s := &Service{
		store:          opts.Store,
		cdn:            opts.CDN,
		transcoder:     opts.Transcoder,
		observer:       opts.Observer,
		bucketName:     opts.BucketName,
		distributionID: opts.DistributionID,
		region:         opts.Region,
		callTimeout:    opts.CallTimeout,
		maxRetries:     opts.MaxRetries,
		newBackOff:     opts.NewBackOff,
		now:            opts.Now,
	}
	if s.observer == nil {
		s.observer = noopObserver{}
	}
	if s.region == "" {
		s.region = DefaultRegion
	}
	if s.callTimeout <= 0 {
		s.callTimeout = defaultCallTimeout
	}
	switch {
	case s.maxRetries < 0:
		s.maxRetries = 0
	case s.maxRetries == 0:
		s.maxRetries = defaultMaxRetries
	}
	if s.newBackOff == nil {
		s.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 10 * time.Second
			return b
		}
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.bitrates = uniqueSorted(opts.Bitrates)
	if len(s.bitrates) == 0 {
		s.bitrates = append([]int(nil), DefaultBitrates...)
	}

	return s
}

// IsAvailable reports whether storage credentials and a bucket were configured.
func (s *Service) IsAvailable() bool {
	return s.store != nil && s.bucketName != ""
}

// Bitrates returns the configured bitrate set, lowest first.
func (s *Service) Bitrates() []int {
	return append([]int(nil), s.bitrates...)
}

// ObjectKey is the only place object keys are built.
func ObjectKey(bitrate int, assetID, extension string) string {
	return fmt.Sprintf("music/%dkbps/%s.%s", bitrate, assetID, extension)
}

func (s *Service) publicURL(key string) string {
	if s.distributionID != "" {
		return fmt.Sprintf("https://%s.cloudfront.net/%s", s.distributionID, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}

// requestedBitrates falls back to the configured set and rejects bitrates outside of it.
func (s *Service) requestedBitrates(bitrates []int) ([]int, error) {
	if len(bitrates) == 0 {
		return s.Bitrates(), nil
	}
	for _, b := range bitrates {
		if !s.supports(b) {
			return nil, fmt.Errorf("%w: %d kbps is not one of %v", ErrInvalidBitrate, b, s.bitrates)
		}
	}
	return uniqueSorted(bitrates), nil
}

// deletableBitrates accepts any positive bitrate so directories of a former configuration can be cleaned.
func (s *Service) deletableBitrates(bitrates []int) ([]int, error) {
	if len(bitrates) == 0 {
		return s.Bitrates(), nil
	}
	for _, b := range bitrates {
		if b <= 0 {
			return nil, fmt.Errorf("%w: %d kbps", ErrInvalidBitrate, b)
		}
	}
	return uniqueSorted(bitrates), nil
}

func (s *Service) supports(bitrate int) bool {
	i := sort.SearchInts(s.bitrates, bitrate)
	return i < len(s.bitrates) && s.bitrates[i] == bitrate
}

func (s *Service) retry(ctx context.Context, op func(ctx context.Context) error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.maxRetries)), ctx)
	return backoff.Retry(func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		err := op(callCtx)
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrBucketNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

func uniqueSorted(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, b := range in {
		if b <= 0 {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

type noopObserver struct{}

func (noopObserver) RecordUpload(int, time.Duration, int, error) {}
func (noopObserver) RecordDelete(int, time.Duration, error)      {}
func (noopObserver) RecordInvalidation(time.Duration, error)     {}
