package mock

import (
	"sync"
	"time"
)

// Observer implements port.DeliveryObserver for tests.
type Observer struct {
	mu sync.Mutex

	Uploads       []int
	UploadErrs    int
	Deletes       []int
	DeleteErrs    int
	Invalidations int
}

func (o *Observer) RecordUpload(bitrate int, _ time.Duration, _ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Uploads = append(o.Uploads, bitrate)
	if err != nil {
		o.UploadErrs++
	}
}

func (o *Observer) RecordDelete(bitrate int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Deletes = append(o.Deletes, bitrate)
	if err != nil {
		o.DeleteErrs++
	}
}

func (o *Observer) RecordInvalidation(time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Invalidations++
}
