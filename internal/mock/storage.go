package mock

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// Storage implements port.ObjectStore for tests. Safe for concurrent use.
type Storage struct {
	mu sync.Mutex

	// stored values
	Objects    map[string][]byte
	Options    map[string]port.SaveOptions
	Removed    []string
	PresignURL string

	// captured inputs
	Bucket    string
	ObjectKey string
	TTL       time.Duration

	// errors, per object key where it applies
	GenerateUploadLinkErr error
	SaveErrs              map[string]error
	RemoveErrs            map[string]error
	StatErrs              map[string]error
	// MissingErr is what StatFile returns for absent keys
	MissingErr error
	// StatSizes overrides the reported size of a key
	StatSizes map[string]int64
	// SaveFailures makes the first n writes of a key fail with ErrTransient
	SaveFailures map[string]int
	ErrTransient error
	// BlockSave makes writes wait for their context to end
	BlockSave bool

	// call counters
	GenerateUploadLinkCalled bool
	SaveCalls                map[string]int
	RemoveCalls              int
	StatCalls                int
}

func (m *Storage) GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateUploadLinkCalled = true
	m.Bucket = bucket
	m.ObjectKey = fileKey
	m.TTL = expiry
	if m.GenerateUploadLinkErr != nil {
		return "", m.GenerateUploadLinkErr
	}
	if m.PresignURL != "" {
		return m.PresignURL, nil
	}
	return "https://example.com/upload/" + fileKey, nil
}

func (m *Storage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts port.SaveOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.SaveCalls == nil {
		m.SaveCalls = map[string]int{}
	}
	m.SaveCalls[fileKey]++
	m.Bucket = bucket
	block := m.BlockSave
	err = m.SaveErrs[fileKey]
	if err == nil && m.SaveFailures[fileKey] > 0 {
		m.SaveFailures[fileKey]--
		err = m.ErrTransient
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
		m.Options = map[string]port.SaveOptions{}
	}
	m.Objects[fileKey] = data
	m.Options[fileKey] = opts
	return nil
}

func (m *Storage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls++
	m.Bucket = bucket
	if err := m.RemoveErrs[fileKey]; err != nil {
		return err
	}
	m.Removed = append(m.Removed, fileKey)
	delete(m.Objects, fileKey)
	return nil
}

func (m *Storage) StatFile(ctx context.Context, bucket, fileKey string) (port.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatCalls++
	m.Bucket = bucket
	if err := m.StatErrs[fileKey]; err != nil {
		return port.ObjectInfo{}, err
	}
	data, ok := m.Objects[fileKey]
	if !ok {
		if m.MissingErr != nil {
			return port.ObjectInfo{}, m.MissingErr
		}
		return port.ObjectInfo{}, errors.New("object not found")
	}
	info := port.ObjectInfo{Size: int64(len(data)), ContentType: m.Options[fileKey].ContentType}
	if size, ok := m.StatSizes[fileKey]; ok {
		info.Size = size
	}
	return info, nil
}

// Put stores an object the way a client writing through a presigned link would.
func (m *Storage) Put(fileKey string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
		m.Options = map[string]port.SaveOptions{}
	}
	m.Objects[fileKey] = data
	m.Options[fileKey] = port.SaveOptions{ContentType: contentType}
}

// Keys returns the stored object keys, sorted.
func (m *Storage) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RemovedKeys returns the removed object keys, sorted.
func (m *Storage) RemovedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := append([]string(nil), m.Removed...)
	sort.Strings(keys)
	return keys
}
