package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

// NewTestBucket creates a uniquely named bucket and empties then removes it
// when t ends.
func NewTestBucket(t testing.TB, client *minio.Client, prefix string) string {
	t.Helper()
	ctx := context.Background()
	name := fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())

	if err := client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
		t.Fatalf("create bucket %s: %v", name, err)
	}
	t.Cleanup(func() {
		keys, err := ObjectKeys(client, name)
		if err != nil {
			t.Logf("list %s: %v", name, err)
		}
		for _, k := range keys {
			_ = client.RemoveObject(ctx, name, k, minio.RemoveObjectOptions{})
		}
		if err := client.RemoveBucket(ctx, name); err != nil {
			t.Logf("remove bucket %s: %v", name, err)
		}
	})
	return name
}

// ObjectKeys lists every key stored in a bucket.
func ObjectKeys(client *minio.Client, bucket string) ([]string, error) {
	var keys []string
	for obj := range client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
