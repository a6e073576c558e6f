package storage

import (
	"fmt"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/minio/minio-go/v7"
)

var s3CodeErrors = map[string]error{
	"NoSuchKey":             delivery.ErrObjectNotFound,
	"NoSuchBucket":          delivery.ErrBucketNotFound,
	"AccessDenied":          delivery.ErrUnauthorized,
	"InvalidAccessKeyId":    delivery.ErrUnauthorized,
	"SignatureDoesNotMatch": delivery.ErrUnauthorized,
	"ExpiredToken":          delivery.ErrUnauthorized,
}

// classifyS3Err turns client errors into the delivery sentinels, first by S3
// error code, then by HTTP status. Anything unrecognised becomes ErrInternal
// with the cause still wrapped, so context errors stay matchable.
func classifyS3Err(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if sentinel, ok := s3CodeErrors[resp.Code]; ok {
		return sentinel
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return delivery.ErrObjectNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return delivery.ErrUnauthorized
	}
	return fmt.Errorf("%w: %w", delivery.ErrInternal, err)
}

func isS3Code(err error, code string) bool {
	return minio.ToErrorResponse(err).Code == code
}
