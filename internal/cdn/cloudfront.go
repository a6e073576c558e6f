package cdn

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

var ErrDistributionNotFound = errors.New("cdn: distribution not found")

type cloudFrontClient interface {
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

type CloudFront struct {
	client         cloudFrontClient
	distributionID string
}

// compile-time check: *CloudFront must satisfy port.CDN
var _ port.CDN = (*CloudFront)(nil)

func NewCloudFront(distributionID, region, accessKey, secretKey string) *CloudFront {
	client := cloudfront.New(cloudfront.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	})
	return &CloudFront{client: client, distributionID: distributionID}
}

func (c *CloudFront) Invalidate(ctx context.Context, callerReference string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	logger.Debugf(ctx, "invalidating %d paths on distribution %q...", len(paths), c.distributionID)

	out, err := c.client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(c.distributionID),
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: aws.String(callerReference),
			Paths: &types.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	if err != nil {
		return mapCloudFrontErr(err)
	}

	if out.Invalidation != nil {
		logger.Debugf(ctx, "invalidation %s is %s", aws.ToString(out.Invalidation.Id), aws.ToString(out.Invalidation.Status))
	}
	return nil
}

func mapCloudFrontErr(err error) error {
	var denied *types.AccessDenied
	var missing *types.NoSuchDistribution
	switch {
	case errors.As(err, &denied):
		return fmt.Errorf("%w: %v", delivery.ErrUnauthorized, err)
	case errors.As(err, &missing):
		return fmt.Errorf("%w: %v", ErrDistributionNotFound, err)
	default:
		return fmt.Errorf("cdn: create invalidation: %w", err)
	}
}
