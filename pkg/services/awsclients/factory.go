// Package awsclients builds the concrete AWS SDK clients the remediators
// consume through their narrow interfaces. One factory is constructed per
// process from the default credential chain; regional and cross-account
// clients are derived from it per invocation.
package awsclients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/support"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/credentials"
)

// The Support API is only served out of us-east-1.
const supportRegion = "us-east-1"

type Factory struct {
	base  aws.Config
	creds credentials.Provider
}

func NewFactory(base aws.Config, creds credentials.Provider) *Factory {
	return &Factory{base: base, creds: creds}
}

func (f *Factory) RDS(region string) *rds.Client {
	return rds.NewFromConfig(f.base, func(o *rds.Options) {
		if region != "" {
			o.Region = region
		}
	})
}

func (f *Factory) EC2(region string) *ec2.Client {
	return ec2.NewFromConfig(f.base, func(o *ec2.Options) {
		if region != "" {
			o.Region = region
		}
	})
}

func (f *Factory) S3() *s3.Client {
	return s3.NewFromConfig(f.base)
}

// S3ForAccount returns an S3 client acting in the bucket's owning account,
// assuming the configured cross-account role when needed.
func (f *Factory) S3ForAccount(ctx context.Context, accountID string) (*s3.Client, error) {
	scoped, err := f.creds.Scoped(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain credentials for account %s: %w", accountID, err)
	}
	if scoped == nil {
		return f.S3(), nil
	}
	return s3.NewFromConfig(f.base, func(o *s3.Options) {
		o.Credentials = scoped
	}), nil
}

func (f *Factory) IAM() *iam.Client {
	return iam.NewFromConfig(f.base)
}

func (f *Factory) CloudTrail() *cloudtrail.Client {
	return cloudtrail.NewFromConfig(f.base)
}

func (f *Factory) SNS() *sns.Client {
	return sns.NewFromConfig(f.base)
}

func (f *Factory) STS() *sts.Client {
	return sts.NewFromConfig(f.base)
}

func (f *Factory) Support() *support.Client {
	return support.NewFromConfig(f.base, func(o *support.Options) {
		o.Region = supportRegion
	})
}
