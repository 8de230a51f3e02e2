package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const sessionName = "TrustedAdvisorRemediation"

// AssumeRoleAPI is the STS surface the provider depends on.
type AssumeRoleAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput,
		optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Provider yields scoped credentials for a target account. A nil credentials
// provider means the invoker's own credentials are sufficient.
type Provider interface {
	CallerAccount() string
	Scoped(ctx context.Context, accountID string) (aws.CredentialsProvider, error)
}

// STSProvider assumes the configured cross-account role. The assume call
// carries the caller's own account id as the ExternalId, so a third party
// cannot trick the trust relationship into acting on their behalf.
type STSProvider struct {
	client        AssumeRoleAPI
	roleName      string
	callerAccount string
}

// NewSTSProvider resolves the caller identity once and keeps it for both the
// same-account short circuit and the ExternalId.
func NewSTSProvider(ctx context.Context, client AssumeRoleAPI, roleName string) (*STSProvider, error) {
	identity, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller identity: %w", err)
	}

	return &STSProvider{
		client:        client,
		roleName:      roleName,
		callerAccount: aws.ToString(identity.Account),
	}, nil
}

func (p *STSProvider) CallerAccount() string {
	return p.callerAccount
}

// Scoped returns credentials for accountID. The caller's own account needs no
// assumption and yields a nil provider.
func (p *STSProvider) Scoped(ctx context.Context, accountID string) (aws.CredentialsProvider, error) {
	if accountID == "" || accountID == p.callerAccount {
		return nil, nil
	}

	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, p.roleName)
	out, err := p.client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
		ExternalId:      aws.String(p.callerAccount),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role in account %s: %w", accountID, err)
	}

	creds := out.Credentials
	return awscreds.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	), nil
}
