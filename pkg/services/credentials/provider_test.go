package credentials

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAssumeRoleAPI struct {
	mock.Mock
}

func (m *mockAssumeRoleAPI) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput,
	optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sts.AssumeRoleOutput), args.Error(1)
}

func (m *mockAssumeRoleAPI) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput,
	optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sts.GetCallerIdentityOutput), args.Error(1)
}

func newProviderFixture(t *testing.T) (*STSProvider, *mockAssumeRoleAPI) {
	t.Helper()
	client := new(mockAssumeRoleAPI)
	client.On("GetCallerIdentity", mock.Anything, mock.Anything).
		Return(&sts.GetCallerIdentityOutput{Account: aws.String("111122223333")}, nil)

	provider, err := NewSTSProvider(context.Background(), client, "CrossAccountS3AccessRole")
	require.NoError(t, err)
	return provider, client
}

func TestSTSProvider_SameAccountNeedsNoAssumption(t *testing.T) {
	provider, client := newProviderFixture(t)

	creds, err := provider.Scoped(context.Background(), "111122223333")
	require.NoError(t, err)
	assert.Nil(t, creds)
	client.AssertNotCalled(t, "AssumeRole", mock.Anything, mock.Anything)
}

func TestSTSProvider_EmptyAccountNeedsNoAssumption(t *testing.T) {
	provider, client := newProviderFixture(t)

	creds, err := provider.Scoped(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, creds)
	client.AssertNotCalled(t, "AssumeRole", mock.Anything, mock.Anything)
}

func TestSTSProvider_AssumesRoleWithCallerAccountAsExternalID(t *testing.T) {
	provider, client := newProviderFixture(t)
	client.On("AssumeRole", mock.Anything, &sts.AssumeRoleInput{
		RoleArn:         aws.String("arn:aws:iam::444455556666:role/CrossAccountS3AccessRole"),
		RoleSessionName: aws.String("TrustedAdvisorRemediation"),
		ExternalId:      aws.String("111122223333"),
	}).Return(&sts.AssumeRoleOutput{Credentials: &ststypes.Credentials{
		AccessKeyId:     aws.String("AKIDEXAMPLE"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
	}}, nil)

	creds, err := provider.Scoped(context.Background(), "444455556666")
	require.NoError(t, err)
	require.NotNil(t, creds)

	resolved, err := creds.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", resolved.AccessKeyID)
	client.AssertExpectations(t)
}

func TestSTSProvider_AssumeFailurePropagates(t *testing.T) {
	provider, client := newProviderFixture(t)
	client.On("AssumeRole", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

	_, err := provider.Scoped(context.Background(), "444455556666")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "444455556666")
}

func TestNewSTSProvider_IdentityFailurePropagates(t *testing.T) {
	client := new(mockAssumeRoleAPI)
	client.On("GetCallerIdentity", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "InvalidClientTokenId"})

	_, err := NewSTSProvider(context.Background(), client, "CrossAccountS3AccessRole")
	require.Error(t, err)
}
