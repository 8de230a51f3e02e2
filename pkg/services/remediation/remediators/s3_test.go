package remediators

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

type mockBucketAPI struct {
	mock.Mock
}

func (m *mockBucketAPI) GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput,
	optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetBucketTaggingOutput), args.Error(1)
}

func (m *mockBucketAPI) PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput,
	optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutBucketVersioningOutput), args.Error(1)
}

func (m *mockBucketAPI) GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput,
	optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetBucketLifecycleConfigurationOutput), args.Error(1)
}

func (m *mockBucketAPI) PutBucketLifecycleConfiguration(ctx context.Context, params *s3.PutBucketLifecycleConfigurationInput,
	optFns ...func(*s3.Options)) (*s3.PutBucketLifecycleConfigurationOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutBucketLifecycleConfigurationOutput), args.Error(1)
}

func noTags(client *mockBucketAPI) {
	client.On("GetBucketTagging", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "NoSuchTagSet"})
}

func TestBucketVersioning_EnablesVersioning(t *testing.T) {
	client := new(mockBucketAPI)
	rem := NewBucketVersioning(BucketVersioningSettings{ExcludeTag: "DisableVersioning"}, client)
	noTags(client)
	client.On("PutBucketVersioning", mock.Anything, &s3.PutBucketVersioningInput{
		Bucket: aws.String("reports"),
		VersioningConfiguration: &s3types.VersioningConfiguration{
			Status: s3types.BucketVersioningStatusEnabled,
		},
	}).Return(&s3.PutBucketVersioningOutput{}, nil)

	finding, err := rem.Decode([]byte(`{"detail":{"check-item-detail":{"Bucket Name":"reports"}}}`))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApplied, outcome.Action)
	client.AssertExpectations(t)
}

func TestBucketVersioning_ExclusionTagKeyWins(t *testing.T) {
	client := new(mockBucketAPI)
	rem := NewBucketVersioning(BucketVersioningSettings{ExcludeTag: "DisableVersioning"}, client)
	client.On("GetBucketTagging", mock.Anything, mock.Anything).Return(&s3.GetBucketTaggingOutput{
		TagSet: []s3types.Tag{{Key: aws.String("DisableVersioning"), Value: aws.String("anything")}},
	}, nil)

	finding, err := rem.Decode([]byte(`{"detail":{"check-item-detail":{"Bucket Name":"reports"}}}`))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSkippedExcluded, outcome.Action)
	client.AssertNotCalled(t, "PutBucketVersioning", mock.Anything, mock.Anything)
}

func TestBucketVersioning_MissingBucketNameIsValidationError(t *testing.T) {
	client := new(mockBucketAPI)
	rem := NewBucketVersioning(BucketVersioningSettings{}, client)

	_, err := rem.Decode([]byte(`{"detail":{"check-item-detail":{"Region":"us-east-1"}}}`))
	require.Error(t, err)
	assert.True(t, remediation.IsValidation(err))
}

func TestBucketVersioning_AccessDeniedIsNonFatal(t *testing.T) {
	client := new(mockBucketAPI)
	rem := NewBucketVersioning(BucketVersioningSettings{}, client)
	noTags(client)
	client.On("PutBucketVersioning", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

	finding, err := rem.Decode([]byte(`{"detail":{"check-item-detail":{"Bucket Name":"reports"}}}`))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionNone, outcome.Action)
	assert.Contains(t, outcome.Message, "AccessDenied")
}

func lifecycleEvent(checkName, status string) []byte {
	return []byte(`{"detail-type":"Trusted Advisor Check Item Refresh Notification","account":"111122223333",` +
		`"detail":{"check-name":"` + checkName + `","status":"` + status + `",` +
		`"check-item-detail":{"Bucket Name":"uploads"}}}`)
}

func newLifecycleFixture(t *testing.T, abortDays int32) (*BucketLifecycle, *mockBucketAPI) {
	t.Helper()
	client := new(mockBucketAPI)
	rem := NewBucketLifecycle(BucketLifecycleSettings{AbortDays: abortDays},
		func(ctx context.Context, accountID string) (BucketLifecycleAPI, error) {
			return client, nil
		})
	return rem, client
}

func TestBucketLifecycle_AppendsRulePreservingExisting(t *testing.T) {
	rem, client := newLifecycleFixture(t, 7)
	existing := s3types.LifecycleRule{
		ID:     aws.String("expire-old-objects"),
		Status: s3types.ExpirationStatusEnabled,
	}
	client.On("GetBucketLifecycleConfiguration", mock.Anything, mock.Anything).
		Return(&s3.GetBucketLifecycleConfigurationOutput{Rules: []s3types.LifecycleRule{existing}}, nil)
	client.On("PutBucketLifecycleConfiguration", mock.Anything, mock.MatchedBy(func(in *s3.PutBucketLifecycleConfigurationInput) bool {
		rules := in.LifecycleConfiguration.Rules
		return len(rules) == 2 &&
			aws.ToString(rules[0].ID) == "expire-old-objects" &&
			aws.ToInt32(rules[1].AbortIncompleteMultipartUpload.DaysAfterInitiation) == 7
	})).Return(&s3.PutBucketLifecycleConfigurationOutput{}, nil)

	finding, err := rem.Decode(lifecycleEvent("Amazon S3 Bucket Lifecycle Configuration", "WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApplied, outcome.Action)
	client.AssertExpectations(t)
}

func TestBucketLifecycle_MatchingRuleSkipsPut(t *testing.T) {
	rem, client := newLifecycleFixture(t, 7)
	client.On("GetBucketLifecycleConfiguration", mock.Anything, mock.Anything).
		Return(&s3.GetBucketLifecycleConfigurationOutput{Rules: []s3types.LifecycleRule{{
			ID:     aws.String("some-other-id"),
			Status: s3types.ExpirationStatusEnabled,
			AbortIncompleteMultipartUpload: &s3types.AbortIncompleteMultipartUpload{
				DaysAfterInitiation: aws.Int32(7),
			},
		}}}, nil)

	finding, err := rem.Decode(lifecycleEvent("Amazon S3 Bucket Lifecycle Configuration", "WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSkippedAlreadyCorrect, outcome.Action)
	client.AssertNotCalled(t, "PutBucketLifecycleConfiguration", mock.Anything, mock.Anything)
}

func TestBucketLifecycle_NoConfigurationStartsFresh(t *testing.T) {
	rem, client := newLifecycleFixture(t, 7)
	client.On("GetBucketLifecycleConfiguration", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "NoSuchLifecycleConfiguration"})
	client.On("PutBucketLifecycleConfiguration", mock.Anything, mock.MatchedBy(func(in *s3.PutBucketLifecycleConfigurationInput) bool {
		return len(in.LifecycleConfiguration.Rules) == 1
	})).Return(&s3.PutBucketLifecycleConfigurationOutput{}, nil)

	finding, err := rem.Decode(lifecycleEvent("Amazon S3 Bucket Lifecycle Configuration", "WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApplied, outcome.Action)
}

func TestBucketLifecycle_NonWarnStatusSkips(t *testing.T) {
	rem, client := newLifecycleFixture(t, 7)

	finding, err := rem.Decode(lifecycleEvent("Amazon S3 Bucket Lifecycle Configuration", "OK"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSkippedNotWarn, outcome.Action)
	client.AssertNotCalled(t, "GetBucketLifecycleConfiguration", mock.Anything, mock.Anything)
}

func TestBucketLifecycle_UnhandledCheckIgnored(t *testing.T) {
	rem, client := newLifecycleFixture(t, 7)

	finding, err := rem.Decode(lifecycleEvent("Some Unrelated Check", "WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionNone, outcome.Action)
	assert.Contains(t, outcome.Message, "Ignoring check")
	client.AssertNotCalled(t, "GetBucketLifecycleConfiguration", mock.Anything, mock.Anything)
}

func TestBucketLifecycle_ClientFactoryFailureIsNonFatal(t *testing.T) {
	rem := NewBucketLifecycle(BucketLifecycleSettings{AbortDays: 7},
		func(ctx context.Context, accountID string) (BucketLifecycleAPI, error) {
			return nil, errors.New("assume role denied")
		})

	finding, err := rem.Decode(lifecycleEvent("Amazon S3 Bucket Lifecycle Configuration", "WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionNone, outcome.Action)
	assert.Contains(t, outcome.Message, "not accessible")
}
