package remediators

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
)

type mockPasswordPolicyAPI struct {
	mock.Mock
}

func (m *mockPasswordPolicyAPI) GetAccountPasswordPolicy(ctx context.Context, params *iam.GetAccountPasswordPolicyInput,
	optFns ...func(*iam.Options)) (*iam.GetAccountPasswordPolicyOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*iam.GetAccountPasswordPolicyOutput), args.Error(1)
}

func (m *mockPasswordPolicyAPI) UpdateAccountPasswordPolicy(ctx context.Context, params *iam.UpdateAccountPasswordPolicyInput,
	optFns ...func(*iam.Options)) (*iam.UpdateAccountPasswordPolicyOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*iam.UpdateAccountPasswordPolicyOutput), args.Error(1)
}

func passwordPolicyEvent(status string) []byte {
	return []byte(`{"detail-type":"Trusted Advisor Check Item Refresh Notification","account":"111122223333",` +
		`"detail":{"check-name":"Password Policy","status":"` + status + `","check-item-detail":{}}}`)
}

var passwordDefaults = PasswordPolicySettings{MinLength: 12, MaxAge: 90, ReusePrevention: 12}

func TestPasswordPolicy_FillsDefaultsWhenNoneExists(t *testing.T) {
	client := new(mockPasswordPolicyAPI)
	rem := NewPasswordPolicy(passwordDefaults, client)

	client.On("GetAccountPasswordPolicy", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "NoSuchEntity"})
	client.On("UpdateAccountPasswordPolicy", mock.Anything, &iam.UpdateAccountPasswordPolicyInput{
		MinimumPasswordLength:      aws.Int32(12),
		RequireSymbols:             true,
		RequireNumbers:             true,
		RequireUppercaseCharacters: true,
		RequireLowercaseCharacters: true,
		AllowUsersToChangePassword: true,
		PasswordReusePrevention:    aws.Int32(12),
		MaxPasswordAge:             aws.Int32(90),
		HardExpiry:                 aws.Bool(false),
	}).Return(&iam.UpdateAccountPasswordPolicyOutput{}, nil)

	finding, err := rem.Decode(passwordPolicyEvent("WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApplied, outcome.Action)
	client.AssertExpectations(t)
}

func TestPasswordPolicy_PreservesAdministratorSettings(t *testing.T) {
	client := new(mockPasswordPolicyAPI)
	rem := NewPasswordPolicy(passwordDefaults, client)

	client.On("GetAccountPasswordPolicy", mock.Anything, mock.Anything).
		Return(&iam.GetAccountPasswordPolicyOutput{PasswordPolicy: &iamtypes.PasswordPolicy{
			MinimumPasswordLength:      aws.Int32(20),
			MaxPasswordAge:             aws.Int32(30),
			AllowUsersToChangePassword: false,
			HardExpiry:                 aws.Bool(true),
		}}, nil)
	client.On("UpdateAccountPasswordPolicy", mock.Anything, mock.MatchedBy(func(in *iam.UpdateAccountPasswordPolicyInput) bool {
		return aws.ToInt32(in.MinimumPasswordLength) == 20 &&
			aws.ToInt32(in.MaxPasswordAge) == 30 &&
			aws.ToInt32(in.PasswordReusePrevention) == 12 &&
			!in.AllowUsersToChangePassword &&
			aws.ToBool(in.HardExpiry)
	})).Return(&iam.UpdateAccountPasswordPolicyOutput{}, nil)

	finding, err := rem.Decode(passwordPolicyEvent("WARN"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApplied, outcome.Action)
	client.AssertExpectations(t)
}

func TestPasswordPolicy_NonWarnStatusMakesNoCalls(t *testing.T) {
	client := new(mockPasswordPolicyAPI)
	rem := NewPasswordPolicy(passwordDefaults, client)

	finding, err := rem.Decode(passwordPolicyEvent("OK"))
	require.NoError(t, err)

	outcome, err := rem.Remediate(context.Background(), finding)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSkippedNotWarn, outcome.Action)
	client.AssertNotCalled(t, "GetAccountPasswordPolicy", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "UpdateAccountPasswordPolicy", mock.Anything, mock.Anything)
}

func TestPasswordPolicy_ReadFailureIsFatal(t *testing.T) {
	client := new(mockPasswordPolicyAPI)
	rem := NewPasswordPolicy(passwordDefaults, client)

	client.On("GetAccountPasswordPolicy", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "ServiceFailure"})

	finding, err := rem.Decode(passwordPolicyEvent("WARN"))
	require.NoError(t, err)

	_, err = rem.Remediate(context.Background(), finding)
	require.Error(t, err)
	client.AssertNotCalled(t, "UpdateAccountPasswordPolicy", mock.Anything, mock.Anything)
}
