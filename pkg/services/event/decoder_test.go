package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

func TestDecode_RichAndFlatShapesAreEquivalent(t *testing.T) {
	mapping := Mapping{
		ResourceKey:  "DB Instance Name",
		MeasuredKey:  "Days Since Last Connection",
		RequiredKeys: []string{"Region"},
	}

	rich := []byte(`{
		"detail-type": "Trusted Advisor Check Item Refresh Notification",
		"account": "123456789012",
		"time": "2024-05-01T00:00:00Z",
		"detail": {
			"check-name": "Amazon RDS Idle DB Instances",
			"status": "WARN",
			"check-item-detail": {
				"Region": "us-east-1",
				"DB Instance Name": "db1",
				"Days Since Last Connection": "20"
			}
		}
	}`)
	flat := []byte(`{
		"account": "123456789012",
		"detail": {
			"status": "WARN",
			"check-item-detail": {
				"Region": "us-east-1",
				"DB Instance Name": "db1",
				"Days Since Last Connection": "20"
			}
		}
	}`)

	richFinding, err := Decode(rich, mapping)
	require.NoError(t, err)
	flatFinding, err := Decode(flat, mapping)
	require.NoError(t, err)

	assert.Equal(t, "db1", richFinding.ResourceID)
	assert.Equal(t, "us-east-1", richFinding.Scope.Region)
	assert.Equal(t, "123456789012", richFinding.Scope.AccountID)
	assert.Equal(t, domain.StatusWarn, richFinding.Status)
	require.NotNil(t, richFinding.MeasuredValue)
	assert.Equal(t, 20, *richFinding.MeasuredValue)

	// The rich shape additionally carries check name and discovery time.
	flatFinding.CheckName = richFinding.CheckName
	flatFinding.DiscoveredAt = richFinding.DiscoveredAt
	assert.Equal(t, richFinding, flatFinding)
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		mapping Mapping
	}{
		{
			name:    "not json",
			raw:     `{{`,
			mapping: Mapping{ResourceKey: "Bucket Name"},
		},
		{
			name:    "missing detail",
			raw:     `{"account": "123456789012"}`,
			mapping: Mapping{ResourceKey: "Bucket Name"},
		},
		{
			name:    "missing check-item-detail",
			raw:     `{"detail": {"status": "WARN"}}`,
			mapping: Mapping{ResourceKey: "Bucket Name"},
		},
		{
			name:    "missing resource identifier",
			raw:     `{"detail": {"check-item-detail": {"Region": "us-east-1"}}}`,
			mapping: Mapping{ResourceKey: "Bucket Name"},
		},
		{
			name: "missing required key",
			raw:  `{"detail": {"check-item-detail": {"DB Instance Name": "db1"}}}`,
			mapping: Mapping{
				ResourceKey:  "DB Instance Name",
				RequiredKeys: []string{"Region"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw), tc.mapping)
			require.Error(t, err)
			assert.True(t, remediation.IsValidation(err))
		})
	}
}

func TestDecode_FlatShapeDefaultsToWarn(t *testing.T) {
	raw := []byte(`{"detail": {"check-item-detail": {"Bucket Name": "b1"}}}`)

	finding, err := Decode(raw, Mapping{ResourceKey: "Bucket Name"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWarn, finding.Status)
}

func TestDecode_RichShapeWithoutStatusIsUnknown(t *testing.T) {
	raw := []byte(`{
		"detail-type": "Trusted Advisor Check Item Refresh Notification",
		"detail": {"check-item-detail": {"Bucket Name": "b1"}}
	}`)

	finding, err := Decode(raw, Mapping{ResourceKey: "Bucket Name"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnknown, finding.Status)
}

func TestDecode_MeasuredValueDefaultsToZero(t *testing.T) {
	raw := []byte(`{"detail": {"check-item-detail": {"DB Instance Name": "db1", "Region": "us-east-1"}}}`)

	finding, err := Decode(raw, Mapping{
		ResourceKey: "DB Instance Name",
		MeasuredKey: "Days Since Last Connection",
	})
	require.NoError(t, err)
	require.NotNil(t, finding.MeasuredValue)
	assert.Equal(t, 0, *finding.MeasuredValue)
}

func TestDecode_NumericDetailValues(t *testing.T) {
	raw := []byte(`{"detail": {"check-item-detail": {"DB Instance Name": "db1", "Days Since Last Connection": 20}}}`)

	finding, err := Decode(raw, Mapping{
		ResourceKey: "DB Instance Name",
		MeasuredKey: "Days Since Last Connection",
	})
	require.NoError(t, err)
	require.NotNil(t, finding.MeasuredValue)
	assert.Equal(t, 20, *finding.MeasuredValue)
}

func TestParseQualifiedInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{input: "14", expected: 14},
		{input: "14+", expected: 14},
		{input: " 20+ ", expected: 20},
		{input: "0", expected: 0},
		{input: "", wantErr: true},
		{input: "+", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			value, err := ParseQualifiedInt(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, value)
		})
	}
}
