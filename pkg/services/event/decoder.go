package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/api"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

// Mapping tells the decoder which check-item-detail keys one finding type
// cares about. ResourceKey is the identifier field; MeasuredKey, when set,
// names the numeric measurement used by threshold guards.
type Mapping struct {
	ResourceKey  string
	MeasuredKey  string
	RequiredKeys []string
}

// Decode parses an inbound envelope into a Finding. The rich EventBridge
// shape (with "detail-type") is tried first; envelopes without it are read
// as the simplified flat shape, which defaults the status to WARN. Both
// shapes produce identical findings for equivalent fields.
func Decode(raw []byte, m Mapping) (domain.Finding, error) {
	var envelope api.Event
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.Finding{}, remediation.NewValidationError("malformed envelope: %v", err)
	}
	if envelope.Detail == nil {
		return domain.Finding{}, remediation.NewValidationError("missing detail")
	}

	detail := flatten(envelope.Detail.CheckItemDetail)
	if m.ResourceKey != "" && envelope.Detail.CheckItemDetail == nil {
		return domain.Finding{}, remediation.NewValidationError("missing check-item-detail")
	}

	finding := domain.Finding{
		CheckName:    envelope.Detail.CheckName,
		Scope:        domain.Scope{Region: detail["Region"], AccountID: envelope.Account},
		Status:       status(envelope),
		Detail:       detail,
		DiscoveredAt: envelope.Time,
	}

	if m.ResourceKey != "" {
		finding.ResourceID = detail[m.ResourceKey]
		if finding.ResourceID == "" {
			return domain.Finding{}, remediation.NewValidationError("missing %s", m.ResourceKey)
		}
	} else {
		// Account-scoped findings have no per-resource identifier.
		finding.ResourceID = envelope.Account
	}

	for _, key := range m.RequiredKeys {
		if detail[key] == "" {
			return domain.Finding{}, remediation.NewValidationError("missing %s", key)
		}
	}

	if m.MeasuredKey != "" {
		value, err := ParseQualifiedInt(detailOrZero(detail, m.MeasuredKey))
		if err != nil {
			return domain.Finding{}, remediation.NewValidationError(
				"invalid %s: %v", m.MeasuredKey, err)
		}
		finding.MeasuredValue = &value
	}

	return finding, nil
}

// status resolves the check status for both envelope shapes. The flat test
// shape may omit it entirely, in which case WARN is assumed.
func status(envelope api.Event) domain.CheckStatus {
	raw := envelope.Detail.Status
	if raw == "" && envelope.DetailType == "" {
		return domain.StatusWarn
	}
	return domain.ParseCheckStatus(raw)
}

// ParseQualifiedInt converts a numeric field that may carry a trailing
// qualifier, e.g. "14+", by stripping non-digit suffix characters.
func ParseQualifiedInt(s string) (int, error) {
	trimmed := strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return value, nil
}

// flatten stringifies check-item-detail values; Trusted Advisor emits a mix
// of strings and numbers depending on the check.
func flatten(raw map[string]any) map[string]string {
	detail := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			detail[key] = v
		case float64:
			detail[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			detail[key] = strconv.FormatBool(v)
		case nil:
			// dropped
		default:
			detail[key] = fmt.Sprintf("%v", v)
		}
	}
	return detail
}

func detailOrZero(detail map[string]string, key string) string {
	if v, ok := detail[key]; ok {
		return v
	}
	return "0"
}
