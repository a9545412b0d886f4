// Package report builds, validates and serializes structured vulnerability
// reports.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// timeLayout is ISO-8601 at second precision with a literal "Z" suffix.
const timeLayout = "2006-01-02T15:04:05Z"

var validSeverities = map[string]struct{}{
	model.SeverityCritical: {},
	model.SeverityHigh:     {},
	model.SeverityMedium:   {},
	model.SeverityLow:      {},
	model.SeverityInfo:     {},
}

// ValidateSeverity trims and lower-cases the input and checks it against the
// five canonical levels. Idempotent on valid input.
func ValidateSeverity(s string) (string, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if _, ok := validSeverities[norm]; !ok {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidSeverity, s)
	}
	return norm, nil
}

// Params carries the reporter-supplied fields for a new report.
// Remediation, CVEIDs and AdditionalData are optional.
type Params struct {
	Title           string
	Description     string
	Severity        string
	AffectedSystems []string
	Remediation     string
	CVEIDs          []string
	AdditionalData  map[string]any
}

// New builds a StructuredReport. Construction fails only via severity
// validation; absent optional fields are replaced with empty defaults.
// Both the top-level and discovery timestamps are stamped at call time.
func New(p Params) (*model.StructuredReport, error) {
	sev, err := ValidateSeverity(p.Severity)
	if err != nil {
		return nil, err
	}
	systems := append([]string{}, p.AffectedSystems...)
	cveIDs := append([]string{}, p.CVEIDs...)
	additional := map[string]any{}
	for k, v := range p.AdditionalData {
		additional[k] = v
	}
	return &model.StructuredReport{
		Version:    model.ReportVersion,
		ReportType: model.ReportTypeVulnerability,
		Timestamp:  NowUTC(),
		Data: model.ReportData{
			Title:              p.Title,
			Description:        p.Description,
			Severity:           sev,
			AffectedSystems:    systems,
			Remediation:        p.Remediation,
			CVEIDs:             cveIDs,
			AdditionalData:     additional,
			DiscoveryTimestamp: NowUTC(),
		},
	}, nil
}

// NowUTC returns the current UTC time in the report timestamp format.
func NowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

// PreparePayload serializes the report to compact JSON. encoding/json emits
// struct fields in declaration order and map keys sorted, so logically
// identical reports serialize byte-identically. Submission-id stability
// depends on this.
func PreparePayload(r *model.StructuredReport) ([]byte, error) {
	return json.Marshal(r)
}

// ParsePayload is the inverse of PreparePayload. It rejects bytes that do
// not decode as the report schema.
func ParsePayload(b []byte) (*model.StructuredReport, error) {
	var r model.StructuredReport
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if r.ReportType != model.ReportTypeVulnerability {
		return nil, fmt.Errorf("unexpected report_type %q", r.ReportType)
	}
	if r.Version == "" {
		return nil, errors.New("missing report version")
	}
	if _, err := ValidateSeverity(r.Data.Severity); err != nil {
		return nil, err
	}
	return &r, nil
}
