package domain

import (
	"fmt"
	"strings"
)

type Vitals struct {
	Systolic  int
	Diastolic int
	HeartRate int
	SpO2      int
}

func (v Vitals) Validate() error {
	switch {
	case v.Systolic < 30 || v.Systolic > 300:
		return fmt.Errorf("%w: systolic %d out of range 30-300", ErrInvalidVitals, v.Systolic)
	case v.Diastolic < 20 || v.Diastolic > 200:
		return fmt.Errorf("%w: diastolic %d out of range 20-200", ErrInvalidVitals, v.Diastolic)
	case v.Diastolic >= v.Systolic:
		return fmt.Errorf("%w: diastolic %d not below systolic %d", ErrInvalidVitals, v.Diastolic, v.Systolic)
	case v.HeartRate < 0 || v.HeartRate > 300:
		return fmt.Errorf("%w: heart rate %d out of range 0-300", ErrInvalidVitals, v.HeartRate)
	case v.SpO2 < 0 || v.SpO2 > 100:
		return fmt.Errorf("%w: spo2 %d out of range 0-100", ErrInvalidVitals, v.SpO2)
	}
	return nil
}

// MAP is the mean arterial pressure, (S + 2D) / 3.
func (v Vitals) MAP() int {
	return (v.Systolic + 2*v.Diastolic) / 3
}

type VitalsStatus struct {
	Severity Severity
	Findings []string
}

func (s VitalsStatus) String() string {
	if len(s.Findings) == 0 {
		return "stable"
	}
	return strings.Join(s.Findings, ", ")
}

func AssessVitals(v Vitals) VitalsStatus {
	status := VitalsStatus{Severity: SeverityNormal}
	mean := v.MAP()
	switch {
	case v.Systolic < 90 || mean < 65:
		status.Severity = SeverityCritical
		status.Findings = append(status.Findings, fmt.Sprintf("hypotension (MAP %d)", mean))
	case v.Systolic < 100:
		status.Severity = SeverityWarning
		status.Findings = append(status.Findings, "borderline pressure")
	}
	if v.HeartRate > 120 {
		status.Findings = append(status.Findings, "tachycardia")
		status.Severity = maxSeverity(status.Severity, SeverityWarning)
	} else if v.HeartRate < 50 {
		status.Findings = append(status.Findings, "bradycardia")
		status.Severity = maxSeverity(status.Severity, SeverityWarning)
	}
	if v.SpO2 > 0 && v.SpO2 < 90 {
		status.Findings = append(status.Findings, "hypoxemia")
		status.Severity = maxSeverity(status.Severity, SeverityWarning)
	}
	if status.Severity == SeverityNormal {
		status.Severity = SeveritySuccess
	}
	return status
}
