package types

import "fmt"

type SubmissionStatus string

const (
	Pending    SubmissionStatus = "pending"
	Processing SubmissionStatus = "processing"
	Confirmed  SubmissionStatus = "confirmed"
	Failed     SubmissionStatus = "failed"
	Rejected   SubmissionStatus = "rejected"
)

func (s SubmissionStatus) ToString() string {
	return string(s)
}

// IsTerminal reports whether no further automatic transition can happen from s.
func (s SubmissionStatus) IsTerminal() bool {
	return s == Confirmed || s == Failed || s == Rejected
}

func FromStringToSubmissionStatus(s string) (SubmissionStatus, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "processing":
		return Processing, nil
	case "confirmed":
		return Confirmed, nil
	case "failed":
		return Failed, nil
	case "rejected":
		return Rejected, nil
	default:
		return "", fmt.Errorf("invalid submission status: %s", s)
	}
}
