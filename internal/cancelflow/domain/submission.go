package domain

// Submission is the recorded outcome of a finished cancellation flow,
// reported back to the backend for retention analytics.
type Submission struct {
	UserID     string
	Outcome    string
	LastStep   int
	OfferShown bool
	PauseShown bool
	Answers    map[string]string
}
