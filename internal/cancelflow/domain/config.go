// Package domain holds the cancellation questionnaire model and its wizard
// state machine.
package domain

import "time"

// QuestionType distinguishes how a question is answered.
type QuestionType string

const (
	QuestionSingleSelect QuestionType = "single_select"
	QuestionFreeText     QuestionType = "free_text"
)

// Option is one selectable answer. TriggersOffer/TriggersPause short-circuit
// the questionnaire straight to the retention page when one is available.
type Option struct {
	ID            string
	Label         string
	TriggersOffer bool
	TriggersPause bool
}

// Question is one step of the cancellation questionnaire.
type Question struct {
	ID       string
	Text     string
	Type     QuestionType
	Required bool
	Options  []Option
}

// Option returns the option with the given id, or nil.
func (q Question) Option(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// RetentionOffer is the discount shown on the retention page.
type RetentionOffer struct {
	Title string
	Body  string
	CTA   string
	Value string
}

// PauseDurationType says how a pause option's resume date is derived.
type PauseDurationType string

const (
	PauseFixedDays PauseDurationType = "fixed_days"
	PauseFixedDate PauseDurationType = "fixed_date"
)

// PauseOption is one selectable pause duration. ResumesAt is the static
// fallback used when the backend pause call fails.
type PauseOption struct {
	ID           string
	Label        string
	DurationType PauseDurationType
	Days         int
	ResumesAt    *time.Time
}

// PauseConfig enables the pause section of the retention page.
type PauseConfig struct {
	Options []PauseOption
}

// Option returns the pause option with the given id, or nil.
func (p *PauseConfig) Option(id string) *PauseOption {
	if p == nil {
		return nil
	}
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

// Config is the backend-driven cancellation flow configuration.
type Config struct {
	Enabled   bool
	Questions []Question
	Offer     *RetentionOffer
	Pause     *PauseConfig
}

// HasRetention reports whether a retention page exists (offer or pause).
func (c *Config) HasRetention() bool {
	return c != nil && (c.Offer != nil || (c.Pause != nil && len(c.Pause.Options) > 0))
}

// HasPause reports whether the retention page carries pause options.
func (c *Config) HasPause() bool {
	return c != nil && c.Pause != nil && len(c.Pause.Options) > 0
}
