package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func twoQuestionConfig() *Config {
	return &Config{
		Enabled: true,
		Questions: []Question{
			{
				ID:       "q_reason",
				Type:     QuestionSingleSelect,
				Required: true,
				Options: []Option{
					{ID: "too_expensive", TriggersOffer: true},
					{ID: "not_using", TriggersPause: true},
					{ID: "other"},
				},
			},
			{ID: "q_details", Type: QuestionFreeText},
		},
		Offer: &RetentionOffer{Title: "50% off", CTA: "Keep my plan"},
		Pause: &PauseConfig{Options: []PauseOption{
			{ID: "pause_30", DurationType: PauseFixedDays, Days: 30},
		}},
	}
}

func TestInitialState(t *testing.T) {
	t.Run("first question when questions exist", func(t *testing.T) {
		m := NewMachine(twoQuestionConfig())
		require.Equal(t, State{Kind: StateQuestion}, m.Initial())
	})

	t.Run("retention when no questions", func(t *testing.T) {
		m := NewMachine(&Config{Enabled: true, Offer: &RetentionOffer{Title: "offer"}})
		require.Equal(t, StateRetention, m.Initial().Kind)
	})

	t.Run("cancelled when nothing to show", func(t *testing.T) {
		m := NewMachine(&Config{Enabled: true})
		require.Equal(t, StateCancelled, m.Initial().Kind)
	})
}

func TestAnswerAdvancesThroughQuestions(t *testing.T) {
	m := NewMachine(twoQuestionConfig())

	state, effects, err := m.Next(m.Initial(), Answer{OptionID: "other"})
	require.NoError(t, err)
	require.Equal(t, State{Kind: StateQuestion, Question: 1}, state)
	require.Equal(t, []Effect{RecordAnswer{QuestionID: "q_reason", OptionID: "other"}}, effects)

	state, effects, err = m.Next(state, Answer{Text: "switching providers"})
	require.NoError(t, err)
	require.Equal(t, StateRetention, state.Kind)
	require.Equal(t, []Effect{RecordAnswer{QuestionID: "q_details", Text: "switching providers"}}, effects)
}

func TestTriggeringOptionSkipsRemainingQuestions(t *testing.T) {
	for _, optionID := range []string{"too_expensive", "not_using"} {
		t.Run(optionID, func(t *testing.T) {
			m := NewMachine(twoQuestionConfig())

			state, effects, err := m.Next(m.Initial(), Answer{OptionID: optionID})
			require.NoError(t, err)
			require.Equal(t, StateRetention, state.Kind)
			require.Len(t, effects, 1)
		})
	}
}

func TestTriggeringOptionWithoutRetentionContinues(t *testing.T) {
	cfg := twoQuestionConfig()
	cfg.Offer = nil
	cfg.Pause = nil
	m := NewMachine(cfg)

	state, _, err := m.Next(m.Initial(), Answer{OptionID: "too_expensive"})
	require.NoError(t, err)
	require.Equal(t, State{Kind: StateQuestion, Question: 1}, state)

	state, _, err = m.Next(state, Answer{})
	require.NoError(t, err)
	require.Equal(t, StateCancelled, state.Kind)
}

func TestAnswerValidation(t *testing.T) {
	m := NewMachine(twoQuestionConfig())

	t.Run("required single select needs an option", func(t *testing.T) {
		state, _, err := m.Next(m.Initial(), Answer{})
		require.ErrorIs(t, err, ErrAnswerRequired)
		require.Equal(t, m.Initial(), state)
	})

	t.Run("unknown option rejected", func(t *testing.T) {
		_, _, err := m.Next(m.Initial(), Answer{OptionID: "bogus"})
		require.ErrorIs(t, err, ErrNoSuchOption)
	})

	t.Run("wrong event for question state", func(t *testing.T) {
		_, _, err := m.Next(m.Initial(), AcceptOffer{})
		require.ErrorIs(t, err, ErrEventNotAllowed)
	})
}

func TestRetentionTransitions(t *testing.T) {
	m := NewMachine(twoQuestionConfig())
	retention := State{Kind: StateRetention}

	t.Run("accept offer retains", func(t *testing.T) {
		state, effects, err := m.Next(retention, AcceptOffer{})
		require.NoError(t, err)
		require.Equal(t, StateRetained, state.Kind)
		require.Empty(t, effects)
	})

	t.Run("decline cancels", func(t *testing.T) {
		state, _, err := m.Next(retention, Decline{})
		require.NoError(t, err)
		require.Equal(t, StateCancelled, state.Kind)
	})

	t.Run("accept without configured offer rejected", func(t *testing.T) {
		cfg := twoQuestionConfig()
		cfg.Offer = nil
		_, _, err := NewMachine(cfg).Next(retention, AcceptOffer{})
		require.ErrorIs(t, err, ErrEventNotAllowed)
	})
}

func TestPauseTransitions(t *testing.T) {
	m := NewMachine(twoQuestionConfig())
	retention := State{Kind: StateRetention}

	t.Run("confirm emits pause effect and stays", func(t *testing.T) {
		state, effects, err := m.Next(retention, ConfirmPause{OptionID: "pause_30"})
		require.NoError(t, err)
		require.Equal(t, StateRetention, state.Kind)
		require.Equal(t, []Effect{PauseSubscription{OptionID: "pause_30"}}, effects)
	})

	t.Run("unknown pause option rejected", func(t *testing.T) {
		_, _, err := m.Next(retention, ConfirmPause{OptionID: "pause_90"})
		require.ErrorIs(t, err, ErrNoSuchOption)
	})

	t.Run("resolution lands in paused with resume date", func(t *testing.T) {
		resumes := time.Now().AddDate(0, 1, 0)
		state, _, err := m.Next(retention, PauseResolved{ResumesAt: &resumes})
		require.NoError(t, err)
		require.Equal(t, StatePaused, state.Kind)
		require.Equal(t, &resumes, state.ResumesAt)
		require.True(t, state.Terminal())
	})
}

func TestDismissFromAnyNonTerminalState(t *testing.T) {
	m := NewMachine(twoQuestionConfig())

	for _, state := range []State{
		{Kind: StateQuestion},
		{Kind: StateQuestion, Question: 1},
		{Kind: StateRetention},
	} {
		next, effects, err := m.Next(state, Dismiss{})
		require.NoError(t, err)
		require.Equal(t, StateDismissed, next.Kind)
		require.Empty(t, effects)
	}
}

func TestTerminalStatesRejectEvents(t *testing.T) {
	m := NewMachine(twoQuestionConfig())

	for _, state := range []State{
		{Kind: StateCancelled},
		{Kind: StateRetained},
		{Kind: StateDismissed},
		{Kind: StatePaused},
	} {
		_, _, err := m.Next(state, Dismiss{})
		require.ErrorIs(t, err, ErrFlowFinished)
	}
}

func TestOutcomeFromState(t *testing.T) {
	resumes := time.Now()
	outcome, ok := OutcomeFromState(State{Kind: StatePaused, ResumesAt: &resumes})
	require.True(t, ok)
	require.Equal(t, OutcomePaused, outcome.Kind)
	require.Equal(t, &resumes, outcome.ResumesAt)

	_, ok = OutcomeFromState(State{Kind: StateQuestion})
	require.False(t, ok)
}
