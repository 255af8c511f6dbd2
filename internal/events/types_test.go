package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	a := NewEvent()
	b := NewEvent()

	assert.NotEmpty(t, a.CorrelationID)
	assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestNewEventWithCorrelation(t *testing.T) {
	assert.Equal(t, "update-1", NewEventWithCorrelation("update-1").CorrelationID)
	assert.NotEmpty(t, NewEventWithCorrelation("").CorrelationID)
}

func TestEventValidation(t *testing.T) {
	tests := []struct {
		name    string
		event   Validator
		wantErr bool
	}{
		{name: "valid message", event: MessageReceived{ChatID: 1, Text: "hi"}},
		{name: "message without chat", event: MessageReceived{Text: "hi"}, wantErr: true},
		{name: "message without text", event: MessageReceived{ChatID: 1}, wantErr: true},
		{name: "valid session", event: SessionStarted{ChatID: 1, Model: "m", Reason: ReasonImplicit}},
		{name: "session without model", event: SessionStarted{ChatID: 1, Reason: ReasonStart}, wantErr: true},
		{name: "session with unknown reason", event: SessionStarted{ChatID: 1, Model: "m", Reason: "later"}, wantErr: true},
		{name: "valid answer", event: AnswerDelivered{ChatID: 1, Model: "m", Chunks: 3}},
		{name: "answer with negative chunks", event: AnswerDelivered{ChatID: 1, Model: "m", Chunks: -1}, wantErr: true},
		{name: "valid failure", event: ReplyFailed{ChatID: 1, Code: "X"}},
		{name: "failure without code", event: ReplyFailed{ChatID: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
