package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chat-server/internal/mocks"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.chat-server", "chat-server", "test")

	email := "a@x.com"
	publisher.On("Publish", mock.Anything, "audit.chat-server", mock.MatchedBy(func(e AuditEnvelope) bool {
		return e.EventType == "audit_log" &&
			e.Service == "chat-server" &&
			e.Environment == "test" &&
			e.RequestID == "req-1" &&
			e.UserEmail != nil && *e.UserEmail == email &&
			e.Payload.Level == "WARN" &&
			e.Payload.IP == "203.0.113.7"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "WARN", "login failed", "req-1", "203.0.113.7", &email)
	publisher.AssertExpectations(t)
}

func TestEmitToleratesMissingPublisher(t *testing.T) {
	var emitter *AuditEmitter
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "noop", "req-1", "", nil)
	})

	emitter = NewAuditEmitter(nil, "audit.chat-server", "chat-server", "test")
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "noop", "req-1", "", nil)
	})
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.chat-server", "chat-server", "test")

	publisher.On("Publish", mock.Anything, "audit.chat-server", mock.Anything).Return(assert.AnError).Once()

	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "boom", "req-1", "", nil)
	})
	publisher.AssertExpectations(t)
}
