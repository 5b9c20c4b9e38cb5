// Package mqtt publishes computed schedules to an MQTT broker.
package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"maintenance-scheduler/core/events"
	"maintenance-scheduler/core/model"
)

// Publisher delivers computed schedules to external consumers.
type Publisher interface {
	PublishSchedule(ev events.ScheduleComputed) error
	Close()
}

// Envelope is the wire format published on the schedule topic.
type Envelope struct {
	ScheduleID  string         `json:"schedule_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Schedule    model.Schedule `json:"schedule"`
}

func newEnvelope(ev events.ScheduleComputed) Envelope {
	id := ev.RunID
	if id == "" {
		id = uuid.NewString()
	}
	at := ev.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	return Envelope{ScheduleID: id, GeneratedAt: at, Schedule: ev.Schedule}
}

// NopPublisher drops every schedule. Used when MQTT publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishSchedule(events.ScheduleComputed) error { return nil }
func (NopPublisher) Close()                                        {}

// MockPublisher records published envelopes for tests.
type MockPublisher struct {
	mu        sync.Mutex
	Envelopes []Envelope
	Fail      bool
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// PublishSchedule records the envelope or fails when configured to.
func (m *MockPublisher) PublishSchedule(ev events.ScheduleComputed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Envelopes = append(m.Envelopes, newEnvelope(ev))
	return nil
}

// Published returns a snapshot of the recorded envelopes.
func (m *MockPublisher) Published() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Envelope, len(m.Envelopes))
	copy(out, m.Envelopes)
	return out
}

func (m *MockPublisher) Close() {}
