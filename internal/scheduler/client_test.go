package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(testSchedulerConfig{})
	if err == nil {
		t.Fatal("expected error for missing redis url")
	}
}

func TestNilClientScheduleIsNoop(t *testing.T) {
	var c *Client
	err := c.ScheduleAppointmentReminder(context.Background(), AppointmentReminderPayload{
		AppointmentID: uuid.NewString(),
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("expected nil client schedule to be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil client close to be a no-op, got %v", err)
	}
}

func TestScheduleAppointmentReminderEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "visadesk"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	err = client.ScheduleAppointmentReminder(context.Background(), AppointmentReminderPayload{
		AppointmentID: uuid.NewString(),
	}, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("failed to schedule reminder: %v", err)
	}

	if len(mr.Keys()) == 0 {
		t.Fatal("expected task data in redis after enqueue")
	}
}
