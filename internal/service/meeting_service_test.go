package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMeetingRoom(t *testing.T) {
	svc := NewMeetingService("https://meet.jit.si/")
	svc.now = func() time.Time { return time.UnixMilli(1717400000000) }

	id := uuid.MustParse("6f1d3c2a-9a7e-4f1b-8c1e-1a2b3c4d5e6f")
	meetingID, link := svc.Room(id)

	assert.Equal(t, "HealthChat-6f1d3c2a-9a7e-4f1b-8c1e-1a2b3c4d5e6f-1717400000000", meetingID)
	assert.Equal(t, "https://meet.jit.si/"+meetingID, link)
}

func TestMeetingConfig(t *testing.T) {
	svc := NewMeetingService("https://meet.jit.si/")

	cfg := svc.Config("HealthChat-abc-1", "")
	assert.Equal(t, "HealthChat-abc-1", cfg.RoomName)
	assert.Equal(t, "meet.jit.si", cfg.Domain)
	assert.Equal(t, "https://meet.jit.si/HealthChat-abc-1", cfg.MeetingLink)

	cfg = svc.Config("HealthChat-abc-1", "https://video.example.com/HealthChat-abc-1")
	assert.Equal(t, "https://video.example.com/HealthChat-abc-1", cfg.MeetingLink)
}
