package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MeetingService derives the video room for an appointment.
type MeetingService struct {
	baseURL string
	domain  string
	now     func() time.Time
}

// MeetingConfig is what a video client needs to join a room.
type MeetingConfig struct {
	RoomName    string
	Domain      string
	MeetingLink string
}

func NewMeetingService(baseURL string) *MeetingService {
	baseURL = strings.TrimRight(baseURL, "/")
	domain := ""
	if u, err := url.Parse(baseURL); err == nil {
		domain = u.Host
	}
	return &MeetingService{
		baseURL: baseURL,
		domain:  domain,
		now:     time.Now,
	}
}

// Room returns the meeting id "HealthChat-<appointment id>-<unix millis>"
// and the join link under the configured base URL.
func (s *MeetingService) Room(appointmentID uuid.UUID) (string, string) {
	meetingID := fmt.Sprintf("HealthChat-%s-%d", appointmentID, s.now().UnixMilli())
	return meetingID, s.baseURL + "/" + meetingID
}

// Config describes the room with the given id. A stored link wins over the
// one derived from the base URL.
func (s *MeetingService) Config(meetingID, link string) MeetingConfig {
	if link == "" {
		link = s.baseURL + "/" + meetingID
	}
	return MeetingConfig{RoomName: meetingID, Domain: s.domain, MeetingLink: link}
}
