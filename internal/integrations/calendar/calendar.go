// Package calendar schedules events through the Google Calendar API.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

type Config struct {
	CredentialsPath string `envconfig:"GOOGLE_CREDENTIALS_PATH" default:"credentials.json"`
	TokenPath       string `envconfig:"GOOGLE_TOKEN_PATH" default:"token.json"`
	CalendarID      string `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
}

// Service wraps the Calendar API. A Service without credentials still
// constructs; every ScheduleEvent call then fails softly with a descriptive
// message instead of an error.
type Service struct {
	cfg Config
	svc *gcal.Service
	log zerolog.Logger
}

// New builds the service from an OAuth client-secrets file and a stored
// token. Missing or invalid credentials degrade to an unconfigured service.
func New(ctx context.Context, cfg Config) *Service {
	s := &Service{cfg: cfg, log: logx.Component("calendar")}

	client, err := oauthClient(ctx, cfg)
	if err != nil {
		s.log.Warn().Err(err).Msg("calendar service initialized without valid credentials")
		return s
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build calendar service")
		return s
	}
	s.svc = svc
	s.log.Info().Msg("calendar service initialized")
	return s
}

func oauthClient(ctx context.Context, cfg Config) (*http.Client, error) {
	secrets, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", cfg.CredentialsPath, err)
	}
	conf, err := google.ConfigFromJSON(secrets, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	raw, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token %s: %w", cfg.TokenPath, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return conf.Client(ctx, &tok), nil
}

// acceptedLayouts are the start/end formats the scheduler understands; the
// first is canonical, the others tolerate timezone-less input.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var errBadFormat = errors.New("not an ISO-8601 datetime")

func parseWhen(value string) (time.Time, string, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", errBadFormat
}

// resolveWindow validates the start and fills a missing end with start+1h.
func resolveWindow(start, end string) (string, string, error) {
	startAt, layout, err := parseWhen(start)
	if err != nil {
		return "", "", err
	}
	if end == "" {
		end = startAt.Add(time.Hour).Format(layout)
	} else if _, _, err := parseWhen(end); err != nil {
		return "", "", err
	}
	return start, end, nil
}

// ScheduleEvent inserts one event. The start string arrives raw from entity
// extraction and is validated here; a missing end defaults to start+1 hour.
// All failures are soft: (false, message).
func (s *Service) ScheduleEvent(ctx context.Context, summary, start, end string, attendees []string, description string) (bool, string) {
	if s.svc == nil {
		s.log.Error().Msg("cannot schedule event: calendar service unavailable")
		return false, "Error: Calendar service not configured or authentication failed."
	}

	startAt, endAt, err := resolveWindow(start, end)
	if err != nil {
		s.log.Error().Str("start", start).Msg("invalid start datetime")
		return false, fmt.Sprintf("Error: Invalid start date/time format '%s'. Use ISO 8601 (e.g., YYYY-MM-DDTHH:MM:SS[-HH:MM]).", start)
	}

	event := &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: startAt},
		End:         &gcal.EventDateTime{DateTime: endAt},
	}
	for _, a := range attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: a})
	}

	s.log.Info().Str("summary", summary).Str("start", startAt).Msg("inserting calendar event")
	created, err := s.svc.Events.Insert(s.cfg.CalendarID, event).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			s.log.Error().Err(err).Int("status", apiErr.Code).Msg("calendar api error")
			return false, fmt.Sprintf("Failed to schedule event due to API error: %v", apiErr)
		}
		s.log.Error().Err(err).Str("summary", summary).Msg("failed to schedule event")
		return false, fmt.Sprintf("Failed to schedule event: %v", err)
	}

	s.log.Info().Str("link", created.HtmlLink).Msg("event created")
	return true, fmt.Sprintf("Event '%s' scheduled successfully. Link: %s", summary, created.HtmlLink)
}
