// Package caldav exports a solved plan's scheduled tasks as informational
// all-day events on an external CalDAV calendar (Apple Calendar, Fastmail,
// Nextcloud, and similar), so a team can see the scheduler's output
// alongside their existing calendar without treating it as authoritative.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/google/uuid"
)

// Common CalDAV server URLs.
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// PropXPacer marks VEVENTs this package created, distinguishing them from
// events a user added by hand so a delete-missing sync never touches
// calendar entries it doesn't own.
const PropXPacer = "X-PACER"

// pacerTaskNamespace seeds deterministic per-task event UIDs so re-syncing
// the same task always resolves to the same calendar object path.
var pacerTaskNamespace = uuid.MustParse("6b1f9b1e-6e6c-4f0a-8a0a-9a6a8a5e9c1a")

// Calendar describes one calendar available on the CalDAV server.
type Calendar struct {
	ID      string
	Name    string
	Primary bool
}

// SyncResult tallies the outcome of exporting a plan's scheduled tasks.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// ScheduledEvent mirrors the informational fields pacer reads back from a
// previously exported VEVENT.
type ScheduledEvent struct {
	ID          string
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	IsPacerTask bool
}

// Syncer exports scheduled tasks to a CalDAV calendar.
type Syncer struct {
	baseURL       string
	username      string
	password      string
	calendarPath  string
	logger        *slog.Logger
	deleteMissing bool
}

// NewSyncer creates a CalDAV calendar syncer.
func NewSyncer(baseURL, username, password string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// WithDeleteMissing enables deletion of previously-exported events whose
// task is no longer present in the plan being synced.
func (s *Syncer) WithDeleteMissing(enabled bool) *Syncer {
	s.deleteMissing = enabled
	return s
}

// WithCalendarPath pins the syncer to a specific calendar instead of the
// server's first reported calendar.
func (s *Syncer) WithCalendarPath(path string) *Syncer {
	s.calendarPath = path
	return s
}

// Sync exports every scheduled task in plan as an all-day VEVENT spanning
// its start and end dates.
func (s *Syncer) Sync(ctx context.Context, plan *domain.Plan) (*SyncResult, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("find calendar: %w", err)
	}

	result := &SyncResult{}
	keepPaths := make(map[string]struct{}, len(plan.ScheduledTasks))

	for _, st := range plan.ScheduledTasks {
		eventPath := fmt.Sprintf("%s%s.ics", calPath, taskEventUID(st.Task.Name()))
		keepPaths[eventPath] = struct{}{}

		cal := toICalendar(st)
		updated, err := s.upsertEvent(ctx, client, eventPath, cal)
		if err != nil {
			s.logger.Warn("caldav sync failed", "task", st.Task.Name(), "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if s.deleteMissing {
		deleted, err := s.deleteMissingEvents(ctx, client, calPath, keepPaths)
		if err != nil {
			s.logger.Warn("caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	return result, nil
}

// ListCalendars returns calendars accessible on the server.
func (s *Syncer) ListCalendars(ctx context.Context) ([]Calendar, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	calendars := make([]Calendar, 0, len(cals))
	for i, cal := range cals {
		calendars = append(calendars, Calendar{ID: cal.Path, Name: cal.Name, Primary: i == 0})
	}
	return calendars, nil
}

// ListEvents returns pacer-exported events within the given time range.
func (s *Syncer) ListEvents(ctx context.Context, start, end time.Time, onlyPacerTasks bool) ([]ScheduledEvent, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "UID", "DESCRIPTION", PropXPacer},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{Name: "VEVENT", Start: start, End: end},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	events := make([]ScheduledEvent, 0, len(objects))
	for _, obj := range objects {
		event, isPacer := parseCalendarObject(&obj)
		if event == nil {
			continue
		}
		if onlyPacerTasks && !isPacer {
			continue
		}
		events = append(events, *event)
	}
	return events, nil
}

// DeleteTaskEvent removes the exported event for a single task by name.
func (s *Syncer) DeleteTaskEvent(ctx context.Context, taskName string) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("find calendar: %w", err)
	}
	eventPath := fmt.Sprintf("%s%s.ics", calPath, taskEventUID(taskName))
	return client.RemoveAll(ctx, eventPath)
}

func (s *Syncer) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: s.username,
			password: s.password,
			base:     http.DefaultTransport,
		},
	}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return client, nil
}

func (s *Syncer) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.calendarPath != "" {
		return s.calendarPath, nil
	}
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}
	return cals[0].Path, nil
}

func (s *Syncer) upsertEvent(ctx context.Context, client *caldav.Client, eventPath string, cal *ical.Calendar) (bool, error) {
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	if _, err := client.PutCalendarObject(ctx, eventPath, cal); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Syncer) deleteMissingEvents(ctx context.Context, client *caldav.Client, calPath string, keepPaths map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{Name: "VEVENT", Props: []string{"UID", PropXPacer}},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isPacerEvent(&obj) {
			continue
		}
		if _, ok := keepPaths[obj.Path]; ok {
			continue
		}
		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			s.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// taskEventUID derives a deterministic calendar object name from a task's
// name, so re-syncing the same task always resolves to the same path.
func taskEventUID(taskName string) string {
	return uuid.NewSHA1(pacerTaskNamespace, []byte(taskName)).String()
}

func isPacerEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}
	for _, child := range obj.Data.Children {
		if child.Name == ical.CompEvent {
			if props := child.Props[PropXPacer]; len(props) > 0 && props[0].Value == "1" {
				return true
			}
		}
	}
	return false
}

// toICalendar renders a ScheduledTask as an all-day VEVENT spanning its
// start and end working days. CalDAV's DTEND is exclusive, so the stored
// end date is one calendar day past the task's last working day.
func toICalendar(st *domain.ScheduledTask) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Pacer//Scheduler Export//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, taskEventUID(st.Task.Name()))
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDate(ical.PropDateTimeStart, st.StartDate)
	event.Props.SetDate(ical.PropDateTimeEnd, st.EndDate.AddDate(0, 0, 1))
	event.Props.SetText(ical.PropSummary, st.Task.Name())

	var desc strings.Builder
	fmt.Fprintf(&desc, "Effort: %d engineer-days\n", st.Task.Effort())
	fmt.Fprintf(&desc, "Concurrency cap: %d\n", st.Task.ParallelizationFactor())
	if st.Task.PointOfContact() != "" {
		fmt.Fprintf(&desc, "Point of contact: %s\n", st.Task.PointOfContact())
	}
	desc.WriteString("\nExported by pacer")
	event.Props.SetText(ical.PropDescription, desc.String())

	pacerProp := ical.NewProp(PropXPacer)
	pacerProp.Value = "1"
	event.Props[PropXPacer] = []ical.Prop{*pacerProp}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

func parseCalendarObject(obj *caldav.CalendarObject) (*ScheduledEvent, bool) {
	if obj == nil || obj.Data == nil {
		return nil, false
	}

	isPacer := isPacerEvent(obj)
	event := &ScheduledEvent{ID: obj.Path, IsPacerTask: isPacer}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			event.Summary = props[0].Value
		}
		if props := child.Props[ical.PropDescription]; len(props) > 0 {
			event.Description = props[0].Value
		}
		if props := child.Props[ical.PropUID]; len(props) > 0 {
			event.ID = props[0].Value
		}

		icalEvent := &ical.Event{Component: child}
		if start, err := icalEvent.DateTimeStart(time.UTC); err == nil {
			event.StartTime = start
		}
		if end, err := icalEvent.DateTimeEnd(time.UTC); err == nil {
			event.EndTime = end
		}
		break
	}

	return event, isPacer
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
