// Package task routes classified intents to their handlers and normalizes
// every outcome into a TaskResult.
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mobiusvibe/assistant/internal/execx"
	"github.com/mobiusvibe/assistant/internal/integrations/search"
	"github.com/mobiusvibe/assistant/internal/integrations/whoisx"
	"github.com/mobiusvibe/assistant/internal/launcher"
	"github.com/mobiusvibe/assistant/internal/metrics"
	"github.com/mobiusvibe/assistant/internal/nlu"
	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

// TaskResult is the normalized outcome of one dispatch: every handler,
// successful or not, reduces to a message and a flag. Nothing else crosses
// the dispatcher boundary.
type TaskResult struct {
	Intent  nlu.Intent
	Message string
	OK      bool
}

// CalendarService schedules events; failures arrive as (false, message).
type CalendarService interface {
	ScheduleEvent(ctx context.Context, summary, start, end string, attendees []string, description string) (bool, string)
}

// EmailSender delivers one message; failures arrive as (false, message).
type EmailSender interface {
	Send(recipient, subject, body string) (bool, string)
}

// SearchClient fetches an instant answer for a query.
type SearchClient interface {
	InstantAnswerFor(ctx context.Context, query string) (*search.InstantAnswer, error)
}

// WhoisClient looks up a domain's registration record.
type WhoisClient interface {
	Lookup(domain string) ([]whoisx.Field, error)
}

// AppLauncher opens and terminates applications by name.
type AppLauncher interface {
	Open(ctx context.Context, name string) error
	Close(ctx context.Context, name string) error
	ExecutableSuffix() string
}

type Config struct {
	NmapTimeoutSeconds int `envconfig:"NMAP_TIMEOUT_SECONDS" default:"120"`
}

// Dispatcher executes tasks for classified intents. It never panics past its
// boundary: a handler panic is recovered into an error TaskResult.
type Dispatcher struct {
	cfg      Config
	calendar CalendarService
	email    EmailSender
	search   SearchClient
	whois    WhoisClient
	launcher AppLauncher
	runner   execx.Runner
	now      func() time.Time
	log      zerolog.Logger
}

func NewDispatcher(cfg Config, cal CalendarService, mail EmailSender, sc SearchClient, wc WhoisClient, l AppLauncher, runner execx.Runner) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		calendar: cal,
		email:    mail,
		search:   sc,
		whois:    wc,
		launcher: l,
		runner:   runner,
		now:      time.Now,
		log:      logx.Component("task"),
	}
}

// Execute runs the handler for the classified intent. Entity preconditions
// are checked before any collaborator is touched, so a malformed utterance
// never costs a network call or a subprocess.
func (d *Dispatcher) Execute(ctx context.Context, res nlu.Result) (out TaskResult) {
	intent := res.Intent
	out = TaskResult{Intent: intent}

	metrics.IntentsDispatched.WithLabelValues(string(intent)).Inc()
	timer := prometheus.NewTimer(metrics.HandlerDuration.WithLabelValues(string(intent)))

	defer func() {
		timer.ObserveDuration()
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("intent", string(intent)).Msg("task handler panicked")
			out = TaskResult{
				Intent:  intent,
				Message: fmt.Sprintf("An unexpected critical error occurred while processing your request for '%s'.", intent),
			}
		}
		if !out.OK {
			metrics.HandlerFailures.WithLabelValues(string(intent)).Inc()
		}
	}()

	d.log.Info().Str("intent", string(intent)).Strs("entities", kindNames(res.Entities)).Msg("executing task")

	switch intent {
	case nlu.IntentScheduleMeeting:
		out.OK, out.Message = d.scheduleMeeting(ctx, res.Entities)
	case nlu.IntentScheduleEvent:
		out.OK, out.Message = d.scheduleEvent(ctx, res.Entities)
	case nlu.IntentSendEmail:
		out.OK, out.Message = d.sendEmail(res.Entities)
	case nlu.IntentSendMessage:
		out.OK, out.Message = d.sendMessage(res.Entities)
	case nlu.IntentOpenApplication:
		out.OK, out.Message = d.openApplication(ctx, res.Entities)
	case nlu.IntentCloseApplication:
		out.OK, out.Message = d.closeApplication(ctx, res.Entities)
	case nlu.IntentGetCurrentDatetime:
		out.OK, out.Message = d.currentDatetime()
	case nlu.IntentSearchWeb:
		out.OK, out.Message = d.searchWeb(ctx, res.Entities)
	case nlu.IntentRunWhois:
		out.OK, out.Message = d.runWhois(res.Entities)
	case nlu.IntentRunNmap:
		out.OK, out.Message = d.runNmap(ctx, res.Entities)
	case nlu.IntentUnknown:
		// Informational, not a handler failure.
		out.OK, out.Message = true, "Sorry, I didn't understand that request."
	default:
		out.OK, out.Message = true, fmt.Sprintf("Action Required: Intent '%s' is recognized but not implemented in the task executor yet.", intent)
	}
	return out
}

func (d *Dispatcher) scheduleMeeting(ctx context.Context, bag *nlu.EntityBag) (bool, string) {
	person, ok := bag.First(nlu.EntityPerson)
	if !ok {
		person = "Someone"
	}
	when, ok := bag.Joined(nlu.EntityDatetime)
	if !ok {
		when = "an unspecified time"
	}
	summary := fmt.Sprintf("Meeting with %s", person)
	return d.calendar.ScheduleEvent(ctx, summary, when, "", nil, "")
}

func (d *Dispatcher) scheduleEvent(ctx context.Context, bag *nlu.EntityBag) (bool, string) {
	summary, ok := bag.First(nlu.EntityObjectName)
	if !ok {
		summary = "New Event"
	}
	when, ok := bag.Joined(nlu.EntityDatetime)
	if !ok {
		when = "an unspecified time"
	}
	return d.calendar.ScheduleEvent(ctx, summary, when, "", nil, "")
}

func (d *Dispatcher) sendEmail(bag *nlu.EntityBag) (bool, string) {
	recipient, ok := bag.Value(nlu.EntityEmailAddress)
	if !ok {
		recipient, ok = bag.First(nlu.EntityPerson)
	}
	if !ok {
		d.log.Warn().Msg("send_email failed: no recipient found")
		return false, "Error: Could not determine recipient for email."
	}
	// Subject and body extraction is not part of the NLU pass; placeholders
	// keep the pipeline exercisable end to end.
	return d.email.Send(recipient, "Quick Question", "...")
}

func (d *Dispatcher) sendMessage(bag *nlu.EntityBag) (bool, string) {
	recipient, ok := bag.First(nlu.EntityPerson)
	if !ok {
		recipient = "Someone"
	}
	return true, fmt.Sprintf("Action Required: Send message to %s. Body: '...'. (Integration not implemented)", recipient)
}

func (d *Dispatcher) openApplication(ctx context.Context, bag *nlu.EntityBag) (bool, string) {
	name, ok := bag.First(nlu.EntityObjectName)
	if !ok {
		d.log.Warn().Msg("open_application failed: no application name provided")
		return false, "Error: No application name specified."
	}

	err := d.launcher.Open(ctx, name)
	if err == nil {
		return true, fmt.Sprintf("Attempting to open %s...", name)
	}
	if !errors.Is(err, launcher.ErrNotFound) {
		d.log.Error().Err(err).Str("app", name).Msg("failed to open application")
		return false, fmt.Sprintf("Error: Could not open application '%s' due to an OS error: %v", name, err)
	}

	// Retry once with the platform executable suffix before giving up.
	suffix := d.launcher.ExecutableSuffix()
	if suffix == "" || strings.HasSuffix(strings.ToLower(name), suffix) {
		return false, fmt.Sprintf("Error: Application or file '%s' not found. Make sure it's in your system's PATH or provide the full path.", name)
	}

	withSuffix := name + suffix
	switch err := d.launcher.Open(ctx, withSuffix); {
	case err == nil:
		return true, fmt.Sprintf("Attempting to open %s...", withSuffix)
	case errors.Is(err, launcher.ErrNotFound):
		return false, fmt.Sprintf("Error: Application or file '%s' (or '%s') not found. Make sure it's in your system's PATH or provide the full path.", name, withSuffix)
	default:
		d.log.Error().Err(err).Str("app", withSuffix).Msg("failed to open application")
		return false, fmt.Sprintf("Error: Could not open application '%s' even after adding %s. Error: %v", withSuffix, suffix, err)
	}
}

func (d *Dispatcher) closeApplication(ctx context.Context, bag *nlu.EntityBag) (bool, string) {
	name, ok := bag.First(nlu.EntityObjectName)
	if !ok {
		d.log.Warn().Msg("close_application failed: no application name provided")
		return false, "Error: No application name specified."
	}

	switch err := d.launcher.Close(ctx, name); {
	case err == nil:
		return true, fmt.Sprintf("Application '%s' has been closed.", name)
	case errors.Is(err, launcher.ErrNoProcess):
		return false, fmt.Sprintf("Error: No running application named '%s' was found.", name)
	default:
		d.log.Error().Err(err).Str("app", name).Msg("failed to close application")
		return false, fmt.Sprintf("Error: Could not close application '%s'. %v", name, err)
	}
}

func (d *Dispatcher) currentDatetime() (bool, string) {
	formatted := d.now().Format("Monday, January 02, 2006 at 03:04 PM")
	return true, fmt.Sprintf("The current date and time is %s.", formatted)
}

func (d *Dispatcher) searchWeb(ctx context.Context, bag *nlu.EntityBag) (bool, string) {
	query, ok := bag.Value(nlu.EntitySearchQuery)
	if !ok {
		d.log.Warn().Msg("search_web failed: no search query provided")
		return false, "Error: No search query specified."
	}

	answer, err := d.search.InstantAnswerFor(ctx, query)
	if err != nil {
		if errors.Is(err, search.ErrDecode) {
			return false, fmt.Sprintf("Error: An unexpected error occurred during the web search for '%s'. %v", query, err)
		}
		return false, fmt.Sprintf("Error: Could not connect to the search service. %v", err)
	}

	summary := renderAnswer(answer)
	if summary == "" {
		return true, fmt.Sprintf("I couldn't find a direct answer or summary for '%s'. You can try searching directly: %s", query, search.SearchURL(query))
	}
	return true, summary
}

// renderAnswer picks the best available section of the instant answer, in
// fixed preference order. Empty when the payload has nothing usable.
func renderAnswer(a *search.InstantAnswer) string {
	var b strings.Builder
	switch {
	case a.AbstractText != "":
		fmt.Fprintf(&b, "Summary: %s\n", a.AbstractText)
		if a.AbstractSource != "" && a.AbstractURL != "" {
			fmt.Fprintf(&b, "Source: %s (%s)\n", a.AbstractSource, a.AbstractURL)
		}
	case a.Definition != "":
		fmt.Fprintf(&b, "Definition: %s\n", a.Definition)
		if a.DefinitionSource != "" && a.DefinitionURL != "" {
			fmt.Fprintf(&b, "Source: %s (%s)\n", a.DefinitionSource, a.DefinitionURL)
		}
	case a.Answer != "":
		fmt.Fprintf(&b, "Answer: %s\n", a.Answer)
	case len(a.RelatedTopics) > 0:
		b.WriteString("Related Topics:\n")
		for i, topic := range a.RelatedTopics {
			if topic.Text != "" {
				fmt.Fprintf(&b, "- %s\n", topic.Text)
			}
			if i > 3 {
				b.WriteString("- ...and more.\n")
				break
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func (d *Dispatcher) runWhois(bag *nlu.EntityBag) (bool, string) {
	target, ok := bag.Value(nlu.EntityTargetAddress)
	if !ok {
		d.log.Warn().Msg("run_whois failed: no target address provided")
		return false, "Error: No target address (domain or IP) specified for WHOIS lookup."
	}

	fields, err := d.whois.Lookup(target)
	if err != nil {
		if errors.Is(err, whoisx.ErrNoMatch) {
			return true, fmt.Sprintf("No WHOIS information found for '%s'.", target)
		}
		return false, fmt.Sprintf("Error during WHOIS lookup for '%s': %v", target, err)
	}
	if len(fields) == 0 {
		return true, fmt.Sprintf("No WHOIS information found for '%s'.", target)
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Key, f.Value))
	}
	return true, fmt.Sprintf("WHOIS lookup results for %s:\n%s", target, strings.Join(lines, "\n"))
}

func (d *Dispatcher) runNmap(ctx context.Context, bag *nlu.EntityBag) (bool, string) {
	target, ok := bag.Value(nlu.EntityTargetAddress)
	if !ok {
		d.log.Warn().Msg("run_nmap failed: no target address provided")
		return false, "Error: No target address (domain or IP) specified for Nmap scan."
	}

	timeout := time.Duration(d.cfg.NmapTimeoutSeconds) * time.Second
	d.log.Info().Str("target", target).Dur("timeout", timeout).Msg("executing nmap scan, this might take a while")

	res, err := d.runner.Run(ctx, timeout, "nmap", target)
	switch {
	case errors.Is(err, execx.ErrNotFound):
		return false, "Error: 'nmap' command not found. Please ensure it is installed and in your system's PATH."
	case errors.Is(err, execx.ErrTimeout):
		return false, fmt.Sprintf("Error: Nmap command for '%s' timed out after %d seconds.", target, d.cfg.NmapTimeoutSeconds)
	case err != nil:
		return false, fmt.Sprintf("Error: An unexpected error occurred during Nmap scan for '%s'. %v", target, err)
	}

	if res.ExitCode != 0 {
		errMsg := res.Stderr
		if errMsg == "" {
			errMsg = fmt.Sprintf("'nmap' command failed with return code %d. Is 'nmap' installed and in PATH?", res.ExitCode)
		}
		return false, fmt.Sprintf("Error running Nmap scan for %s: %s", target, errMsg)
	}
	return true, fmt.Sprintf("Nmap scan results for %s:\n%s", target, res.Stdout)
}

func kindNames(bag *nlu.EntityBag) []string {
	kinds := bag.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}
