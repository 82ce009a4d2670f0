// Package whoisx performs WHOIS lookups and flattens the parsed record into
// the key/value form the assistant renders.
package whoisx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/rs/zerolog"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

// ErrNoMatch indicates the registry answered but holds no record for the
// domain.
var ErrNoMatch = errors.New("no whois record")

type Config struct {
	TimeoutSeconds int `envconfig:"WHOIS_TIMEOUT_SECONDS" default:"15"`
}

type Client struct {
	wc  *whois.Client
	log zerolog.Logger
}

func New(cfg Config) *Client {
	wc := whois.NewClient()
	wc.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	return &Client{wc: wc, log: logx.Component("whois")}
}

// Lookup queries the registry for the domain and returns the record as
// ordered key/value pairs. An unregistered domain yields ErrNoMatch.
func (c *Client) Lookup(domain string) ([]Field, error) {
	c.log.Debug().Str("domain", domain).Msg("performing whois lookup")

	raw, err := c.wc.Whois(domain)
	if err != nil {
		c.log.Error().Err(err).Str("domain", domain).Msg("whois query failed")
		return nil, fmt.Errorf("whois query for %s: %w", domain, err)
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		if errors.Is(err, whoisparser.ErrNotFoundDomain) {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, domain)
		}
		c.log.Error().Err(err).Str("domain", domain).Msg("whois parse failed")
		return nil, fmt.Errorf("parse whois record for %s: %w", domain, err)
	}
	return flatten(info), nil
}

// Field is one rendered line of a WHOIS record.
type Field struct {
	Key   string
	Value string
}

// flatten keeps the fields users actually ask about, in a stable order,
// dropping anything the registry left blank.
func flatten(info whoisparser.WhoisInfo) []Field {
	var fields []Field
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fields = append(fields, Field{Key: key, Value: value})
		}
	}

	if d := info.Domain; d != nil {
		add("Domain Name", d.Domain)
		add("Registry Domain ID", d.ID)
		add("Status", strings.Join(d.Status, ", "))
		add("Name Servers", strings.Join(d.NameServers, ", "))
		add("Created", d.CreatedDate)
		add("Updated", d.UpdatedDate)
		add("Expires", d.ExpirationDate)
	}
	if r := info.Registrar; r != nil {
		add("Registrar", r.Name)
		add("Registrar URL", r.ReferralURL)
		add("Registrar Email", r.Email)
	}
	if r := info.Registrant; r != nil {
		add("Registrant Name", r.Name)
		add("Registrant Organization", r.Organization)
		add("Registrant Country", r.Country)
	}
	return fields
}
