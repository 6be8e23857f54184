package mailgun

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/aatuh/mailgun/types"
)

// Wire field names.
const (
	keyFrom         = "from"
	keyTo           = "to"
	keyCc           = "cc"
	keyBcc          = "bcc"
	keySubject      = "subject"
	keyHTML         = "html"
	keyText         = "text"
	keyTestMode     = "o:testmode"
	keyDKIM         = "o:dkim"
	keyTracking     = "o:tracking"
	keyTrackOpens   = "o:tracking-opens"
	keyTrackClicks  = "o:tracking-clicks"
	keyDeliveryTime = "o:deliverytime"
	keyTag          = "o:tag"
	keyCampaign     = "o:campaign"
	keyAttachment   = "attachment"
	keyInline       = "inline"

	headerPrefix   = "h:"
	variablePrefix = "v:"
)

// Limits enforced by the builder.
const (
	MaxTags             = 3
	MaxTagLength        = 128
	MaxCampaignIDLength = 64
)

const (
	apiUser          = "api"
	clicksHTMLOnly   = "htmlonly"
	messagesEndpoint = "messages"
)

var recipientKinds = []string{keyTo, keyCc, keyBcc}

// Message builds one outbound email for the Mailgun messages API.
//
// Setters that cannot fail return the Message so calls can be chained.
// Setters that validate their input return an error and leave the message
// unchanged when they reject it. A Message is not safe for concurrent use.
type Message struct {
	domain    string
	apiKey    string
	transport Transport
	settings  Settings
	fields    *fieldSet
}

// NewMessage creates an empty message sent from domain with apiKey.
//
// Parameters:
//   - domain: The sending domain.
//   - apiKey: The API key.
//   - transport: The transport used by Send.
//   - opts: Optional settings.
//
// Returns:
//   - *Message: The message.
func NewMessage(
	domain string,
	apiKey string,
	transport Transport,
	opts ...Option,
) *Message {
	return newMessage(domain, apiKey, transport, applyOptions(opts))
}

func newMessage(domain, apiKey string, transport Transport, s Settings) *Message {
	return &Message{
		domain:    domain,
		apiKey:    apiKey,
		transport: transport,
		settings:  s,
		fields:    newFieldSet(),
	}
}

// Domain returns the sending domain.
func (m *Message) Domain() string { return m.domain }

// SetFrom sets the sender address. An address outside the sending domain is
// accepted but logged as a warning, since such mail is likely to be
// flagged as spam.
func (m *Message) SetFrom(address string) *Message {
	return m.SetFromNamed("", address)
}

// SetFromNamed sets the sender as "name <address>".
func (m *Message) SetFromNamed(name, address string) *Message {
	if !strings.Contains(strings.ToLower(address), strings.ToLower(m.domain)) {
		m.settings.Logger.Warn().
			Str("from", address).
			Str("domain", m.domain).
			Msg("from address should contain the sending domain or risk being marked as spam")
	}
	m.fields.set(keyFrom, formatAddress(name, address))
	return m
}

// AddTo appends recipients.
func (m *Message) AddTo(addresses ...string) *Message {
	return m.AddToNamed("", addresses...)
}

// AddToNamed appends recipients, each formatted with the same name.
func (m *Message) AddToNamed(name string, addresses ...string) *Message {
	// kind is a known constant, addRecipient cannot fail here.
	_ = m.addRecipient(keyTo, name, addresses)
	return m
}

// AddCc appends carbon copy recipients.
func (m *Message) AddCc(addresses ...string) *Message {
	return m.AddCcNamed("", addresses...)
}

// AddCcNamed appends carbon copy recipients with a shared name.
func (m *Message) AddCcNamed(name string, addresses ...string) *Message {
	// Known kind, no error.
	_ = m.addRecipient(keyCc, name, addresses)
	return m
}

// AddBcc appends blind carbon copy recipients.
func (m *Message) AddBcc(addresses ...string) *Message {
	return m.AddBccNamed("", addresses...)
}

// AddBccNamed appends blind carbon copy recipients with a shared name.
func (m *Message) AddBccNamed(name string, addresses ...string) *Message {
	// Known kind, no error.
	_ = m.addRecipient(keyBcc, name, addresses)
	return m
}

func (m *Message) addRecipient(kind, name string, addresses []string) error {
	if !lo.Contains(recipientKinds, kind) {
		return wrapf(ErrInvalidArgument, "recipient type %q", kind)
	}
	if len(addresses) == 0 {
		return nil
	}
	m.fields.add(kind, lo.Map(addresses, func(a string, _ int) string {
		return formatAddress(name, a)
	})...)
	return nil
}

// AddHeader sets a custom MIME header. Setting the same name again
// replaces the value.
func (m *Message) AddHeader(name, value string) *Message {
	m.fields.set(headerPrefix+name, value)
	return m
}

// SetReplyTo sets the Reply-To header.
func (m *Message) SetReplyTo(address string) *Message {
	return m.AddHeader("Reply-To", address)
}

// SetReplyToNamed sets the Reply-To header as "name <address>".
func (m *Message) SetReplyToNamed(name, address string) *Message {
	return m.AddHeader("Reply-To", formatAddress(name, address))
}

// SetSubject sets the subject line.
func (m *Message) SetSubject(subject string) *Message {
	m.fields.set(keySubject, subject)
	return m
}

// SetHTML sets the HTML body.
func (m *Message) SetHTML(body string) *Message {
	m.fields.set(keyHTML, body)
	return m
}

// SetText sets the plain text body.
func (m *Message) SetText(body string) *Message {
	m.fields.set(keyText, body)
	return m
}

// SetTestMode asks the API to accept but not deliver the message.
func (m *Message) SetTestMode(on bool) *Message {
	m.fields.set(keyTestMode, yesNo(on))
	return m
}

// EnableDKIM toggles DKIM signing.
func (m *Message) EnableDKIM(on bool) *Message {
	m.fields.set(keyDKIM, yesNo(on))
	return m
}

// EnableTracking toggles tracking for the message.
func (m *Message) EnableTracking(on bool) *Message {
	m.fields.set(keyTracking, yesNo(on))
	return m
}

// TrackOpens toggles open tracking.
func (m *Message) TrackOpens(on bool) *Message {
	m.fields.set(keyTrackOpens, yesNo(on))
	return m
}

// TrackClicks toggles click tracking for all parts.
func (m *Message) TrackClicks(on bool) *Message {
	m.fields.set(keyTrackClicks, yesNo(on))
	return m
}

// TrackClicksHTMLOnly tracks clicks in the HTML part only.
func (m *Message) TrackClicksHTMLOnly() *Message {
	m.fields.set(keyTrackClicks, clicksHTMLOnly)
	return m
}

// ScheduleDelivery delays delivery until at, which must be in the future.
// The time is stored in RFC 2822 form, in at's location. The wire format
// has whole seconds, so at is truncated before it is checked.
func (m *Message) ScheduleDelivery(at time.Time) error {
	at = at.Truncate(time.Second)
	now := m.settings.Now()
	if !at.After(now) {
		return wrapf(ErrInvalidArgument,
			"scheduled delivery %s must be after %s",
			at.Format(time.RFC1123Z), now.Format(time.RFC1123Z))
	}
	m.fields.set(keyDeliveryTime, at.Format(time.RFC1123Z))
	return nil
}

// Tags returns a copy of the tags added so far. It is never nil.
func (m *Message) Tags() []string {
	return append([]string{}, m.fields.list(keyTag)...)
}

// AddTag adds a tag. Tags longer than MaxTagLength characters are rejected
// with ErrInvalidArgument; a tag beyond MaxTags with ErrLimitExceeded.
func (m *Message) AddTag(tag string) error {
	if n := utf8.RuneCountInString(tag); n > MaxTagLength {
		return wrapf(ErrInvalidArgument,
			"tag has %d characters, max %d", n, MaxTagLength)
	}
	if len(m.fields.list(keyTag)) >= MaxTags {
		return wrapf(ErrLimitExceeded,
			"only %d tags may be applied to a message", MaxTags)
	}
	m.fields.add(keyTag, tag)
	return nil
}

// AddVariable attaches custom data. value is sent as is; callers encode
// structured data themselves, usually as JSON.
func (m *Message) AddVariable(name, value string) *Message {
	m.fields.set(variablePrefix+name, value)
	return m
}

// AddVariableJSON attaches v encoded as JSON.
func (m *Message) AddVariableJSON(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: variable %s: %v", ErrInvalidArgument, name, err)
	}
	m.AddVariable(name, string(b))
	return nil
}

// AddAttachment attaches the file at path. The file must be readable now;
// its content is read by the transport at send time.
func (m *Message) AddAttachment(path string) error {
	return m.addFile(keyAttachment, path)
}

// AddInline attaches the file at path for inline use, e.g. images
// referenced from the HTML body by file name.
func (m *Message) AddInline(path string) error {
	return m.addFile(keyInline, path)
}

func (m *Message) addFile(key, path string) error {
	if !m.settings.Files.IsReadable(path) {
		return wrapf(ErrUnreadable,
			"unable to attach %s: file does not exist or cannot be read", path)
	}
	m.fields.add(key, fileMarker+path)
	return nil
}

// AddToCampaign adds the message to a campaign. IDs longer than
// MaxCampaignIDLength characters are rejected.
func (m *Message) AddToCampaign(campaignID string) error {
	if n := utf8.RuneCountInString(campaignID); n > MaxCampaignIDLength {
		return wrapf(ErrInvalidArgument,
			"campaign id has %d characters, max %d", n, MaxCampaignIDLength)
	}
	m.fields.add(keyCampaign, campaignID)
	return nil
}

// Fields returns the form fields Send would submit, in insertion order.
func (m *Message) Fields() []types.Pair {
	pairs, _ := m.fields.flatten()
	return pairs
}

// Files returns the file parts Send would submit.
func (m *Message) Files() []types.FileRef {
	_, files := m.fields.flatten()
	return files
}

// Validate reports ErrIncompleteMessage when a required field is missing:
// to, from, subject and at least one of html or text.
func (m *Message) Validate() error {
	missing := lo.Filter([]string{keyTo, keyFrom, keySubject}, func(k string, _ int) bool {
		return !m.fields.has(k)
	})
	if !m.fields.has(keyHTML) && !m.fields.has(keyText) {
		missing = append(missing, keyHTML+" or "+keyText)
	}
	if len(missing) > 0 {
		return wrapf(ErrIncompleteMessage,
			"required fields are missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Send validates the message and submits it through the transport.
//
// Validation failures return an error and nothing is sent. Transport
// failures do not: they come back as a Response whose Available reports
// false. Send may be called again; each call submits the current state.
//
// Parameters:
//   - ctx: The context handed to the transport.
//
// Returns:
//   - *Response: The transport outcome.
//   - error: ErrIncompleteMessage or ErrNoTransport.
func (m *Message) Send(ctx context.Context) (*Response, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.transport == nil {
		return nil, ErrNoTransport
	}

	fields, files := m.fields.flatten()
	req := types.FormRequest{
		ID:       uuid.NewString(),
		URL:      m.endpoint(),
		Username: apiUser,
		Password: m.apiKey,
		Fields:   fields,
		Files:    files,
	}

	log := m.settings.Logger.With().
		Str("request_id", req.ID).
		Str("domain", m.domain).
		Logger()
	log.Debug().
		Int("fields", len(fields)).
		Int("files", len(files)).
		Msg("submitting message")

	hooks := m.settings.Hooks
	if hooks != nil && hooks.OnSubmitStart != nil {
		ctx = hooks.OnSubmitStart(ctx, &req)
	}
	res := m.transport.SubmitForm(ctx, req)
	if hooks != nil && hooks.OnSubmitDone != nil {
		hooks.OnSubmitDone(ctx, &req, res)
	}

	resp := NewResponse(res)
	if !resp.Available() {
		log.Warn().Err(res.Err).Msg("transport failed")
	} else {
		log.Debug().Int("status", resp.HTTPCode()).Msg("message submitted")
	}
	return resp, nil
}

func (m *Message) endpoint() string {
	return m.settings.APIRoot + "/" + m.domain + "/" + messagesEndpoint
}

// formatAddress returns a formatted email address.
func formatAddress(name, email string) string {
	if name != "" {
		return fmt.Sprintf("%s <%s>", name, email)
	}
	return email
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
