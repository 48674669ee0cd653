// Package content classifies QR payloads and formats the structured ones
// (Wi-Fi credentials, contact cards, mail, SMS, phone, location) into the
// strings scanners expect.
package content

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Type is the kind of payload a code carries.
type Type string

const (
	TypeURL      Type = "url"
	TypeText     Type = "text"
	TypeWiFi     Type = "wifi"
	TypeVCard    Type = "vcard"
	TypeEmail    Type = "email"
	TypeSMS      Type = "sms"
	TypePhone    Type = "phone"
	TypeGeo      Type = "geo"
	TypeCalendar Type = "calendar"
)

var allTypes = []Type{
	TypeURL, TypeText, TypeWiFi, TypeVCard, TypeEmail, TypeSMS, TypePhone, TypeGeo, TypeCalendar,
}

var (
	schemeURL = regexp.MustCompile(`(?i)^https?://`)
	bareURL   = regexp.MustCompile(`(?i)^[a-z0-9.-]+\.[a-z]{2,}`)
)

// DetectType guesses the type from the payload's prefix. Bare domains such as
// "example.com/path" count as URLs.
func DetectType(s string) Type {
	if s == "" {
		return TypeText
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "wifi:"):
		return TypeWiFi
	case strings.HasPrefix(lower, "begin:vcard"):
		return TypeVCard
	case strings.HasPrefix(lower, "mailto:"):
		return TypeEmail
	case strings.HasPrefix(lower, "sms:"), strings.HasPrefix(lower, "smsto:"):
		return TypeSMS
	case strings.HasPrefix(lower, "tel:"):
		return TypePhone
	case strings.HasPrefix(lower, "geo:"):
		return TypeGeo
	case strings.HasPrefix(lower, "begin:vevent"):
		return TypeCalendar
	case schemeURL.MatchString(s), bareURL.MatchString(s):
		return TypeURL
	}
	return TypeText
}

// ParseType maps a declared type name onto a Type. Unknown or empty names fall
// back to detection on payload.
func ParseType(name, payload string) Type {
	n := Type(strings.ToLower(strings.TrimSpace(name)))
	for _, t := range allTypes {
		if n == t {
			return t
		}
	}
	return DetectType(payload)
}

// Encryption is the Wi-Fi authentication type.
type Encryption string

const (
	WPA    Encryption = "WPA"
	WEP    Encryption = "WEP"
	NoPass Encryption = "nopass"
)

type WiFi struct {
	SSID       string
	Password   string
	Encryption Encryption
	Hidden     bool
}

var wifiEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `:`, `\:`, `"`, `\"`)

// String renders WIFI:T:<enc>;S:<ssid>;P:<password>;H:true;;
func (w WiFi) String() string {
	enc := w.Encryption
	if enc == "" {
		enc = WPA
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WIFI:T:%s;S:%s;", enc, wifiEscaper.Replace(w.SSID))
	if enc != NoPass && w.Password != "" {
		fmt.Fprintf(&b, "P:%s;", wifiEscaper.Replace(w.Password))
	}
	if w.Hidden {
		b.WriteString("H:true;")
	}
	b.WriteString(";")
	return b.String()
}

type Address struct {
	Street, City, State, Zip, Country string
}

// VCard is a contact card, rendered as vCard 3.0.
type VCard struct {
	FirstName    string
	LastName     string
	Organization string
	Title        string
	Phone        string
	Email        string
	URL          string
	Address      *Address
}

func (v VCard) String() string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		fmt.Sprintf("N:%s;%s;;;", v.LastName, v.FirstName),
		"FN:" + strings.TrimSpace(strings.Join(nonEmpty(v.FirstName, v.LastName), " ")),
	}

	optional := []struct{ key, val string }{
		{"ORG", v.Organization},
		{"TITLE", v.Title},
		{"TEL", v.Phone},
		{"EMAIL", v.Email},
		{"URL", v.URL},
	}
	for _, f := range optional {
		if f.val != "" {
			lines = append(lines, f.key+":"+f.val)
		}
	}

	if a := v.Address; a != nil {
		lines = append(lines, fmt.Sprintf("ADR:;;%s;%s;%s;%s;%s", a.Street, a.City, a.State, a.Zip, a.Country))
	}

	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// String renders mailto:<to>?subject=..&body=.. with escaped parameters.
func (e Email) String() string {
	var params []string
	if e.Subject != "" {
		params = append(params, "subject="+escapeComponent(e.Subject))
	}
	if e.Body != "" {
		params = append(params, "body="+escapeComponent(e.Body))
	}

	s := "mailto:" + e.To
	if len(params) > 0 {
		s += "?" + strings.Join(params, "&")
	}
	return s
}

type SMS struct {
	Phone   string
	Message string
}

func (s SMS) String() string {
	out := "sms:" + s.Phone
	if s.Message != "" {
		out += "?body=" + escapeComponent(s.Message)
	}
	return out
}

// Phone renders tel:<number> with all whitespace removed.
func Phone(number string) string {
	return "tel:" + strings.Join(strings.Fields(number), "")
}

type Geo struct {
	Latitude, Longitude float64
}

func (g Geo) String() string {
	return fmt.Sprintf("geo:%g,%g", g.Latitude, g.Longitude)
}

// URL adds https:// when s has no http(s) scheme.
func URL(s string) string {
	if s == "" {
		return ""
	}
	if schemeURL.MatchString(s) {
		return s
	}
	return "https://" + s
}

// escapeComponent percent-encodes s for a URI query value, spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func nonEmpty(ss ...string) []string {
	out := ss[:0:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
