package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Mictilt/qrforge/content"
)

func payloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "url", Usage: "encode a link, https:// is added when missing"},

		&cli.StringFlag{Name: "wifi-ssid", Usage: "encode a Wi-Fi network"},
		&cli.StringFlag{Name: "wifi-password"},
		&cli.StringFlag{Name: "wifi-encryption", Value: string(content.WPA), Usage: "WPA, WEP or nopass"},
		&cli.BoolFlag{Name: "wifi-hidden"},

		&cli.StringFlag{Name: "vcard-first", Usage: "encode a contact card"},
		&cli.StringFlag{Name: "vcard-last"},
		&cli.StringFlag{Name: "vcard-org"},
		&cli.StringFlag{Name: "vcard-title"},
		&cli.StringFlag{Name: "vcard-phone"},
		&cli.StringFlag{Name: "vcard-email"},
		&cli.StringFlag{Name: "vcard-url"},
		&cli.StringFlag{Name: "vcard-street"},
		&cli.StringFlag{Name: "vcard-city"},
		&cli.StringFlag{Name: "vcard-state"},
		&cli.StringFlag{Name: "vcard-zip"},
		&cli.StringFlag{Name: "vcard-country"},

		&cli.StringFlag{Name: "email-to", Usage: "encode a mail draft"},
		&cli.StringFlag{Name: "email-subject"},
		&cli.StringFlag{Name: "email-body"},

		&cli.StringFlag{Name: "sms-phone", Usage: "encode a text message"},
		&cli.StringFlag{Name: "sms-message"},

		&cli.StringFlag{Name: "phone", Usage: "encode a phone number"},
		&cli.StringFlag{Name: "geo", Usage: "encode a location as lat,lng"},
	}
}

// payload builds the content from the payload flags, or takes the first
// argument when none is set. At most one kind of payload may be given.
func payload(c *cli.Context) (string, error) {
	var kinds []content.Type
	given := func(t content.Type, names ...string) bool {
		for _, n := range names {
			if c.String(n) != "" {
				kinds = append(kinds, t)
				return true
			}
		}
		return false
	}
	hasURL := given(content.TypeURL, "url")
	hasWiFi := given(content.TypeWiFi, "wifi-ssid")
	hasVCard := given(content.TypeVCard, "vcard-first", "vcard-last")
	hasEmail := given(content.TypeEmail, "email-to")
	hasSMS := given(content.TypeSMS, "sms-phone")
	hasPhone := given(content.TypePhone, "phone")
	hasGeo := given(content.TypeGeo, "geo")

	if len(kinds) > 1 {
		return "", errors.Errorf("only one payload kind at a time, got %v", kinds)
	}

	switch {
	case hasURL:
		return content.URL(strings.TrimSpace(c.String("url"))), nil
	case hasWiFi:
		return content.WiFi{
			SSID:       c.String("wifi-ssid"),
			Password:   c.String("wifi-password"),
			Encryption: content.Encryption(c.String("wifi-encryption")),
			Hidden:     c.Bool("wifi-hidden"),
		}.String(), nil
	case hasVCard:
		v := content.VCard{
			FirstName:    c.String("vcard-first"),
			LastName:     c.String("vcard-last"),
			Organization: c.String("vcard-org"),
			Title:        c.String("vcard-title"),
			Phone:        c.String("vcard-phone"),
			Email:        c.String("vcard-email"),
			URL:          c.String("vcard-url"),
		}
		addr := content.Address{
			Street:  c.String("vcard-street"),
			City:    c.String("vcard-city"),
			State:   c.String("vcard-state"),
			Zip:     c.String("vcard-zip"),
			Country: c.String("vcard-country"),
		}
		if addr != (content.Address{}) {
			v.Address = &addr
		}
		return v.String(), nil
	case hasEmail:
		return content.Email{
			To:      c.String("email-to"),
			Subject: c.String("email-subject"),
			Body:    c.String("email-body"),
		}.String(), nil
	case hasSMS:
		return content.SMS{Phone: c.String("sms-phone"), Message: c.String("sms-message")}.String(), nil
	case hasPhone:
		return content.Phone(c.String("phone")), nil
	case hasGeo:
		g, err := parseGeo(c.String("geo"))
		if err != nil {
			return "", err
		}
		return g.String(), nil
	}

	return c.Args().First(), nil
}

func parseGeo(s string) (content.Geo, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return content.Geo{}, errors.Errorf("geo wants lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return content.Geo{}, errors.Wrapf(err, "geo latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return content.Geo{}, errors.Wrapf(err, "geo longitude %q", parts[1])
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return content.Geo{}, errors.Errorf("geo %q out of range", s)
	}
	return content.Geo{Latitude: lat, Longitude: lng}, nil
}
