package handlers

import (
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/therealhieu/wee/internal/shortener"
)

// reservedAliases shadow fixed routes and would never redirect.
var reservedAliases = map[string]bool{
	"api":     true,
	"health":  true,
	"metrics": true,
	"ping":    true,
	"schemas": true,
	"urls":    true,
}

// params validates req against today's UTC date and converts it to service params.
func params(req *ShortenRequest, today shortener.Date) (shortener.ShortenParams, error) {
	var details []error

	if !absoluteHTTP(req.Body.URL) {
		details = append(details, &huma.ErrorDetail{
			Location: "body.url",
			Message:  "must be an absolute http or https url",
			Value:    req.Body.URL,
		})
	}

	p := shortener.ShortenParams{
		URL:    req.Body.URL,
		UserID: req.Body.UserID,
	}

	if req.Body.Alias != "" {
		p.Alias = shortener.StringPtr(req.Body.Alias)

		if reservedAliases[strings.ToLower(req.Body.Alias)] {
			details = append(details, &huma.ErrorDetail{
				Location: "body.alias",
				Message:  "alias is reserved",
				Value:    req.Body.Alias,
			})
		}
	}

	if req.Body.ExpirationDate != "" {
		date, err := shortener.ParseDate(req.Body.ExpirationDate)

		switch {
		case err != nil:
			details = append(details, &huma.ErrorDetail{
				Location: "body.expirationDate",
				Message:  "must be a YYYY-MM-DD date",
				Value:    req.Body.ExpirationDate,
			})
		case !date.After(today):
			details = append(details, &huma.ErrorDetail{
				Location: "body.expirationDate",
				Message:  "must be after " + today.String(),
				Value:    req.Body.ExpirationDate,
			})
		default:
			p.ExpirationDate = &date
		}
	}

	if len(details) > 0 {
		return shortener.ShortenParams{}, huma.Error422UnprocessableEntity("validation failed", details...)
	}

	return p, nil
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
