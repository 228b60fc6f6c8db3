package analytics

import "time"

const (
	TopicURLShortened  = "url.shortened"
	TopicURLRedirected = "url.redirected"
)

// URLShortenedEvent is emitted after every successful shorten request,
// including requests that reused an existing binding.
type URLShortenedEvent struct {
	Short      string    `json:"short"`
	Alias      *string   `json:"alias"`
	Long       string    `json:"long"`
	UserID     string    `json:"userId"`
	Outcome    string    `json:"outcome"`
	OccurredAt time.Time `json:"occurredAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
}

// URLRedirectedEvent is emitted after every resolved redirect.
type URLRedirectedEvent struct {
	Code       string    `json:"code"`
	Long       string    `json:"long"`
	Source     string    `json:"source"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}
