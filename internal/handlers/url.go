package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/therealhieu/wee/internal/analytics"
	"github.com/therealhieu/wee/internal/middleware"
	"github.com/therealhieu/wee/internal/shortener"
	"go.uber.org/zap"
)

const (
	opShorten  = "shorten"
	opRedirect = "redirect"
)

// Shortener creates or reuses short URL bindings.
type Shortener interface {
	Shorten(ctx context.Context, params shortener.ShortenParams) (*shortener.ShortenResult, error)
}

// Redirector resolves short codes and aliases.
type Redirector interface {
	Redirect(ctx context.Context, code string) (*shortener.Resolution, error)
}

// Recorder counts request outcomes.
type Recorder interface {
	Shortened(outcome string)
	Redirected(source string)
	Failed(operation, class string)
}

type nopRecorder struct{}

func (nopRecorder) Shortened(string)      {}
func (nopRecorder) Redirected(string)     {}
func (nopRecorder) Failed(string, string) {}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service   Shortener
	resolver  Redirector
	publisher *analytics.Publisher
	recorder  Recorder
	clock     shortener.Clock
	baseURL   string
	logger    *zap.Logger
}

// Option configures a URLHandler.
type Option func(*URLHandler)

// WithPublisher publishes analytics events for every served request.
func WithPublisher(publisher *analytics.Publisher) Option {
	return func(h *URLHandler) {
		h.publisher = publisher
	}
}

// WithRecorder records request outcomes.
func WithRecorder(recorder Recorder) Option {
	return func(h *URLHandler) {
		h.recorder = recorder
	}
}

// WithClock overrides the clock used for validation and event timestamps.
func WithClock(clock shortener.Clock) Option {
	return func(h *URLHandler) {
		h.clock = clock
	}
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service Shortener,
	resolver Redirector,
	baseURL string,
	logger *zap.Logger,
	opts ...Option,
) *URLHandler {
	h := &URLHandler{
		service:  service,
		resolver: resolver,
		recorder: nopRecorder{},
		clock:    shortener.SystemClock{},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	now := h.clock.Now()

	p, err := params(req, shortener.DateOf(now))
	if err != nil {
		h.recorder.Failed(opShorten, "invalid")

		return nil, err
	}

	result, err := h.service.Shorten(ctx, p)
	if err != nil {
		h.recorder.Failed(opShorten, errorClass(err))

		return nil, toHTTPError(h.logger, opShorten, err)
	}

	h.recorder.Shortened(string(result.Outcome))

	meta := middleware.MetaFrom(ctx)
	event := &analytics.URLShortenedEvent{
		Short:      result.Short,
		Alias:      result.Alias,
		Long:       p.URL,
		UserID:     p.UserID,
		Outcome:    string(result.Outcome),
		OccurredAt: now,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	}

	if err := h.publisher.URLShortened(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("short", event.Short),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Body.Short = result.Short
	resp.Body.Alias = result.Alias
	resp.Body.ShortURL = fmt.Sprintf("%s/%s", h.baseURL, result.Short)

	if result.ExpirationDate != nil {
		date := result.ExpirationDate.String()
		resp.Body.ExpirationDate = &date
	}

	return resp, nil
}

func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	res, err := h.resolver.Redirect(ctx, req.Code)
	if err != nil {
		h.recorder.Failed(opRedirect, errorClass(err))

		return nil, toHTTPError(h.logger, opRedirect, err)
	}

	h.recorder.Redirected(string(res.Source))

	meta := middleware.MetaFrom(ctx)
	event := &analytics.URLRedirectedEvent{
		Code:       req.Code,
		Long:       res.Long,
		Source:     string(res.Source),
		AccessedAt: h.clock.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publisher.URLRedirected(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{
		Status: http.StatusTemporaryRedirect,
	}
	resp.Headers.Location = res.Long

	return resp, nil
}
