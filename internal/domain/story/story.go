package story

import (
	"fmt"
	"net/url"
	"time"

	"snooze/internal/domain/errs"
)

// Story is a single submitted link, as the API describes it.
type Story struct {
	ID        string    `json:"storyId" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Author    string    `json:"author" validate:"required"`
	URL       string    `json:"url" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is a story that has not been submitted yet.
type Draft struct {
	Title  string `json:"title" validate:"notblank"`
	Author string `json:"author" validate:"notblank"`
	URL    string `json:"url" validate:"notblank,http_url"`
}

// HostName returns the host part of the story url, without any port.
func (s Story) HostName() (string, error) {
	return hostName(s.URL)
}

// Validate checks that a decoded record carries every required field.
func (s Story) Validate() error {
	if err := ValidateStruct(s); err != nil {
		return fmt.Errorf("story %q: %w", s.ID, err)
	}
	return nil
}

// Validate rejects drafts with empty fields or a url that is not absolute.
func (d Draft) Validate() error {
	return ValidateStruct(d)
}

func hostName(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", errs.ErrMalformedURL, raw, err)
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", errs.ErrMalformedURL, raw)
	}
	return u.Hostname(), nil
}
