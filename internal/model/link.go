package model

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Link is a URL with a description, attached to exactly one task.
type Link struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// SuggestedLink is a link proposed by the suggestion service before the user
// saves it onto a task.
type SuggestedLink struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// NewLink validates rawURL and builds a link. A blank description defaults to
// the URL's host name.
func NewLink(id, rawURL, description string) (Link, error) {
	u, err := ParseLinkURL(rawURL)
	if err != nil {
		return Link{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = u.Hostname()
	}
	return Link{ID: id, URL: u.String(), Description: description}, nil
}

// ParseLinkURL accepts absolute http and https URLs only.
func ParseLinkURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// IDGenerator produces unique opaque tokens for tasks and links.
type IDGenerator func() string

// NewUUIDGenerator returns the default random id generator.
func NewUUIDGenerator() IDGenerator {
	return func() string { return uuid.New().String() }
}
