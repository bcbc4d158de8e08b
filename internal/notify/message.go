// Package notify delivers feed notifications to users over web push and email.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Message is one logical notification.
type Message struct {
	Title string
	Body  string
	// Link is usually relative ("/feed?post=..."); email makes it absolute.
	Link string
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

func (m Message) pushPayload() ([]byte, error) {
	return json.Marshal(pushPayload{Title: m.Title, Body: m.Body, URL: m.Link})
}

// absoluteLink resolves a relative link against baseURL.
func absoluteLink(baseURL, link string) string {
	if link == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(link, "/") {
		return base + link
	}
	return base + "/" + link
}

// DeliveryError is a failed transport call.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s delivery failed: status %d: %s", e.Channel, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s delivery failed: status %d", e.Channel, e.StatusCode)
}

// Gone reports whether the endpoint is permanently invalid (404/410).
func (e *DeliveryError) Gone() bool {
	return e.StatusCode == 404 || e.StatusCode == 410
}

// IsGone reports whether err marks a stale push subscription.
func IsGone(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Gone()
}
