// Package view turns backend responses into page view-models for the gateway
// and the terminal client. Fetch failures never escape a view: they become an
// error banner or sample data.
package view

import (
	"context"
	"errors"
	"net/http"

	"cinecity-client/internal/normalize"
	"cinecity-client/pkg/httpclient"
)

// Kind classifies a failed request for display
type Kind string

const (
	KindTransport    Kind = "transport"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindServer       Kind = "server"
)

// Banner is a user-facing error message
type Banner struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Classify maps err to a banner, nil when err is nil
func Classify(err error) *Banner {
	if err == nil {
		return nil
	}

	switch code := httpclient.StatusCode(err); {
	case httpclient.IsTransport(err), errors.Is(err, context.DeadlineExceeded):
		return &Banner{Kind: KindTransport, Message: "Cannot connect to server. Please check if the backend is running."}
	case code == http.StatusUnauthorized:
		return &Banner{Kind: KindUnauthorized, Message: "Session expired. Please log in again."}
	case code == http.StatusNotFound:
		return &Banner{Kind: KindNotFound, Message: detailOr(err, "Requested resource not found")}
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return &Banner{Kind: KindValidation, Message: detailOr(err, "Invalid request")}
	case code >= 500:
		return &Banner{Kind: KindServer, Message: detailOr(err, "Server error. Please try again later.")}
	case errors.Is(err, normalize.ErrUnrecognizedShape):
		return &Banner{Kind: KindServer, Message: "Unexpected response from server"}
	case code != 0:
		return &Banner{Kind: KindValidation, Message: detailOr(err, "Request failed")}
	}
	return &Banner{Kind: KindServer, Message: err.Error()}
}

func detailOr(err error, fallback string) string {
	if d := httpclient.Detail(err); d != "" {
		return d
	}
	return fallback
}

// withPrefix rewrites the banner message as "<prefix>: <message>"
func withPrefix(b *Banner, prefix string) *Banner {
	if b == nil {
		return nil
	}
	return &Banner{Kind: b.Kind, Message: prefix + ": " + b.Message}
}
