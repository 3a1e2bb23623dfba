// ABOUTME: Answer service boundary, its error types, and two implementations
// ABOUTME: HTTPService posts JSON to a remote endpoint; EchoService answers offline

package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Question is everything the answer service needs for one request.
type Question struct {
	RequestID string
	Text      string
	Subject   Profile
	Viewer    *Profile
}

// Service generates an answer for a question about a subject.
type Service interface {
	Answer(ctx context.Context, q Question) (string, error)
}

// ErrEmptyAnswer is returned when the service replied with no text.
var ErrEmptyAnswer = errors.New("empty answer")

// ServiceError wraps any failure of the answer service.
type ServiceError struct {
	RequestID string
	Err       error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("answer service (request %s): %v", e.RequestID, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// RefreshError wraps a failure to re-fetch the subject profile.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("profile refresh: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// maxErrorBody caps how much of a failed response is kept for the log.
const maxErrorBody = 1024

// HTTPService calls a JSON endpoint:
//
//	POST {"question": "...", "subject": {...}, "viewer": {...}}
//	200  {"answer": "..."}
type HTTPService struct {
	url    string
	client *http.Client
}

// NewHTTPService creates an HTTPService. A zero timeout means no client-side timeout.
func NewHTTPService(url string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type httpRequest struct {
	Question string   `json:"question"`
	Subject  Profile  `json:"subject"`
	Viewer   *Profile `json:"viewer,omitempty"`
}

type httpResponse struct {
	Answer string `json:"answer"`
}

// Answer implements Service.
func (s *HTTPService) Answer(ctx context.Context, q Question) (string, error) {
	body, err := json.Marshal(httpRequest{
		Question: q.Text,
		Subject:  q.Subject,
		Viewer:   q.Viewer,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if q.RequestID != "" {
		req.Header.Set("X-Request-ID", q.RequestID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if strings.TrimSpace(out.Answer) == "" {
		return "", ErrEmptyAnswer
	}

	return out.Answer, nil
}

// EchoService answers from the subject profile alone. It is used when no
// answer endpoint is configured.
type EchoService struct{}

// Answer implements Service.
func (EchoService) Answer(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You asked: _%s_\n\n", strings.TrimSpace(q.Text))
	if q.Subject.Headline != "" {
		fmt.Fprintf(&b, "**%s** is %s.\n", q.Subject.Name, q.Subject.Headline)
	} else {
		fmt.Fprintf(&b, "**%s** has not written a headline yet.\n", q.Subject.Name)
	}
	for _, fact := range q.Subject.Facts {
		fmt.Fprintf(&b, "- %s\n", fact)
	}
	for _, link := range q.Subject.Links {
		fmt.Fprintf(&b, "- [%s](%s)\n", link.Title, link.URL)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
