// Package quizhttp implements the wire protocol of the remote quiz service:
// questions are fetched with GET and answers scored with a JSON POST, each
// response carrying the URL for the next step of the chain.
package quizhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"quizdash/internal/domain"
)

// QuestionPayload is the decoded question resource. Presence of Alternatives
// implies a choice question; absence implies free-text. NextURL is where the
// answer for this question must be posted.
type QuestionPayload struct {
	Question     string            `json:"question"`
	Alternatives map[string]string `json:"alternatives,omitempty"`
	Limit        int               `json:"limit,omitempty"`
	NextURL      string            `json:"nextURL,omitempty"`
}

// AnswerResult is the decoded body of a successful answer submission. An empty
// NextURL signals chain exhaustion.
type AnswerResult struct {
	NextURL string `json:"nextURL,omitempty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

// Client talks to a quiz service. Calls are attempted once; there are no
// retries.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// FetchQuestion retrieves and decodes the question resource at url. Any
// non-2xx status is a transport failure.
func (c *Client) FetchQuestion(ctx context.Context, url string) (QuestionPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return QuestionPayload{}, fmt.Errorf("build question request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return QuestionPayload{}, fmt.Errorf("fetch question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return QuestionPayload{}, fmt.Errorf("fetch question: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload QuestionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return QuestionPayload{}, fmt.Errorf("decode question: %w", err)
	}

	log.Debug().Str("url", url).Int("limit", payload.Limit).Bool("choice", len(payload.Alternatives) > 0).Msg("fetched question")
	return payload, nil
}

// SubmitAnswer posts the answer to url. A 400 response means the answer was
// wrong (domain.ErrWrongAnswer); any other non-2xx status is a transport
// failure. The result's NextURL points at the next question, or is empty when
// the chain is exhausted.
func (c *Client) SubmitAnswer(ctx context.Context, url, answer string) (AnswerResult, error) {
	body, err := json.Marshal(answerRequest{Answer: answer})
	if err != nil {
		return AnswerResult{}, fmt.Errorf("encode answer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return AnswerResult{}, fmt.Errorf("build answer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("submit answer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return AnswerResult{}, domain.ErrWrongAnswer
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return AnswerResult{}, fmt.Errorf("submit answer: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result AnswerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return AnswerResult{}, fmt.Errorf("decode answer result: %w", err)
	}

	log.Debug().Str("url", url).Bool("chain_exhausted", result.NextURL == "").Msg("answer accepted")
	return result, nil
}
