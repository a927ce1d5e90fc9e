package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Kanompung1988/ASR-NANO/internal/domain"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
	"github.com/Kanompung1988/ASR-NANO/internal/ports"
)

// Client implements ports.CoachClient against the coach backend's HTTP API.
// No timeout is set on the underlying http.Client: the interactive flow has
// no deadline of its own, and a backend timeout surfaces as a NetworkError.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Verify interface compliance at compile time
var _ ports.CoachClient = (*Client)(nil)

// NewClient creates a coach API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type scenarioPayload struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Goal  string   `json:"goal"`
	Steps []string `json:"steps"`
}

type scenariosResponse struct {
	Scenarios []scenarioPayload `json:"scenarios"`
}

// ListScenarios fetches the scenario catalog.
func (c *Client) ListScenarios(ctx context.Context) ([]domain.Scenario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/scenarios", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenarios request: %w", err)
	}

	var payload scenariosResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	scenarios := make([]domain.Scenario, 0, len(payload.Scenarios))
	for _, s := range payload.Scenarios {
		scenarios = append(scenarios, domain.Scenario{
			ID:    s.ID,
			Title: s.Title,
			Goal:  s.Goal,
			Steps: s.Steps,
		})
	}

	logging.Logger.Debug("Loaded scenario catalog", "count", len(scenarios))
	return scenarios, nil
}

type startRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type startResponse struct {
	OpeningMessage string `json:"opening_message"`
}

// StartConversation asks the coach for an opening message for a scenario.
func (c *Client) StartConversation(ctx context.Context, scenarioID string) (string, error) {
	body, err := json.Marshal(startRequest{ScenarioID: scenarioID})
	if err != nil {
		return "", fmt.Errorf("failed to encode start request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/conversation/start", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload startResponse
	if err := c.do(req, &payload); err != nil {
		return "", err
	}

	logging.Logger.Info("Conversation started", "scenario_id", scenarioID)
	return payload.OpeningMessage, nil
}

type turnResponse struct {
	Transcript    string `json:"transcript"`
	CoachResponse string `json:"coach_response"`
	IsComplete    bool   `json:"is_complete"`
}

// ProcessTurn submits one recorded clip together with the full prior turn
// history. The backend is stateless across calls, so the history rides along
// every time.
func (c *Client) ProcessTurn(ctx context.Context, scenarioID string, clip domain.AudioClip, history []domain.Turn) (*ports.TurnResult, error) {
	historyJSON, err := json.Marshal(turnsOrEmpty(history))
	if err != nil {
		return nil, fmt.Errorf("failed to encode turn history: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create audio form part: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, fmt.Errorf("failed to write audio form part: %w", err)
	}
	if err := writer.WriteField("scenario_id", scenarioID); err != nil {
		return nil, fmt.Errorf("failed to write scenario field: %w", err)
	}
	if err := writer.WriteField("history", string(historyJSON)); err != nil {
		return nil, fmt.Errorf("failed to write history field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/conversation/process", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build process request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var payload turnResponse
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}

	logging.Logger.Debug("Turn processed",
		"scenario_id", scenarioID,
		"history_len", len(history),
		"is_complete", payload.IsComplete)

	return &ports.TurnResult{
		Transcript: payload.Transcript,
		CoachReply: payload.CoachResponse,
		IsComplete: payload.IsComplete,
	}, nil
}

type evaluationRequest struct {
	ConversationHistory []domain.Turn `json:"conversation_history"`
}

type evaluationResponse struct {
	Evaluation string `json:"evaluation"`
}

// FinalEvaluation requests the IELTS-style evaluation for a full history.
func (c *Client) FinalEvaluation(ctx context.Context, history []domain.Turn) (string, error) {
	body, err := json.Marshal(evaluationRequest{ConversationHistory: turnsOrEmpty(history)})
	if err != nil {
		return "", fmt.Errorf("failed to encode evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/evaluation/final", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build evaluation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var payload evaluationResponse
	if err := c.do(req, &payload); err != nil {
		return "", err
	}

	logging.Logger.Info("Final evaluation received", "history_len", len(history))
	return payload.Evaluation, nil
}

// do executes a request and decodes a JSON response into out. Transport
// failures become *domain.NetworkError, non-2xx statuses *domain.ServerError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logger.Warn("Coach request failed", "url", req.URL.String(), "error", err)
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readErrorDetail(resp.Body)
		logging.Logger.Warn("Coach request rejected",
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"detail", detail)
		return &domain.ServerError{Status: resp.StatusCode, Detail: detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode coach response: %w", err)
	}
	return nil
}

// readErrorDetail pulls the FastAPI-style {"detail": ...} message out of an
// error body, falling back to the raw text.
func readErrorDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(body))
}

// turnsOrEmpty keeps the wire encoding an array, never null.
func turnsOrEmpty(turns []domain.Turn) []domain.Turn {
	if turns == nil {
		return []domain.Turn{}
	}
	return turns
}
