package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/intermeet/backend/internal/domain"
)

// Client is a thin HTTP client for the meeting API, carrying the bearer token
// of one authenticated identity.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// JoinOutcome is the decoded admission response. Exactly one of Grant,
// RequiresPassword, RequiresLobby or Denied describes the outcome.
type JoinOutcome struct {
	Grant            *domain.SessionGrant
	RequiresPassword bool
	RequiresLobby    bool
	Denied           bool
	StatusCode       int
	Message          string
}

func (c *Client) Join(ctx context.Context, code, password string) (*JoinOutcome, error) {
	body := map[string]string{"code": code}
	if password != "" {
		body["password"] = password
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/rooms/join", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var grant domain.SessionGrant
		if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
			return nil, err
		}
		return &JoinOutcome{Grant: &grant, StatusCode: resp.StatusCode}, nil
	}

	var denial struct {
		Error            string `json:"error"`
		RequiresPassword bool   `json:"requiresPassword"`
		RequiresLobby    bool   `json:"requiresLobby"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&denial); err != nil {
		return nil, err
	}

	return &JoinOutcome{
		RequiresPassword: denial.RequiresPassword,
		RequiresLobby:    denial.RequiresLobby,
		Denied:           !denial.RequiresPassword && !denial.RequiresLobby,
		StatusCode:       resp.StatusCode,
		Message:          denial.Error,
	}, nil
}

func (c *Client) RequestEntry(ctx context.Context, code string) (domain.LobbyStatus, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/lobby/request", map[string]string{"code": code})
	if err != nil {
		return domain.LobbyStatusUnknown, err
	}
	defer resp.Body.Close()

	return decodeStatus(resp)
}

func (c *Client) CheckStatus(ctx context.Context, code string) (domain.LobbyStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/lobby/"+code+"/status", nil)
	if err != nil {
		return domain.LobbyStatusUnknown, err
	}
	defer resp.Body.Close()

	return decodeStatus(resp)
}

func (c *Client) Leave(ctx context.Context, code string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/rooms/"+code+"/leave", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("leave failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) CreateRoom(ctx context.Context, name, password string, waitingRoom bool, maxParticipants int) (code string, err error) {
	body := map[string]any{
		"name":             name,
		"waiting_room":     waitingRoom,
		"max_participants": maxParticipants,
	}
	if password != "" {
		body["password"] = password
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/rooms/create", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create room failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Room struct {
			Code string `json:"code"`
		} `json:"room"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Room.Code, nil
}

func Login(ctx context.Context, baseURL, email, password string) (string, error) {
	client := &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: 15 * time.Second}}
	resp, err := client.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}

func Guest(ctx context.Context, baseURL, name string) (string, error) {
	client := &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: 15 * time.Second}}
	resp, err := client.do(ctx, http.MethodPost, "/api/auth/guest", map[string]string{"name": name})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("guest sign-in failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	return c.httpClient.Do(req)
}

func decodeStatus(resp *http.Response) (domain.LobbyStatus, error) {
	if resp.StatusCode != http.StatusOK {
		var denial struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&denial)
		return domain.LobbyStatusUnknown, fmt.Errorf("lobby request failed with status %d: %s", resp.StatusCode, denial.Error)
	}

	var payload struct {
		Status domain.LobbyStatus `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.LobbyStatusUnknown, err
	}
	return payload.Status, nil
}
