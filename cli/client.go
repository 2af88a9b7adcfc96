package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// ApiClient talks to the cantina ordering API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// NewApiClient creates a new API client from CANTINA_API_URL and CANTINA_TOKEN
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("CANTINA_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		BaseURL: baseURL,
		Token:   os.Getenv("CANTINA_TOKEN"),
	}
}

// MenuItem is one entry of the menu
type MenuItem struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// OrderLine is one line of the current order
type OrderLine struct {
	Key      string   `json:"key"`
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

// Order is the current order as returned with every reply
type Order struct {
	Lines   []OrderLine `json:"lines"`
	Summary string      `json:"summary"`
	Total   string      `json:"total"`
}

// Reply is the assistant's answer to one message
type Reply struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
	Order  Order  `json:"order"`
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return nil
}

// CreateSession starts a conversation and returns its ID
func (c *ApiClient) CreateSession() (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(http.MethodPost, "/api/v1/sessions", nil, http.StatusCreated, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// SendMessage sends one utterance to the session
func (c *ApiClient) SendMessage(sessionID, message string) (*Reply, error) {
	var reply Reply
	body := map[string]string{"message": message}
	if err := c.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages", body, http.StatusOK, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// GetMenu retrieves the menu
func (c *ApiClient) GetMenu() ([]MenuItem, error) {
	var items []MenuItem
	if err := c.do(http.MethodGet, "/api/v1/menu", nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// EndSession deletes the conversation
func (c *ApiClient) EndSession(sessionID string) error {
	return c.do(http.MethodDelete, "/api/v1/sessions/"+sessionID, nil, http.StatusNoContent, nil)
}

func (c *ApiClient) do(method, path string, in interface{}, want int, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status code: %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
