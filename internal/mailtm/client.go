package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HASNATSQA/LoginAuthentication-Playwright/internal/otp"
)

// DefaultBaseURL is the public mail.tm endpoint.
const DefaultBaseURL = "https://api.mail.tm"

// Session is the authenticated state returned by Login and threaded through
// subsequent calls. Read-only after login; two sessions may be used
// concurrently against independent accounts.
type Session struct {
	Token     string
	AccountID string
	Address   string
}

// Address is a sender or recipient on a message.
type Address struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Message is a mailbox message as delivered by the provider. Immutable once
// fetched; the listing endpoint omits the full Text.
type Message struct {
	ID        string  `json:"id"`
	AccountID string  `json:"accountId"`
	From      Address `json:"from"`
	Subject   string  `json:"subject"`
	Intro     string  `json:"intro"`
	Text      string  `json:"text"`
	Seen      bool    `json:"seen"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// BodyText returns the plain-text body, falling back to the preview when the
// full text is absent.
func (m Message) BodyText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Intro
}

// ReceivedTime resolves the message's timestamp from its candidate fields.
func (m Message) ReceivedTime() (time.Time, bool) {
	return otp.FirstValidTime(map[string]string{
		"createdAt": m.CreatedAt,
		"updatedAt": m.UpdatedAt,
	})
}

// Domain is an address domain offered by the provider.
type Domain struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	IsActive  bool   `json:"isActive"`
	IsPrivate bool   `json:"isPrivate"`
}

// Account is a provisioned mailbox.
type Account struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type tokenResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

// Client talks to a mail.tm compatible API. It holds no session state of its
// own; sessions are explicit values so independent logins can coexist.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a mailbox client against baseURL (DefaultBaseURL for the
// public service).
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Named("mailtm"),
	}
}

// Login authenticates and returns the session used by all later calls.
func (c *Client) Login(ctx context.Context, address, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{
		"address":  address,
		"password": password,
	})
	if err != nil {
		return nil, &AuthError{Address: address, Err: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/token", "", bytes.NewReader(payload))
	if err != nil {
		return nil, &AuthError{Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &AuthError{Address: address, Status: resp.StatusCode}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, &AuthError{Address: address, Err: fmt.Errorf("decode token: %w", err)}
	}

	c.logger.Debug("logged in", zap.String("address", address), zap.String("account_id", token.ID))
	return &Session{Token: token.Token, AccountID: token.ID, Address: address}, nil
}

// ListMessages returns the inbox newest first, exactly as delivered by the
// provider. No client-side re-sorting.
func (c *Client) ListMessages(ctx context.Context, session *Session) ([]Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/messages", session.Token, nil)
	if err != nil {
		return nil, &TransportError{Op: "list messages", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "list messages", Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "list messages", Err: err}
	}

	// The API answers either a bare array or a hydra collection depending on
	// the Accept negotiation.
	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		var hydra struct {
			Member []Message `json:"hydra:member"`
		}
		if err2 := json.Unmarshal(body, &hydra); err2 != nil {
			return nil, &TransportError{Op: "list messages", Err: fmt.Errorf("decode (array: %v, hydra: %v)", err, err2)}
		}
		messages = hydra.Member
	}

	return messages, nil
}

// FetchBody retrieves the plain-text body of a message, falling back to the
// preview field when the full text is absent.
func (c *Client) FetchBody(ctx context.Context, session *Session, messageID string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/messages/"+messageID, session.Token, nil)
	if err != nil {
		return "", &TransportError{Op: "fetch message", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", &TransportError{Op: "fetch message", Status: resp.StatusCode}
	}

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", &TransportError{Op: "fetch message", Err: fmt.Errorf("decode message: %w", err)}
	}

	return msg.BodyText(), nil
}

// Domains lists the address domains currently offered by the provider.
func (c *Client) Domains(ctx context.Context) ([]Domain, error) {
	resp, err := c.do(ctx, http.MethodGet, "/domains", "", nil)
	if err != nil {
		return nil, &TransportError{Op: "list domains", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "list domains", Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "list domains", Err: err}
	}

	var domains []Domain
	if err := json.Unmarshal(body, &domains); err != nil {
		var hydra struct {
			Member []Domain `json:"hydra:member"`
		}
		if err2 := json.Unmarshal(body, &hydra); err2 != nil {
			return nil, &TransportError{Op: "list domains", Err: fmt.Errorf("decode (array: %v, hydra: %v)", err, err2)}
		}
		domains = hydra.Member
	}

	return domains, nil
}

// CreateAccount registers username@domain with the given password.
func (c *Client) CreateAccount(ctx context.Context, username, domain, password string) (*Account, error) {
	payload, err := json.Marshal(map[string]string{
		"address":  fmt.Sprintf("%s@%s", username, domain),
		"password": password,
	})
	if err != nil {
		return nil, &TransportError{Op: "create account", Err: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/accounts", "", bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "create account", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Op: "create account", Status: resp.StatusCode}
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, &TransportError{Op: "create account", Err: fmt.Errorf("decode account: %w", err)}
	}

	return &account, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}
