package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client sends transactional mail through Postmark. An unconfigured client
// (empty server token) is valid; senders must check Configured first.
type Client struct {
	serverToken string
	fromEmail   string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

// UpdateConfig swaps the credentials at runtime.
func (c *Client) UpdateConfig(serverToken, fromEmail string) {
	c.serverToken = serverToken
	c.fromEmail = fromEmail
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendVerificationCode emails the 6-digit code a new account must enter to
// verify its address.
func (c *Client) SendVerificationCode(toEmail, name, code string) error {
	subject := "Verify your EarnHub account"
	textBody := fmt.Sprintf("Hi %s,\n\nYour EarnHub verification code is:\n\n%s\n\nEnter it on the verification screen to activate your account.", name, code)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your EarnHub verification code is:</p><p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p><p>Enter it on the verification screen to activate your account.</p>`,
		name, code,
	)
	return c.send(toEmail, subject, textBody, htmlBody)
}

// SendModerationResult notifies an advertiser that their submission was
// reviewed.
func (c *Client) SendModerationResult(toEmail, name, adTitle string, approved bool) error {
	var subject, verdict string
	if approved {
		subject = "Your ad is live on EarnHub"
		verdict = "approved and published to the task feed"
	} else {
		subject = "Your ad submission was not approved"
		verdict = "reviewed and not approved"
	}
	textBody := fmt.Sprintf("Hi %s,\n\nYour ad %q has been %s.", name, adTitle, verdict)
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p><p>Your ad <strong>%s</strong> has been %s.</p>`, name, adTitle, verdict)
	return c.send(toEmail, subject, textBody, htmlBody)
}

func (c *Client) send(toEmail, subject, textBody, htmlBody string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.postmarkapp.com/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
