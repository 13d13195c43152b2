package notify

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

	"github.com/georgebier67/myedspace-referrals/internal/config"
)

const (
	hubspotFormsBaseURL = "https://api.hsforms.com/submissions/v3/integration/submit"
	hubspotAPIBaseURL   = "https://api.hubapi.com"
)

var ErrHubSpotNotConfigured = errors.New("hubspot configuration missing")

// HubSpotClient talks to the public Forms API (portal id + form guid, no
// auth) and the token-authenticated CRM contacts API.
type HubSpotClient struct {
	portalID       string
	formGUID       string
	friendFormGUID string
	accessToken    string
	pageURI        string
	formsBaseURL   string
	apiBaseURL     string
	client         *http.Client
}

func NewHubSpotClient(cfg config.HubSpotConfig, pageURI string) *HubSpotClient {
	return &HubSpotClient{
		portalID:       cfg.PortalID,
		formGUID:       cfg.FormGUID,
		friendFormGUID: cfg.FriendFormGUID,
		accessToken:    cfg.AccessToken,
		pageURI:        pageURI,
		formsBaseURL:   hubspotFormsBaseURL,
		apiBaseURL:     hubspotAPIBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type formField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type formSubmission struct {
	Fields  []formField `json:"fields"`
	Context formContext `json:"context"`
}

type formContext struct {
	PageURI  string `json:"pageUri"`
	PageName string `json:"pageName"`
}

// SubmitForm posts fields to a HubSpot form. Empty portal id or guid fall
// back to the configured defaults; empty field values are dropped.
func (c *HubSpotClient) SubmitForm(ctx context.Context, portalID, formGUID, pageName string, fields map[string]string) error {
	if portalID == "" {
		portalID = c.portalID
	}
	if formGUID == "" {
		formGUID = c.formGUID
	}
	if portalID == "" || formGUID == "" {
		return ErrHubSpotNotConfigured
	}

	submission := formSubmission{
		Context: formContext{PageURI: c.pageURI, PageName: pageName},
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		submission.Fields = append(submission.Fields, formField{Name: name, Value: value})
	}

	url := fmt.Sprintf("%s/%s/%s", c.formsBaseURL, portalID, formGUID)
	return c.postJSON(ctx, url, "", submission)
}

// FriendFormGUID returns the configured default guid for friend signups.
func (c *HubSpotClient) FriendFormGUID() string {
	return c.friendFormGUID
}

type contactSearchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type contactSearchResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// UpdateContactProperties finds the contact by email and patches the given
// properties. Used to tag referrers as qualified so downstream email
// automation fires.
func (c *HubSpotClient) UpdateContactProperties(ctx context.Context, email string, props map[string]string) error {
	if c.accessToken == "" {
		return ErrHubSpotNotConfigured
	}

	search := contactSearchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{PropertyName: "email", Operator: "EQ", Value: email}},
		}},
		Properties: []string{"email"},
		Limit:      1,
	}

	body, err := c.request(ctx, http.MethodPost,
		c.apiBaseURL+"/crm/v3/objects/contacts/search", search)
	if err != nil {
		return fmt.Errorf("contact search: %w", err)
	}

	var result contactSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("contact search: %w", err)
	}
	if len(result.Results) == 0 {
		return fmt.Errorf("no hubspot contact for %s", email)
	}

	patch := map[string]map[string]string{"properties": props}
	_, err = c.request(ctx, http.MethodPatch,
		c.apiBaseURL+"/crm/v3/objects/contacts/"+result.Results[0].ID, patch)
	if err != nil {
		return fmt.Errorf("contact update: %w", err)
	}
	return nil
}

func (c *HubSpotClient) postJSON(ctx context.Context, url, token string, payload interface{}) error {
	_, err := c.do(ctx, http.MethodPost, url, token, payload)
	return err
}

func (c *HubSpotClient) request(ctx context.Context, method, url string, payload interface{}) ([]byte, error) {
	return c.do(ctx, method, url, c.accessToken, payload)
}

func (c *HubSpotClient) do(ctx context.Context, method, url, token string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("hubspot returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// SplitName breaks a full name into HubSpot's firstname/lastname fields.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
