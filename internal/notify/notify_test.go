package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/config"
	"github.com/georgebier67/myedspace-referrals/internal/model"
)

func TestSlackNotify(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewSlackClient(srv.URL)
	if err := client.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got["text"] != "hello" {
		t.Errorf("payload = %v", got)
	}
}

func TestSlackNotifyErrors(t *testing.T) {
	client := NewSlackClient("")
	if err := client.Notify(context.Background(), "x"); !errors.Is(err, ErrSlackNotConfigured) {
		t.Errorf("err = %v, want ErrSlackNotConfigured", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "channel_not_found", http.StatusNotFound)
	}))
	defer srv.Close()

	client = NewSlackClient(srv.URL)
	err := client.Notify(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestHubSpotSubmitForm(t *testing.T) {
	var gotPath string
	var got formSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHubSpotClient(config.HubSpotConfig{
		PortalID: "12345",
		FormGUID: "form-guid",
	}, "https://refer.example.com")
	client.formsBaseURL = srv.URL

	err := client.SubmitForm(context.Background(), "", "", "Referral Signup", map[string]string{
		"email":     "jane@example.com",
		"firstname": "Jane",
		"lastname":  "",
	})
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	if gotPath != "/12345/form-guid" {
		t.Errorf("path = %q, want configured defaults applied", gotPath)
	}
	if got.Context.PageURI != "https://refer.example.com" || got.Context.PageName != "Referral Signup" {
		t.Errorf("context = %+v", got.Context)
	}
	// Empty values are dropped.
	for _, f := range got.Fields {
		if f.Name == "lastname" {
			t.Error("empty lastname should not be submitted")
		}
	}
	if len(got.Fields) != 2 {
		t.Errorf("fields = %+v, want 2", got.Fields)
	}
}

func TestHubSpotSubmitFormUnconfigured(t *testing.T) {
	client := NewHubSpotClient(config.HubSpotConfig{}, "")
	err := client.SubmitForm(context.Background(), "", "", "x", nil)
	if !errors.Is(err, ErrHubSpotNotConfigured) {
		t.Errorf("err = %v, want ErrHubSpotNotConfigured", err)
	}
}

func TestHubSpotUpdateContactProperties(t *testing.T) {
	var searchSeen, patchSeen bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-123" {
			t.Errorf("authorization = %q", auth)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/crm/v3/objects/contacts/search":
			searchSeen = true
			var req contactSearchRequest
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &req)
			if len(req.FilterGroups) != 1 || req.FilterGroups[0].Filters[0].Value != "jane@example.com" {
				t.Errorf("search request = %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]string{{"id": "901"}},
			})
		case r.Method == http.MethodPatch && r.URL.Path == "/crm/v3/objects/contacts/901":
			patchSeen = true
			var req map[string]map[string]string
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &req)
			if req["properties"]["referral_reward_status"] != "qualified" {
				t.Errorf("patch request = %+v", req)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewHubSpotClient(config.HubSpotConfig{AccessToken: "token-123"}, "")
	client.apiBaseURL = srv.URL

	err := client.UpdateContactProperties(context.Background(), "jane@example.com", map[string]string{
		"referral_reward_status": "qualified",
	})
	if err != nil {
		t.Fatalf("UpdateContactProperties: %v", err)
	}
	if !searchSeen || !patchSeen {
		t.Errorf("search=%v patch=%v, want both calls", searchSeen, patchSeen)
	}
}

func TestHubSpotUpdateContactNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer srv.Close()

	client := NewHubSpotClient(config.HubSpotConfig{AccessToken: "token-123"}, "")
	client.apiBaseURL = srv.URL

	err := client.UpdateContactProperties(context.Background(), "ghost@example.com", nil)
	if err == nil || !strings.Contains(err.Error(), "no hubspot contact") {
		t.Errorf("err = %v", err)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane", "Jane", ""},
		{"Jane van der Berg", "Jane", "van der Berg"},
		{"", "", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitName(%q) = %q, %q, want %q, %q", tt.in, first, last, tt.first, tt.last)
		}
	}
}

func TestDispatcherReferralCreated(t *testing.T) {
	formCh := make(chan formSubmission, 1)
	forms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sub formSubmission
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &sub)
		formCh <- sub
		w.WriteHeader(http.StatusOK)
	}))
	defer forms.Close()

	slackCh := make(chan map[string]string, 1)
	slack := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg map[string]string
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &msg)
		slackCh <- msg
		w.WriteHeader(http.StatusOK)
	}))
	defer slack.Close()

	hubspot := NewHubSpotClient(config.HubSpotConfig{
		PortalID:       "12345",
		FormGUID:       "referrer-guid",
		FriendFormGUID: "friend-guid",
	}, "https://refer.example.com")
	hubspot.formsBaseURL = forms.URL

	d := NewDispatcher(hubspot, NewSlackClient(slack.URL), zap.NewNop())
	d.ReferralCreated(
		&model.Referral{ReferredName: "Fred Bloggs", ReferredEmail: "fred@example.com"},
		&model.Referrer{Name: "Jane", Email: "jane@example.com"},
		nil,
	)
	d.Wait()

	sub := <-formCh
	var referredBy string
	for _, f := range sub.Fields {
		if f.Name == "referred_by" {
			referredBy = f.Value
		}
	}
	if referredBy != "jane@example.com" {
		t.Errorf("referred_by = %q", referredBy)
	}

	msg := <-slackCh
	if !strings.Contains(msg["text"], "Fred Bloggs") {
		t.Errorf("slack message = %q", msg["text"])
	}
}

func TestDispatcherSwallowsErrors(t *testing.T) {
	// Nothing configured: every delivery fails, none of it surfaces.
	d := NewDispatcher(NewHubSpotClient(config.HubSpotConfig{}, ""), NewSlackClient(""), zap.NewNop())
	d.ReferrerRegistered(&model.Referrer{Email: "jane@example.com", Name: "Jane"}, nil)
	d.ReferralQualified(&model.Referral{ReferrerEmail: "jane@example.com"}, "")
	d.Wait()
}

func TestMessageTemplates(t *testing.T) {
	msg := newReferralMessage("Jane", "Fred", "fred@example.com")
	if !strings.Contains(msg, "New Referral Signup") || !strings.Contains(msg, "Fred (fred@example.com)") {
		t.Errorf("message = %q", msg)
	}

	msg = referralQualifiedMessage("Jane", "jane@example.com", "Fred", "")
	if !strings.Contains(msg, "$150 Amazon voucher") {
		t.Errorf("default reward missing: %q", msg)
	}
	msg = referralQualifiedMessage("Jane", "jane@example.com", "Fred", "$100 gift card")
	if !strings.Contains(msg, "$100 gift card") {
		t.Errorf("reward missing: %q", msg)
	}
}
