package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"linkscout/vetting"
)

const safeBrowsingBaseURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

var safeBrowsingThreatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// SafeBrowsing checks URLs against the Google Safe Browsing v4 lookup API
type SafeBrowsing struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSafeBrowsing creates a Safe Browsing client
func NewSafeBrowsing(apiKey string, timeout time.Duration) *SafeBrowsing {
	return &SafeBrowsing{
		apiKey:  apiKey,
		baseURL: safeBrowsingBaseURL,
		client:  newHTTPClient(timeout),
	}
}

type threatEntry struct {
	URL string `json:"url"`
}

type safeBrowsingRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type safeBrowsingResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

func (s *SafeBrowsing) LookupSafeBrowsing(ctx context.Context, target string) (*vetting.SafeBrowsingRecord, error) {
	if s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var body safeBrowsingRequest
	body.Client.ClientID = "linkscout"
	body.Client.ClientVersion = "1.0"
	body.ThreatInfo.ThreatTypes = safeBrowsingThreatTypes
	body.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	body.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	body.ThreatInfo.ThreatEntries = []threatEntry{{URL: target}}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"?key="+url.QueryEscape(s.apiKey), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var data safeBrowsingResponse
	if err := doJSON(ctx, s.client, req, &data); err != nil {
		return nil, fmt.Errorf("safebrowsing: %w", err)
	}

	rec := vetting.CleanSafeBrowsing()
	seen := make(map[string]bool)
	for _, m := range data.Matches {
		rec.IsFlagged = true
		if m.ThreatType != "" && !seen[m.ThreatType] {
			seen[m.ThreatType] = true
			rec.ThreatTypes = append(rec.ThreatTypes, m.ThreatType)
		}
	}
	sort.Strings(rec.ThreatTypes)
	return &rec, nil
}
