package epg

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Channel is one entry of the provider's channel list.
type Channel struct {
	PID  string
	Name string
}

// Program is one scheduled entry of the channelsguide response.
type Program struct {
	UniqueID string `json:"uniqueId"`
	Name     string `json:"name"`
	// Date is DD-MM-YYYY in the provider's local zone.
	Date string `json:"date"`
	// TimeIni is HH:MM:SS.
	TimeIni string `json:"timeIni"`
	// Duration is seconds; the provider sends 0 when unknown and that
	// sentinel is preserved downstream.
	Duration int `json:"duration"`
}

// ChannelPrograms pairs an acronym with its program list.
type ChannelPrograms struct {
	Acronym  string    `json:"name"`
	Programs []Program `json:"programs"`
}

// Client fetches channel lists and schedule grids.
type Client struct {
	channelsURL string
	showsURL    string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an EPG client.
func New(channelsURL, showsURL string, opts ...Option) (*Client, error) {
	channelsURL = strings.TrimSpace(channelsURL)
	showsURL = strings.TrimSpace(showsURL)
	if channelsURL == "" || showsURL == "" {
		return nil, errors.New("epg channel and shows urls required")
	}
	client := &Client{
		channelsURL: channelsURL,
		showsURL:    showsURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Channels fetches the provider channel list. Entries whose name contains
// "HD" are dropped; the provider lists HD simulcasts of the same channels.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.channelsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build channels request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch channels: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("epg channels returned %d", resp.StatusCode)
	}
	channels, err := decodeChannelXML(resp.Body)
	if err != nil {
		return nil, err
	}

	filtered := channels[:0]
	for _, ch := range channels {
		if strings.Contains(ch.Name, "HD") {
			continue
		}
		filtered = append(filtered, ch)
	}
	return filtered, nil
}

// decodeChannelXML walks the document for <channel> elements carrying
// <pid> and <name> children. The provider does not declare UTF-8, so the
// decoder sniffs the charset from the XML declaration.
func decodeChannelXML(r io.Reader) ([]Channel, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var channels []Channel
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode channel xml: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, "channel") {
			continue
		}
		var entry struct {
			PID  string `xml:"pid"`
			Name string `xml:"name"`
		}
		if err := decoder.DecodeElement(&entry, &start); err != nil {
			return nil, fmt.Errorf("decode channel element: %w", err)
		}
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			continue
		}
		channels = append(channels, Channel{PID: entry.PID, Name: entry.Name})
	}
	return channels, nil
}

// Guide fetches the program grid for the given channel acronyms between
// dateStart and dateEnd (DD-MM-YYYY). Callers batch acronyms to the
// configured max per request.
func (c *Client) Guide(ctx context.Context, acronyms []string, dateStart, dateEnd string) ([]ChannelPrograms, error) {
	if len(acronyms) == 0 {
		return nil, nil
	}
	payload := struct {
		Service   string   `json:"service"`
		Channels  []string `json:"channels"`
		DateStart string   `json:"dateStart"`
		DateEnd   string   `json:"dateEnd"`
		AccountID string   `json:"accountID"`
	}{
		Service:   "channelsguide",
		Channels:  acronyms,
		DateStart: dateStart,
		DateEnd:   dateEnd,
		AccountID: "",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal guide request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.showsURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build guide request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch guide: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("epg guide returned %d", resp.StatusCode)
	}

	var response struct {
		D struct {
			Channels []ChannelPrograms `json:"channels"`
		} `json:"d"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode guide response: %w", err)
	}
	return response.D.Channels, nil
}

// AirTime resolves the program's local air time in the given zone.
func (p Program) AirTime(loc *time.Location) (time.Time, error) {
	at, err := time.ParseInLocation("02-01-2006 15:04:05", p.Date+" "+p.TimeIni, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse program time %q %q: %w", p.Date, p.TimeIni, err)
	}
	return at, nil
}
