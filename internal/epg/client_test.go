package epg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSplitProgramName(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		season  int
		episode int
		plain   bool
	}{
		{"Aldeia do Povo T3 - Ep. 12", "Aldeia do Povo", 3, 12, false},
		{"Jornal Nacional - Ep. 210", "Jornal Nacional", 1, 210, false},
		{"Filme da Noite", "Filme da Noite", 0, 0, true},
		{"T2 da Baixa", "T2 da Baixa", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, season, episode := SplitProgramName(tt.name)
			if title != tt.title {
				t.Fatalf("title: got %q want %q", title, tt.title)
			}
			if tt.plain {
				if season != nil || episode != nil {
					t.Fatalf("expected bare title, got T%v Ep%v", season, episode)
				}
				return
			}
			if season == nil || *season != tt.season {
				t.Fatalf("season: got %v want %d", season, tt.season)
			}
			if episode == nil || *episode != tt.episode {
				t.Fatalf("episode: got %v want %d", episode, tt.episode)
			}
		})
	}
}

func TestChannelsFiltersHDAndDecodesCharset(t *testing.T) {
	// ISO-8859-1 body: "Memória" carries 0xF3 for ó.
	body := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><channels>`+
		`<channel><pid>1</pid><name>RTP Mem`), 0xF3)
	body = append(body, []byte(`ria</name></channel>`+
		`<channel><pid>2</pid><name>SIC HD</name></channel>`+
		`<channel><pid>3</pid><name>SIC</name></channel>`+
		`</channels>`)...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=ISO-8859-1")
		w.Write(body)
	}))
	defer server.Close()

	client, err := New(server.URL, server.URL+"/guide")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	channels, err := client.Channels(context.Background())
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("HD simulcast not filtered: %+v", channels)
	}
	if channels[0].Name != "RTP Memória" {
		t.Fatalf("charset not decoded: %q", channels[0].Name)
	}
}

func TestGuidePostsChannelsguideRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["service"] != "channelsguide" || req["accountID"] != "" {
			t.Errorf("unexpected request payload: %+v", req)
		}
		w.Write([]byte(`{"d":{"channels":[{"name":"SIC","programs":[
            {"uniqueId":"p1","name":"Terra Nossa T2 - Ep. 4","date":"01-09-2026","timeIni":"21:30:00","duration":3600},
            {"uniqueId":"p2","name":"Sem Duracao","date":"01-09-2026","timeIni":"23:00:00","duration":0}]}]}}`))
	}))
	defer server.Close()

	client, err := New(server.URL+"/channels", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	grids, err := client.Guide(context.Background(), []string{"SIC"}, "01-09-2026", "07-09-2026")
	if err != nil {
		t.Fatalf("guide: %v", err)
	}
	if len(grids) != 1 || grids[0].Acronym != "SIC" || len(grids[0].Programs) != 2 {
		t.Fatalf("unexpected grid: %+v", grids)
	}
	// Unknown duration keeps the provider's zero sentinel.
	if grids[0].Programs[1].Duration != 0 {
		t.Fatalf("zero duration sentinel lost: %+v", grids[0].Programs[1])
	}

	lisbon, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	at, err := grids[0].Programs[0].AirTime(lisbon)
	if err != nil {
		t.Fatalf("air time: %v", err)
	}
	if got := at.UTC().Format(time.RFC3339); !strings.HasPrefix(got, "2026-09-01T20:30") {
		t.Fatalf("Lisbon DST conversion wrong: %s", got)
	}
}
