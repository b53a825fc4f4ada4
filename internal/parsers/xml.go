package parsers

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// xmlEvent mirrors one <Event> element of the documentary-channel guide.
type xmlEvent struct {
	BeginTime     string `xml:"beginTime,attr"`
	Duration      int    `xml:"duration,attr"`
	EpgProduction struct {
		EpgText struct {
			Name             string `xml:"name"`
			ShortDescription string `xml:"shortDescription"`
		} `xml:"EpgText"`
	} `xml:"EpgProduction"`
	ExtendedInfo []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:",chardata"`
	} `xml:"ExtendedInfo"`
}

// xmlExtendedKeys maps ExtendedInfo name attributes to logical fields.
var xmlExtendedKeys = map[string]string{
	"OriginalEventName": "original_title",
	"Year":              "year",
	"Director":          "directors",
	"Casting":           "cast",
	"Nationality":       "countries",
	"Cycle":             "season",
	"EpisodeNumber":     "episode",
}

// extractXMLGuide walks <Event> elements. Titles and synopsis come from
// the nested EpgText, remaining metadata from the flat ExtendedInfo list
// keyed by name attribute. Duration arrives in seconds.
func extractXMLGuide(path string, cfg *Config) ([]rawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml guide: %w", err)
	}
	defer file.Close()
	return decodeXMLGuide(file, cfg)
}

func decodeXMLGuide(r io.Reader, cfg *Config) ([]rawRecord, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var records []rawRecord
	index := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml guide: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "Event" {
			continue
		}
		var event xmlEvent
		if err := decoder.DecodeElement(&event, &start); err != nil {
			return nil, fmt.Errorf("decode event element: %w", err)
		}
		index++

		fields := map[string]string{
			"date_time": strings.TrimSpace(event.BeginTime),
		}
		if event.Duration > 0 {
			fields["duration"] = fmt.Sprintf("%d", event.Duration)
		}
		if title := strings.TrimSpace(event.EpgProduction.EpgText.Name); title != "" {
			fields["localized_title"] = title
		}
		if synopsis := strings.TrimSpace(event.EpgProduction.EpgText.ShortDescription); synopsis != "" {
			fields["synopsis"] = synopsis
		}
		for _, info := range event.ExtendedInfo {
			field, known := xmlExtendedKeys[strings.TrimSpace(info.Name)]
			if !known {
				continue
			}
			if value := strings.TrimSpace(info.Value); value != "" {
				fields[field] = value
			}
		}
		records = append(records, rawRecord{Fields: fields, SourceRow: index})
	}
	return records, nil
}
