package language

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"por", "pt"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"gre", "el"},
		{"pt-PT", "pt"},
		{"pt_BR", "pt"},
		{"en-US", "en"},
		// Unknown two-letter codes pass through.
		{"xy", "xy"},
		{"xyz", ""},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"mixed forms", []string{"eng", "pt-PT", "EN", "por"}, []string{"en", "pt"}},
		{"unknown dropped", []string{"xyz", "fr"}, []string{"fr"}},
		{"order preserved", []string{"ja", "ko", "ja"}, []string{"ja", "ko"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeList(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		code      string
		recipient string
		want      string
	}{
		{"en", "en", "English"},
		{"en", "pt", "Inglês"},
		{"por", "pt-PT", "Português"},
		{"de", "en-GB", "German"},
		{"xy", "en", "XY"},
		{"", "en", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code+"_"+tt.recipient, func(t *testing.T) {
			if got := DisplayName(tt.code, tt.recipient); got != tt.want {
				t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.code, tt.recipient, got, tt.want)
			}
		})
	}
}

func TestIsPortuguese(t *testing.T) {
	for tag, want := range map[string]bool{
		"pt":    true,
		"pt-BR": true,
		"PT_pt": true,
		"por":   true,
		"en":    false,
		"":      false,
	} {
		if got := IsPortuguese(tag); got != want {
			t.Errorf("IsPortuguese(%q) = %v, want %v", tag, got, want)
		}
	}
}
