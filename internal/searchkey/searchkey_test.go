package searchkey

import (
	"reflect"
	"testing"
)

func TestMakeSearchable(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Odisseia", "_Odisseia_"},
		{"São Jorge", "_Sao_Jorge_"},
		{"L'Amour", "_L'Amour_"},
		{"O Dia D", "_O_Dia_D_"},
		{"Apocalipse: A 2a Guerra", "_Apocalipse_A_2a_Guerra_"},
		// Quote variants fold to an apostrophe.
		{"It’s Alive", "_It's_Alive_"},
		{"“Quoted”", "_'Quoted'_"},
		// Punctuation runs collapse to one underscore.
		{"Top -  Gear!!", "_Top_Gear_"},
		{"", "_"},
		{"...", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MakeSearchable(tt.input); got != tt.want {
				t.Errorf("MakeSearchable(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMakeSearchableIdempotent(t *testing.T) {
	inputs := []string{
		"Odisseia",
		"São Jorge e o Dragão",
		"L'Amour à Paris",
		"It’s “Alive”!",
		"Top -  Gear!!",
		"A 2a Guerra Mundial, dia a dia",
		"série exposé naïve façade",
		"___already___keyed___",
		"",
		"...",
		"Ação & Reação (VP)",
		"100% Português",
	}
	for _, input := range inputs {
		once := MakeSearchable(input)
		twice := MakeSearchable(once)
		if twice != once {
			t.Errorf("MakeSearchable(%q): second pass changed %q to %q", input, once, twice)
		}
	}
}

func TestMakeSearchableFoldsAccentVariants(t *testing.T) {
	// Broadcasters spell the same title with and without diacritics; both
	// spellings must land on one key.
	variants := [][]string{
		{"São Jorge", "Sao Jorge"},
		{"História de Portugal", "Historia de Portugal"},
		{"Caçada Real", "Cacada Real"},
		{"Exposé", "Expose"},
		{"Führer", "Fuhrer"},
		{"L’Été Meurtrier", "L'Ete Meurtrier"},
	}
	for _, group := range variants {
		want := MakeSearchable(group[0])
		for _, alt := range group[1:] {
			if got := MakeSearchable(alt); got != want {
				t.Errorf("MakeSearchable(%q) = %q, MakeSearchable(%q) = %q; want identical keys", group[0], want, alt, got)
			}
		}
	}
}

func TestStripAccents(t *testing.T) {
	if got := StripAccents("grelha clássica à noite"); got != "grelha classica a noite" {
		t.Fatalf("StripAccents = %q", got)
	}
}

func TestFixTitleOrder(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Beautiful Day, A", "A Beautiful Day"},
		{"Substitute, The", "The Substitute"},
		{"Morte em Veneza, Uma", "Uma Morte em Veneza"},
		{"Regresso, O", "O Regresso"},
		// The tail must be a lone article.
		{"Io, Robot", "Io, Robot"},
		{"No Country for Old Men", "No Country for Old Men"},
		{"Smith, John", "Smith, John"},
		{", The", ", The"},
		{"Title,", "Title,"},
		// Only the last comma is considered.
		{"Good, the Bad, The", "The Good, the Bad"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FixTitleOrder(tt.input); got != tt.want {
				t.Errorf("FixTitleOrder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSearchChars(t *testing.T) {
	got := SearchChars(`a "b" (c)`, []rune{'"', '(', ')'})
	want := [][]int{{2, 4}, {6}, {8}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchChars = %v, want %v", got, want)
	}

	empty := SearchChars("plain", []rune{'"'})
	if len(empty) != 1 || len(empty[0]) != 0 {
		t.Fatalf("SearchChars no-match = %v", empty)
	}
}
