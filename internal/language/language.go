package language

import "strings"

type entry struct {
	iso2   string // ISO 639-1
	iso3   string // ISO 639-2 terminology code
	alt3   string // ISO 639-2 bibliographic alternate ("fre" vs "fra")
	name   string
	namePT string
}

var table = []entry{
	{"en", "eng", "", "English", "Inglês"},
	{"pt", "por", "", "Portuguese", "Português"},
	{"es", "spa", "", "Spanish", "Espanhol"},
	{"fr", "fra", "fre", "French", "Francês"},
	{"de", "deu", "ger", "German", "Alemão"},
	{"it", "ita", "", "Italian", "Italiano"},
	{"ja", "jpn", "", "Japanese", "Japonês"},
	{"ko", "kor", "", "Korean", "Coreano"},
	{"zh", "zho", "chi", "Chinese", "Chinês"},
	{"ru", "rus", "", "Russian", "Russo"},
	{"ar", "ara", "", "Arabic", "Árabe"},
	{"hi", "hin", "", "Hindi", "Hindi"},
	{"nl", "nld", "dut", "Dutch", "Neerlandês"},
	{"pl", "pol", "", "Polish", "Polaco"},
	{"sv", "swe", "", "Swedish", "Sueco"},
	{"da", "dan", "", "Danish", "Dinamarquês"},
	{"no", "nor", "", "Norwegian", "Norueguês"},
	{"fi", "fin", "", "Finnish", "Finlandês"},
	{"tr", "tur", "", "Turkish", "Turco"},
	{"el", "ell", "gre", "Greek", "Grego"},
}

var byCode map[string]*entry

func init() {
	byCode = make(map[string]*entry, len(table)*3)
	for i := range table {
		e := &table[i]
		byCode[e.iso2] = e
		byCode[e.iso3] = e
		if e.alt3 != "" {
			byCode[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	// BCP 47 region subtags ("pt-PT", "pt_BR") reduce to the base language.
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if code == "" {
		return nil
	}
	return byCode[code]
}

// Normalize reduces any recognized language code, including three-letter
// and region-tagged forms, to its ISO 639-1 code. Unrecognized two-letter
// codes pass through lowercased; anything else normalizes to "".
func Normalize(code string) string {
	if e := lookup(code); e != nil {
		return e.iso2
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// NormalizeList normalizes a list of codes and drops duplicates and
// unrecognized entries, preserving order.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		normalized := Normalize(code)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// DisplayName returns a readable name for code, localized when the
// recipient's language is Portuguese. Unrecognized codes come back
// uppercased so they are still legible in a mail body.
func DisplayName(code, recipientLanguage string) string {
	if e := lookup(code); e != nil {
		if IsPortuguese(recipientLanguage) {
			return e.namePT
		}
		return e.name
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return strings.ToUpper(code)
}

// IsPortuguese reports whether a user language tag resolves to
// Portuguese, accepting region variants like "pt-BR".
func IsPortuguese(tag string) bool {
	return Normalize(tag) == "pt"
}
