package tmdb

// Result represents a single TMDB search match.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	OriginalT    string  `json:"original_title"`
	OriginalN    string  `json:"original_name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// DisplayTitle returns the localized title regardless of media kind.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// OriginalTitle returns the original-language title regardless of media kind.
func (r Result) OriginalTitle() string {
	if r.OriginalT != "" {
		return r.OriginalT
	}
	return r.OriginalN
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Country is a production-country entry.
type Country struct {
	ISO  string `json:"iso_3166_1"`
	Name string `json:"name"`
}

// Language is a spoken-language entry.
type Language struct {
	ISO  string `json:"iso_639_1"`
	Name string `json:"english_name"`
}

// Season summarizes one TV season on the show detail payload.
type Season struct {
	SeasonNumber int    `json:"season_number"`
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
}

// Creator is a created_by entry on a TV detail payload.
type Creator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs carries the cross-provider ids appended to detail requests.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// Show is the full TMDB detail payload for a movie or series. Movie-only
// and TV-only fields are both present; the zero values of the other kind
// are simply unused.
type Show struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Name          string      `json:"name"`
	OriginalT     string      `json:"original_title"`
	OriginalN     string      `json:"original_name"`
	Overview      string      `json:"overview"`
	ReleaseDate   string      `json:"release_date"`
	FirstAirDate  string      `json:"first_air_date"`
	Genres        []Genre     `json:"genres"`
	Countries     []Country   `json:"production_countries"`
	OriginCountry []string    `json:"origin_country"`
	Languages     []Language  `json:"spoken_languages"`
	Runtime       int         `json:"runtime"`
	EpisodeRuns   []int       `json:"episode_run_time"`
	NumberSeasons int         `json:"number_of_seasons"`
	Seasons       []Season    `json:"seasons"`
	CreatedBy     []Creator   `json:"created_by"`
	Popularity    float64     `json:"popularity"`
	VoteAverage   float64     `json:"vote_average"`
	VoteCount     int64       `json:"vote_count"`
	PosterPath    string      `json:"poster_path"`
	IMDBID        string      `json:"imdb_id"`
	ExternalIDs   ExternalIDs `json:"external_ids"`
}

// DisplayTitle returns the localized title regardless of media kind.
func (s *Show) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// OriginalTitle returns the original-language title regardless of media kind.
func (s *Show) OriginalTitle() string {
	if s.OriginalT != "" {
		return s.OriginalT
	}
	return s.OriginalN
}

// IMDB returns the IMDb id whichever way TMDB delivered it.
func (s *Show) IMDB() string {
	if s.IMDBID != "" {
		return s.IMDBID
	}
	return s.ExternalIDs.IMDBID
}

// Translation is one entry of a translations payload.
type Translation struct {
	ISO639  string `json:"iso_639_1"`
	ISO3166 string `json:"iso_3166_1"`
	Data    struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	} `json:"data"`
}

// TranslationTitle returns the translated title regardless of media kind.
func (t Translation) TranslationTitle() string {
	if t.Data.Title != "" {
		return t.Data.Title
	}
	return t.Data.Name
}

// LanguageTag is the BCP 47 style tag TMDB uses for a translation.
func (t Translation) LanguageTag() string {
	if t.ISO3166 == "" {
		return t.ISO639
	}
	return t.ISO639 + "-" + t.ISO3166
}

// Alias is one alternative title with its country.
type Alias struct {
	ISO3166 string `json:"iso_3166_1"`
	Title   string `json:"title"`
}

// CrewMember is one entry of a credits payload.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// CastMember is one cast entry of a credits payload, ordered by billing.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Credits is the TMDB credits payload.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors extracts crew members with the Director job, in payload order.
func (c *Credits) Directors() []string {
	var names []string
	for _, member := range c.Crew {
		if member.Job == "Director" {
			names = append(names, member.Name)
		}
	}
	return names
}
