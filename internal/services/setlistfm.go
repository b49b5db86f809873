// setlist.fm API [SetlistSource] implementation
//
// Response types based on https://api.setlist.fm/docs/1.0/index.html
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/time/rate"
)

const defaultSetlistFMBaseURL = "https://api.setlist.fm/rest/1.0"

// setlist.fm allows roughly 2 requests per second per API key.
const setlistFMRequestsPerSecond = 2

// setlistIDPattern matches the hex setlist ID at the end of a setlist.fm
// page URL, e.g. ".../venue-city-53af56b5.html" -> "53af56b5".
var setlistIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{6,16}$`)

type setlistArtist struct {
	Name string `json:"name"`
}

type setlistCountry struct {
	Name string `json:"name"`
}

type setlistCity struct {
	Name          string         `json:"name"`
	StateProvince string         `json:"stateProvince"`
	Country       setlistCountry `json:"country"`
}

type setlistVenue struct {
	Name string      `json:"name"`
	City setlistCity `json:"city"`
}

type setlistSong struct {
	Name  string         `json:"name"`
	Tape  bool           `json:"tape"`
	Cover *setlistArtist `json:"cover"`
}

type setlistSet struct {
	Songs []setlistSong `json:"song"`
}

type setlistSets struct {
	Set []setlistSet `json:"set"`
}

type setlistResponse struct {
	Artist    setlistArtist `json:"artist"`
	Venue     setlistVenue  `json:"venue"`
	EventDate string        `json:"eventDate"`
	Sets      setlistSets   `json:"sets"`
}

// SetlistFMService implements [SetlistSource] against the setlist.fm REST API.
type SetlistFMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSetlistFMService creates a setlist.fm client with client-side request
// pacing. An empty baseURL selects the production API.
func NewSetlistFMService(apiKey, baseURL string) *SetlistFMService {
	if baseURL == "" {
		baseURL = defaultSetlistFMBaseURL
	}

	return &SetlistFMService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(setlistFMRequestsPerSecond), 1),
	}
}

// Name returns the source name.
func (s *SetlistFMService) Name() string {
	return "setlist.fm"
}

// ParseSetlistURL extracts the setlist ID from a setlist.fm page URL.
//
// URLs look like
// https://www.setlist.fm/setlist/artist/2025/venue-city-53af56b5.html where
// the trailing hex segment is the setlist ID.
func ParseSetlistURL(rawURL string) (string, error) {
	cleaned := strings.TrimRight(strings.TrimSpace(rawURL), "/")

	if !strings.Contains(cleaned, "setlist.fm/setlist/") {
		return "", fmt.Errorf("%w: must contain 'setlist.fm/setlist/'", shared.ErrInvalidURL)
	}

	segments := strings.Split(cleaned, "/")
	filename := segments[len(segments)-1]
	if !strings.HasSuffix(filename, ".html") {
		return "", fmt.Errorf("%w: expected a setlist page ending in .html", shared.ErrInvalidURL)
	}

	stem := strings.TrimSuffix(filename, ".html")
	parts := strings.Split(stem, "-")
	id := parts[len(parts)-1]
	if !setlistIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: could not extract setlist ID from %q", shared.ErrInvalidURL, filename)
	}

	return id, nil
}

// FetchSetlist resolves a setlist.fm URL into a parsed [models.Setlist].
func (s *SetlistFMService) FetchSetlist(ctx context.Context, rawURL string) (*models.Setlist, error) {
	id, err := ParseSetlistURL(rawURL)
	if err != nil {
		return nil, err
	}

	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: SETLISTFM_API_KEY is required", shared.ErrMissingCredentials)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	apiURL := fmt.Sprintf("%s/setlist/%s", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: check the URL and try again", shared.ErrSetlistNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: invalid setlist.fm API key", shared.ErrAuthFailed)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: setlist.fm rate limit, try again later", shared.ErrRateLimited)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: setlist.fm returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var data setlistResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parseSetlist(&data, rawURL), nil
}

// parseSetlist maps the API response onto the domain model.
//
// Tape-only entries (recorded interludes, not live performances) and
// entries without a title are dropped here so the matching core stays pure.
func parseSetlist(data *setlistResponse, sourceURL string) *models.Setlist {
	city := data.Venue.City.Name
	if region := data.Venue.City.StateProvince; region != "" {
		city = fmt.Sprintf("%s, %s", city, region)
	} else if country := data.Venue.City.Country.Name; country != "" {
		city = fmt.Sprintf("%s, %s", city, country)
	}

	setlist := &models.Setlist{
		URL:    sourceURL,
		Artist: data.Artist.Name,
		Venue:  data.Venue.Name,
		City:   city,
		Date:   data.EventDate,
	}

	position := 0
	for _, set := range data.Sets.Set {
		for _, song := range set.Songs {
			if song.Tape || song.Name == "" {
				continue
			}

			position++
			entry := models.Song{
				Title:    song.Name,
				Artist:   data.Artist.Name,
				Position: position,
			}
			if song.Cover != nil && song.Cover.Name != "" {
				entry.Cover = true
				entry.OriginalArtist = song.Cover.Name
			}

			setlist.Songs = append(setlist.Songs, entry)
		}
	}

	return setlist
}
