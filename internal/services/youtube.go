// YouTube Data API v3 [VideoSearcher] and [PlaylistService] implementation
//
// Endpoint shapes based on https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// Quota unit costs per https://developers.google.com/youtube/v3/determine_quota_cost
const (
	QuotaCostSearch         = 100
	QuotaCostPlaylistInsert = 50
	QuotaCostPlaylistItem   = 50
	QuotaDailyLimit         = 10000
)

const defaultMaxResults = 5

type youtubeErrorDetail struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type youtubeErrorBody struct {
	Error struct {
		Code    int                  `json:"code"`
		Message string               `json:"message"`
		Errors  []youtubeErrorDetail `json:"errors"`
	} `json:"error"`
}

type youtubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
	} `json:"snippet"`
}

type youtubeSearchResponse struct {
	Items []youtubeSearchItem `json:"items"`
}

// YouTubeService implements [VideoSearcher] and [PlaylistService] against
// the YouTube Data API v3.
//
// The HTTP client is expected to carry OAuth2 credentials (see
// [NewGoogleOAuthConfig] and [TokenStore]); the service itself holds no
// token state.
type YouTubeService struct {
	baseURL    string
	regionCode string
	maxResults int
	httpClient *http.Client
}

// NewYouTubeService creates a YouTube Data API client. An empty baseURL
// selects the production API; client defaults to [http.DefaultClient].
func NewYouTubeService(client *http.Client, regionCode, baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &YouTubeService{
		baseURL:    baseURL,
		regionCode: regionCode,
		maxResults: defaultMaxResults,
		httpClient: client,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Search runs search.list for a query and returns the ordered video hits.
func (y *YouTubeService) Search(ctx context.Context, query string) ([]models.SearchHit, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(y.maxResults))
	if y.regionCode != "" {
		params.Set("regionCode", y.regionCode)
	}

	var data youtubeSearchResponse
	endpoint := "/search?" + params.Encode()
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &data); err != nil {
		return nil, err
	}

	hits := make([]models.SearchHit, 0, len(data.Items))
	for _, item := range data.Items {
		if item.ID.VideoID == "" {
			continue
		}
		hits = append(hits, models.SearchHit{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}

	return hits, nil
}

// CreatePlaylist runs playlists.insert and returns the new playlist ID.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, spec models.PlaylistSpec) (string, error) {
	body := map[string]any{
		"snippet": map[string]any{
			"title":       spec.Title,
			"description": spec.Description,
		},
		"status": map[string]any{
			"privacyStatus": string(spec.Privacy),
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := y.doRequest(ctx, http.MethodPost, "/playlists?part=snippet%2Cstatus", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: playlist creation returned no ID", shared.ErrAPIRequest)
	}

	return created.ID, nil
}

// AddVideo runs playlistItems.insert, appending a video at the given
// 0-based position. Insertions must stay sequential: the playlist grows at
// the tail, so position order equals final playlist order.
func (y *YouTubeService) AddVideo(ctx context.Context, playlistID, videoID string, position int) error {
	body := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"position":   position,
			"resourceId": map[string]any{
				"kind":    "youtube#video",
				"videoId": videoID,
			},
		},
	}

	return y.doRequest(ctx, http.MethodPost, "/playlistItems?part=snippet", body, nil)
}

// PlaylistURL returns the public watch URL for a playlist ID.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// VideoURL returns the public watch URL for a video ID.
func VideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := y.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return y.mapError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// mapError converts a YouTube error response into a sentinel error.
func (y *YouTubeService) mapError(resp *http.Response) error {
	var body youtubeErrorBody
	reason := ""
	message := fmt.Sprintf("status %d", resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error.Message != "" {
			message = body.Error.Message
		}
		if len(body.Error.Errors) > 0 {
			reason = body.Error.Errors[0].Reason
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, message)
	case reason == "quotaExceeded" || reason == "dailyLimitExceeded":
		return fmt.Errorf("%w: %s", shared.ErrQuotaExceeded, message)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, message)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, message)
	default:
		return fmt.Errorf("%w: youtube API error: %s", shared.ErrAPIRequest, message)
	}
}
