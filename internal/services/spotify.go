// Spotify Web API catalog client.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// DefaultSearchLimit caps artist search results.
	DefaultSearchLimit = 5
	// DefaultAlbumLimit caps the album listing at the first page.
	DefaultAlbumLimit = 15
	// MaxTracksPerAdd is the provider's per-request maximum for track insertion.
	MaxTracksPerAdd = 100
)

// albumGroups are the release group types walked during a pool build.
const albumGroups = "album,single,appears_on,compilation"

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type searchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

type albumsResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type albumTracksResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type trackDetailResponse struct {
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Album   struct {
		Name   string         `json:"name"`
		Images []spotifyImage `json:"images"`
	} `json:"album"`
	Popularity int    `json:"popularity"`
	URI        string `json:"uri"`
}

type profileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type createPlaylistResponse struct {
	ID           string `json:"id"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

// CatalogClient issues authenticated requests against the Spotify Web API.
// Stateless apart from its rate limiter; the credential is passed per call.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewCatalogClient creates a CatalogClient. A nil httpClient falls back to
// [http.DefaultClient]; a nil limiter falls back to 10 req/s with burst 10.
func NewCatalogClient(httpClient *http.Client, limiter *rate.Limiter) *CatalogClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(10), 10)
	}

	return &CatalogClient{
		baseURL:    spotifyBaseURL,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// SetBaseURL overrides the API base URL. Tests point this at an httptest server.
func (c *CatalogClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// do performs a rate-limited, bearer-authenticated request and decodes the
// JSON response into result when the status is a success.
func (c *CatalogClient) do(ctx context.Context, cred models.Credential, method, endpoint string, body, result any) error {
	if cred.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrSchema, err)
		}
	}

	return nil
}

// SearchArtists searches the catalog for artists matching the query.
// Requires a service credential. A non-positive limit defaults to 5.
func (c *CatalogClient) SearchArtists(ctx context.Context, cred models.Credential, query string, limit int) ([]models.ArtistRef, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(limit))

	var response searchResponse
	if err := c.do(ctx, cred, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	artists := make([]models.ArtistRef, 0, len(response.Artists.Items))
	for _, item := range response.Artists.Items {
		if item.ID == "" || item.Name == "" {
			return nil, fmt.Errorf("%w: artist item missing id or name", shared.ErrSchema)
		}

		ref := models.ArtistRef{ID: item.ID, Name: item.Name}
		if len(item.Images) > 0 {
			ref.ImageURL = item.Images[0].URL
		}
		artists = append(artists, ref)
	}

	return artists, nil
}

// ArtistAlbums lists album IDs across all release groups, capped at the
// first page of `limit` entries. Items without an id are dropped.
func (c *CatalogClient) ArtistAlbums(ctx context.Context, cred models.Credential, artistID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultAlbumLimit
	}

	params := url.Values{}
	params.Set("include_groups", albumGroups)
	params.Set("limit", strconv.Itoa(limit))

	var response albumsResponse
	endpoint := fmt.Sprintf("/artists/%s/albums?%s", url.PathEscape(artistID), params.Encode())
	if err := c.do(ctx, cred, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}

	return ids, nil
}

// AlbumTracks lists the track IDs of one album, first page only.
func (c *CatalogClient) AlbumTracks(ctx context.Context, cred models.Credential, albumID string) ([]string, error) {
	var response albumTracksResponse
	endpoint := fmt.Sprintf("/albums/%s/tracks", url.PathEscape(albumID))
	if err := c.do(ctx, cred, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.ID != "" {
			ids = append(ids, item.ID)
		}
	}

	return ids, nil
}

// TrackDetail fetches the full detail of one track, including popularity
// and canonical URI.
func (c *CatalogClient) TrackDetail(ctx context.Context, cred models.Credential, trackID string) (models.Track, error) {
	var response trackDetailResponse
	endpoint := fmt.Sprintf("/tracks/%s", url.PathEscape(trackID))
	if err := c.do(ctx, cred, http.MethodGet, endpoint, nil, &response); err != nil {
		return models.Track{}, err
	}

	if response.Name == "" {
		return models.Track{}, fmt.Errorf("%w: track detail missing name", shared.ErrSchema)
	}

	track := models.Track{
		Title:      response.Name,
		Album:      response.Album.Name,
		Popularity: response.Popularity,
		URI:        response.URI,
	}
	for _, artist := range response.Artists {
		if artist.Name != "" {
			track.Artists = append(track.Artists, artist.Name)
		}
	}
	if len(response.Album.Images) > 0 {
		track.ImageURL = response.Album.Images[0].URL
	}

	return track, nil
}

// CurrentUser resolves the profile of the user who granted the delegated
// credential.
func (c *CatalogClient) CurrentUser(ctx context.Context, cred models.Credential) (models.UserProfile, error) {
	var response profileResponse
	if err := c.do(ctx, cred, http.MethodGet, "/me", nil, &response); err != nil {
		return models.UserProfile{}, err
	}

	if response.ID == "" {
		return models.UserProfile{}, fmt.Errorf("%w: profile missing id", shared.ErrSchema)
	}

	return models.UserProfile{ID: response.ID, DisplayName: response.DisplayName}, nil
}

// CreatePlaylist creates a remote playlist owned by userID and returns its
// id and public URL.
func (c *CatalogClient) CreatePlaylist(ctx context.Context, cred models.Credential, userID, name, description string, public bool) (string, string, error) {
	body := createPlaylistRequest{Name: name, Description: description, Public: public}

	var response createPlaylistResponse
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := c.do(ctx, cred, http.MethodPost, endpoint, body, &response); err != nil {
		return "", "", err
	}

	if response.ID == "" {
		return "", "", fmt.Errorf("%w: created playlist missing id", shared.ErrSchema)
	}

	return response.ID, response.ExternalURLs.Spotify, nil
}

// AddTracks inserts up to [MaxTracksPerAdd] track URIs into a playlist in
// a single call.
func (c *CatalogClient) AddTracks(ctx context.Context, cred models.Credential, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("no track URIs provided")
	}
	if len(uris) > MaxTracksPerAdd {
		return fmt.Errorf("maximum %d track URIs per request, got %d", MaxTracksPerAdd, len(uris))
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return c.do(ctx, cred, http.MethodPost, endpoint, addTracksRequest{URIs: uris}, nil)
}
