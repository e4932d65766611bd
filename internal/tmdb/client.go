package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mediafold/mediafold/internal/authority"
	"github.com/mediafold/mediafold/internal/media"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Client is a TMDB API client implementing the authority.Provider boundary.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ authority.Provider = (*Client)(nil)

// NewClient creates a new TMDB client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint
// (tests point this at a local stub).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type movieResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	ReleaseDate  string `json:"release_date"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

type tvResult struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

// Details fetches the full record for a typed id.
func (c *Client) Details(ctx context.Context, ref media.AuthorityRef) (*authority.Details, error) {
	switch ref.Type {
	case media.AuthorityMovie:
		var m movieResult
		if err := c.get(ctx, fmt.Sprintf("%s/movie/%d", c.baseURL, ref.ID), nil, &m); err != nil {
			return nil, err
		}
		return &authority.Details{
			Ref:          ref,
			Title:        m.Title,
			Year:         yearOf(m.ReleaseDate),
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
		}, nil
	case media.AuthorityTV:
		var t tvResult
		if err := c.get(ctx, fmt.Sprintf("%s/tv/%d", c.baseURL, ref.ID), nil, &t); err != nil {
			return nil, err
		}
		return &authority.Details{
			Ref:          ref,
			Title:        t.Name,
			Year:         yearOf(t.FirstAirDate),
			PosterPath:   t.PosterPath,
			BackdropPath: t.BackdropPath,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported authority ref type %q", ref.Type)
	}
}

// Search queries the movie or TV catalog by title, optionally pinned to a
// year.
func (c *Client) Search(ctx context.Context, typ media.AuthorityRefType, title string, year *int) ([]authority.Candidate, error) {
	params := url.Values{}
	params.Set("query", title)

	switch typ {
	case media.AuthorityMovie:
		if year != nil {
			params.Set("year", strconv.Itoa(*year))
		}
		var result struct {
			Results []movieResult `json:"results"`
		}
		if err := c.get(ctx, c.baseURL+"/search/movie", params, &result); err != nil {
			return nil, err
		}
		candidates := make([]authority.Candidate, 0, len(result.Results))
		for _, m := range result.Results {
			candidates = append(candidates, authority.Candidate{
				Ref:          media.AuthorityRef{Type: media.AuthorityMovie, ID: m.ID},
				Title:        m.Title,
				Year:         yearOf(m.ReleaseDate),
				PosterPath:   m.PosterPath,
				BackdropPath: m.BackdropPath,
			})
		}
		return candidates, nil
	case media.AuthorityTV:
		if year != nil {
			params.Set("first_air_date_year", strconv.Itoa(*year))
		}
		var result struct {
			Results []tvResult `json:"results"`
		}
		if err := c.get(ctx, c.baseURL+"/search/tv", params, &result); err != nil {
			return nil, err
		}
		candidates := make([]authority.Candidate, 0, len(result.Results))
		for _, t := range result.Results {
			candidates = append(candidates, authority.Candidate{
				Ref:          media.AuthorityRef{Type: media.AuthorityTV, ID: t.ID},
				Title:        t.Name,
				Year:         yearOf(t.FirstAirDate),
				PosterPath:   t.PosterPath,
				BackdropPath: t.BackdropPath,
			})
		}
		return candidates, nil
	default:
		return nil, fmt.Errorf("unsupported authority ref type %q", typ)
	}
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v interface{}) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	for key, vals := range params {
		for _, val := range vals {
			q.Add(key, val)
		}
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// yearOf extracts the year from a TMDB date string ("2008-01-20").
func yearOf(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year == 0 {
		return nil
	}
	return &year
}
