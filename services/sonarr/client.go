package sonarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client is a minimal Sonarr v3 API client covering the endpoints the gateway
// needs: series listing, series detail, episodes and episode files.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Series is a Sonarr series record. Only the fields the gateway touches are
// typed; the rest of the upstream document is dropped at the boundary.
type Series struct {
	ID         int64            `json:"id"`
	Title      string           `json:"title"`
	SortTitle  string           `json:"sortTitle"`
	Year       int              `json:"year"`
	Overview   string           `json:"overview"`
	Status     string           `json:"status"`
	Network    string           `json:"network"`
	Path       string           `json:"path"`
	Statistics SeriesStatistics `json:"statistics"`
}

// SeriesStatistics summarizes a series' on-disk state.
type SeriesStatistics struct {
	EpisodeFileCount int   `json:"episodeFileCount"`
	EpisodeCount     int   `json:"episodeCount"`
	TotalEpisodes    int   `json:"totalEpisodeCount"`
	SizeOnDisk       int64 `json:"sizeOnDisk"`
}

// Episode is a Sonarr episode record.
type Episode struct {
	ID            int64  `json:"id"`
	SeriesID      int64  `json:"seriesId"`
	EpisodeFileID int64  `json:"episodeFileId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
	Overview      string `json:"overview"`
	HasFile       bool   `json:"hasFile"`
	Monitored     bool   `json:"monitored"`
}

// EpisodeFile is a Sonarr episode file record with its nested quality and
// media info. Both nested objects may be absent upstream; their zero values
// stand in for missing data.
type EpisodeFile struct {
	ID           int64     `json:"id"`
	SeriesID     int64     `json:"seriesId"`
	SeasonNumber int       `json:"seasonNumber"`
	RelativePath string    `json:"relativePath"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Quality      Quality   `json:"quality"`
	MediaInfo    MediaInfo `json:"mediaInfo"`
}

// Quality wraps Sonarr's nested quality object.
type Quality struct {
	Quality QualityDef `json:"quality"`
}

// QualityDef names a quality level.
type QualityDef struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Resolution int    `json:"resolution"`
}

// MediaInfo carries stream-level details probed from the file.
type MediaInfo struct {
	AudioChannels float64 `json:"audioChannels"`
	AudioCodec    string  `json:"audioCodec"`
	VideoCodec    string  `json:"videoCodec"`
	Resolution    string  `json:"resolution"`
	RunTime       string  `json:"runTime"`
	Subtitles     string  `json:"subtitles"`
}

// SystemStatus is the upstream status document used by the health probe.
type SystemStatus struct {
	Version string `json:"version"`
	AppName string `json:"appName"`
}

// NewClient creates a Sonarr client for the given base URL and API key.
// Requests time out after 15 seconds unless the caller's context is shorter.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// ListSeries returns every series in the upstream library.
func (c *Client) ListSeries(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.get(ctx, "/api/v3/series", nil, &series); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return series, nil
}

// GetSeries returns a single series by its Sonarr ID.
func (c *Client) GetSeries(ctx context.Context, id int64) (*Series, error) {
	var series Series
	err := c.get(ctx, "/api/v3/series/"+strconv.FormatInt(id, 10), nil, &series)
	if err != nil {
		if err == errStatusNotFound {
			return nil, notFoundErr("series", id)
		}
		return nil, fmt.Errorf("get series %d: %w", id, err)
	}
	return &series, nil
}

// ListEpisodes returns all episode records for a series.
func (c *Client) ListEpisodes(ctx context.Context, seriesID int64) ([]Episode, error) {
	q := url.Values{"seriesId": {strconv.FormatInt(seriesID, 10)}}
	var episodes []Episode
	if err := c.get(ctx, "/api/v3/episode", q, &episodes); err != nil {
		if err == errStatusNotFound {
			return nil, notFoundErr("episodes for series", seriesID)
		}
		return nil, fmt.Errorf("list episodes for series %d: %w", seriesID, err)
	}
	return episodes, nil
}

// ListEpisodeFiles returns all episode file records for a series.
func (c *Client) ListEpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error) {
	q := url.Values{"seriesId": {strconv.FormatInt(seriesID, 10)}}
	var files []EpisodeFile
	if err := c.get(ctx, "/api/v3/episodefile", q, &files); err != nil {
		if err == errStatusNotFound {
			return nil, notFoundErr("episode files for series", seriesID)
		}
		return nil, fmt.Errorf("list episode files for series %d: %w", seriesID, err)
	}
	return files, nil
}

// SystemStatus probes the upstream status endpoint. Used by the health check
// with a short caller-supplied context deadline.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.get(ctx, "/api/v3/system/status", nil, &status); err != nil {
		return nil, fmt.Errorf("system status: %w", err)
	}
	return &status, nil
}

// errStatusNotFound is an internal marker so callers of get can attach the
// resource kind and id to the domain ErrNotFound.
var errStatusNotFound = fmt.Errorf("upstream 404")

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errStatusNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &UpstreamError{Status: resp.StatusCode, Op: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
