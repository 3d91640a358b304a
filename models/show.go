package models

import "showstream/services/sonarr"

// ShowsPage is a single page of the series library.
type ShowsPage struct {
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []sonarr.Series `json:"results"`
}

// EpisodeDetail is the client-facing episode record, joined from an upstream
// episode and its episode file.
type EpisodeDetail struct {
	SeasonNumber  int      `json:"seasonNumber"`
	EpisodeNumber int      `json:"episodeNumber"`
	Title         string   `json:"title"`
	AirDate       string   `json:"airDate,omitempty"`
	Overview      string   `json:"overview"`
	Path          string   `json:"path"`
	RelativePath  string   `json:"relativePath"`
	Size          int64    `json:"size"`
	Quality       string   `json:"quality"`
	VideoCodec    string   `json:"videoCodec"`
	AudioCodec    string   `json:"audioCodec"`
	AudioChannels float64  `json:"audioChannels"`
	Resolution    string   `json:"resolution"`
	Runtime       string   `json:"runtime"`
	Subtitles     []string `json:"subtitles"`
}

// HealthStatus reports the gateway's dependency probes. The endpoint itself
// always answers 200; the strings carry the actual state.
type HealthStatus struct {
	Cache  string `json:"cache"`
	Sonarr string `json:"sonarr"`
}
