package shows

import (
	"sort"
	"strings"

	"showstream/models"
	"showstream/services/sonarr"
)

// AssembleEpisodes joins episode records with their episode files and returns
// client-facing details ordered by (season, episode). Episodes without a file
// on disk, or whose file record is missing from the file list, are dropped
// silently; partial media info never aborts the assembly.
func AssembleEpisodes(episodes []sonarr.Episode, files []sonarr.EpisodeFile) []models.EpisodeDetail {
	byID := make(map[int64]sonarr.EpisodeFile, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}

	details := make([]models.EpisodeDetail, 0, len(episodes))
	for _, ep := range episodes {
		if !ep.HasFile {
			continue
		}
		f, ok := byID[ep.EpisodeFileID]
		if !ok {
			continue
		}
		details = append(details, models.EpisodeDetail{
			SeasonNumber:  ep.SeasonNumber,
			EpisodeNumber: ep.EpisodeNumber,
			Title:         ep.Title,
			AirDate:       ep.AirDate,
			Overview:      ep.Overview,
			Path:          f.Path,
			RelativePath:  f.RelativePath,
			Size:          f.Size,
			Quality:       f.Quality.Quality.Name,
			VideoCodec:    f.MediaInfo.VideoCodec,
			AudioCodec:    f.MediaInfo.AudioCodec,
			AudioChannels: f.MediaInfo.AudioChannels,
			Resolution:    f.MediaInfo.Resolution,
			Runtime:       f.MediaInfo.RunTime,
			Subtitles:     splitSubtitles(f.MediaInfo.Subtitles),
		})
	}

	sort.SliceStable(details, func(i, j int) bool {
		if details[i].SeasonNumber != details[j].SeasonNumber {
			return details[i].SeasonNumber < details[j].SeasonNumber
		}
		return details[i].EpisodeNumber < details[j].EpisodeNumber
	})
	return details
}

// splitSubtitles turns Sonarr's "eng/spa" subtitle string into a list.
func splitSubtitles(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, "/")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			langs = append(langs, p)
		}
	}
	return langs
}
