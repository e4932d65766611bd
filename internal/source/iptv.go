package source

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mediafold/mediafold/internal/media"
)

var (
	extinfAttrRe = regexp.MustCompile(`([a-zA-Z0-9-]+)="([^"]*)"`)
	seasonEpRe   = regexp.MustCompile(`(?i)\bS(\d{1,2})\s*E(\d{1,2})\b`)
	yearRe       = regexp.MustCompile(`\((19|20)\d{2}\)|\b(19|20)\d{2}\b`)
)

// IPTVAdapter converts an M3U catalog into raw media items. Entries in live
// groups are marked LIVE and carry no season/episode or year; VOD entries get
// a best-effort title/year/episode split.
type IPTVAdapter struct {
	sourceLabel string
	log         *slog.Logger
}

// NewIPTVAdapter creates an IPTV source adapter. sourceLabel names the
// provider and is carried onto every item.
func NewIPTVAdapter(sourceLabel string) *IPTVAdapter {
	return &IPTVAdapter{
		sourceLabel: sourceLabel,
		log:         slog.With("component", "source.iptv"),
	}
}

// Parse reads an extended M3U playlist.
func (a *IPTVAdapter) Parse(r io.Reader) ([]media.RawItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var items []media.RawItem
	var pending *media.RawItem

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "#EXTM3U":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			item := a.parseExtinf(line)
			pending = &item
		case strings.HasPrefix(line, "#"):
			continue
		default:
			// URL line completes the pending entry.
			if pending == nil {
				a.log.Debug("URL without EXTINF, skipping", "url", line)
				continue
			}
			pending.SourceItemID = line
			pending.Attrs["url"] = line
			items = append(items, *pending)
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	return items, nil
}

func (a *IPTVAdapter) parseExtinf(line string) media.RawItem {
	attrs := map[string]string{}
	for _, m := range extinfAttrRe.FindAllStringSubmatch(line, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}

	title := ""
	if idx := strings.LastIndex(line, ","); idx != -1 {
		title = strings.TrimSpace(line[idx+1:])
	}
	if name := attrs["tvg-name"]; name != "" {
		title = name
	}

	group := attrs["group-title"]

	item := media.RawItem{
		OriginalTitle: title,
		Kind:          classifyGroup(group, title),
		Pipeline:      media.PipelineIPTV,
		SourceLabel:   a.sourceLabel,
		Attrs:         map[string]string{},
	}
	if group != "" {
		item.Attrs["group"] = group
	}
	if logo := attrs["tvg-logo"]; logo != "" {
		item.Attrs["logo"] = logo
	}

	if item.Kind == media.KindLive {
		return item
	}

	if m := seasonEpRe.FindStringSubmatch(title); m != nil {
		season := atoi(m[1])
		episode := atoi(m[2])
		item.Season = &season
		item.Episode = &episode
		item.Kind = media.KindEpisode
	} else if m := yearRe.FindString(title); m != "" {
		year := atoi(strings.Trim(m, "()"))
		item.Year = &year
		if item.Kind == media.KindUnknown {
			item.Kind = media.KindMovie
		}
	}

	return item
}

// classifyGroup decides LIVE vs VOD from the group-title, falling back to
// the entry name for ungrouped playlists.
func classifyGroup(group, title string) media.Kind {
	g := strings.ToLower(group)
	switch {
	case strings.Contains(g, "live") || strings.Contains(g, "tv chan") || strings.Contains(g, "channels"):
		return media.KindLive
	case strings.Contains(g, "series"):
		return media.KindSeries
	case strings.Contains(g, "movie") || strings.Contains(g, "vod"):
		return media.KindMovie
	}
	if group == "" && strings.Contains(strings.ToUpper(title), " HD") && !yearRe.MatchString(title) {
		return media.KindLive
	}
	return media.KindUnknown
}

// PlayableHints implements normalize.HintBuilder for the IPTV pipeline.
func (a *IPTVAdapter) PlayableHints(item media.RawItem) map[string]string {
	hints := map[string]string{}
	if v, ok := item.Attrs["url"]; ok {
		hints["url"] = v
	}
	return hints
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
