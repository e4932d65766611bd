package source

import (
	"strings"
	"testing"

	"github.com/mediafold/mediafold/internal/media"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-name="CNN HD" tvg-logo="http://logos/cnn.png" group-title="Live TV | News",CNN HD
http://example/live/cnn
#EXTINF:-1 tvg-name="Inception (2010) 1080p" group-title="Movies | EN",Inception (2010) 1080p
http://example/vod/inception
#EXTINF:-1 group-title="Series | EN",Breaking Bad S05E16
http://example/vod/bb-s05e16
`

func TestIPTVAdapterParse(t *testing.T) {
	a := NewIPTVAdapter("acme-iptv")

	items, err := a.Parse(strings.NewReader(samplePlaylist))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	t.Run("live channel", func(t *testing.T) {
		live := items[0]
		if live.Kind != media.KindLive {
			t.Errorf("kind = %q, want live", live.Kind)
		}
		if live.OriginalTitle != "CNN HD" {
			t.Errorf("title = %q", live.OriginalTitle)
		}
		if live.Year != nil || live.Season != nil {
			t.Error("live entries must not carry year or season")
		}
		if live.SourceItemID != "http://example/live/cnn" {
			t.Errorf("source item id = %q", live.SourceItemID)
		}
		if live.Attrs["logo"] != "http://logos/cnn.png" {
			t.Errorf("logo attr = %q", live.Attrs["logo"])
		}
	})

	t.Run("vod movie", func(t *testing.T) {
		movie := items[1]
		if movie.Kind != media.KindMovie {
			t.Errorf("kind = %q, want movie", movie.Kind)
		}
		if movie.Year == nil || *movie.Year != 2010 {
			t.Errorf("year = %v, want 2010", movie.Year)
		}
		if movie.SourceLabel != "acme-iptv" {
			t.Errorf("source label = %q", movie.SourceLabel)
		}
		if movie.Attrs["url"] != "http://example/vod/inception" {
			t.Errorf("url attr = %q", movie.Attrs["url"])
		}
	})

	t.Run("vod episode", func(t *testing.T) {
		ep := items[2]
		if ep.Kind != media.KindEpisode {
			t.Errorf("kind = %q, want episode", ep.Kind)
		}
		if ep.Season == nil || *ep.Season != 5 || ep.Episode == nil || *ep.Episode != 16 {
			t.Errorf("season/episode = %v/%v, want 5/16", ep.Season, ep.Episode)
		}
	})
}

func TestIPTVAdapterSkipsDanglingURL(t *testing.T) {
	a := NewIPTVAdapter("acme")

	items, err := a.Parse(strings.NewReader("#EXTM3U\nhttp://example/orphan\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestIPTVAdapterPlayableHints(t *testing.T) {
	a := NewIPTVAdapter("acme")

	item := media.RawItem{
		Pipeline:     media.PipelineIPTV,
		SourceItemID: "http://example/vod/x",
		Attrs:        map[string]string{"url": "http://example/vod/x", "group": "Movies"},
	}
	hints := a.PlayableHints(item)
	if hints["url"] != "http://example/vod/x" {
		t.Errorf("hints = %v", hints)
	}
	if _, ok := hints["group"]; ok {
		t.Error("group attr should not leak into playable hints")
	}
}

func TestClassifyGroup(t *testing.T) {
	tests := []struct {
		group string
		title string
		want  media.Kind
	}{
		{"Live TV | News", "CNN HD", media.KindLive},
		{"UK Channels", "BBC One", media.KindLive},
		{"Movies | EN", "Inception (2010)", media.KindMovie},
		{"VOD Classics", "Casablanca (1942)", media.KindMovie},
		{"Series | DE", "Dark S01E01", media.KindSeries},
		{"", "Sky Sports HD", media.KindLive},
		{"Misc", "Unlabeled Thing", media.KindUnknown},
	}

	for _, tt := range tests {
		if got := classifyGroup(tt.group, tt.title); got != tt.want {
			t.Errorf("classifyGroup(%q, %q) = %q, want %q", tt.group, tt.title, got, tt.want)
		}
	}
}
