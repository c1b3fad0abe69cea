package kuoapp

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/GamblerIX/duanju/internal/provider"
)

// The upstream serializes counters as strings ("episodes": "90"). flexInt
// absorbs both forms.

type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexInt(int(v))
	return nil
}

// SearchResponse is the upstream search envelope.
type SearchResponse struct {
	Page       flexInt `json:"page"`
	TotalPages flexInt `json:"totalPages"`
	Data       []Item  `json:"data"`
}

// Item is one drama record in both the search response and the day feed.
type Item struct {
	ID       flexInt `json:"id"`
	Name     string  `json:"name"`
	Label    string  `json:"label"`
	AddTime  string  `json:"addtime"`
	Cover    string  `json:"cover"`
	URL      string  `json:"url"`
	Episodes flexInt `json:"episodes"`
	State    string  `json:"state"`
}

// toDrama maps an upstream item onto the canonical drama model. The
// netdisk share link doubles as the drama id so callers can resolve it
// without another round trip.
func (it Item) toDrama() provider.DramaInfo {
	id := it.URL
	if id == "" {
		id = strconv.Itoa(int(it.ID))
	}
	category := it.Label
	if category == "" {
		category = "短剧"
	}
	intro := it.URL
	if it.State != "" {
		intro = it.State + " " + it.URL
	}
	return provider.DramaInfo{
		ID:           id,
		Title:        it.Name,
		CoverURL:     it.Cover,
		EpisodeCount: int(it.Episodes),
		Intro:        intro,
		Category:     category,
	}
}
