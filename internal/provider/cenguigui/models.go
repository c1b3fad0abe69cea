package cenguigui

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The upstream is loose with types: numeric fields arrive as numbers or
// strings depending on the endpoint. flexInt and flexString absorb both.

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

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// SearchResponse is the upstream search envelope.
type SearchResponse struct {
	Code flexInt      `json:"code"`
	Msg  string       `json:"msg"`
	Page flexInt      `json:"page"`
	Data []SearchItem `json:"data"`
}

// SearchItem is one drama in a search response.
type SearchItem struct {
	BookID     flexString `json:"book_id"`
	Title      string     `json:"title"`
	Cover      string     `json:"cover"`
	EpisodeCnt flexInt    `json:"episode_cnt"`
	Intro      string     `json:"intro"`
	Type       string     `json:"type"`
	Author     string     `json:"author"`
	PlayCnt    flexInt    `json:"play_cnt"`
}

// CategoryResponse is the upstream category listing envelope.
type CategoryResponse struct {
	Code flexInt        `json:"code"`
	Data []CategoryItem `json:"data"`
}

// CategoryItem is one drama in a category listing. The category feed
// uses different field names than search (video_desc, sub_title).
type CategoryItem struct {
	BookID     flexString `json:"book_id"`
	Title      string     `json:"title"`
	Cover      string     `json:"cover"`
	EpisodeCnt flexInt    `json:"episode_cnt"`
	VideoDesc  string     `json:"video_desc"`
	SubTitle   string     `json:"sub_title"`
	PlayCnt    flexInt    `json:"play_cnt"`
}

// RecommendResponse is the upstream recommendation envelope. Items nest
// the drama under book_data.
type RecommendResponse struct {
	Code flexInt         `json:"code"`
	Data []RecommendItem `json:"data"`
}

// RecommendItem is one recommendation entry.
type RecommendItem struct {
	Hot      flexInt       `json:"hot"`
	BookData RecommendBook `json:"book_data"`
}

// RecommendBook is the nested drama record of a recommendation entry.
type RecommendBook struct {
	BookID      flexString `json:"book_id"`
	BookName    string     `json:"book_name"`
	ThumbURL    string     `json:"thumb_url"`
	SerialCount flexInt    `json:"serial_count"`
	Category    string     `json:"category"`
}

// EpisodesResponse is the upstream episode listing envelope.
type EpisodesResponse struct {
	Code     flexInt       `json:"code"`
	BookName string        `json:"book_name"`
	BookID   flexString    `json:"book_id"`
	Author   string        `json:"author"`
	Category string        `json:"category"`
	Desc     string        `json:"desc"`
	BookPic  string        `json:"book_pic"`
	Total    flexInt       `json:"total"`
	Data     []EpisodeItem `json:"data"`
}

// EpisodeItem is one episode in a listing.
type EpisodeItem struct {
	VideoID flexString `json:"video_id"`
	Title   string     `json:"title"`
}

// VideoResponse is the upstream video resolution envelope.
type VideoResponse struct {
	Code flexInt   `json:"code"`
	Data VideoData `json:"data"`
}

// VideoData carries the resolved play URL and its metadata.
type VideoData struct {
	URL   string    `json:"url"`
	Pic   string    `json:"pic"`
	Title string    `json:"title"`
	Info  VideoMeta `json:"info"`
}

// VideoMeta is the nested info block of a video response.
type VideoMeta struct {
	Quality  string `json:"quality"`
	Duration string `json:"duration"`
	SizeStr  string `json:"size_str"`
}
