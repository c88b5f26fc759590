// Package video works out how an opponent link can be shown inline.
package video

import (
	"net/url"
	"path"
	"strings"
)

type EmbedType int

const (
	EmbedTypeNone EmbedType = iota
	EmbedTypeYouTube
	EmbedTypeVideo
	EmbedTypeIframe
)

func (t EmbedType) String() string {
	switch t {
	case EmbedTypeYouTube:
		return "youtube"
	case EmbedTypeVideo:
		return "video"
	case EmbedTypeIframe:
		return "iframe"
	default:
		return "none"
	}
}

type EmbedInfo struct {
	Type EmbedType
	URL  string
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".mov":  true,
}

// GetEmbedInfo classifies link. YouTube links are rewritten to their embed
// URL, direct video files play in a video tag, and any other http(s) link falls
// back to an iframe. Links with another scheme or no host are never embedded.
func GetEmbedInfo(link *string) EmbedInfo {
	if link == nil || strings.TrimSpace(*link) == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}
	raw := strings.TrimSpace(*link)

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return EmbedInfo{Type: EmbedTypeNone}
	}

	if id, ok := youTubeID(u); ok {
		return EmbedInfo{Type: EmbedTypeYouTube, URL: "https://www.youtube.com/embed/" + id}
	}
	if videoExtensions[strings.ToLower(path.Ext(u.Path))] {
		return EmbedInfo{Type: EmbedTypeVideo, URL: raw}
	}
	return EmbedInfo{Type: EmbedTypeIframe, URL: raw}
}

func youTubeID(u *url.URL) (string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	}

	id, _, _ = strings.Cut(id, "/")
	return id, id != ""
}
