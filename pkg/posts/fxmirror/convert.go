package fxmirror

import (
	"strings"
	"time"

	"github.com/postwing/postwing/pkg/posts"
)

// createdAtLayout matches the mirror's "Mon May 05 20:21:00 +0000 2025"
// timestamp format.
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// convert maps a mirror status payload onto the domain Post. The id is
// taken from the request, not the payload: some mirror versions omit it.
func convert(s *status, id string) posts.Post {
	return posts.Post{
		ID:                id,
		AuthorHandle:      s.Author.ScreenName,
		AuthorDisplayName: s.Author.Name,
		Body:              s.Text,
		CreatedAt:         parseCreatedAt(s.CreatedAt, s.CreatedTimestamp),
		MediaURLs:         mediaURLs(s),
		VideoURLs:         videoURLs(s),
		ReplyToPostID:     s.ReplyingToStatus,
		QuotedPostID:      quotedID(s),
		Language:          s.Lang,
	}
}

func parseCreatedAt(createdAt string, unix int64) time.Time {
	if t, err := time.Parse(createdAtLayout, createdAt); err == nil {
		return t
	}
	if unix > 0 {
		return time.Unix(unix, 0).UTC()
	}
	return time.Now().UTC()
}

func mediaURLs(s *status) []string {
	if s.Media == nil {
		return nil
	}
	var urls []string
	for _, p := range s.Media.Photos {
		urls = append(urls, p.URL)
	}
	if s.Media.Mosaic != nil {
		urls = append(urls, s.Media.Mosaic.Formats.JPEG)
	}
	return urls
}

func videoURLs(s *status) []string {
	if s.Media == nil {
		return nil
	}
	var urls []string
	for _, v := range s.Media.Videos {
		urls = append(urls, v.URL)
	}
	if s.Media.External != nil && s.Media.External.Type == "video" {
		urls = append(urls, s.Media.External.URL)
	}
	return urls
}

// quotedID extracts the quoted post id from the nested quote's URL,
// e.g. https://x.com/user/status/123456?s=20 -> 123456.
func quotedID(s *status) string {
	if s.Quote == nil {
		return ""
	}
	if s.Quote.ID != "" {
		return s.Quote.ID
	}
	url := s.Quote.URL
	idx := strings.LastIndex(url, "/status/")
	if idx == -1 {
		return ""
	}
	id := url[idx+len("/status/"):]
	if q := strings.IndexByte(id, '?'); q != -1 {
		id = id[:q]
	}
	return id
}
