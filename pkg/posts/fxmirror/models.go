package fxmirror

// Wire types for the fx mirror JSON API. Only the fields the converter
// reads are mapped.

type statusResponse struct {
	Code    int     `json:"code"`
	Message string  `json:"message"`
	Status  *status `json:"tweet"`
}

type status struct {
	ID               string  `json:"id"`
	URL              string  `json:"url"`
	Text             string  `json:"text"`
	CreatedAt        string  `json:"created_at"`
	CreatedTimestamp int64   `json:"created_timestamp"`
	Author           author  `json:"author"`
	Lang             string  `json:"lang"`
	ReplyingTo       string  `json:"replying_to"`
	ReplyingToStatus string  `json:"replying_to_status"`
	Media            *media  `json:"media"`
	Quote            *status `json:"quote"`
}

type author struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
	AvatarURL  string `json:"avatar_url"`
}

type media struct {
	Photos   []photo        `json:"photos"`
	Videos   []video        `json:"videos"`
	Mosaic   *mosaicPhoto   `json:"mosaic"`
	External *externalMedia `json:"external"`
}

type photo struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type video struct {
	Type string `json:"type"` // "video" or "gif"
	URL  string `json:"url"`
}

type mosaicPhoto struct {
	Type    string        `json:"type"`
	Formats mosaicFormats `json:"formats"`
}

type mosaicFormats struct {
	WebP string `json:"webp"`
	JPEG string `json:"jpeg"`
}

type externalMedia struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
