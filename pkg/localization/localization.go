// Package localization renders user-facing bot messages in the chat's
// preferred language. Locales are embedded; English is the fallback for
// unknown languages and missing keys.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used for chats with no stored preference.
const DefaultLanguage = "en"

// Language is a selectable chat language.
type Language struct {
	Code string
	Name string
}

// Languages lists the supported chat languages in display order.
func Languages() []Language {
	return []Language{
		{Code: "en", Name: "English"},
		{Code: "uk", Name: "Українська"},
		{Code: "ru", Name: "Русский"},
	}
}

// Supported reports whether code is a known chat language.
func Supported(code string) bool {
	for _, l := range Languages() {
		if l.Code == code {
			return true
		}
	}
	return false
}

// MessageKey identifies a translatable message.
type MessageKey string

const (
	KeyStart             MessageKey = "start"
	KeyLangPrompt        MessageKey = "lang.prompt"
	KeyLangSet           MessageKey = "lang.set"
	KeyWatchUsage        MessageKey = "watch.usage"
	KeyWatchAdded        MessageKey = "watch.added"
	KeyWatchRemoved      MessageKey = "watch.removed"
	KeyWatchNotFound     MessageKey = "watch.not_found"
	KeyWatchNewPost      MessageKey = "watch.new_post"
	KeyAskUsage          MessageKey = "ask.usage"
	KeyVideoDownloading  MessageKey = "video.downloading"
	KeyVideoFailed       MessageKey = "video.failed"
	KeyRepostedBy        MessageKey = "thread.reposted_by"
	KeyQuoted            MessageKey = "thread.quoted"
	KeyInReplyTo         MessageKey = "thread.in_reply_to"
	KeyErrAccountMissing MessageKey = "error.account_not_found"
	KeyErrPostMissing    MessageKey = "error.post_not_found"
	KeyErrPrivate        MessageKey = "error.private_post"
	KeyErrRateLimited    MessageKey = "error.rate_limited"
	KeyErrUnavailable    MessageKey = "error.service_unavailable"
	KeyErrUnknown        MessageKey = "error.unknown"
)

// Localizer resolves message keys against the embedded locale bundles.
type Localizer struct {
	bundles map[string]map[string]string
}

func New() (*Localizer, error) {
	l := &Localizer{bundles: make(map[string]map[string]string)}
	for _, lang := range Languages() {
		data, err := localeFS.ReadFile("locales/" + lang.Code + ".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang.Code, err)
		}
		bundle := make(map[string]string)
		if err := json.Unmarshal(data, &bundle); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang.Code, err)
		}
		l.bundles[lang.Code] = bundle
	}
	return l, nil
}

// Message renders key in lang, substituting {name} placeholders from
// args. Unknown languages and missing keys fall back to English; a key
// missing there too renders as the key itself.
func (l *Localizer) Message(lang string, key MessageKey, args map[string]string) string {
	msg, ok := l.bundles[lang][string(key)]
	if !ok {
		msg, ok = l.bundles[DefaultLanguage][string(key)]
	}
	if !ok {
		return string(key)
	}
	for name, value := range args {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}
