// Package i18n is the server's message catalog. Games and menus refer
// to messages by key; rendering picks the recipient's locale. The
// catalog is deliberately simple: a map per locale with named
// {placeholder} interpolation and an English fallback.
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultLocale is used when a user's locale has no catalog or a key
// is missing from their locale.
const DefaultLocale = "en"

// Args carries named interpolation arguments for a message.
type Args map[string]any

var (
	mu       sync.RWMutex
	catalogs = map[string]map[string]string{}
	names    = map[string]string{}
)

// RegisterLocale installs (or extends) the catalog for a locale.
// displayName is the language's own name, shown in the language menu.
func RegisterLocale(locale, displayName string, messages map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	cat, ok := catalogs[locale]
	if !ok {
		cat = make(map[string]string, len(messages))
		catalogs[locale] = cat
	}
	for k, v := range messages {
		cat[k] = v
	}
	if displayName != "" {
		names[locale] = displayName
	}
}

// Locales returns the registered locale codes, sorted.
func Locales() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(catalogs))
	for code := range catalogs {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// LocaleName returns the display name of a locale, or the code itself
// if none was registered.
func LocaleName(locale string) string {
	mu.RLock()
	defer mu.RUnlock()
	if n, ok := names[locale]; ok {
		return n
	}
	return locale
}

// T renders key in the given locale, interpolating {name} style
// placeholders from args. Unknown keys render as the key itself so a
// missing translation is visible instead of silent.
func T(locale, key string, args Args) string {
	mu.RLock()
	msg, ok := lookup(locale, key)
	if !ok {
		msg, ok = lookup(DefaultLocale, key)
	}
	mu.RUnlock()
	if !ok {
		msg = key
	}
	if len(args) == 0 {
		return msg
	}
	for name, val := range args {
		msg = strings.ReplaceAll(msg, "{"+name+"}", fmt.Sprintf("%v", val))
	}
	return msg
}

func lookup(locale, key string) (string, bool) {
	cat, ok := catalogs[locale]
	if !ok {
		return "", false
	}
	msg, ok := cat[key]
	return msg, ok
}
