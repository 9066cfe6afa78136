// Package i18n builds x/text message catalogs from per-locale key tables
// and resolves session messages against them.
package i18n

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	prerrors "github.com/conneroisu/prerender/internal/errors"
)

// Catalog maps a BCP 47 locale to its message keys.
type Catalog map[string]map[string]string

// Bundle is an immutable set of translated messages.
type Bundle struct {
	fallback  language.Tag
	supported []language.Tag
	matcher   language.Matcher
	builder   *catalog.Builder
	keys      map[language.Tag]map[string]bool
}

// New builds a bundle. The fallback locale is used when a requested
// locale matches nothing and for keys missing from the matched locale.
func New(fallback string, messages Catalog) (*Bundle, error) {
	fb, err := language.Parse(fallback)
	if err != nil {
		return nil, prerrors.WrapConfig(err, fmt.Sprintf("invalid fallback locale %q", fallback))
	}

	b := &Bundle{
		fallback:  fb,
		supported: []language.Tag{fb},
		builder:   catalog.NewBuilder(catalog.Fallback(fb)),
		keys:      map[language.Tag]map[string]bool{fb: {}},
	}

	locales := make([]string, 0, len(messages))
	for locale := range messages {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, prerrors.WrapConfig(err, fmt.Sprintf("invalid locale %q", locale))
		}
		if _, seen := b.keys[tag]; !seen {
			b.supported = append(b.supported, tag)
			b.keys[tag] = map[string]bool{}
		}
		for key, msg := range messages[locale] {
			if err := b.builder.SetString(tag, key, msg); err != nil {
				return nil, prerrors.WrapConfig(err, fmt.Sprintf("message %s/%s", locale, key))
			}
			b.keys[tag][key] = true
		}
	}

	b.matcher = language.NewMatcher(b.supported)
	return b, nil
}

// Load reads a YAML catalog of the form {locale: {key: message}}.
func Load(path, fallback string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, prerrors.WrapConfig(err, "read message catalog")
	}
	var messages Catalog
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, prerrors.WrapConfig(err, "parse message catalog "+path)
	}
	return New(fallback, messages)
}

// Locales returns the supported locales, fallback first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.supported))
	for i, tag := range b.supported {
		out[i] = tag.String()
	}
	return out
}

// Localizer returns a view of the bundle for the best match of locale.
func (b *Bundle) Localizer(locale string) *Localizer {
	tag := b.fallback
	if requested, err := language.Parse(locale); err == nil {
		_, idx, conf := b.matcher.Match(requested)
		if conf != language.No {
			tag = b.supported[idx]
		}
	}
	return &Localizer{
		bundle:  b,
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b.builder)),
	}
}

// Localizer resolves messages for one locale.
type Localizer struct {
	bundle  *Bundle
	tag     language.Tag
	printer *message.Printer
}

// Locale returns the matched locale.
func (l *Localizer) Locale() string { return l.tag.String() }

// Message formats key. Keys unknown to both the matched and the fallback
// locale are returned unchanged.
func (l *Localizer) Message(key string, args ...interface{}) string {
	switch {
	case l.bundle.keys[l.tag][key]:
		return l.printer.Sprintf(key, args...)
	case l.bundle.keys[l.bundle.fallback][key]:
		return message.NewPrinter(l.bundle.fallback, message.Catalog(l.bundle.builder)).Sprintf(key, args...)
	default:
		return key
	}
}

// Resolve is a session message resolver. The session's i18n data may be
// a *Localizer, a *Bundle (fallback locale), or a flat map of format
// strings. Anything else resolves every key to itself.
func Resolve(data interface{}, key string, args ...interface{}) string {
	switch d := data.(type) {
	case *Localizer:
		return d.Message(key, args...)
	case *Bundle:
		return d.Localizer(d.fallback.String()).Message(key, args...)
	case map[string]string:
		if msg, ok := d[key]; ok {
			if len(args) == 0 {
				return msg
			}
			return fmt.Sprintf(msg, args...)
		}
	}
	return key
}
