// Package i18n renders user-facing notifications from embedded TOML catalogs.
package i18n

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

var catalogs = []string{"active.en.toml", "active.es.toml"}

// Translator is a thin wrapper around go-i18n's Bundle/Localizer
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          zerolog.Logger
}

// NewTranslator builds a Translator with the given default locale (e.g. "en")
func NewTranslator(defaultLocale string, logger zerolog.Logger) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range catalogs {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("i18n: failed to load catalog")
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		logger:          logger,
	}
}

// T renders key for the given locale or Accept-Language header value. Missing
// keys fall back to the default locale, then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	return t.localize(locale, &i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// N renders a pluralized message; count selects the plural form and is
// available to the template as .Count
func (t *Translator) N(locale, key string, count int, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	data["Count"] = count
	return t.localize(locale, &i18n.LocalizeConfig{MessageID: key, TemplateData: data, PluralCount: count})
}

func (t *Translator) localize(locale string, cfg *i18n.LocalizeConfig) string {
	if cfg.MessageID == "" {
		return ""
	}
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	msg, err := i18n.NewLocalizer(t.bundle, languages...).Localize(cfg)
	if err != nil {
		t.logger.Debug().Err(err).Str("key", cfg.MessageID).Strs("locales", languages).Msg("i18n: localize failed")
		return cfg.MessageID
	}
	return msg
}

// Languages lists the loaded locales
func (t *Translator) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}
