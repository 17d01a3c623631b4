package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// LocaleNegotiator picks the message locale from Accept-Language against the supported locales.
// The first supported locale is the fallback.
func LocaleNegotiator(supported []string) gin.HandlerFunc {
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		if tag, err := language.Parse(s); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, language.English)
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		accepted, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		locale := tags[0]
		if err == nil && len(accepted) > 0 {
			_, index, _ := matcher.Match(accepted...)
			locale = tags[index]
		}
		base, _ := locale.Base()
		c.Set(ContextLocale, base.String())
		c.Next()
	}
}
