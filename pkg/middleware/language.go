package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/HapoSeiz/AlertShip/pkg/i18n"
)

const LangKey = "lang"

// rewriteLocaleKey carries the locale across HandleContext, which resets
// gin's own key map.
type rewriteLocaleKey struct{}

var langMatcher = buildMatcher()

func buildMatcher() language.Matcher {
	tags := make([]language.Tag, 0, len(i18n.Locales))
	for _, code := range i18n.Locales {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return language.NewMatcher(tags)
}

// SplitLocale peels a supported locale prefix off a URL path. It returns
// the locale ("" when the path carries none) and the remaining path.
func SplitLocale(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/")
	seg, rest, _ := strings.Cut(trimmed, "/")
	if i18n.IsSupported(seg) {
		if rest == "" {
			return seg, "/"
		}
		return seg, "/" + rest
	}
	return "", path
}

// Language resolves the request locale: an explicit locale already set by
// the prefix rewrite wins, then the lang query parameter, then
// Accept-Language matching, then the default.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Request.Context().Value(rewriteLocaleKey{}).(string); ok && v != "" {
			c.Set(LangKey, v)
			c.Next()
			return
		}
		lang := c.Query("lang")
		if !i18n.IsSupported(lang) {
			lang = ""
		}
		if lang == "" {
			if accept := c.GetHeader("Accept-Language"); accept != "" {
				if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
					_, idx, conf := langMatcher.Match(tags...)
					if conf > language.No {
						lang = i18n.Locales[idx]
					}
				}
			}
		}
		if lang == "" {
			lang = i18n.DefaultLocale
		}
		c.Set(LangKey, lang)
		c.Next()
	}
}

// LocaleRewrite is installed as the NoRoute handler. Requests whose first
// path segment is a supported locale are re-dispatched with the prefix
// stripped and the locale pinned on the context, which is how
// /{locale}/dashboard and friends resolve.
func LocaleRewrite(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale, rest := SplitLocale(c.Request.URL.Path)
		if locale == "" {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), rewriteLocaleKey{}, locale))
		c.Request.URL.Path = rest
		engine.HandleContext(c)
	}
}

// Lang reads the resolved locale off the context.
func Lang(c *gin.Context) string {
	if v, ok := c.Get(LangKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return i18n.DefaultLocale
}
