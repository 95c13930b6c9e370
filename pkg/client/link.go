package client

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

// Link augments the headers of an outgoing request. Links run in the order
// they were given to WithLinks, before every dispatch.
type Link func(ctx context.Context, h http.Header)

// DefaultLocale is sent when the locale source yields nothing parseable.
const DefaultLocale = "en"

// LocaleLink sets Accept-Language to the canonical BCP 47 form of the current
// locale. The locale is read on every request so UI language switches apply
// immediately.
func LocaleLink(locale func() string) Link {
	return func(_ context.Context, h http.Header) {
		h.Set("Accept-Language", CanonicalLocale(locale()))
	}
}

// AuthLink sets "Authorization: JWT <token>" when token returns a non-empty
// value. It leaves every other header untouched.
func AuthLink(token func() string) Link {
	return func(_ context.Context, h http.Header) {
		if tok := token(); tok != "" {
			h.Set("Authorization", "JWT "+tok)
		}
	}
}

// CanonicalLocale normalizes POSIX and BCP 47 locale strings ("pt_BR.UTF-8",
// "en-us") to a BCP 47 tag ("pt-BR", "en-US").
func CanonicalLocale(raw string) string {
	for i, r := range raw {
		if r == '.' || r == '@' {
			raw = raw[:i]
			break
		}
	}
	tag, err := language.Parse(raw)
	if err != nil || tag == language.Und {
		return DefaultLocale
	}
	return tag.String()
}
