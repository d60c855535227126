// Package i18n holds the translated strings used in the few-shot exemplar of
// the generation prompt. The catalog is read-only after construction and is
// passed to the prompt builder rather than looked up globally.
package i18n

import "strings"

// FallbackLocale is used when a locale has no entry in the catalog.
const FallbackLocale = "english"

// Translation is the set of exemplar strings for one locale.
type Translation struct {
	CommitFix         string
	CommitFeat        string
	CommitDescription string
	// Language is the human name of the language, interpolated into "Use <Language> to answer."
	Language string
}

// Catalog maps normalized locale names to translations.
type Catalog struct {
	translations map[string]Translation
}

// New returns a catalog over translations. Keys are normalized to lowercase.
// The fallback locale must be present; Default() provides one.
func New(translations map[string]Translation) *Catalog {
	m := make(map[string]Translation, len(translations))
	for k, v := range translations {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Catalog{translations: m}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(map[string]Translation{
		FallbackLocale: english,
	})
}

// Lookup returns the translation for locale and whether it was found.
func (c *Catalog) Lookup(locale string) (Translation, bool) {
	t, ok := c.translations[strings.ToLower(strings.TrimSpace(locale))]
	return t, ok
}

// Get returns the translation for locale. Unknown locales reuse the English
// exemplar strings but keep the requested language name, so the model is still
// asked to answer in that language.
func (c *Catalog) Get(locale string) Translation {
	if t, ok := c.Lookup(locale); ok {
		return t
	}
	t := c.translations[FallbackLocale]
	if name := displayName(locale); name != "" {
		t.Language = name
	}
	return t
}

// displayName title-cases each word: "brazilian portuguese" -> "Brazilian Portuguese".
func displayName(locale string) string {
	words := strings.Fields(strings.ToLower(locale))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var english = Translation{
	CommitFix:  "fix(main.rs): Correct JSON parsing issue for joke response",
	CommitFeat: "feat(main.rs): Add error handling for API request",
	CommitDescription: "After further testing, it was determined that the JSON response data for the joke endpoint " +
		"contained leading/trailing white space. To fix the issue, string trimming was added to the JSON parsing step.\n" +
		"To improve the error handling logic of the API request, a `match` expression was added to handle the case " +
		"when the API request fails.\n" +
		"Updates:\n" +
		"- The `serde_json::from_str` call now trims leading/trailing spaces before parsing.\n" +
		"- A `match` expression now handles the `Err` case when making the API request.\n",
	Language: "English",
}
