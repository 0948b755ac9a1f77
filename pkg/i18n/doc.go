// Package i18n holds translated message catalogues.
//
// Catalogues are YAML documents keyed by language code, loaded from any fs.FS
// (typically an embed.FS) with LoadFS. A Translator resolves dotted keys, fills
// %{name} placeholders and negotiates languages with golang.org/x/text/language.
//
//	data, err := i18n.LoadFS(locales, "locales")
//	tr, err := i18n.NewTranslator(data, "en")
//	msg := tr.T(tr.Match("tr-TR,tr;q=0.9"), "messages.required")
//
// Middleware stores the negotiated language in the request context; GetLocale
// reads it back.
package i18n
