package i18n

import "errors"

var (
	ErrFailedToParseYAML        = errors.New("failed to parse YAML content")
	ErrFailedToReadFile         = errors.New("failed to read translation file")
	ErrFailedToReadDirectory    = errors.New("failed to read translation directory")
	ErrInvalidTranslationFormat = errors.New("invalid translation format")
	ErrNoTranslations           = errors.New("no translations loaded")
	ErrDefaultLanguageNotLoaded = errors.New("default language has no translations")
)
