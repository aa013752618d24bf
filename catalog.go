package linecsv

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message identifiers understood by the default catalog.
const (
	MsgSpecialCharactersMustDiffer = "SpecialCharactersMustDiffer"
	MsgDefineSeparator             = "DefineSeparator"
	MsgUnterminatedQuote           = "UnterminatedQuote"
	MsgBareQuote                   = "BareQuote"
	MsgUnterminatedQuoteAtEOF      = "UnterminatedQuoteAtEOF"
	MsgMultilineLimitBroken        = "MultilineLimitBroken"
	MsgWrongFieldCount             = "WrongFieldCount"
)

//go:embed locales/*.json
var localeFiles embed.FS

var json = jsoniter.ConfigFastest

// Catalog resolves a message identifier and its arguments into text for a language.
// Implementations must be safe for concurrent use.
type Catalog interface {
	Localize(tag language.Tag, id string, data map[string]any) string
}

type bundleCatalog struct {
	bundle *i18n.Bundle
}

var defaultCatalog = sync.OnceValue(func() Catalog {
	c, err := NewCatalog(localeFiles, "locales/en.json", "locales/de.json", "locales/pt-BR.json")
	if err != nil {
		panic(fmt.Sprintf("linecsv: embedded message catalog: %v", err))
	}
	return c
})

// DefaultCatalog returns the catalog built from the embedded English, German and Brazilian Portuguese messages.
func DefaultCatalog() Catalog {
	return defaultCatalog()
}

// NewCatalog loads go-i18n message files from fsys. The language of each file is taken from its name,
// e.g. "fr.json" or "active.pt-BR.json". English is the fallback language.
func NewCatalog(fsys fs.FS, paths ...string) (Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, path := range paths {
		if _, err := bundle.LoadMessageFileFS(fsys, path); err != nil {
			return nil, fmt.Errorf("failed to load message file %s: %w", path, err)
		}
	}

	return &bundleCatalog{bundle: bundle}, nil
}

// Localize returns the message for id in the closest supported language, or id itself when no
// translation exists.
func (c *bundleCatalog) Localize(tag language.Tag, id string, data map[string]any) string {
	localizer := i18n.NewLocalizer(c.bundle, tag.String())

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil && msg == "" {
		return id
	}

	return msg
}
