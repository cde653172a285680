// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package i18n localizes the recipient-facing surfaces: nudge email copy
// and the magic-link page. The owner API itself is English-only; locale
// selection follows the Accept-Language header of the incoming request.
package i18n

import (
	"context"
	"embed"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

// defaultLocale is the fallback for requests without a usable
// Accept-Language header.
var defaultLocale = language.English

// supportedLocales lists every language a translation catalog exists for.
var supportedLocales = []language.Tag{
	language.English,
	language.German,
}

var bundle *i18n.Bundle

type localizerContextKey struct{}

// Init loads every embedded translation catalog into the bundle.
func Init() error {
	bundle = i18n.NewBundle(defaultLocale)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	catalogs, err := fs.Glob(translationFS, "translations/active.*.toml")
	if err != nil {
		return err
	}
	for _, catalog := range catalogs {
		if _, err := bundle.LoadMessageFileFS(translationFS, catalog); err != nil {
			return err
		}
	}

	return nil
}

// WithLocale stores a localizer for the given language in the context.
func WithLocale(ctx context.Context, lang language.Tag) context.Context {
	localizer := i18n.NewLocalizer(bundle, lang.String())
	return context.WithValue(ctx, localizerContextKey{}, localizer)
}

// T translates a message by ID, falling back to the ID itself for
// unknown keys.
func T(ctx context.Context, messageID string) string {
	msg, err := getLocalizer(ctx).Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	msg, err := getLocalizer(ctx).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// MatchLanguage picks the best supported language for an Accept-Language
// header value.
func MatchLanguage(acceptLanguage string) language.Tag {
	matcher := language.NewMatcher(supportedLocales)
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	return tag
}

func getLocalizer(ctx context.Context) *i18n.Localizer {
	if localizer, ok := ctx.Value(localizerContextKey{}).(*i18n.Localizer); ok {
		return localizer
	}
	return i18n.NewLocalizer(bundle, defaultLocale.String())
}
