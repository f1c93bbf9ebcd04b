// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "golang.org/x/text/language"

// TemplateOption describes a template style for the template selector.
type TemplateOption struct {
	ID          TemplateID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

type optionText struct {
	name, desc string
}

var catalog = map[Language]map[TemplateID]optionText{
	LanguageEnglish: {
		TemplateModern:     {"Modern Card", "Rounded corners, gradient headers. Perfect for apps & SaaS."},
		TemplateCorporate:  {"Corporate Pro", "Clean, boxy, serious. Best for official announcements."},
		TemplateNewsletter: {"Editorial Newsletter", "Minimalist, text-focused. Great for weekly digests."},
		TemplatePromo:      {"Bold Promo", "High impact, large visuals. Ideal for sales & offers."},
	},
	LanguageSpanish: {
		TemplateModern:     {"Tarjeta Moderna", "Bordes redondeados, degradados. Ideal Apps y SaaS."},
		TemplateCorporate:  {"Corporativo Pro", "Limpio, cuadrado, serio. Para comunicados oficiales."},
		TemplateNewsletter: {"Newsletter Editorial", "Minimalista, enfocado en texto. Para boletines."},
		TemplatePromo:      {"Promo Impacto", "Visuales grandes, colores fuertes. Ideal para ventas."},
	},
	LanguagePortuguese: {
		TemplateModern:     {"Cartão Moderno", "Bordas arredondadas, gradientes. Ideal para Apps."},
		TemplateCorporate:  {"Corporativo Pro", "Limpo, quadrado, sério. Para anúncios oficiais."},
		TemplateNewsletter: {"Newsletter Editorial", "Minimalista, focado em texto. Para boletins."},
		TemplatePromo:      {"Promo Impacto", "Visuais grandes, cores fortes. Ideal para vendas."},
	},
}

// Catalog returns the template options with names in the given language.
func Catalog(lang Language) []TemplateOption {
	texts := catalog[lang.Normalize()]
	out := make([]TemplateOption, 0, len(TemplateIDs))
	for _, id := range TemplateIDs {
		t := texts[id]
		out = append(out, TemplateOption{ID: id, Name: t.name, Description: t.desc})
	}
	return out
}

// The first tag is the fallback returned by the matcher.
var languageMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
	language.Portuguese,
})

// MatchLanguage picks the best supported language for an explicit code or,
// when that is empty, an Accept-Language header value.
func MatchLanguage(code, acceptLanguage string) Language {
	if code != "" {
		return Language(code).Normalize()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LanguageEnglish
	}
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return LanguageEnglish
	}
	return Languages[idx]
}
