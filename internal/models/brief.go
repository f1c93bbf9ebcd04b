// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// Language is the language the generated email copy is written in.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguagePortuguese Language = "pt"
)

// Languages lists the supported languages in display order.
var Languages = []Language{LanguageEnglish, LanguageSpanish, LanguagePortuguese}

// Normalize returns l if it is supported, otherwise LanguageEnglish.
func (l Language) Normalize() Language {
	switch Language(strings.ToLower(strings.TrimSpace(string(l)))) {
	case LanguageSpanish:
		return LanguageSpanish
	case LanguagePortuguese:
		return LanguagePortuguese
	default:
		return LanguageEnglish
	}
}

// TemplateID selects one of the fixed visual template styles.
type TemplateID string

const (
	TemplateModern     TemplateID = "modern"
	TemplateCorporate  TemplateID = "corporate"
	TemplateNewsletter TemplateID = "newsletter"
	TemplatePromo      TemplateID = "promo"
)

// TemplateIDs lists the template styles in display order.
var TemplateIDs = []TemplateID{TemplateModern, TemplateCorporate, TemplateNewsletter, TemplatePromo}

// Normalize returns t if it is a known style, otherwise TemplateModern.
func (t TemplateID) Normalize() TemplateID {
	switch TemplateID(strings.ToLower(strings.TrimSpace(string(t)))) {
	case TemplateCorporate:
		return TemplateCorporate
	case TemplateNewsletter:
		return TemplateNewsletter
	case TemplatePromo:
		return TemplatePromo
	default:
		return TemplateModern
	}
}

// Tone is the voice of the generated copy.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneUrgent       Tone = "urgent"
	ToneMinimalist   Tone = "minimalist"
)

// Normalize returns t if it is a known tone, otherwise ToneProfessional.
func (t Tone) Normalize() Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(string(t)))) {
	case ToneFriendly:
		return ToneFriendly
	case ToneUrgent:
		return ToneUrgent
	case ToneMinimalist:
		return ToneMinimalist
	default:
		return ToneProfessional
	}
}

// Brief defaults, matching the values the configurator starts with.
const (
	DefaultCTAText = "Get Started"
	DefaultCTALink = FallbackLink
)

// ContentBrief is the campaign intent supplied by the user.
type ContentBrief struct {
	Language        Language   `json:"language"`
	TemplateID      TemplateID `json:"templateId"`
	CampaignTopic   string     `json:"campaignTopic"`
	KeyMessage      string     `json:"keyMessage"`
	Audience        string     `json:"audience"`
	CTAText         string     `json:"ctaText"`
	CTALink         string     `json:"ctaLink"`
	Tone            Tone       `json:"tone"`
	CustomVariables string     `json:"customVariables,omitempty"`
	GenerateImage   bool       `json:"generateImage,omitempty"`
	ImagePrompt     string     `json:"imagePrompt,omitempty"`
}

// HasTopic reports whether the brief carries a non-blank campaign topic.
func (c ContentBrief) HasTopic() bool {
	return strings.TrimSpace(c.CampaignTopic) != ""
}

// WithDefaults returns a copy with enumerations normalized and empty CTA
// fields filled in.
func (c ContentBrief) WithDefaults() ContentBrief {
	c.Language = c.Language.Normalize()
	c.TemplateID = c.TemplateID.Normalize()
	c.Tone = c.Tone.Normalize()
	c.CampaignTopic = strings.TrimSpace(c.CampaignTopic)
	if strings.TrimSpace(c.CTAText) == "" {
		c.CTAText = DefaultCTAText
	}
	if strings.TrimSpace(c.CTALink) == "" {
		c.CTALink = DefaultCTALink
	}
	c.ImagePrompt = strings.TrimSpace(c.ImagePrompt)
	return c
}

// Variables splits CustomVariables on commas, trimming each entry and
// dropping empty ones. An entry already written as {{name}} is unwrapped so
// the prompt does not brace it twice. Order is preserved.
func (c ContentBrief) Variables() []string {
	var out []string
	for _, v := range strings.Split(c.CustomVariables, ",") {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "{{") && strings.HasSuffix(v, "}}") && len(v) >= 4 {
			v = strings.TrimSpace(v[2 : len(v)-2])
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
