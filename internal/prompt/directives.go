// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import "mailcraft/internal/models"

// StyleDirective is the fixed visual description sent for a template style.
type StyleDirective struct {
	Title     string
	Container string
	Header    string
	Body      string
	Buttons   string
	// Width is the container width in pixels; the media query breakpoint
	// uses the same value.
	Width int
}

var styleDirectives = map[models.TemplateID]StyleDirective{
	models.TemplateModern: {
		Title:     "The Modern Card Style",
		Container: "Centered 640px wide, white background, rounded corners (16px), shadow effect.",
		Header:    "Gradient background using the brand's Primary and Secondary colors. White text for contrast.",
		Body:      "Secondary content blocks as cards with light background colors (e.g. #f8fafc), 12px radius and thin borders.",
		Buttons:   "Full-width or large rounded (pill) buttons with the brand gradient.",
		Width:     640,
	},
	models.TemplateCorporate: {
		Title:     "The Corporate Pro Style",
		Container: "Centered 600px wide, white background, square corners (0px radius), 1px solid #e2e8f0 border, no shadow.",
		Header:    "Solid dark navy bar (#0f172a) with the logo on the left. No gradients.",
		Body:      "Structured sections separated by 1px horizontal rules; a two-column grid of info boxes with 2px radius.",
		Buttons:   "Rectangular buttons with 2px radius in the brand Primary color, uppercase label.",
		Width:     600,
	},
	models.TemplateNewsletter: {
		Title:     "The Editorial Newsletter Style",
		Container: "Centered 600px wide, warm off-white background (#fdfbf7), no corner radius, generous whitespace.",
		Header:    "Minimal masthead: centered circular logo, brand name in a serif-like weight, a thin 1px divider below.",
		Body:      "Text-focused single column with a strong headline, readable 16px/1.6 paragraphs and centered section titles.",
		Buttons:   "Understated outlined buttons (1px border in the brand Primary color, transparent fill, 4px radius).",
		Width:     600,
	},
	models.TemplatePromo: {
		Title:     "The Bold Promo Style",
		Container: "Centered 640px wide, white background, rounded corners (8px), strong shadow, edge-to-edge hero.",
		Header:    "High-impact hero band with a vivid gradient from the Primary to the Secondary color and a large uppercase headline.",
		Body:      "Short punchy copy, centered, with a prominent offer block and large visuals.",
		Buttons:   "Large, high-contrast, bold buttons (6px radius) spanning the content width, with a subtle shadow.",
		Width:     640,
	},
}

// Style returns the directive for id, falling back to the modern style for
// unknown identifiers.
func Style(id models.TemplateID) StyleDirective {
	return styleDirectives[id.Normalize()]
}

var languageDirectives = map[models.Language]string{
	models.LanguageEnglish:    "The content of the email (headers, body, buttons) MUST be written in ENGLISH.",
	models.LanguageSpanish:    "The content of the email (headers, body, buttons) MUST be written in SPANISH.",
	models.LanguagePortuguese: "The content of the email (headers, body, buttons) MUST be written in PORTUGUESE.",
}

// LanguageInstruction returns the directive for lang, falling back to
// English for unknown codes.
func LanguageInstruction(lang models.Language) string {
	return languageDirectives[lang.Normalize()]
}
