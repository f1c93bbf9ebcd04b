// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"regexp"
	"strings"
)

// Brand defaults, matching the values the configurator starts with.
const (
	DefaultPrimaryColor    = "#27bea5"
	DefaultSecondaryColor  = "#017b46"
	DefaultBackgroundColor = "#f5f7fb"
	DefaultFontFamily      = "Arial, Helvetica, sans-serif"
	DefaultLogoURL         = "https://via.placeholder.com/150x50/ffffff/000000?text=LOGO"

	// FallbackLink is used for links whose target the user never provided.
	FallbackLink = "#"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// BrandConfig is the visual identity supplied by the user. It is treated as
// an immutable value for the duration of a generation call.
type BrandConfig struct {
	BrandName        string `json:"brandName"`
	LogoURL          string `json:"logoUrl,omitempty"`
	PrimaryColor     string `json:"primaryColor"`
	SecondaryColor   string `json:"secondaryColor"`
	BackgroundColor  string `json:"backgroundColor"`
	WebsiteURL       string `json:"websiteUrl"`
	PrivacyPolicyURL string `json:"privacyPolicyUrl,omitempty"`
	FontFamily       string `json:"fontFamily"`
}

// IsHexColor reports whether s is a 7-character #rrggbb color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// InvalidColors returns the JSON names of color fields that are not
// #rrggbb strings. Empty fields are not reported; they get defaults.
func (b BrandConfig) InvalidColors() []string {
	var bad []string
	for _, f := range []struct{ name, value string }{
		{"primaryColor", b.PrimaryColor},
		{"secondaryColor", b.SecondaryColor},
		{"backgroundColor", b.BackgroundColor},
	} {
		v := strings.TrimSpace(f.value)
		if v != "" && !IsHexColor(v) {
			bad = append(bad, f.name)
		}
	}
	return bad
}

// WithDefaults returns a copy with empty or malformed fields replaced by the
// configurator defaults. The receiver is not modified.
func (b BrandConfig) WithDefaults() BrandConfig {
	b.PrimaryColor = colorOr(b.PrimaryColor, DefaultPrimaryColor)
	b.SecondaryColor = colorOr(b.SecondaryColor, DefaultSecondaryColor)
	b.BackgroundColor = colorOr(b.BackgroundColor, DefaultBackgroundColor)
	if strings.TrimSpace(b.FontFamily) == "" {
		b.FontFamily = DefaultFontFamily
	}
	if strings.TrimSpace(b.LogoURL) == "" {
		b.LogoURL = DefaultLogoURL
	}
	b.WebsiteURL = strings.TrimSpace(b.WebsiteURL)
	b.PrivacyPolicyURL = strings.TrimSpace(b.PrivacyPolicyURL)
	return b
}

// PrivacyLink resolves the footer privacy link: the privacy policy URL if
// set, else the website URL, else FallbackLink.
func (b BrandConfig) PrivacyLink() string {
	if v := strings.TrimSpace(b.PrivacyPolicyURL); v != "" {
		return v
	}
	if v := strings.TrimSpace(b.WebsiteURL); v != "" {
		return v
	}
	return FallbackLink
}

func colorOr(v, fallback string) string {
	v = strings.TrimSpace(v)
	if IsHexColor(v) {
		return strings.ToLower(v)
	}
	return fallback
}
