// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prompt

import (
	"strings"
	"unicode/utf8"

	"mailcraft/internal/models"
)

// Input limits. Longer values are rejected rather than truncated so the
// prompt never silently drops user intent.
const (
	maxTopicLen       = 300
	maxFieldLen       = 2_000
	maxVariablesLen   = 500
	maxImagePromptLen = 1_000
)

// Validate checks the inputs a generation call depends on and returns the
// first problem as a *models.ValidationError. With strictColors set,
// malformed color fields are rejected instead of replaced by defaults.
func Validate(brand models.BrandConfig, content models.ContentBrief, strictColors bool) error {
	if !content.HasTopic() {
		return &models.ValidationError{Field: "campaignTopic", Message: "Please enter a campaign topic to start."}
	}
	if utf8.RuneCountInString(strings.TrimSpace(content.CampaignTopic)) > maxTopicLen {
		return &models.ValidationError{Field: "campaignTopic", Message: "Campaign topic is too long (max 300 characters)."}
	}
	for _, f := range []struct{ name, value string }{
		{"keyMessage", content.KeyMessage},
		{"audience", content.Audience},
		{"brandName", brand.BrandName},
	} {
		if utf8.RuneCountInString(f.value) > maxFieldLen {
			return &models.ValidationError{Field: f.name, Message: "Value is too long (max 2,000 characters)."}
		}
	}
	if utf8.RuneCountInString(content.CustomVariables) > maxVariablesLen {
		return &models.ValidationError{Field: "customVariables", Message: "Custom variables are too long (max 500 characters)."}
	}
	if utf8.RuneCountInString(content.ImagePrompt) > maxImagePromptLen {
		return &models.ValidationError{Field: "imagePrompt", Message: "Image description is too long (max 1,000 characters)."}
	}
	if strictColors {
		if bad := brand.InvalidColors(); len(bad) > 0 {
			return &models.ValidationError{Field: bad[0], Message: "Colors must be 7-character hex values like #27bea5."}
		}
	}
	return nil
}
