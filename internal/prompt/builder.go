// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompt turns a brand configuration and a content brief into a
// provider-agnostic generation request. Everything here is pure: no I/O.
package prompt

import (
	"fmt"
	"strings"

	"mailcraft/internal/ai"
	"mailcraft/internal/models"
)

const (
	// HeroImageToken marks where the hero image URL goes in generated HTML.
	HeroImageToken = "{{HERO_IMAGE_SRC}}"

	// ImageAspectRatio is the fixed aspect ratio requested for hero images.
	ImageAspectRatio = "16:9"
)

// ArtifactSchema is the structured output every generation must match.
var ArtifactSchema = ai.Schema{
	Name:       "email_template",
	Properties: []string{"subjectLine", "previewText", "html", "plainText"},
}

// Request is a fully assembled generation request.
type Request struct {
	Prompt        string
	Schema        ai.Schema
	TemplateID    models.TemplateID
	Language      models.Language
	Variables     []string
	PrivacyLink   string
	GenerateImage bool
	ImagePrompt   string

	// Topic is the trimmed campaign topic, used to name hosted images.
	Topic string
}

// Build composes the generation request for brand and content. Empty and
// unknown fields are resolved to their defaults first.
func Build(brand models.BrandConfig, content models.ContentBrief) Request {
	brand = brand.WithDefaults()
	content = content.WithDefaults()

	req := Request{
		Topic:         content.CampaignTopic,
		Schema:        ArtifactSchema,
		TemplateID:    content.TemplateID,
		Language:      content.Language,
		Variables:     content.Variables(),
		PrivacyLink:   brand.PrivacyLink(),
		GenerateImage: content.GenerateImage,
	}
	if content.GenerateImage {
		req.ImagePrompt = ImagePrompt(brand, content)
	}
	req.Prompt = render(brand, content, req)
	return req
}

// ImagePrompt returns the user's image description, or one derived from the
// topic, tone and primary color when none was given.
func ImagePrompt(brand models.BrandConfig, content models.ContentBrief) string {
	if p := strings.TrimSpace(content.ImagePrompt); p != "" {
		return p
	}
	return fmt.Sprintf(
		"A professional, high-quality marketing banner image for an email campaign about %q. "+
			"Style: %s, modern, clean composition. Color accents: %s. "+
			"No text, no letters, no logos in the image.",
		strings.TrimSpace(content.CampaignTopic),
		content.Tone.Normalize(),
		brand.PrimaryColor,
	)
}

func render(brand models.BrandConfig, content models.ContentBrief, req Request) string {
	style := Style(content.TemplateID)
	var b strings.Builder

	b.WriteString("You are an expert HTML Email Developer.\n")
	b.WriteString("Your task is to create a production-ready, responsive HTML email template compatible with Mailchimp, Brevo, and Outlook.\n\n")

	fmt.Fprintf(&b, "**Design Directive:**\nYou MUST follow a specific visual style: %q.\n", style.Title)
	fmt.Fprintf(&b, "- **Container**: %s\n", style.Container)
	fmt.Fprintf(&b, "- **Header**: %s\n", style.Header)
	fmt.Fprintf(&b, "- **Typography**: You MUST use this font stack: %q.\n", brand.FontFamily)
	fmt.Fprintf(&b, "- **Content blocks**: %s\n", style.Body)
	fmt.Fprintf(&b, "- **Buttons**: %s MUST include VML code for Outlook compatibility.\n\n", style.Buttons)

	b.WriteString("**User Brand Configuration:**\n")
	fmt.Fprintf(&b, "- Brand Name: %s\n", brand.BrandName)
	fmt.Fprintf(&b, "- Logo URL: %s\n", brand.LogoURL)
	fmt.Fprintf(&b, "- Primary Color: %s\n", brand.PrimaryColor)
	fmt.Fprintf(&b, "- Secondary Color: %s\n", brand.SecondaryColor)
	fmt.Fprintf(&b, "- Background Color (Page): %s\n", brand.BackgroundColor)
	fmt.Fprintf(&b, "- Website: %s\n", orFallback(brand.WebsiteURL))
	fmt.Fprintf(&b, "- Privacy Policy Link (footer): %s\n", req.PrivacyLink)
	fmt.Fprintf(&b, "- Font Family: %s\n\n", brand.FontFamily)

	b.WriteString("**Content Context:**\n")
	fmt.Fprintf(&b, "- Language: %s\n", LanguageInstruction(content.Language))
	fmt.Fprintf(&b, "- Campaign Topic: %s\n", content.CampaignTopic)
	fmt.Fprintf(&b, "- Key Message: %s\n", content.KeyMessage)
	fmt.Fprintf(&b, "- Audience: %s\n", content.Audience)
	fmt.Fprintf(&b, "- CTA Button: %q -> %s\n", content.CTAText, content.CTALink)
	fmt.Fprintf(&b, "- Tone: %s\n", content.Tone)
	if len(req.Variables) == 0 {
		b.WriteString("- Custom Variables: None provided\n\n")
	} else {
		tokens := make([]string, len(req.Variables))
		for i, v := range req.Variables {
			tokens[i] = "{{" + v + "}}"
		}
		fmt.Fprintf(&b, "- Custom Variables: %s\n\n", strings.Join(tokens, ", "))
	}

	b.WriteString("**Strict Output Requirements:**\n")
	b.WriteString("1. **Structure**: Use a standard HTML5 doctype but a table-based layout for email clients. ")
	b.WriteString("The `<html>` tag must include `xmlns:v=\"urn:schemas-microsoft-com:vml\"` and ")
	b.WriteString("`xmlns:o=\"urn:schemas-microsoft-com:office:office\"`. ")
	fmt.Fprintf(&b, "Set the lang attribute to %q.\n", string(content.Language))
	b.WriteString("2. **Styling**: All CSS must be INLINED. ")
	fmt.Fprintf(&b, "Apply `font-family: %s` to all text elements. ", brand.FontFamily)
	fmt.Fprintf(&b, "Include a `<style>` block in the head ONLY for media queries (max-width: %dpx).\n", style.Width)
	fmt.Fprintf(&b, "3. **Hero Image**: Wherever the design needs a hero/banner image, use an `<img>` whose src is exactly `%s`. ", HeroImageToken)
	b.WriteString("Do not invent image URLs; the placeholder is replaced after generation.\n")
	b.WriteString("4. **Content Generation**: Write copy based on the Tone and Topic in the requested LANGUAGE. ")
	if len(req.Variables) > 0 {
		b.WriteString("Insert each custom variable as its literal token (")
		for i, v := range req.Variables {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "`{{%s}}`", v)
		}
		b.WriteString(") exactly as written; never replace these tokens with example values. ")
	}
	fmt.Fprintf(&b, "The footer must link to %s for the privacy policy.\n", req.PrivacyLink)
	b.WriteString("5. **Plain Text**: Generate a plain text version suitable for MIME text/plain.\n\n")

	b.WriteString("**Return Data:**\nReturn a JSON object strictly matching this schema, with no other properties:\n")
	b.WriteString("{\n")
	b.WriteString("  \"subjectLine\": \"Subject line here\",\n")
	b.WriteString("  \"previewText\": \"Preheader text here\",\n")
	b.WriteString("  \"html\": \"The complete HTML string starting with <!doctype html>...\",\n")
	b.WriteString("  \"plainText\": \"The plain text version...\"\n")
	b.WriteString("}\n")

	return b.String()
}

func orFallback(s string) string {
	if s == "" {
		return models.FallbackLink
	}
	return s
}
