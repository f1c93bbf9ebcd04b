// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mailcraft/internal/models"
	"mailcraft/internal/prompt"
)

var (
	generateInput    string
	generateOutput   string
	generateFormat   string
	generateProvider string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one email from a brief file",
	Long: `Reads a JSON document {"brand": {...}, "content": {...}} and runs the full
generation pipeline once. The artifact is written as JSON, or as the bare
HTML document with --format html.`,
	Example: `  mailcraft generate -i brief.json
  mailcraft generate -i - --format html -o email.html < brief.json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "", "Brief JSON file, or - for stdin (required)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default stdout)")
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "json", "Output format: json or html")
	generateCmd.Flags().StringVarP(&generateProvider, "provider", "p", "", "Override AI_PROVIDER for this run")
	_ = generateCmd.MarkFlagRequired("input")
}

// brief is the input document of the generate command.
type brief struct {
	Brand   *models.BrandConfig  `json:"brand"`
	Content *models.ContentBrief `json:"content"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateFormat != "json" && generateFormat != "html" {
		return fmt.Errorf("unknown format %q (want json or html)", generateFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in, err := openInput(generateInput, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer in.Close()

	b, err := readBrief(in)
	if err != nil {
		return err
	}
	if err := prompt.Validate(*b.Brand, *b.Content, cfg.StrictColors); err != nil {
		return err
	}

	registry := newRegistry(cfg)
	if generateProvider != "" {
		if err := registry.SetActive(generateProvider); err != nil {
			return err
		}
	}
	gateway, err := newGateway(cfg, registry, nil)
	if err != nil {
		return err
	}

	res, err := gateway.Generate(cmd.Context(), prompt.Build(*b.Brand, *b.Content))
	if err != nil {
		return err
	}
	slog.Info("email generated",
		"provider", res.Provider,
		"image", res.ImageSource,
		"duration", res.Duration,
	)

	out := cmd.OutOrStdout()
	if generateOutput != "" {
		f, err := os.Create(generateOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeArtifact(out, res.Artifact, generateFormat)
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open brief: %w", err)
	}
	return f, nil
}

// readBrief decodes a brief and requires both sections.
func readBrief(r io.Reader) (*brief, error) {
	var b brief
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}
	if b.Brand == nil || b.Content == nil {
		return nil, errors.New("brief must contain both \"brand\" and \"content\"")
	}
	return &b, nil
}

func writeArtifact(w io.Writer, a *models.GeneratedArtifact, format string) error {
	if format == "html" {
		_, err := io.WriteString(w, a.HTML)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
