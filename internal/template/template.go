// Package template loads the note template file and renders new note bodies.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filename is the template file kept in the application home directory.
const Filename = "TEMPLATE.md"

// Default is the built-in template written on first run. It emits YAML
// frontmatter so that notes stay importable after index loss.
const Default = `---
title: {title}
description: {description}
created: {created_at}
updated: {updated_at}
---

# {title}

{description}
`

// Vars are the substitution values for one render.
type Vars struct {
	Title       string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// LoadOrInit reads the template from homeDir, creating it with the default
// body if absent.
func LoadOrInit(homeDir string) (string, error) {
	path := filepath.Join(homeDir, Filename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(Default), 0o644); err != nil {
			return "", fmt.Errorf("template: write default: %w", err)
		}
		return Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("template: read %s: %w", path, err)
	}
	return string(data), nil
}

// Render substitutes every occurrence of each known {var} token. Unknown
// tokens are left verbatim so user customization never breaks note creation.
func Render(text string, vars Vars) string {
	r := strings.NewReplacer(
		"{title}", vars.Title,
		"{description}", vars.Description,
		"{created_at}", vars.CreatedAt,
		"{updated_at}", vars.UpdatedAt,
	)
	return r.Replace(text)
}
