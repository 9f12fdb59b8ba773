/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"chainguard.dev/tutoreval/dialogue"
	"chainguard.dev/tutoreval/prompts"
	"chainguard.dev/tutoreval/report"
	"chainguard.dev/tutoreval/rubric"
	"chainguard.dev/tutoreval/verdict"
)

// Output formats for reports.
const (
	formatTable     = "table"
	formatBreakdown = "breakdown"
	formatMarkdown  = "markdown"
	formatJSON      = "json"
)

var reportFormats = []string{formatTable, formatBreakdown, formatMarkdown, formatJSON}

// readDocument reads the teaching document and appends the optional
// reference document under its marker.
func readDocument(docPath, refPath string) (string, error) {
	doc, err := os.ReadFile(docPath)
	if err != nil {
		return "", fmt.Errorf("failed to read teaching document: %w", err)
	}
	if refPath == "" {
		return string(doc), nil
	}
	ref, err := os.ReadFile(refPath)
	if err != nil {
		return "", fmt.Errorf("failed to read reference document: %w", err)
	}
	return prompts.JoinReference(string(doc), string(ref)), nil
}

func readTranscript(path string) (*dialogue.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	t, err := dialogue.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript %s: %w", path, err)
	}
	return t, nil
}

// readOptional reads path, or returns "" when path is empty.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// loadRegistry builds a registry holding the built-in template and every
// template file in dir.
func loadRegistry(dir string) (*rubric.Registry, error) {
	reg, err := rubric.NewRegistry()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return reg, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric directory: %w", err)
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !slices.Contains([]string{".yaml", ".yml", ".json"}, ext) {
			continue
		}
		t, err := rubric.LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// resolveTemplate treats ref as a template file when one exists at that
// path, and as a registry id otherwise.
func resolveTemplate(reg *rubric.Registry, ref string) (*rubric.Template, error) {
	if ref != "" {
		if info, err := os.Stat(ref); err == nil && !info.IsDir() {
			return rubric.LoadFile(ref)
		}
	}
	return reg.Resolve(ref)
}

func loadPolicy(path string) (*verdict.Policy, error) {
	if path == "" {
		return verdict.DefaultPolicy(), nil
	}
	return verdict.LoadPolicyFile(path)
}

// renderReport renders r in one of reportFormats.
func renderReport(r *verdict.Report, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case formatTable:
		if err := report.WriteTable(&buf, r); err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "\n%s\n", r.ExecutiveSummary)
	case formatBreakdown:
		if err := report.WriteBreakdown(&buf, r); err != nil {
			return nil, err
		}
	case formatMarkdown:
		md, err := report.Markdown(r)
		if err != nil {
			return nil, err
		}
		buf.WriteString(md)
	case formatJSON:
		if err := report.WriteJSON(&buf, r); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q (expected one of %s)", format, strings.Join(reportFormats, ", "))
	}
	return buf.Bytes(), nil
}
