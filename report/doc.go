/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders evaluation reports for people.

# Formats

  - WriteTable: a Markdown-style score table of every dimension plus the total
  - WriteBreakdown: every dimension with its sub-dimensions as indented rows
  - Markdown: a complete document with the summary, per-dimension analysis,
    critical issues, suggestions and workflow stage fixes
  - WriteJSON: the report itself, indented, for storage and other tools

# Usage

	var buf bytes.Buffer
	if err := report.WriteTable(&buf, r); err != nil {
		return err
	}
	fmt.Print(buf.String())

	doc, err := report.Markdown(r)

All functions are pure and safe for concurrent use.
*/
package report
