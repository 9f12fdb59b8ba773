/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder assembles LLM prompts from developer-written templates
and runtime data without letting the data rewrite the template.

Templates are string literals with {{name}} placeholders. Runtime values can
only be bound through an encoder:

	p := promptbuilder.MustNewPrompt(`
	Evaluate the dialogue below.

	{{dialogue}}

	Reply using this schema:
	{{schema}}`)

	p, err := p.BindFenced("dialogue", "markdown", transcriptText)
	if err != nil {
		return err
	}
	p, err = p.BindJSON("schema", payloadSchema)
	if err != nil {
		return err
	}
	prompt, err := p.Build()

# Bindings

  - BindStringLiteral binds untyped string constants only.
  - BindJSON and BindYAML marshal structured data.
  - BindFenced wraps free text in a Markdown code fence longer than any
    backtick run inside the text.

Substitution is a single pass, so a bound value containing "{{x}}" is emitted
as-is. Each placeholder may be bound once; Build fails while any placeholder
is unbound.

# Immutability

Bind methods return a new Prompt and leave the receiver untouched, so a
package-level template can be shared across goroutines and bound per request.
Types implementing Bindable encapsulate their own bindings.
*/
package promptbuilder
