/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder_test

import (
	"fmt"

	"chainguard.dev/tutoreval/promptbuilder"
)

func ExamplePrompt_BindFenced() {
	p := promptbuilder.MustNewPrompt("请评测{{who}}的回答：\n{{answer}}").
		MustBindStringLiteral("who", "学生")

	p, err := p.BindFenced("answer", "text", "1/5 + 2/5 = 3/5\n")
	if err != nil {
		panic(err)
	}
	out, err := p.Build()
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output:
	// 请评测学生的回答：
	// ```text
	// 1/5 + 2/5 = 3/5
	// ```
}
