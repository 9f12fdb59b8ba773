/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package dialogue turns tutoring session logs into ordered, speaker-labeled
transcripts.

Two input shapes are accepted. The first is the free-form log exported by the
tutoring platform:

	日志创建时间: 2025-03-01 10:00:00
	task_id: 42
	学生档位: 中等
	============================================================
	[2025-03-01 10:00:05] 第 1 轮
	AI: 同学你好，今天我们来学习分数加法。
	用户: 好的老师
	--------------------------------------------------------------------------------

The second is the structured JSON form of [Transcript], which is validated
against an embedded JSON schema and passed through unchanged.

# Parsing

[Parse] is a pure line scanner. Metadata lines are recognized while no turn is
open; bracketed header lines set the current round from their "第 N 轮"
marker (0 when absent); speaker labels ("AI:", "用户:", with either an ASCII or
a full-width colon) open a turn that collects every following line until the
next label, header or separator. Turn text is trimmed and empty turns are
dropped. Turns land in a single stage named [DefaultStage] unless the log uses
"Step: <stage> | ..." headers, in which case each header routes the turns that
follow into the named stage.

[Load] picks the right decoder for arbitrary input, and [Serialize] renders a
transcript back to the log shape so that Parse(Serialize(t)) is equivalent
to t.

# Prompt formatting

[Format] renders a transcript as Markdown for inclusion in evaluation prompts:

	## 对话记录

	**智能体(第1轮):** 同学你好，今天我们来学习分数加法。

	**学生(第1轮):** 好的老师
*/
package dialogue
