/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package interpret decodes language-model replies into sub-dimension
judgments.

Models rarely return bare JSON. A reply may wrap the payload in a fenced code
block, surround it with prose, prepend a <thinking> block or leave a trailing
comma behind. [Parse] tries, in order:

 1. the reply with its outer ``` fences removed,
 2. the body of the first ```json block,
 3. the first balanced {...} span,
 4. that span with trailing commas removed,

and accepts the first candidate that decodes to an object with a numeric
"score". Remaining fields are decoded leniently: keys match case-insensitively,
numbers are accepted where strings are expected, a single string is accepted
where a list is expected and objects inside issue lists collapse to their most
descriptive text field. Missing text fields become [Unknown] and missing
lists become empty.

A reply without a usable score yields a [*ParseFailure] that carries the raw
text for auditing.
*/
package interpret
