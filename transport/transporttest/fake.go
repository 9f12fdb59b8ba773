/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package transporttest provides a scripted transport.Interface for tests.
package transporttest

import (
	"context"
	"strings"
	"sync"

	"chainguard.dev/tutoreval/transport"
)

// Reply is a scripted answer: Text is returned unless Err is set.
type Reply struct {
	Text string
	Err  error
}

// Fake answers prompts from a script. A prompt is matched against the script
// keys by substring; unmatched prompts get Default. Fake is safe for
// concurrent use and records every request it receives.
type Fake struct {
	Model   string
	Script  map[string]Reply
	Default Reply
	// Block, when set, makes Complete wait until ctx is done.
	Block bool

	mu       sync.Mutex
	requests []*transport.Request
}

var _ transport.Interface = (*Fake)(nil)

// Complete implements transport.Interface.
func (f *Fake) Complete(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return nil, &transport.Error{Provider: "fake", Err: ctx.Err()}
	}
	if err := ctx.Err(); err != nil {
		return nil, &transport.Error{Provider: "fake", Err: err}
	}

	reply := f.Default
	for key, r := range f.Script {
		if strings.Contains(req.Prompt, key) {
			reply = r
			break
		}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &transport.Response{
		Text:             reply.Text,
		Model:            f.Model,
		PromptTokens:     int64(len(req.Prompt)),
		CompletionTokens: int64(len(reply.Text)),
	}, nil
}

// Requests returns the requests received so far.
func (f *Fake) Requests() []*transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*transport.Request(nil), f.requests...)
}
