// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import "context"

// Queue is the bounded report channel shared by every processor chain.
type Queue struct {
	ch chan Report
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan Report, capacity)}
}

// Send blocks while the queue is full.
func (q *Queue) Send(ctx context.Context, r Report) error {
	select {
	case q.ch <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reports is the consumer side of the queue.
func (q *Queue) Reports() <-chan Report {
	return q.ch
}
