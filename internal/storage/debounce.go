/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"sync"
	"time"
)

// DebouncedSaver runs a save callback once after a quiet period following
// the last Arm call, coalescing the burst of mutations from a single
// gesture into one write. The durability window this opens is the price
// of interaction smoothness; Flush closes it synchronously.
//
// Arm takes the encoded payload, captured by the caller on its own
// goroutine. The timer goroutine only ever sees those bytes, never the
// live state they were taken from.
type DebouncedSaver struct {
	quiet time.Duration
	save  func([]byte)

	mu      sync.Mutex
	timer   *time.Timer
	pending []byte
	closed  bool
}

// NewDebouncedSaver builds a saver with the given quiet period.
func NewDebouncedSaver(quiet time.Duration, save func([]byte)) *DebouncedSaver {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	return &DebouncedSaver{quiet: quiet, save: save}
}

// Arm stores the payload and starts or restarts the quiet-period timer.
// A later Arm replaces the payload; only the newest one is written.
func (d *DebouncedSaver) Arm(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = data
	if d.timer == nil {
		d.timer = time.AfterFunc(d.quiet, d.fire)
		return
	}
	d.timer.Reset(d.quiet)
}

func (d *DebouncedSaver) fire() {
	d.mu.Lock()
	data := d.pending
	d.pending = nil
	closed := d.closed
	d.mu.Unlock()
	if closed || data == nil {
		return
	}
	d.save(data)
}

// Flush runs a pending save immediately, if one is armed.
func (d *DebouncedSaver) Flush() {
	d.mu.Lock()
	data := d.pending
	d.pending = nil
	if d.closed {
		data = nil
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	if data != nil {
		d.save(data)
	}
}

// Close cancels any pending save without running it.
func (d *DebouncedSaver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}
