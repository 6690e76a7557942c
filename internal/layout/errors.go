/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import "errors"

var (
	// ErrPanelNotFound is returned when an id has no layout record.
	ErrPanelNotFound = errors.New("panel not found")

	// ErrInvalidGeometry marks a programming error: a caller attempted to
	// commit a rectangle violating the panel's minimum size. Gestures clamp
	// before writing, so this never fires in correct operation.
	ErrInvalidGeometry = errors.New("invalid panel geometry")

	// ErrGestureActive is returned when a gesture begin arrives while
	// another gesture owns the pointer. The begin is rejected with no state
	// change.
	ErrGestureActive = errors.New("another gesture is active")

	// ErrNoGesture is returned by update/end outside an active gesture.
	ErrNoGesture = errors.New("no active gesture")
)
