/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

// Constraint resolution for proposed panel rectangles. The apply order is
// fixed per gesture type: size is finalized first, position is clamped
// last. Clamping both independently makes a rectangle "stick" or drift
// when a limit is hit mid-gesture.

// ClampSize clamps w,h into the panel's [min, max] range, additionally
// capped by the canvas dimensions. The minimum wins if the range is empty.
func ClampSize(w, h int, c PanelConstraints, columns, rows int) (int, int) {
	maxW := columns
	maxH := rows
	if c.MaxSize != nil {
		if c.MaxSize.W > 0 && c.MaxSize.W < maxW {
			maxW = c.MaxSize.W
		}
		if c.MaxSize.H > 0 && c.MaxSize.H < maxH {
			maxH = c.MaxSize.H
		}
	}
	if w > maxW {
		w = maxW
	}
	if h > maxH {
		h = maxH
	}
	minW := c.MinSize.W
	if minW < 1 {
		minW = 1
	}
	minH := c.MinSize.H
	if minH < 1 {
		minH = 1
	}
	if w < minW {
		w = minW
	}
	if h < minH {
		h = minH
	}
	return w, h
}

// ClampPosition clamps x,y so a w×h rectangle stays inside the canvas.
func ClampPosition(x, y, w, h, columns, rows int) (int, int) {
	if x > columns-w {
		x = columns - w
	}
	if x < 0 {
		x = 0
	}
	if y > rows-h {
		y = rows - h
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
