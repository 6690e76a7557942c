/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BatchOptions controls exporting one sheet to several formats at once.
// Empty Formats means all of them. Output files are board.<format> under
// OutDir.
type BatchOptions struct {
	Formats []string // allowed: svg, png, pdf
	OutDir  string
	Sheet   Options
}

// Batch writes the sheet in each requested format and returns the paths
// written.
func Batch(s Sheet, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []string{"svg", "png", "pdf"}
	}
	var out []string
	for _, f := range formats {
		path := filepath.Join(opt.OutDir, "board."+strings.ToLower(strings.TrimSpace(f)))
		var err error
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "svg":
			err = WriteSVG(s, path, opt.Sheet)
		case "png":
			err = WritePNG(s, path, opt.Sheet)
		case "pdf":
			err = WritePDF(s, path, opt.Sheet)
		default:
			return out, fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return out, err
		}
		out = append(out, path)
	}
	return out, nil
}
