// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package abundance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
)

// Setup returns the solar composition. When recalculate is set the mass
// fractions are recomputed from the reference table in root; otherwise the
// published constants are returned.
func Setup(recalculate bool, root string) (*Set, error) {
	if !recalculate {
		return Solar(), nil
	}
	set, err := Load(filepath.Join(root, defaults.AbundanceFileName))
	if err != nil {
		return nil, err
	}
	slog.Debug("abundances recalculated", "X", set.X, "Y", set.Y, "Z", set.Z)
	return set, nil
}

// Load reads a reference abundance table and calculates mass fractions.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				fmt.Sprintf("abundance file not found. Please locate the file named %q and move it to %s",
					filepath.Base(path), filepath.Dir(path)),
				err, map[string]any{"path": path})
		}
		return nil, cnserrors.Wrap(cnserrors.ErrCodeIO, "failed to open abundance file", err)
	}
	defer f.Close()

	elements, abundances, err := parseTable(f)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to parse abundance file", err, map[string]any{"path": path})
	}
	return Calculate(elements, abundances)
}

// parseTable reads a whitespace-delimited table whose header names the
// "element" and "abundance" columns. Blank lines and # comments are skipped.
func parseTable(r io.Reader) ([]string, []float64, error) {
	sc := bufio.NewScanner(r)
	elCol, abCol := -1, -1
	var elements []string
	var abundances []float64

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		if elCol < 0 {
			for i, h := range fields {
				switch strings.ToLower(h) {
				case "element":
					elCol = i
				case "abundance":
					abCol = i
				}
			}
			if elCol < 0 || abCol < 0 {
				return nil, nil, fmt.Errorf("line %d: header must name element and abundance columns", line)
			}
			continue
		}

		if len(fields) <= max(elCol, abCol) {
			return nil, nil, fmt.Errorf("line %d: expected at least %d fields", line, max(elCol, abCol)+1)
		}
		v, err := strconv.ParseFloat(fields[abCol], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		elements = append(elements, fields[elCol])
		abundances = append(abundances, v)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if elCol < 0 {
		return nil, nil, fmt.Errorf("missing header")
	}
	return elements, abundances, nil
}
