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

package label

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"

	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
)

// Matcher names accepted by ParseMatcher.
const (
	MatcherSequence    = "sequence"
	MatcherLevenshtein = "levenshtein"
)

// MatcherNames returns the names accepted by ParseMatcher.
func MatcherNames() []string {
	return []string{MatcherSequence, MatcherLevenshtein}
}

// ParseMatcher returns the Matcher registered under name. An empty name
// selects SequenceMatcher.
func ParseMatcher(name string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MatcherSequence:
		return SequenceMatcher{}, nil
	case MatcherLevenshtein:
		return LevenshteinMatcher{}, nil
	default:
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown matcher %q", name),
			map[string]any{"supported": MatcherNames()})
	}
}

// Matcher scores the similarity of a candidate label to a requested label,
// from 0 (unrelated) to 1 (identical).
type Matcher interface {
	Score(candidate, requested string) float64
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(candidate, requested string) float64

// Score implements Matcher.
func (f MatcherFunc) Score(candidate, requested string) float64 {
	return f(candidate, requested)
}

// SequenceMatcher scores labels with the Ratcliff/Obershelp ratio
// 2·M/T over their characters, M being matched characters and T the total.
type SequenceMatcher struct{}

// Score implements Matcher.
func (SequenceMatcher) Score(candidate, requested string) float64 {
	m := difflib.NewMatcher(chars(candidate), chars(requested))
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// LevenshteinMatcher scores labels as 1 − d/max(len), d being the edit
// distance between them.
type LevenshteinMatcher struct{}

// Score implements Matcher.
func (LevenshteinMatcher) Score(candidate, requested string) float64 {
	n := max(utf8.RuneCountInString(candidate), utf8.RuneCountInString(requested))
	if n == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(candidate, requested)
	return 1 - float64(d)/float64(n)
}

// FoldCase returns a Matcher that case-folds both labels before scoring
// with m, so HA and ha score as identical.
func FoldCase(m Matcher) Matcher {
	return MatcherFunc(func(candidate, requested string) float64 {
		fold := cases.Fold()
		return m.Score(fold.String(candidate), fold.String(requested))
	})
}
