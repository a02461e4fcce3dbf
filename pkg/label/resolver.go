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
	"log/slog"
	"slices"

	"github.com/NVIDIA/bpass-gridfit/pkg/defaults"
	cnserrors "github.com/NVIDIA/bpass-gridfit/pkg/errors"
)

// Resolver resolves requested labels against a vocabulary.
type Resolver struct {
	// Name identifies the call site in logs and errors.
	Name string

	// Threshold is the similarity a candidate must clear.
	Threshold float64

	// Inclusive accepts candidates scoring exactly Threshold.
	Inclusive bool

	// Matcher scores candidates. Nil means SequenceMatcher.
	Matcher Matcher
}

// Resolution describes how a requested label was resolved.
type Resolution struct {
	Requested string  `json:"requested" yaml:"requested"`
	Resolved  string  `json:"resolved" yaml:"resolved"`
	Score     float64 `json:"score" yaml:"score"`
	Exact     bool    `json:"exact" yaml:"exact"`
}

// CatalogResolver resolves against target catalog columns.
func CatalogResolver() *Resolver {
	return &Resolver{
		Name:      "catalog",
		Threshold: defaults.CatalogMatchThreshold,
		Matcher:   SequenceMatcher{},
	}
}

// ModelResolver resolves against the model line vocabulary.
func ModelResolver() *Resolver {
	return &Resolver{
		Name:      "model",
		Threshold: defaults.ModelMatchThreshold,
		Inclusive: true,
		Matcher:   SequenceMatcher{},
	}
}

// WithMatcher returns a copy of r scoring with m.
func (r *Resolver) WithMatcher(m Matcher) *Resolver {
	c := *r
	c.Matcher = m
	return &c
}

func (r *Resolver) matcher() Matcher {
	if r.Matcher == nil {
		return SequenceMatcher{}
	}
	return r.Matcher
}

func (r *Resolver) qualifies(score float64) bool {
	if r.Inclusive {
		return score >= r.Threshold
	}
	return score > r.Threshold
}

// Resolve returns the exact label when present in vocabulary, otherwise the
// highest scoring qualifying label (first in vocabulary order on ties).
func (r *Resolver) Resolve(requested string, vocabulary []string) (Resolution, error) {
	if slices.Contains(vocabulary, requested) {
		return Resolution{Requested: requested, Resolved: requested, Score: 1, Exact: true}, nil
	}

	m := r.matcher()
	best, bestScore := -1, 0.0
	for i, candidate := range vocabulary {
		score := m.Score(candidate, requested)
		if !r.qualifies(score) {
			continue
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return Resolution{}, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("line %s not found in %s labels", requested, r.Name),
			map[string]any{"threshold": r.Threshold, "candidates": len(vocabulary)})
	}

	res := Resolution{Requested: requested, Resolved: vocabulary[best], Score: bestScore}
	slog.Warn("substituting similar line label; check your input if this was not intended",
		"site", r.Name,
		"requested", requested,
		"resolved", res.Resolved,
		"score", bestScore)
	return res, nil
}

// ResolveAll resolves every requested label, stopping at the first failure.
func (r *Resolver) ResolveAll(requested []string, vocabulary []string) ([]Resolution, error) {
	out := make([]Resolution, 0, len(requested))
	for _, l := range requested {
		res, err := r.Resolve(l, vocabulary)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
