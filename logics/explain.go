// Copyright 2025 shelfwise Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/shelfwise/shelfwise/storage/data"
)

const (
	reasonHistory = "based on reading history and similar users"
	reasonPopular = "popular with readers"
)

// Explainer attaches one human-readable reason to each recommendation,
// by priority: declared preference match, collaborative dominance,
// generic history, popularity fallback.
type Explainer struct {
	favoriteGenres  mapset.Set[string]
	favoriteAuthors mapset.Set[string]
}

func NewExplainer(user data.User) *Explainer {
	e := &Explainer{
		favoriteGenres:  mapset.NewThreadUnsafeSet[string](),
		favoriteAuthors: mapset.NewThreadUnsafeSet[string](),
	}
	for _, genre := range user.FavoriteGenres {
		e.favoriteGenres.Add(strings.ToLower(genre))
	}
	for _, author := range user.FavoriteAuthors {
		e.favoriteAuthors.Add(strings.ToLower(author))
	}
	return e
}

// Explain chooses the reason for a blended recommendation. contentScore
// and collabScore are negative when the respective signal was
// unavailable.
func (e *Explainer) Explain(item data.Item, contentScore, collabScore float64) string {
	if reason, ok := e.preferenceReason(item); ok && contentScore > 0 {
		return reason
	}
	if collabScore > contentScore && contentScore >= 0 {
		return "readers with similar taste rated this highly"
	}
	return reasonHistory
}

// ExplainFallback annotates cold-start recommendations.
func (e *Explainer) ExplainFallback(item data.Item, preferenceBased bool) string {
	if preferenceBased {
		if reason, ok := e.preferenceReason(item); ok {
			return reason
		}
		return reasonHistory
	}
	return reasonPopular
}

func (e *Explainer) preferenceReason(item data.Item) (string, bool) {
	var matched []string
	for _, genre := range item.Genres {
		if e.favoriteGenres.Contains(strings.ToLower(genre)) {
			matched = append(matched, genre)
		}
	}
	if len(matched) > 0 {
		return fmt.Sprintf("matches your favorite genres: %s", strings.Join(matched, ", ")), true
	}
	if e.favoriteAuthors.Contains(strings.ToLower(item.Author)) {
		return fmt.Sprintf("by %s, one of your favorite authors", item.Author), true
	}
	return "", false
}
