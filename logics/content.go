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
	"strings"

	"github.com/shelfwise/shelfwise/common/vector"
	"github.com/shelfwise/shelfwise/storage/data"
)

// ContentScorer scores candidates by cosine similarity between an item
// vector and the user's content profile. The profile is the weighted
// mean of interacted item vectors plus the vectorized declared
// preferences at a fixed prior weight. A user with neither history nor
// preferences has no profile and the scorer reports unavailable.
type ContentScorer struct {
	itemVectors map[string]vector.Sparse
	profile     vector.Sparse
	available   bool
}

// NewContentScorer builds the user profile. Each interacted item is
// weighted rating/5 when a rating exists, otherwise neutralWeight, a
// weak positive signal from a borrow or return. When the interaction
// weights sum to zero the interaction part is dropped entirely rather
// than divided by zero; declared preferences alone can still form a
// profile.
func NewContentScorer(vectorizer *Vectorizer, itemVectors map[string]vector.Sparse,
	user data.User, feedback []data.Feedback, neutralWeight, preferenceWeight float64,
) *ContentScorer {
	c := &ContentScorer{
		itemVectors: itemVectors,
		profile:     vector.Sparse{},
	}
	if !vectorizer.Fitted() {
		return c
	}
	// weighted mean over interacted items
	interacted := vector.Sparse{}
	var totalWeight float64
	for _, f := range feedback {
		v, ok := itemVectors[f.ItemId]
		if !ok {
			continue
		}
		weight := neutralWeight
		if f.HasRating() {
			weight = f.Rating / 5.0
		}
		interacted.Add(v, weight)
		totalWeight += weight
	}
	if totalWeight > 0 {
		interacted.Scale(1 / totalWeight)
		c.profile.Add(interacted, 1)
	}
	// declared preference prior
	if preferenceWeight > 0 {
		c.profile.Add(PreferenceVector(vectorizer, user), preferenceWeight)
	}
	c.available = c.profile.Norm() > 0
	return c
}

// NewPreferenceScorer builds a profile from declared preferences only,
// ignoring interaction history. Used for preference-only cold start.
func NewPreferenceScorer(vectorizer *Vectorizer, itemVectors map[string]vector.Sparse, user data.User) *ContentScorer {
	c := &ContentScorer{
		itemVectors: itemVectors,
		profile:     PreferenceVector(vectorizer, user),
	}
	c.available = vectorizer.Fitted() && c.profile.Norm() > 0
	return c
}

// PreferenceVector vectorizes a user's declared genres and authors with
// the fitted model.
func PreferenceVector(vectorizer *Vectorizer, user data.User) vector.Sparse {
	text := strings.Join(append(append([]string{}, user.FavoriteGenres...), user.FavoriteAuthors...), " ")
	return vectorizer.Transform(text)
}

// Available reports whether a content signal exists for this user.
func (c *ContentScorer) Available() bool {
	return c.available
}

// Score returns the content similarity of a candidate in [0,1]. The
// second return value is false when the signal is unavailable, so the
// blender can distinguish a zero score from no score.
func (c *ContentScorer) Score(itemId string) (float64, bool) {
	if !c.available {
		return 0, false
	}
	v, ok := c.itemVectors[itemId]
	if !ok {
		return 0, false
	}
	return vector.ClampUnit(vector.Cosine(c.profile, v)), true
}
