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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwise/shelfwise/storage/data"
)

func TestExplainPreferenceMatch(t *testing.T) {
	e := NewExplainer(data.User{FavoriteGenres: []string{"Sci-Fi"}})
	item := data.Item{ItemId: "a", Genres: []string{"sci-fi", "adventure"}}
	assert.Equal(t, "matches your favorite genres: sci-fi", e.Explain(item, 0.8, 0.9))
	// a preference match needs a positive content contribution
	assert.NotEqual(t, "matches your favorite genres: sci-fi", e.Explain(item, 0, 0.9))
}

func TestExplainAuthorMatch(t *testing.T) {
	e := NewExplainer(data.User{FavoriteAuthors: []string{"jane austen"}})
	item := data.Item{ItemId: "c", Author: "Jane Austen"}
	assert.Equal(t, "by Jane Austen, one of your favorite authors", e.Explain(item, 0.5, 0.1))
}

func TestExplainCollaborativeDominance(t *testing.T) {
	e := NewExplainer(data.User{})
	item := data.Item{ItemId: "a"}
	assert.Equal(t, "readers with similar taste rated this highly", e.Explain(item, 0.2, 0.9))
	// both present but content wins
	assert.Equal(t, reasonHistory, e.Explain(item, 0.9, 0.2))
	// collaborative missing
	assert.Equal(t, reasonHistory, e.Explain(item, 0.9, -1))
	// content missing
	assert.Equal(t, reasonHistory, e.Explain(item, -1, 0.9))
}

func TestExplainFallback(t *testing.T) {
	e := NewExplainer(data.User{FavoriteGenres: []string{"romance"}})
	matched := data.Item{ItemId: "c", Genres: []string{"romance"}}
	other := data.Item{ItemId: "a", Genres: []string{"sci-fi"}}
	assert.Equal(t, "matches your favorite genres: romance", e.ExplainFallback(matched, true))
	assert.Equal(t, reasonHistory, e.ExplainFallback(other, true))
	assert.Equal(t, reasonPopular, e.ExplainFallback(other, false))
}
