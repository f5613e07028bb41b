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

	"github.com/shelfwise/shelfwise/config"
	"github.com/shelfwise/shelfwise/storage/data"
)

func TestPopularOrder(t *testing.T) {
	popular := NewPopular()
	scored := popular.Rank([]data.Item{
		{ItemId: "a", RatingCount: 5, AverageRating: 4.0},
		{ItemId: "b", RatingCount: 10, AverageRating: 3.0},
		{ItemId: "c", RatingCount: 5, AverageRating: 4.5},
	})
	assert.Len(t, scored, 3)
	assert.Equal(t, "b", scored[0].Item.ItemId)
	// tie on rating count broken by average rating
	assert.Equal(t, "c", scored[1].Item.ItemId)
	assert.Equal(t, "a", scored[2].Item.ItemId)
	// normalized to [0,1]
	assert.Equal(t, 1.0, scored[0].Score)
	assert.Equal(t, 0.5, scored[1].Score)
}

func TestPopularIdTieBreak(t *testing.T) {
	popular := NewPopular()
	scored := popular.Rank([]data.Item{
		{ItemId: "b"}, {ItemId: "a"}, {ItemId: "c"},
	})
	assert.Equal(t, "a", scored[0].Item.ItemId)
	assert.Equal(t, "b", scored[1].Item.ItemId)
	assert.Equal(t, "c", scored[2].Item.ItemId)
}

func TestNonPersonalizedCustomScore(t *testing.T) {
	ranker, err := NewNonPersonalized(config.PopularConfig{Score: "item.BorrowCount"})
	assert.NoError(t, err)
	scored := ranker.Rank([]data.Item{
		{ItemId: "a", BorrowCount: 1},
		{ItemId: "b", BorrowCount: 100},
	})
	assert.Equal(t, "b", scored[0].Item.ItemId)
}

func TestNonPersonalizedFilter(t *testing.T) {
	ranker, err := NewNonPersonalized(config.PopularConfig{
		Score:  "item.RatingCount",
		Filter: "item.RatingCount > 0",
	})
	assert.NoError(t, err)
	scored := ranker.Rank([]data.Item{
		{ItemId: "a", RatingCount: 3},
		{ItemId: "b"},
	})
	assert.Len(t, scored, 1)
	assert.Equal(t, "a", scored[0].Item.ItemId)
}

func TestNonPersonalizedInvalidExpressions(t *testing.T) {
	_, err := NewNonPersonalized(config.PopularConfig{Score: "item.Title"})
	assert.Error(t, err)
	_, err = NewNonPersonalized(config.PopularConfig{Score: "item.Nope"})
	assert.Error(t, err)
	_, err = NewNonPersonalized(config.PopularConfig{Score: "item.RatingCount", Filter: "item.RatingCount"})
	assert.Error(t, err)
}
