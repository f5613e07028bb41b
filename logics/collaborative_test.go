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
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwise/shelfwise/dataset"
	"github.com/shelfwise/shelfwise/storage/data"
)

func ratingFeedback(userId, itemId string, rating float64) data.Feedback {
	return data.Feedback{
		FeedbackKey: data.FeedbackKey{FeedbackType: data.FeedbackReview, UserId: userId, ItemId: itemId},
		Rating:      rating,
		Timestamp:   time.Now(),
	}
}

func buildMatrix(t *testing.T, feedback ...data.Feedback) *dataset.Matrix {
	t.Helper()
	items := []data.Item{{ItemId: "a"}, {ItemId: "b"}, {ItemId: "c"}}
	return dataset.NewDataset(time.Now(), items, feedback).BuildMatrix()
}

func TestCollaborativeScores(t *testing.T) {
	m := buildMatrix(t,
		ratingFeedback("u", "a", 5), ratingFeedback("u", "b", 4), ratingFeedback("u", "c", 1),
		ratingFeedback("v", "a", 4), ratingFeedback("v", "b", 5), ratingFeedback("v", "c", 1),
		ratingFeedback("w", "a", 1), ratingFeedback("w", "b", 2), ratingFeedback("w", "c", 5),
	)
	c := NewCollaborativeScorer(m, 2)
	assert.True(t, c.Available("u"))
	assert.True(t, c.Available("w"))
	for _, userId := range []string{"u", "v", "w"} {
		for _, itemId := range []string{"a", "b", "c"} {
			score, ok := c.Score(userId, itemId)
			assert.True(t, ok)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
	// u prefers a over c, w the other way around
	uA, _ := c.Score("u", "a")
	uC, _ := c.Score("u", "c")
	assert.Greater(t, uA, uC)
	wC, _ := c.Score("w", "c")
	wA, _ := c.Score("w", "a")
	assert.Greater(t, wC, wA)
}

func TestCollaborativeIdenticalUsers(t *testing.T) {
	m := buildMatrix(t,
		ratingFeedback("u", "a", 5), ratingFeedback("u", "b", 1),
		ratingFeedback("v", "a", 5), ratingFeedback("v", "b", 1),
		ratingFeedback("w", "a", 1), ratingFeedback("w", "b", 5),
	)
	c := NewCollaborativeScorer(m, 5)
	for _, itemId := range []string{"a", "b"} {
		uScore, _ := c.Score("u", itemId)
		vScore, _ := c.Score("v", itemId)
		assert.InDelta(t, uScore, vScore, 1e-9)
	}
}

func TestCollaborativeTooSmall(t *testing.T) {
	// single user
	c := NewCollaborativeScorer(buildMatrix(t,
		ratingFeedback("u", "a", 5), ratingFeedback("u", "b", 3),
	), 5)
	assert.False(t, c.Available("u"))
	_, ok := c.Score("u", "a")
	assert.False(t, ok)

	// single item
	c = NewCollaborativeScorer(buildMatrix(t,
		ratingFeedback("u", "a", 5), ratingFeedback("v", "a", 3),
	), 5)
	assert.False(t, c.Available("u"))

	// empty matrix
	c = NewCollaborativeScorer(buildMatrix(t), 5)
	assert.False(t, c.Available("u"))
}

func TestCollaborativeUnknownUser(t *testing.T) {
	m := buildMatrix(t,
		ratingFeedback("u", "a", 5), ratingFeedback("u", "b", 1),
		ratingFeedback("v", "a", 4), ratingFeedback("v", "b", 2),
	)
	c := NewCollaborativeScorer(m, 5)
	assert.True(t, c.Available("u"))
	assert.False(t, c.Available("stranger"))
	_, ok := c.Score("stranger", "a")
	assert.False(t, ok)
	_, ok = c.Score("u", "c")
	assert.False(t, ok)
}

func TestCollaborativeDeterminism(t *testing.T) {
	feedback := []data.Feedback{
		ratingFeedback("u", "a", 5), ratingFeedback("u", "b", 4), ratingFeedback("u", "c", 1),
		ratingFeedback("v", "a", 2), ratingFeedback("v", "b", 5), ratingFeedback("v", "c", 3),
		ratingFeedback("w", "a", 1), ratingFeedback("w", "b", 2), ratingFeedback("w", "c", 5),
	}
	first := NewCollaborativeScorer(buildMatrix(t, feedback...), 2)
	second := NewCollaborativeScorer(buildMatrix(t, feedback...), 2)
	for _, userId := range []string{"u", "v", "w"} {
		for _, itemId := range []string{"a", "b", "c"} {
			a, _ := first.Score(userId, itemId)
			b, _ := second.Score(userId, itemId)
			assert.Equal(t, a, b)
		}
	}
}
