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

package dataset

import (
	"math"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/shelfwise/shelfwise/base/log"
	"github.com/shelfwise/shelfwise/storage/data"
)

// Dataset is an immutable point-in-time snapshot of the catalog and the
// interaction log. Integrity problems are filtered out on construction:
// feedback referencing an unknown item, and reviews carrying a rating
// outside [1,5], are logged and dropped. Reviews without a rating stay
// in the snapshot as weak signals.
type Dataset struct {
	timestamp    time.Time
	items        []data.Item
	itemIndex    map[string]int
	feedback     []data.Feedback
	userFeedback map[string][]data.Feedback
}

func NewDataset(timestamp time.Time, items []data.Item, feedback []data.Feedback) *Dataset {
	d := &Dataset{
		timestamp:    timestamp,
		items:        items,
		itemIndex:    make(map[string]int, len(items)),
		userFeedback: make(map[string][]data.Feedback),
	}
	for i, item := range items {
		d.itemIndex[item.ItemId] = i
	}
	for _, f := range feedback {
		if _, ok := d.itemIndex[f.ItemId]; !ok {
			log.Logger().Warn("feedback references unknown item",
				zap.String("user_id", f.UserId), zap.String("item_id", f.ItemId))
			continue
		}
		if f.FeedbackType == data.FeedbackReview && f.Rating != 0 && !f.HasRating() {
			log.Logger().Warn("review rating out of range",
				zap.String("user_id", f.UserId), zap.String("item_id", f.ItemId),
				zap.Float64("rating", f.Rating))
			continue
		}
		d.feedback = append(d.feedback, f)
		d.userFeedback[f.UserId] = append(d.userFeedback[f.UserId], f)
	}
	return d
}

func (d *Dataset) GetTimestamp() time.Time {
	return d.timestamp
}

func (d *Dataset) GetItems() []data.Item {
	return d.items
}

func (d *Dataset) CountItems() int {
	return len(d.items)
}

// GetItem looks up an item by id in the snapshot.
func (d *Dataset) GetItem(itemId string) (data.Item, bool) {
	if i, ok := d.itemIndex[itemId]; ok {
		return d.items[i], true
	}
	return data.Item{}, false
}

func (d *Dataset) GetFeedback() []data.Feedback {
	return d.feedback
}

// GetUserFeedback returns the filtered feedback of a single user.
func (d *Dataset) GetUserFeedback(userId string) []data.Feedback {
	return d.userFeedback[userId]
}

// ItemStats aggregates review statistics for the host's analysis view.
type ItemStats struct {
	ReviewCount   int
	AverageRating float64
}

// GetItemStats computes the review count and average rating of an item
// from the snapshot. The average is rounded to two decimals.
func (d *Dataset) GetItemStats(itemId string) ItemStats {
	var stats ItemStats
	var sum float64
	for _, f := range d.feedback {
		if f.ItemId == itemId && f.HasRating() {
			stats.ReviewCount++
			sum += f.Rating
		}
	}
	if stats.ReviewCount > 0 {
		stats.AverageRating = math.Round(sum/float64(stats.ReviewCount)*100) / 100
	}
	return stats
}

// Matrix is a dense user by item matrix of effective ratings. Rows and
// columns cover only users and items with at least one valid rating.
type Matrix struct {
	Users     []string
	Items     []string
	UserIndex map[string]int
	ItemIndex map[string]int
	Values    [][]float64
}

// BuildMatrix constructs the rating matrix from review feedback. Only
// reviews with a rating in [1,5] contribute; when a user rated the same
// item twice, the later rating wins. Missing entries stay zero but are
// never fabricated from non-review feedback.
func (d *Dataset) BuildMatrix() *Matrix {
	type cell struct {
		rating    float64
		timestamp time.Time
	}
	cells := make(map[data.FeedbackKey]cell)
	userSet := mapset.NewThreadUnsafeSet[string]()
	itemSet := mapset.NewThreadUnsafeSet[string]()
	for _, f := range d.feedback {
		if !f.HasRating() {
			continue
		}
		key := data.FeedbackKey{FeedbackType: data.FeedbackReview, UserId: f.UserId, ItemId: f.ItemId}
		if prev, ok := cells[key]; !ok || f.Timestamp.After(prev.timestamp) {
			cells[key] = cell{rating: f.Rating, timestamp: f.Timestamp}
		}
		userSet.Add(f.UserId)
		itemSet.Add(f.ItemId)
	}
	m := &Matrix{
		Users:     userSet.ToSlice(),
		Items:     itemSet.ToSlice(),
		UserIndex: make(map[string]int, userSet.Cardinality()),
		ItemIndex: make(map[string]int, itemSet.Cardinality()),
	}
	sort.Strings(m.Users)
	sort.Strings(m.Items)
	for i, userId := range m.Users {
		m.UserIndex[userId] = i
	}
	for i, itemId := range m.Items {
		m.ItemIndex[itemId] = i
	}
	m.Values = make([][]float64, len(m.Users))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(m.Items))
	}
	for key, c := range cells {
		m.Values[m.UserIndex[key.UserId]][m.ItemIndex[key.ItemId]] = c.rating
	}
	return m
}
