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

package data

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryDatabase is an in-process implementation of Database backed by
// maps. Writers bump a revision counter so cached models built against
// an older snapshot age out.
type MemoryDatabase struct {
	mu       sync.RWMutex
	items    map[string]Item
	users    map[string]User
	feedback []Feedback
	revision uint64
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		items: make(map[string]Item),
		users: make(map[string]User),
	}
}

func (db *MemoryDatabase) BatchInsertItems(_ context.Context, items []Item) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, item := range items {
		if item.ItemId == "" {
			item.ItemId = uuid.NewString()
		}
		db.items[item.ItemId] = item
	}
	db.revision++
	return nil
}

func (db *MemoryDatabase) GetItems(_ context.Context) ([]Item, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	items := lo.Values(db.items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ItemId < items[j].ItemId
	})
	return items, nil
}

func (db *MemoryDatabase) GetItem(_ context.Context, itemId string) (Item, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	item, ok := db.items[itemId]
	if !ok {
		return Item{}, ErrItemNotExist
	}
	return item, nil
}

func (db *MemoryDatabase) PutUser(_ context.Context, user User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if user.UserId == "" {
		user.UserId = uuid.NewString()
	}
	db.users[user.UserId] = user
	db.revision++
	return nil
}

func (db *MemoryDatabase) GetUser(_ context.Context, userId string) (User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	user, ok := db.users[userId]
	if !ok {
		return User{}, ErrUserNotExist
	}
	return user, nil
}

func (db *MemoryDatabase) InsertFeedback(_ context.Context, feedback []Feedback) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.feedback = append(db.feedback, feedback...)
	db.revision++
	return nil
}

func (db *MemoryDatabase) GetFeedback(_ context.Context) ([]Feedback, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	feedback := make([]Feedback, len(db.feedback))
	copy(feedback, db.feedback)
	return feedback, nil
}

func (db *MemoryDatabase) GetUserFeedback(_ context.Context, userId string, feedbackTypes ...string) ([]Feedback, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return lo.Filter(db.feedback, func(f Feedback, _ int) bool {
		if f.UserId != userId {
			return false
		}
		return len(feedbackTypes) == 0 || lo.Contains(feedbackTypes, f.FeedbackType)
	}), nil
}

func (db *MemoryDatabase) Version(_ context.Context) (string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return strconv.FormatUint(db.revision, 10), nil
}
