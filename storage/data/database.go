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
	"time"

	"github.com/juju/errors"
)

var (
	ErrUserNotExist = errors.NotFoundf("user")
	ErrItemNotExist = errors.NotFoundf("item")
)

// Feedback types produced by the host application.
const (
	FeedbackBorrow = "borrow"
	FeedbackReview = "review"
	FeedbackReturn = "return"
)

// Item stores meta data about a catalog item.
type Item struct {
	ItemId        string
	Title         string
	Author        string
	Genres        []string
	Summary       string
	BorrowCount   int
	RatingCount   int
	AverageRating float64
}

// User stores a reader and the declared preferences attached to them.
// Both preference lists are optional.
type User struct {
	UserId          string
	FavoriteGenres  []string
	FavoriteAuthors []string
}

type FeedbackKey struct {
	FeedbackType string
	UserId       string
	ItemId       string
}

// Feedback is a single append-only interaction. Rating carries a value
// only for review feedback; zero means absent.
type Feedback struct {
	FeedbackKey
	Rating    float64
	Timestamp time.Time
}

// HasRating reports whether the feedback carries a rating in the valid
// [1,5] range.
func (f Feedback) HasRating() bool {
	return f.FeedbackType == FeedbackReview && f.Rating >= 1 && f.Rating <= 5
}

// Database is the storage collaborator. The engine reads a single
// point-in-time snapshot per scoring run and never writes.
type Database interface {
	BatchInsertItems(ctx context.Context, items []Item) error
	GetItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, itemId string) (Item, error)
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userId string) (User, error)
	InsertFeedback(ctx context.Context, feedback []Feedback) error
	GetFeedback(ctx context.Context) ([]Feedback, error)
	GetUserFeedback(ctx context.Context, userId string, feedbackTypes ...string) ([]Feedback, error)
	// Version returns an opaque marker that changes whenever items, users
	// or feedback change. Used to key cached models.
	Version(ctx context.Context) (string, error)
}
