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
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwise/shelfwise/common/vector"
	"github.com/shelfwise/shelfwise/storage/data"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"left", "hand", "darkness"}, Tokenize("The Left Hand of Darkness"))
	assert.Equal(t, []string{"sci", "fi"}, Tokenize("Sci-Fi"))
	assert.Empty(t, Tokenize("a I ."))
	assert.Empty(t, Tokenize(""))
}

func TestDocumentTruncatesSummary(t *testing.T) {
	v := NewVectorizer(100, 10)
	item := data.Item{
		Title:   "Dune",
		Author:  "Frank Herbert",
		Genres:  []string{"sci-fi"},
		Summary: strings.Repeat("spice ", 100),
	}
	doc := v.Document(item)
	assert.Contains(t, doc, "Dune")
	assert.Contains(t, doc, "Frank Herbert")
	assert.Contains(t, doc, "sci-fi")
	assert.LessOrEqual(t, len(doc), len("Dune Frank Herbert sci-fi ")+10)
}

func TestDocumentMultiByteSummary(t *testing.T) {
	v := NewVectorizer(100, 5)
	item := data.Item{
		Title:   "三体",
		Summary: strings.Repeat("宇", 20),
	}
	doc := v.Document(item)
	assert.True(t, utf8.ValidString(doc))
	assert.True(t, strings.HasSuffix(doc, strings.Repeat("宇", 5)))
	assert.False(t, strings.HasSuffix(doc, strings.Repeat("宇", 6)))
}

func TestFitTransform(t *testing.T) {
	items := []data.Item{
		{ItemId: "a", Title: "Dune", Author: "Frank Herbert", Genres: []string{"sci-fi"}},
		{ItemId: "b", Title: "Dune Messiah", Author: "Frank Herbert", Genres: []string{"sci-fi"}},
		{ItemId: "c", Title: "Emma", Author: "Jane Austen", Genres: []string{"romance"}},
	}
	v := NewVectorizer(100, 500)
	v.Fit(items)
	assert.True(t, v.Fitted())

	vectors := v.TransformItems(items)
	assert.Len(t, vectors, 3)
	// the two Herbert books share most of their terms
	assert.Greater(t,
		vector.Cosine(vectors["a"], vectors["b"]),
		vector.Cosine(vectors["a"], vectors["c"]))
	// preference text maps into the same space
	pref := v.Transform("sci-fi")
	assert.Greater(t, vector.Cosine(pref, vectors["a"]), vector.Cosine(pref, vectors["c"]))
	// unknown terms vanish
	assert.Empty(t, v.Transform("xylophone"))
}

func TestVocabularyCap(t *testing.T) {
	items := []data.Item{
		{ItemId: "a", Title: "alpha beta gamma delta epsilon"},
		{ItemId: "b", Title: "alpha beta gamma"},
		{ItemId: "c", Title: "alpha beta"},
	}
	v := NewVectorizer(2, 500)
	v.Fit(items)
	// only the two most frequent terms survive
	assert.Len(t, v.vocabulary, 2)
	assert.Contains(t, v.vocabulary, "alpha")
	assert.Contains(t, v.vocabulary, "beta")
	assert.Empty(t, v.Transform("gamma delta"))
}

func TestEmptyCorpus(t *testing.T) {
	v := NewVectorizer(100, 500)
	v.Fit(nil)
	assert.False(t, v.Fitted())
	assert.Empty(t, v.Transform("anything"))

	v = NewVectorizer(100, 500)
	v.Fit([]data.Item{{ItemId: "a"}, {ItemId: "b"}})
	assert.False(t, v.Fitted())
}
