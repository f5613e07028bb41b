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
	"context"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/shelfwise/shelfwise/base/log"
	"github.com/shelfwise/shelfwise/common/vector"
	"github.com/shelfwise/shelfwise/config"
	"github.com/shelfwise/shelfwise/dataset"
	"github.com/shelfwise/shelfwise/storage/data"
)

var ErrInvalidLimit = errors.NotValidf("limit")

// Result is a single recommendation returned to the caller.
type Result struct {
	ItemId string
	Score  float64
	Reason string
	Rank   int
}

// Model bundles everything fitted against one snapshot: the TF-IDF
// vectorizer, per-item vectors and the latent-factor decomposition.
// A model is immutable once built and safe for concurrent readers.
type Model struct {
	Dataset       *dataset.Dataset
	Vectorizer    *Vectorizer
	ItemVectors   map[string]vector.Sparse
	Collaborative *CollaborativeScorer
}

func NewModel(cfg *config.Config, snapshot *dataset.Dataset) *Model {
	vectorizer := NewVectorizer(cfg.Recommend.VocabularySize, cfg.Recommend.SummaryLength)
	vectorizer.Fit(snapshot.GetItems())
	return &Model{
		Dataset:       snapshot,
		Vectorizer:    vectorizer,
		ItemVectors:   vectorizer.TransformItems(snapshot.GetItems()),
		Collaborative: NewCollaborativeScorer(snapshot.BuildMatrix(), cfg.Recommend.Factors),
	}
}

// Engine is the hybrid recommender. Fitted models are cached per
// snapshot version; a new version builds a fresh model under a single
// writer and swaps it in whole, so concurrent readers never observe a
// partially-built model.
type Engine struct {
	cfg      *config.Config
	database data.Database
	popular  *NonPersonalized
	models   *ttlcache.Cache[string, *Model]
	buildMu  sync.Mutex
}

func NewEngine(cfg *config.Config, database data.Database) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	popular, err := NewNonPersonalized(cfg.Recommend.Popular)
	if err != nil {
		return nil, errors.Trace(err)
	}
	e := &Engine{
		cfg:      cfg,
		database: database,
		popular:  popular,
		models: ttlcache.New[string, *Model](
			ttlcache.WithTTL[string, *Model](cfg.Recommend.ModelTTL),
			ttlcache.WithDisableTouchOnHit[string, *Model](),
		),
	}
	// every data write mints a new version key, so expired models are
	// only reclaimed by the eviction loop
	go e.models.Start()
	return e, nil
}

// Close stops the model cache's eviction loop.
func (e *Engine) Close() {
	e.models.Stop()
}

// Recommend returns ranked recommendations of the configured default
// size.
func (e *Engine) Recommend(ctx context.Context, userId string) ([]Result, error) {
	return e.RecommendN(ctx, userId, e.cfg.Recommend.DefaultN)
}

// RecommendN returns at most n ranked recommendations for a user.
// Repeated calls against the same snapshot return identical results.
func (e *Engine) RecommendN(ctx context.Context, userId string, n int) ([]Result, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	user, err := e.database.GetUser(ctx, userId)
	if err != nil {
		return nil, errors.Trace(err)
	}
	model, err := e.model(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	feedback := model.Dataset.GetUserFeedback(userId)
	content := NewContentScorer(model.Vectorizer, model.ItemVectors, user, feedback,
		e.cfg.Recommend.NeutralWeight, e.cfg.Recommend.PreferenceWeight)
	explainer := NewExplainer(user)

	// candidates exclude items the user already interacted with
	excludeSet := mapset.NewThreadUnsafeSet[string]()
	for _, f := range feedback {
		excludeSet.Add(f.ItemId)
	}
	candidates := make([]data.Item, 0, model.Dataset.CountItems())
	for _, item := range model.Dataset.GetItems() {
		if !excludeSet.Contains(item.ItemId) {
			candidates = append(candidates, item)
		}
	}

	if !content.Available() && !model.Collaborative.Available(userId) {
		return e.coldStart(model, user, explainer, candidates, n), nil
	}
	return e.blend(model, userId, content, explainer, candidates, n), nil
}

// blend combines both signals with the configured weight, falling back
// to the available one when the other is missing. Candidates with no
// signal at all are routed to the popularity fallback and appended
// after every personalized candidate.
func (e *Engine) blend(model *Model, userId string, content *ContentScorer,
	explainer *Explainer, candidates []data.Item, n int,
) []Result {
	alpha := e.cfg.Recommend.Alpha
	type blended struct {
		item         data.Item
		score        float64
		contentScore float64
		collabScore  float64
	}
	scored := make([]blended, 0, len(candidates))
	var leftovers []data.Item
	for _, item := range candidates {
		contentScore, contentOk := content.Score(item.ItemId)
		collabScore, collabOk := model.Collaborative.Score(userId, item.ItemId)
		b := blended{item: item, contentScore: -1, collabScore: -1}
		switch {
		case contentOk && collabOk:
			b.score = alpha*contentScore + (1-alpha)*collabScore
			b.contentScore, b.collabScore = contentScore, collabScore
		case contentOk:
			b.score = contentScore
			b.contentScore = contentScore
		case collabOk:
			b.score = collabScore
			b.collabScore = collabScore
		default:
			leftovers = append(leftovers, item)
			continue
		}
		scored = append(scored, b)
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return lessPopular(scored[j].item, scored[i].item)
	})
	results := make([]Result, 0, n)
	for _, b := range scored {
		if len(results) == n {
			return results
		}
		results = append(results, Result{
			ItemId: b.item.ItemId,
			Score:  vector.ClampUnit(b.score),
			Reason: explainer.Explain(b.item, b.contentScore, b.collabScore),
			Rank:   len(results) + 1,
		})
	}
	for _, s := range e.popular.Rank(leftovers) {
		if len(results) == n {
			break
		}
		results = append(results, Result{
			ItemId: s.Item.ItemId,
			Score:  vector.ClampUnit(s.Score),
			Reason: explainer.ExplainFallback(s.Item, false),
			Rank:   len(results) + 1,
		})
	}
	return results
}

// coldStart ranks candidates for users without any personalized signal:
// by similarity to declared preferences when those exist, otherwise by
// popularity.
func (e *Engine) coldStart(model *Model, user data.User, explainer *Explainer,
	candidates []data.Item, n int,
) []Result {
	preferences := NewPreferenceScorer(model.Vectorizer, model.ItemVectors, user)
	if preferences.Available() {
		scored := make([]Scored, 0, len(candidates))
		for _, item := range candidates {
			score, _ := preferences.Score(item.ItemId)
			scored = append(scored, Scored{Item: item, Score: score})
		}
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			return lessPopular(scored[j].Item, scored[i].Item)
		})
		results := make([]Result, 0, n)
		for _, s := range scored {
			if len(results) == n {
				break
			}
			results = append(results, Result{
				ItemId: s.Item.ItemId,
				Score:  s.Score,
				Reason: explainer.ExplainFallback(s.Item, true),
				Rank:   len(results) + 1,
			})
		}
		return results
	}
	results := make([]Result, 0, n)
	for _, s := range e.popular.Rank(candidates) {
		if len(results) == n {
			break
		}
		results = append(results, Result{
			ItemId: s.Item.ItemId,
			Score:  vector.ClampUnit(s.Score),
			Reason: explainer.ExplainFallback(s.Item, false),
			Rank:   len(results) + 1,
		})
	}
	return results
}

// model returns the fitted model for the current snapshot version,
// building it on a miss.
func (e *Engine) model(ctx context.Context) (*Model, error) {
	version, err := e.database.Version(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cached := e.models.Get(version); cached != nil {
		return cached.Value(), nil
	}
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	if cached := e.models.Get(version); cached != nil {
		return cached.Value(), nil
	}
	start := time.Now()
	items, err := e.database.GetItems(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	feedback, err := e.database.GetFeedback(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	snapshot := dataset.NewDataset(start, items, feedback)
	model := NewModel(e.cfg, snapshot)
	e.models.Set(version, model, ttlcache.DefaultTTL)
	log.Logger().Info("fitted recommendation model",
		zap.String("version", version),
		zap.Int("items", snapshot.CountItems()),
		zap.Int("feedback", len(snapshot.GetFeedback())),
		zap.Duration("elapsed", time.Since(start)))
	return model, nil
}
