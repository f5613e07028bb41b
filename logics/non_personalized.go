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
	"reflect"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/shelfwise/shelfwise/base/log"
	"github.com/shelfwise/shelfwise/config"
	"github.com/shelfwise/shelfwise/storage/data"
)

// NonPersonalized ranks the catalog by a configurable popularity
// expression for readers without any usable signal. Ties are broken by
// rating count, then average rating, then item id, so the order is a
// deterministic total order.
type NonPersonalized struct {
	scoreFunc  *vm.Program
	filterFunc *vm.Program
}

func NewNonPersonalized(cfg config.PopularConfig) (*NonPersonalized, error) {
	// Compile score expression
	scoreFunc, err := expr.Compile(cfg.Score, expr.Env(map[string]any{
		"item": data.Item{},
	}))
	if err != nil {
		return nil, errors.Trace(err)
	}
	switch scoreFunc.Node().Type().Kind() {
	case reflect.Float64, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return nil, errors.New("score expression must return a number")
	}
	// Compile filter expression
	var filterFunc *vm.Program
	if cfg.Filter != "" {
		filterFunc, err = expr.Compile(cfg.Filter, expr.Env(map[string]any{
			"item": data.Item{},
		}))
		if err != nil {
			return nil, errors.Trace(err)
		}
		if filterFunc.Node().Type().Kind() != reflect.Bool {
			return nil, errors.New("filter expression must return a boolean")
		}
	}
	return &NonPersonalized{
		scoreFunc:  scoreFunc,
		filterFunc: filterFunc,
	}, nil
}

// NewPopular ranks by rating count, the default popularity signal.
func NewPopular() *NonPersonalized {
	return lo.Must(NewNonPersonalized(config.PopularConfig{
		Score: "item.RatingCount",
	}))
}

// Scored pairs an item with a ranking score in [0,1].
type Scored struct {
	Item  data.Item
	Score float64
}

// Rank orders items by the popularity expression, normalizing raw
// scores by the maximum so they land in [0,1].
func (n *NonPersonalized) Rank(items []data.Item) []Scored {
	scored := make([]Scored, 0, len(items))
	for _, item := range items {
		env := map[string]any{"item": item}
		if n.filterFunc != nil {
			keep, err := expr.Run(n.filterFunc, env)
			if err != nil {
				log.Logger().Error("evaluate filter expression", zap.Error(err))
				continue
			}
			if !keep.(bool) {
				continue
			}
		}
		result, err := expr.Run(n.scoreFunc, env)
		if err != nil {
			log.Logger().Error("evaluate score expression", zap.Error(err))
			continue
		}
		score, err := toFloat64(result)
		if err != nil {
			log.Logger().Error("evaluate score expression", zap.Error(err))
			continue
		}
		scored = append(scored, Scored{Item: item, Score: score})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return lessPopular(scored[j].Item, scored[i].Item)
	})
	if len(scored) > 0 && scored[0].Score > 0 {
		maxScore := scored[0].Score
		for i := range scored {
			scored[i].Score /= maxScore
		}
	}
	return scored
}

// lessPopular is the deterministic popularity tie-break: rating count,
// then average rating, then ascending item id.
func lessPopular(a, b data.Item) bool {
	if a.RatingCount != b.RatingCount {
		return a.RatingCount < b.RatingCount
	}
	if a.AverageRating != b.AverageRating {
		return a.AverageRating < b.AverageRating
	}
	return a.ItemId > b.ItemId
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, errors.Errorf("unexpected score type %T", value)
	}
}
