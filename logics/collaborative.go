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
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/shelfwise/shelfwise/base/log"
	"github.com/shelfwise/shelfwise/common/vector"
	"github.com/shelfwise/shelfwise/dataset"
)

// CollaborativeScorer scores candidates by cosine similarity in a
// latent rating-pattern space obtained from a truncated SVD of the
// user by item rating matrix. The factor count never exceeds
// min(rows, cols)-1; matrices smaller than 2x2 yield no signal at all
// instead of a meaningless decomposition.
type CollaborativeScorer struct {
	userFactors map[string][]float64
	itemFactors map[string][]float64
	available   bool
}

// NewCollaborativeScorer decomposes the rating matrix into at most
// factors latent dimensions. Latent vectors are scaled by the square
// root of the singular values so users and items live in the same
// space.
func NewCollaborativeScorer(m *dataset.Matrix, factors int) *CollaborativeScorer {
	c := &CollaborativeScorer{
		userFactors: make(map[string][]float64),
		itemFactors: make(map[string][]float64),
	}
	rows, cols := len(m.Users), len(m.Items)
	if rows < 2 || cols < 2 {
		return c
	}
	k := factors
	if max := min(rows, cols) - 1; k > max {
		k = max
	}
	flat := make([]float64, 0, rows*cols)
	for _, row := range m.Values {
		flat = append(flat, row...)
	}
	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(rows, cols, flat), mat.SVDThin) {
		log.Logger().Warn("rating matrix decomposition failed",
			zap.Int("rows", rows), zap.Int("cols", cols))
		return c
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)
	scale := make([]float64, k)
	for f := 0; f < k; f++ {
		scale[f] = math.Sqrt(values[f])
	}
	for i, userId := range m.Users {
		factor := make([]float64, k)
		for f := 0; f < k; f++ {
			factor[f] = u.At(i, f) * scale[f]
		}
		c.userFactors[userId] = factor
	}
	for j, itemId := range m.Items {
		factor := make([]float64, k)
		for f := 0; f < k; f++ {
			factor[f] = v.At(j, f) * scale[f]
		}
		c.itemFactors[itemId] = factor
	}
	c.available = true
	return c
}

// Available reports whether the decomposition produced a usable latent
// space for the given user. Users absent from the rating matrix have no
// latent vector regardless of the matrix size.
func (c *CollaborativeScorer) Available(userId string) bool {
	if !c.available {
		return false
	}
	_, ok := c.userFactors[userId]
	return ok
}

// Score returns the latent-space similarity of a candidate in [0,1].
// The second return value is false when either the user or the item has
// no latent vector.
func (c *CollaborativeScorer) Score(userId, itemId string) (float64, bool) {
	userFactor, ok := c.userFactors[userId]
	if !ok {
		return 0, false
	}
	itemFactor, ok := c.itemFactors[itemId]
	if !ok {
		return 0, false
	}
	return vector.ClampUnit(vector.CosineDense(userFactor, itemFactor)), true
}
