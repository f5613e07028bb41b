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

package vector

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Sparse is a sparse real-valued vector indexed by term id. Sums are
// accumulated in ascending index order, so repeated calls over the same
// vectors return bitwise-identical results despite float addition being
// non-associative.
type Sparse map[int]float64

// Dot computes the inner product of two sparse vectors by iterating
// over the smaller one.
func (v Sparse) Dot(u Sparse) float64 {
	if len(u) < len(v) {
		v, u = u, v
	}
	indices := make([]int, 0, len(v))
	for i := range v {
		if _, ok := u[i]; ok {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	var sum float64
	for _, i := range indices {
		sum += v[i] * u[i]
	}
	return sum
}

// Norm computes the Euclidean norm.
func (v Sparse) Norm() float64 {
	indices := make([]int, 0, len(v))
	for i := range v {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	var sum float64
	for _, i := range indices {
		a := v[i]
		sum += a * a
	}
	return math.Sqrt(sum)
}

// Add accumulates w*u into v.
func (v Sparse) Add(u Sparse, w float64) {
	for i, a := range u {
		v[i] += w * a
	}
}

// Scale multiplies every component by s.
func (v Sparse) Scale(s float64) {
	for i := range v {
		v[i] *= s
	}
}

// Cosine computes the cosine similarity between a pair of sparse vectors.
// Zero vectors have no direction and yield 0.
func Cosine(a, b Sparse) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// CosineDense computes the cosine similarity between a pair of dense vectors.
func CosineDense(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// ClampUnit clamps a similarity to [0,1]. Negative similarity carries no
// relevance for ranking.
func ClampUnit(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
