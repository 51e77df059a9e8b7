package dhe

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveTridiagonalRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	const n, m = 9, 4

	diag := make([]float64, n)
	upper := make([]float64, n-1)
	lower := make([]float64, n-1)
	for i := range diag {
		diag[i] = 4.0 + rnd.Float64()
	}
	for i := range upper {
		upper[i] = rnd.Float64() - 0.5
		lower[i] = rnd.Float64() - 0.5
	}
	b := make([]float64, n*m)
	for i := range b {
		b[i] = 10.0 * (rnd.Float64() - 0.5)
	}
	x := append([]float64(nil), b...)
	require.NoError(t, solve_tridiagonal(diag, upper, lower, x, m))

	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, diag[i])
		if i < n-1 {
			a.Set(i, i+1, upper[i])
			a.Set(i+1, i, lower[i])
		}
	}
	// 右辺は列ごとに連続して格納されている
	xm := mat.NewDense(n, m, nil)
	for k := 0; k < m; k++ {
		for i := 0; i < n; i++ {
			xm.Set(i, k, x[k*n+i])
		}
	}
	var ax mat.Dense
	ax.Mul(a, xm)
	for k := 0; k < m; k++ {
		for i := 0; i < n; i++ {
			want := b[k*n+i]
			assert.InDelta(t, want, ax.At(i, k), 1e-10*math.Max(1.0, math.Abs(want)))
		}
	}
}

func TestSolveTridiagonalSingular(t *testing.T) {
	rhs := []float64{1.0, 2.0}
	err := solve_tridiagonal([]float64{0.0, 1.0}, []float64{1.0}, []float64{1.0}, rhs, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSingularMatrix))

	var se *SingularMatrixError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Row)

	// 2行目で消去後のピボットが0
	err = solve_tridiagonal([]float64{1.0, 1.0}, []float64{1.0}, []float64{1.0}, []float64{1.0, 1.0}, 1)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Row)
}

func TestSolveTridiagonalShape(t *testing.T) {
	err := solve_tridiagonal([]float64{1.0, 1.0}, []float64{0.0}, []float64{0.0}, []float64{1.0, 2.0, 3.0}, 2)
	var se *ShapeError
	assert.True(t, errors.As(err, &se))
}

func TestSolveVandermonde(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	x := []float64{-4.0, -2.0, 0.0, 2.5, 3.0, -4.5}
	coefs := make([]float64, len(x))
	for i := range coefs {
		coefs[i] = (1.0 + rnd.Float64()) * math.Copysign(1.0, rnd.Float64()-0.5)
	}
	y := make([]float64, len(x))
	for i, xi := range x {
		for k := len(coefs) - 1; k >= 0; k-- {
			y[i] = y[i]*xi + coefs[k]
		}
	}

	out := make([]float64, len(x))
	require.NoError(t, solve_vandermonde(x, y, out))
	assert.InEpsilonSlice(t, coefs, out, 1e-8)
}

func TestSolveVandermondeTrivialAndSingular(t *testing.T) {
	out := make([]float64, 1)
	require.NoError(t, solve_vandermonde([]float64{3.0}, []float64{5.0}, out))
	assert.Equal(t, []float64{5.0}, out)

	out = make([]float64, 3)
	err := solve_vandermonde([]float64{1.0, 1.0, 2.0}, []float64{1.0, 2.0, 3.0}, out)
	assert.True(t, errors.Is(err, ErrSingularMatrix))
}

func TestArange(t *testing.T) {
	assert.Equal(t, []float64{0.0, 0.25, 0.5, 0.75}, arange(0.0, 1.0, 0.25))
	assert.Equal(t, []float64{1.0, 3.0}, arange(1.0, 4.0, 2.0))
	assert.Empty(t, arange(1.0, 0.0, 1.0))
	assert.Empty(t, arange(0.0, 1.0, 0.0))
}

func TestAllFinite(t *testing.T) {
	assert.True(t, all_finite([]float64{0.0, -1.0, 1e300}))
	assert.False(t, all_finite([]float64{0.0, math.NaN()}))
	assert.False(t, all_finite([]float64{math.Inf(-1)}))
}
