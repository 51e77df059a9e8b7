package dhe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDHEGeometry(t *testing.T) {
	dhe := []*DHECore{
		{X: 0.0, Y: 0.0, R: 1.0},
		{X: 3.0, Y: 4.0, R: 1.0},
	}
	dg := dhe_geometry(dhe)
	assert.InDeltaSlice(t, []float64{math.Log(5.0), math.Log(5.0)}, dg, 1e-15)

	// 単独のプローブは補正なし
	assert.Equal(t, []float64{0.0}, dhe_geometry(dhe[:1]))
}

func weekly_refresh(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) * 604800.0
	}
	return out
}

func random_history(rnd *rand.Rand, n int, dim_ax int) []float64 {
	q := make([]float64, (n+1)*dim_ax)
	for i := dim_ax; i < len(q); i++ {
		q[i] = 200.0 * (rnd.Float64() - 0.3)
	}
	return q
}

func TestDeltaTBoundaryGFunc(t *testing.T) {
	const dim_rad = 4
	const n = 12
	const l_ref = 100.0
	r_calc := 1.5
	t_refresh := weekly_refresh(n)

	m, err := GMethod{Kind: GMethodGFunc, L: l_ref, GCoefs: g_coefs_ref, DDHE: 10.0}.Build()
	require.NoError(t, err)
	p := m.(*GFuncParametersCore)

	for _, c := range []struct {
		c_v    []float64
		lambda []float64
	}{
		{[]float64{2.2e6}, []float64{2.0}},
		{[]float64{2.2e6, 2.4e6, 2.0e6}, []float64{2.0, 1.6, 3.0}},
	} {
		dim_ax := len(c.c_v)
		dl := 100.0 / float64(dim_ax)
		d_lambda := make([]float64, dim_ax)
		for a := range d_lambda {
			d_lambda[a] = c.lambda[a] * dl
		}
		core := &DHECore{R: r_calc, G: m.g_func(t_refresh, c.c_v, c.lambda, []float64{r_calc}), DLambdaSoil: d_lambda}
		field := NewDHEField([]*DHECore{core}, n, dim_ax)

		rnd := rand.New(rand.NewSource(int64(11 + dim_ax)))
		st := &DHEState{Q: random_history(rnd, n, dim_ax), TSoil: make([]float64, dim_ax*(dim_rad+2))}
		field.DeltaTBoundary([]*DHEState{st}, n, dim_ax, dim_rad)

		for a := 0; a < dim_ax; a++ {
			ts := l_ref * l_ref / (9.0 * c.lambda[a]) * c.c_v[a]
			want := 0.0
			for i := 1; i <= n; i++ {
				u := math.Min(math.Log(t_refresh[i-1]/ts), 2.5)
				g_o := 0.5*u + 6.84
				g := g_o
				if u >= p.UMin {
					g = eval_poly(p.GCoefs, u)
				}
				if u < -2.0 && g_o-0.3 > g {
					g = g_o
				}
				g -= math.Log(r_calc / l_ref / 0.0005)
				rq := g / (2.0 * math.Pi * c.lambda[a])
				want += (-st.Q[(n-i+1)*dim_ax+a] + st.Q[(n-i)*dim_ax+a]) / dl * rq
			}
			assert.InDelta(t, want, st.TSoil[dim_ax*(dim_rad+1)+a], 1e-5, "dim_ax = %d, a = %d", dim_ax, a)
		}
		// 境界以外は変化しない
		for _, v := range st.TSoil[:dim_ax*(dim_rad+1)] {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestDeltaTBoundaryGCone(t *testing.T) {
	const dim_rad = 3
	const n = 12
	r_calc := 1.5
	t_refresh := weekly_refresh(n)

	m, err := GMethod{Kind: GMethodGCone}.Build()
	require.NoError(t, err)

	c_v := []float64{2.2e6, 2.4e6, 2.0e6}
	lambda := []float64{2.0, 1.6, 3.0}
	const dim_ax = 3
	dl := 100.0 / float64(dim_ax)
	d_lambda := make([]float64, dim_ax)
	for a := range d_lambda {
		d_lambda[a] = lambda[a] * dl
	}

	// 2本のプローブ
	dhe := []*DHECore{
		{X: 0.0, Y: 0.0, R: r_calc, G: m.g_func(t_refresh, c_v, lambda, []float64{r_calc}), DLambdaSoil: d_lambda},
		{X: 8.0, Y: 0.0, R: r_calc, G: m.g_func(t_refresh, c_v, lambda, []float64{r_calc}), DLambdaSoil: d_lambda},
	}
	field := NewDHEField(dhe, n, dim_ax)

	rnd := rand.New(rand.NewSource(21))
	states := []*DHEState{
		{Q: random_history(rnd, n, dim_ax), TSoil: make([]float64, dim_ax*(dim_rad+2))},
		{Q: random_history(rnd, n, dim_ax), TSoil: make([]float64, dim_ax*(dim_rad+2))},
	}
	field.DeltaTBoundary(states, n, dim_ax, dim_rad)

	dg := math.Log(8.0 / r_calc)
	for k, st := range states {
		for a := 0; a < dim_ax; a++ {
			want := 0.0
			for i := 1; i <= n; i++ {
				w := 2.0 * well_function(c_v[a]/(4.0*lambda[a])*r_calc*r_calc/t_refresh[i-1])
				// 他のプローブの寄与は同じ地層なので2倍
				g := 2.0*0.5*w - dg
				want += (-st.Q[(n-i+1)*dim_ax+a] + st.Q[(n-i)*dim_ax+a]) * g / (2.0 * math.Pi * lambda[a] * dl)
			}
			assert.InDelta(t, want, st.TSoil[dim_ax*(dim_rad+1)+a], 1e-5, "probe %d, a = %d", k, a)
		}
	}
}

func TestDeltaTBoundaryNoHistory(t *testing.T) {
	const dim_ax, dim_rad = 2, 3
	core := &DHECore{R: 1.5, G: []float64{1.0, 1.0}, DLambdaSoil: []float64{50.0, 50.0}}
	field := NewDHEField([]*DHECore{core}, 1, dim_ax)

	st := &DHEState{Q: []float64{0.0, 0.0, 100.0, 100.0}, TSoil: make([]float64, dim_ax*(dim_rad+2))}
	field.DeltaTBoundary([]*DHEState{st}, 0, dim_ax, dim_rad)
	assert.Equal(t, make([]float64, dim_ax*(dim_rad+2)), st.TSoil)

	// 採熱は境界温度を下げる
	field.DeltaTBoundary([]*DHEState{st}, 1, dim_ax, dim_rad)
	assert.InDelta(t, -100.0/(2.0*math.Pi*50.0), st.TSoil[dim_ax*(dim_rad+1)], 1e-12)
}
