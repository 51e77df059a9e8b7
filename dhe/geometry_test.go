package dhe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSoilLayers(t *testing.T) {
	layers := []SoilLayerProperties{
		{D: 1.0, Rho: 3.0, C: 3.0, Lambda: 0.0},
		{D: 3.0, Rho: 2.0, C: 3.0, Lambda: 0.0},
		{D: 2.0, Rho: 1.0, C: -1.0, Lambda: 0.0},
		{D: 1.0, Rho: 3.0, C: 3.0, Lambda: 0.0},
	}

	c_v, lambda, err := sample_soil_layers(layers, 6.0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{7.5, 6.0, -1.0}, c_v)
	assert.Equal(t, []float64{0.0, 0.0, 0.0}, lambda)

	// 最下層より深い部分は最下層を延長
	c_v, lambda, err = sample_soil_layers(layers, 8.0, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{6.75, 4.0}, c_v)
	assert.Equal(t, []float64{0.0, 0.0}, lambda)

	c_v, lambda, err = sample_soil_layers([]SoilLayerProperties{{D: math.Inf(1), Rho: 1.0, C: 2.0, Lambda: 3.0}}, 6.0, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 2.0}, c_v)
	assert.Equal(t, []float64{3.0, 3.0}, lambda)

	_, _, err = sample_soil_layers(nil, 6.0, 2)
	assert.Error(t, err)
}

func TestRGrid(t *testing.T) {
	d_dhe, d_borehole, r_domain := 0.026, 0.115, 1.4425
	for _, gamma := range []float64{2.0, 1.0, 0.8} {
		r := r_grid(d_dhe, d_borehole, r_domain, 5, gamma)
		require.Len(t, r, 6)
		assert.Equal(t, 0.5*d_dhe, r[0])
		assert.Equal(t, 0.5*d_borehole, r[1])
		assert.InDelta(t, r[1]+r_domain, r[5], 1e-12, "Gamma = %g", gamma)
		for i := 2; i < len(r); i++ {
			assert.Greater(t, r[i], r[i-1])
		}
	}

	// 公比1は等間隔
	r := r_grid(d_dhe, d_borehole, r_domain, 5, 1.0)
	for i := 2; i < len(r); i++ {
		assert.InDelta(t, r_domain/4.0, r[i]-r[i-1], 1e-12)
	}
}

func TestRzGrid(t *testing.T) {
	r := []float64{0.013, 0.0575, 0.5, 1.5}
	rz := rz_grid(r)
	require.Len(t, rz, 5)
	assert.Equal(t, r[0], rz[0])
	assert.Equal(t, r[3], rz[4])
	for i := 1; i < len(r); i++ {
		assert.InDelta(t, math.Sqrt(0.5*(r[i]*r[i]+r[i-1]*r[i-1])), rz[i], 1e-15)
	}
}

func TestAlpha1(t *testing.T) {
	brine := FluidProperties{Rho: 1050.0, C: 3800.0, Lambda: 0.48, Nu: 3.9e-6}
	d, thickness := 0.026, 0.0029
	di := d - 2.0*thickness

	// ラミナー域
	assert.InDelta(t, 4.36*brine.Lambda/di, alpha1(&brine, 1e-6, d, thickness), 1e-12)

	// 遷移域では流量とともに増加
	a_tr := alpha1(&brine, 5.0e-4, d, thickness)
	a_tb := alpha1(&brine, 1.0e-3, d, thickness)
	assert.Greater(t, a_tr, 4.36*brine.Lambda/di)
	assert.Greater(t, a_tb, a_tr)
}

func TestResistances(t *testing.T) {
	r := []float64{0.013, 0.0575, 0.3, 1.5}
	rz := rz_grid(r)
	dl := 25.0

	// Ra, Rb が与えられた場合
	assert.InDelta(t, 0.3/(4.0*dl), r_1(dl, r, rz, 1000.0, 0.8, 0.3, 0.1), 1e-15)
	r2 := r_2(dl, r, rz, 0.8, []float64{2.0, 3.0}, 0.3, 0.1)
	require.Len(t, r2, 2)
	assert.InDelta(t, (0.1-0.075)/dl+math.Log(rz[2]/r[1])/(2.0*math.Pi*dl*2.0), r2[0], 1e-15)
	assert.Less(t, r2[1], r2[0])

	// 形状から
	assert.Greater(t, r_1(dl, r, rz, 1000.0, 0.8, 0.0, 0.0), 0.0)
}

func TestLPump(t *testing.T) {
	r := []float64{0.013, 0.0575, 0.3, 0.8, 1.5}
	rz := rz_grid(r)
	lambda_soil := []float64{2.0, 3.0}
	r2 := []float64{0.01, 0.02}

	l_on, l_off := l_pump(25.0, r, rz, 50.0, 10.0, r2, 0.0, lambda_soil)
	require.Len(t, l_on, 2*5)
	for a := 0; a < 2; a++ {
		assert.Equal(t, 50.0, l_on[a*5])
		assert.Equal(t, 10.0, l_off[a*5])
		assert.Equal(t, 1.0/r2[a], l_on[a*5+1])
		assert.Equal(t, l_on[a*5+1:(a+1)*5], l_off[a*5+1:(a+1)*5])
	}

	// 断熱境界
	l_on, _ = l_pump(25.0, r, rz, 50.0, 10.0, r2, 1.0, lambda_soil)
	assert.Equal(t, 0.0, l_on[4])
	assert.Equal(t, 0.0, l_on[9])
}

func TestCMatrix(t *testing.T) {
	r := []float64{0.013, 0.0575, 0.3}
	c := c_matrix(10.0, r, 1.6e6, []float64{2.0e6})
	require.Len(t, c, 2)
	assert.InDelta(t, math.Pi*1.6e6*(r[1]*r[1]-4.0*r[0]*r[0])*10.0, c[0], 1e-6)
	assert.InDelta(t, math.Pi*10.0*2.0e6*(r[2]*r[2]-r[1]*r[1]), c[1], 1e-6)
}

func TestOptimalNSteps(t *testing.T) {
	// dim_ax = 1, dim_rad = 2
	l := []float64{2.0, 4.0, 1.0}
	c := []float64{8.0, 100.0}
	// min(8/2, 8/4, 100/4) = 2
	assert.Equal(t, 5, optimal_n_steps(l, c, 1, 2, 10.0, 1.0))
	assert.Equal(t, 10, optimal_n_steps(l, c, 1, 2, 10.0, 2.0))
	assert.Equal(t, 1, optimal_n_steps(l, c, 1, 2, 0.1, 1.0))
}

func TestTSoil0(t *testing.T) {
	rz := []float64{0.013, 0.04, 0.2, 0.8, 1.5}
	c_v := []float64{2.0e6, 2.0e6, 2.0e6}
	lambda := []float64{2.0, 2.0, 2.0}
	_, coefs, err := g_poly(g_coefs_ref, 10.0, get_d_dhe_ref(), get_d_dhe_delta())
	require.NoError(t, err)

	out := t_soil_0(0.0, coefs, 3, 10.0, c_v, lambda, rz, 10.0, make([]float64, 3), 0.03, -4.0)
	require.Len(t, out, 5*3)
	for i := 0; i < 5; i++ {
		for a := 0; a < 3; a++ {
			assert.InDelta(t, 10.0+0.03*10.0*(float64(a)+0.5), out[i*3+a], 1e-12)
		}
	}

	// 採熱があれば遠方ほど元の温度に近い
	out = t_soil_0(3.0e7, coefs, 3, 10.0, c_v, lambda, rz, 10.0, []float64{100.0, 100.0, 100.0}, 0.0, -4.0)
	assert.Less(t, out[0], out[4*3])
	assert.Less(t, out[4*3], 10.0)
}

func TestPressureDecay(t *testing.T) {
	nu, rho, d, thickness, l := 3.9e-6, 1050.0, 0.026, 0.0029, 100.0
	dp, laminar := PressureDecay([]float64{0.0, 0.001, 0.5}, nu, rho, d, thickness, l)
	require.Len(t, dp, 3)

	assert.Equal(t, 0.0, dp[0])
	assert.False(t, laminar[0])

	di := d - 2.0*thickness
	w := 0.001 / (2.0 * math.Pi * (0.5 * di) * (0.5 * di) * rho)
	re := w * di / nu
	assert.True(t, laminar[1])
	assert.InDelta(t, 0.5*l*(64.0/re)/di*rho*w*w, dp[1], 1e-12)

	assert.False(t, laminar[2])
	assert.Greater(t, dp[2], dp[1])
}
