package dhe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestTBrineDynamicConvergesToStationary(t *testing.T) {
	const dim_ax = 3
	const dc_brine, u_brine, dt = 1000.0, 10.0, 10.0
	l := []float64{5.0, 5.0, 5.0}
	t_soil := []float64{10.0, 11.0, 12.0}
	const t_sink = 5.0

	dynamic := TBrineDynamic.build(dt, dc_brine, l, 10, u_brine)
	stationary := TBrineStationary.build(dt, dc_brine, l, 10, u_brine)

	t_u_dyn := make([]float64, 2*dim_ax)
	q_dyn := make([]float64, dim_ax)
	var out_dyn float64
	for i := 0; i < 1000; i++ {
		out_dyn = dynamic.refresh(t_soil, t_u_dyn, q_dyn, dim_ax, t_sink)
	}

	t_u_st := make([]float64, 2*dim_ax)
	q_st := make([]float64, dim_ax)
	out_st := stationary.refresh(t_soil, t_u_st, q_st, dim_ax, t_sink)

	assert.InDelta(t, out_st, out_dyn, 1e-6)
	assert.InDeltaSlice(t, t_u_st, t_u_dyn, 1e-6)
	assert.InDeltaSlice(t, q_st, q_dyn, 1e-6)
}

func TestTBrineStationaryEnergyBalance(t *testing.T) {
	const dim_ax = 4
	const u_brine = 1550.0
	l := []float64{40.0, 45.0, 50.0, 55.0}
	t_soil := []float64{9.0, 9.5, 10.0, 10.5}
	const t_sink = 3.0

	m := TBrineStationary.build(60.0, 2000.0, l, 1, u_brine)
	t_u := make([]float64, 2*dim_ax)
	q := make([]float64, dim_ax)
	t_source := m.refresh(t_soil, t_u, q, dim_ax, t_sink)

	// ブラインの温度上昇は管壁熱流の合計
	assert.InDelta(t, u_brine*(t_source-t_sink), floats.Sum(q), 1e-9)
	assert.Equal(t, t_u[2*dim_ax-1], t_source)
	for i := 1; i < 2*dim_ax; i++ {
		assert.Greater(t, t_u[i], t_u[i-1])
	}
}

func TestTBrineDynamicNoFlow(t *testing.T) {
	const dim_ax = 2
	l := []float64{30.0, 30.0}
	t_soil := []float64{10.0, 10.0}

	// ポンプ停止時は流れがなく、ブラインは充填材温度へ緩和する
	m := TBrineDynamic.build(60.0, 2000.0, l, 5, 0.0)
	p := m.(*TBrineDynamicParameters)
	require.Equal(t, 0.0, p.KappaAx)

	t_u := []float64{4.0, 4.0, 4.0, 4.0}
	q := make([]float64, dim_ax)
	for i := 0; i < 200; i++ {
		m.refresh(t_soil, t_u, q, dim_ax, -50.0)
	}
	assert.InDeltaSlice(t, []float64{10.0, 10.0, 10.0, 10.0}, t_u, 1e-6)
	assert.InDeltaSlice(t, []float64{0.0, 0.0}, q, 1e-6)
}

func TestTBrineBuildInvalid(t *testing.T) {
	assert.Panics(t, func() {
		TBrineCalcMethod("implicit").build(1.0, 1.0, []float64{1.0}, 1, 1.0)
	})
}
