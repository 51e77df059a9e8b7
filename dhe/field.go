package dhe

import (
	"math"
)

/*
	プローブ群

	sum_g: 全プローブのg関数の和, -, [N, a]
	dg: プローブ間距離による補正, -, [n_DHE]
*/
type DHEField struct {
	sum_g []float64
	dg    []float64
	dhe   []*DHECore
}

/*
	Args:
		dhe: 離散化されたプローブ
		dim_t: 境界更新回数 N
*/
func NewDHEField(dhe []*DHECore, dim_t int, dim_ax int) *DHEField {
	sum_g := make([]float64, dim_t*dim_ax)
	for l := range sum_g {
		for _, d := range dhe {
			sum_g[l] += d.G[l]
		}
	}
	return &DHEField{
		sum_g: sum_g,
		dg:    dhe_geometry(dhe),
		dhe:   dhe,
	}
}

/*
	外側境界条件の重ね合わせ

	ΔT[k, j] = Σ_i (sum_g[i, j] - dg[k]) (-Q_k[n-i, j] + Q_k[n-1-i, j]) / (2π d_lambda_soil_k[j])

	を各プローブの境界温度（半径方向 dim_rad+1）に加える。

	Args:
		states: プローブの状態
		n: 完了した境界更新区間の数
*/
func (f *DHEField) DeltaTBoundary(states []*DHEState, n int, dim_ax int, dim_rad int) {
	for k, d := range f.dhe {
		q := states[k].Q
		t_soil_boundary := states[k].TSoil[dim_ax*(dim_rad+1):]
		for j := 0; j < dim_ax; j++ {
			delta_t := 0.0
			for i := 0; i < n; i++ {
				delta_t += (f.sum_g[i*dim_ax+j] - f.dg[k]) * (-q[(n-i)*dim_ax+j] + q[(n-1-i)*dim_ax+j])
			}
			t_soil_boundary[j] += delta_t / (2.0 * math.Pi * d.DLambdaSoil[j])
		}
	}
}

/*
	プローブ間の距離による補正

	out[k] = Σ_{l≠k} ln(d(k, l) / R_l)
*/
func dhe_geometry(dhe []*DHECore) []float64 {
	out := make([]float64, len(dhe))
	for k := range dhe {
		for l := range dhe {
			if l == k {
				continue
			}
			out[k] += math.Log(math.Hypot(dhe[k].X-dhe[l].X, dhe[k].Y-dhe[l].Y) / dhe[l].R)
		}
	}
	return out
}
