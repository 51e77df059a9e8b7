package dhe

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ポンプ状態ごとの地中温度計算パラメータ
type TSoilParameters struct {
	TSoilTensor  []float64    // 遷移テンソル, -, [a, dim_rad, dim_rad+2]
	L            []float64    // 管壁の熱コンダクタンス, W/K, [a]
	TBrineMethod TBrineMethod // ブライン温度の計算方法
}

/*
	内部温度の遷移テンソル B を求める

	T_new[1..dim_rad] = B T_old となる B。A T_new = F T_old を深さ区間ごとに三重対角法で解く。

	        / * * 0 \        / * | * * 0 | 0 \
	  A_a = | * * * |  F_a = | 0 | * * * | 0 |
	        \ 0 * * /        \ 0 | 0 * * | * /

	Args:
		l: 熱コンダクタンス, W/K, [a, dim_rad+1]
		c: 熱容量, J/K, [a, dim_rad]
		dt_step: 内部ステップの時間刻み, s

	Returns:
		B, -, [a, dim_rad, dim_rad+2]
*/
func t_soil_evolution(l []float64, c []float64, dt_step float64, dim_ax int, dim_rad int) ([]float64, error) {
	a_diag, a_offdiag := lc_bands(l, c, dt_step, dim_ax, dim_rad)
	f_diag, f_offdiag := lc_bands(l, c, -dt_step, dim_ax, dim_rad)

	s1 := dim_rad + 2
	s0 := dim_rad * s1
	tt := make([]float64, dim_ax*s0)
	f := make([]float64, s0)
	for a := 0; a < dim_ax; a++ {
		for i := range f {
			f[i] = 0.0
		}
		// 右辺 k（旧温度の半径位置 k）を連続して格納する
		f[0] = 2.0 * dt_step * l[a*(dim_rad+1)]
		f[s0-1] = 2.0 * dt_step * l[(a+1)*(dim_rad+1)-1]
		for i := 0; i < dim_rad; i++ {
			f[(i+1)*dim_rad+i] = f_diag[dim_rad*a+i]
		}
		for i := 0; i < dim_rad-1; i++ {
			f[(i+1)*dim_rad+i+1] = f_offdiag[(dim_rad-1)*a+i]
			f[(i+2)*dim_rad+i] = f_offdiag[(dim_rad-1)*a+i]
		}
		off := a_offdiag[a*(dim_rad-1) : (a+1)*(dim_rad-1)]
		if err := solve_tridiagonal(a_diag[a*dim_rad:(a+1)*dim_rad], off, off, f, s1); err != nil {
			return nil, err
		}
		for j := 0; j < dim_rad; j++ {
			for k := 0; k < s1; k++ {
				tt[a*s0+j*s1+k] = f[k*dim_rad+j]
			}
		}
	}
	return tt, nil
}

/*
	三重対角行列 2C + dt (L_i + L_{i+1}) の対角・副対角成分

	Returns:
		diag, [a, dim_rad]
		offdiag, [a, dim_rad-1]
*/
func lc_bands(l []float64, c []float64, dt float64, dim_ax int, dim_rad int) ([]float64, []float64) {
	diag := make([]float64, dim_ax*dim_rad)
	offdiag := make([]float64, dim_ax*(dim_rad-1))
	for a := 0; a < dim_ax; a++ {
		for i := 0; i < dim_rad; i++ {
			diag[a*dim_rad+i] = 2.0*c[a*dim_rad+i] + dt*(l[a*(dim_rad+1)+i+1]+l[a*(dim_rad+1)+i])
		}
		for i := 0; i < dim_rad-1; i++ {
			offdiag[a*(dim_rad-1)+i] = -dt * l[a*(dim_rad+1)+i+1]
		}
	}
	return diag, offdiag
}

/*
	遷移テンソルを密行列の連立方程式から求める

	境界値を恒等式として含む (dim_rad+2) 次の A, F を組み立て、A^{-1} F の内部行を返す。
	t_soil_evolution の検算に用いる。

	Returns:
		B, -, [a, dim_rad, dim_rad+2]
*/
func t_soil_evolution_dense(l []float64, c []float64, dt_step float64, dim_ax int, dim_rad int) ([]float64, error) {
	s1 := dim_rad + 2
	s0 := dim_rad * s1
	tt := make([]float64, dim_ax*s0)

	build := func(a int, dt float64) *mat.Dense {
		m := mat.NewDense(s1, s1, nil)
		m.Set(0, 0, 1.0)
		m.Set(s1-1, s1-1, 1.0)
		for i := 0; i < dim_rad; i++ {
			m.Set(i+1, i+1, 2.0*c[a*dim_rad+i]+dt*(l[a*(dim_rad+1)+i+1]+l[a*(dim_rad+1)+i]))
			m.Set(i+1, i, -dt*l[a*(dim_rad+1)+i])
			m.Set(i+1, i+2, -dt*l[a*(dim_rad+1)+i+1])
		}
		return m
	}

	for a := 0; a < dim_ax; a++ {
		var b mat.Dense
		if err := b.Solve(build(a, dt_step), build(a, -dt_step)); err != nil {
			return nil, err
		}
		for j := 0; j < dim_rad; j++ {
			for k := 0; k < s1; k++ {
				tt[a*s0+j*s1+k] = b.At(j+1, k)
			}
		}
	}
	return tt, nil
}

/*
	2つの遷移テンソルの最大差

	Returns:
		max |x - y|
*/
func max_abs_diff(x []float64, y []float64) float64 {
	d := 0.0
	for i := range x {
		d = math.Max(d, math.Abs(x[i]-y[i]))
	}
	return d
}

/*
	遷移テンソルで内部の地中温度を更新する

	T'[i, a] = sum_k B[a, i, k] T[k, a]。境界（k=0, dim_rad+1）は更新しない。

	Args:
		t_soil: 地中温度, degree C, [dim_rad+2, a]
		t_soil_tensor: 遷移テンソル, -, [a, dim_rad, dim_rad+2]
		x: 作業領域, [dim_rad]
*/
func t_soil_refresh(t_soil []float64, t_soil_tensor []float64, dim_ax int, dim_rad int, x []float64) {
	s1 := dim_rad + 2
	s0 := dim_rad * s1
	for a := 0; a < dim_ax; a++ {
		for i := 0; i < dim_rad; i++ {
			row := t_soil_tensor[s0*a+s1*i : s0*a+s1*(i+1)]
			sum := 0.0
			for k := 0; k < s1; k++ {
				sum += row[k] * t_soil[dim_ax*k+a]
			}
			x[i] = sum
		}
		for i := 0; i < dim_rad; i++ {
			t_soil[dim_ax*(i+1)+a] = x[i]
		}
	}
}

/*
	1時間刻み分（n_steps 回の内部ステップ）の地中温度・ブライン温度を計算する

	Args:
		t_soil: 地中温度, degree C, [dim_rad+2, a]
		t_sink: 入口温度, degree C
		sum_q0: 管壁熱流の積算値, W, [a]
		q_wall: 管壁熱流（作業領域）, W, [a]
		t_u: ブライン温度（往路、復路）, degree C, [2a]
		x: 作業領域, [dim_rad]

	Returns:
		出口温度（内部ステップ平均）, degree C
*/
func soil_step(
	t_soil []float64,
	t_sink float64,
	sum_q0 []float64,
	dim_ax int,
	dim_rad int,
	n_steps int,
	q_wall []float64,
	t_u []float64,
	prm *TSoilParameters,
	x []float64,
) float64 {
	t_source := 0.0
	for n := 0; n < n_steps; n++ {
		// ブライン温度
		t_source += prm.TBrineMethod.refresh(t_soil[dim_ax:], t_u, q_wall, dim_ax, t_sink)
		for i := 0; i < dim_ax; i++ {
			t_soil[i] = t_soil[dim_ax+i] - q_wall[i]/prm.L[i]
			sum_q0[i] += q_wall[i]
		}
		// 地中温度
		t_soil_refresh(t_soil, prm.TSoilTensor, dim_ax, dim_rad, x)
	}
	return t_source / float64(n_steps)
}
