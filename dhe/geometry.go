package dhe

import (
	"math"

	log "github.com/sirupsen/logrus"
)

/*
	地層の物性値を dim_ax 個の等長区間の長さ平均に変換する

	最下層より深い部分は最下層の物性値を延長する。

	Args:
		layers: 地層, [l]
		l_dhe: プローブ長さ, m
		dim_ax: 深さ方向の分割数

	Returns:
		c_v: 容積比熱, J/m3 K, [a]
		lambda: 熱伝導率, W/m K, [a]
*/
func sample_soil_layers(layers []SoilLayerProperties, l_dhe float64, dim_ax int) ([]float64, []float64, error) {
	if len(layers) == 0 {
		return nil, nil, &ParameterError{Name: "soil_layers", Value: 0, Reason: "empty layers"}
	}

	depth := 0.0
	for _, layer := range layers {
		depth += layer.D
	}
	if depth < l_dhe {
		log.WithFields(log.Fields{
			"L_DHE":   l_dhe,
			"L_layer": depth,
		}).Warn("probe exceeds lowest soil layer, continuing lowest layer")
	}

	c_v := make([]float64, dim_ax)
	lambda := make([]float64, dim_ax)
	d_l := l_dhe / float64(dim_ax)

	idx := 0
	layer := layers[idx]
	d_layer := layer.D
	l0_layer := 0.0
	l1_layer := layer.D
	for i := 0; i < dim_ax; i++ {
		l := float64(i+1) * l_dhe / float64(dim_ax)
		c_v_layer := 0.0
		lambda_layer := 0.0
		for l1_layer < l {
			c_v_layer += layer.C * layer.Rho * d_layer
			lambda_layer += layer.Lambda * d_layer
			if idx+1 < len(layers) {
				idx++
				layer = layers[idx]
				d_layer = layer.D
			} else {
				d_layer = math.Inf(1)
			}
			l0_layer = l1_layer
			l1_layer += d_layer
		}
		c_v_layer += layer.C * layer.Rho * (l - l0_layer)
		lambda_layer += layer.Lambda * (l - l0_layer)
		c_v[i] = c_v_layer / d_l
		lambda[i] = lambda_layer / d_l
		d_layer -= l - l0_layer
		l0_layer = l
	}
	return c_v, lambda, nil
}

/*
	半径方向の格子

	Args:
		d_dhe: 管径, m
		d_borehole: ボアホール径, m
		r_domain: 計算領域の幅, m
		dim_rad: 半径方向の分割数
		gamma: 公比

	Returns:
		r, m, [dim_rad+1]
*/
func r_grid(d_dhe float64, d_borehole float64, r_domain float64, dim_rad int, gamma float64) []float64 {
	r := make([]float64, dim_rad+1)
	r[0] = 0.5 * d_dhe
	r[1] = 0.5 * d_borehole

	var c float64
	if gamma == 1.0 {
		// 等間隔の極限
		c = r_domain / float64(dim_rad-1)
	} else {
		c = r_domain * (1.0 - gamma) / (1.0 - math.Pow(gamma, float64(dim_rad-1)))
	}
	x := 0.0
	gamma_p := 1.0
	for i := 2; i < len(r); i++ {
		x += gamma_p
		gamma_p *= gamma
		r[i] = r[1] + c*x
	}
	return r
}

/*
	セル中心の半径（隣接格子半径の二乗平均）

	Returns:
		rz, m, [len(r)+1]
*/
func rz_grid(r []float64) []float64 {
	l := len(r) + 1
	rz := make([]float64, l)
	for i := 1; i < len(r); i++ {
		rz[i] = math.Sqrt(0.5 * (r[i]*r[i] + r[i-1]*r[i-1]))
	}
	rz[0] = r[0]
	rz[l-1] = r[len(r)-1]
	return rz
}

// ポンプ停止時のブライン側熱伝達率, W/m2 K
func alpha0(lambda_brine float64, d float64) float64 {
	return 2.0 * lambda_brine / (d * (1.0 - math.Sqrt(0.5)))
}

/*
	ポンプ運転時のブライン側熱伝達率

	Args:
		brine: ブラインの物性値
		phi: 体積流量, m3/s
		d_dhe: 管径, m
		thickness_dhe: 管厚, m

	Returns:
		熱伝達率, W/m2 K
*/
func alpha1(brine *FluidProperties, phi float64, d_dhe float64, thickness_dhe float64) float64 {
	c_v_brine := brine.C * brine.Rho
	nu_brine := brine.Nu
	lambda_brine := brine.Lambda
	di := d_dhe - 2.0*thickness_dhe
	v := 2.0 * phi / (di * di) / math.Pi

	// レイノルズ数
	re := v * di / nu_brine

	// プラントル数
	pr := nu_brine * c_v_brine / lambda_brine
	pr_3 := math.Cbrt(pr)

	// ラミナー域
	nu_laminar := 4.36
	if re <= 2300.0 {
		return nu_laminar * lambda_brine / di
	}

	// 圧力損失係数 (Petukhov, 1970)
	xi := 1.0 / 1.82 * math.Log(re*re/math.Ln10-1.64)

	// スタントン数 (Petukhov, 1970)
	k1 := 1.0 + 27.2*xi/8.0
	k2 := 11.7 + 1.8/pr_3
	st := xi / 8.0 / (k1 + k2*math.Sqrt(xi/8.0)*(pr_3*pr_3-1.0))

	// 遷移域と乱流域の境界におけるスタントン数
	xi0 := 0.031437
	k10 := 1.106886
	st0 := xi0 / 8.0 / (k10 + k2*math.Sqrt(xi0/8.0)*(pr_3*pr_3-1.0))
	nu0 := st0 * 10000.0 * pr

	var nu float64
	if re >= 10000.0 {
		// 乱流域
		nu = st * re * pr
	} else {
		// 遷移域
		nu = nu_laminar * math.Exp(math.Log(nu0/nu_laminar)/math.Log(10000.0/2300.0)*math.Log(re/2300.0))
	}
	return nu * lambda_brine / di
}

/*
	ボアホール内の熱抵抗 R1

	Returns:
		R1, K/W
*/
func r_1(dl float64, r []float64, rz []float64, alpha float64, lambda_fill float64, ra float64, rb float64) float64 {
	if ra > 0.0 && rb > 0.0 {
		return ra / (4.0 * dl)
	}
	if rb > 0.0 {
		return rb/dl - 1.0/(2.0*math.Pi*dl*lambda_fill)*math.Log(r[1]/rz[1])
	}
	return (1.0/(alpha*r[0]) + math.Log((r[1]-rz[1])/r[0])/lambda_fill) / (8.0 * math.Pi * dl)
}

/*
	充填材から土壌への熱抵抗 R2

	Returns:
		R2, K/W, [a]
*/
func r_2(dl float64, r []float64, rz []float64, lambda_fill float64, lambda_soil []float64, ra float64, rb float64) []float64 {
	out := make([]float64, len(lambda_soil))
	for i, lambda := range lambda_soil {
		if ra > 0.0 && rb > 0.0 {
			out[i] = (rb-0.25*ra)/dl + math.Log(rz[2]/r[1])/(2.0*math.Pi*dl*lambda)
		} else {
			out[i] = (math.Log(r[1]/rz[1])/lambda_fill + math.Log(rz[2]/r[1])/lambda) / (2.0 * math.Pi * dl)
		}
	}
	return out
}

/*
	ポンプ運転時・停止時の熱コンダクタンス

	Returns:
		l_on, W/K, [a, dim_rad+1]
		l_off, W/K, [a, dim_rad+1]
*/
func l_pump(dl float64, r []float64, rz []float64, l1_on float64, l1_off float64, r2 []float64, adiabat float64, lambda_soil []float64) ([]float64, []float64) {
	dim_ax := len(lambda_soil)
	dim_r := len(r)
	l_on := make([]float64, dim_ax*dim_r)
	l_off := make([]float64, dim_ax*dim_r)
	for a := 0; a < dim_ax; a++ {
		row_on := l_on[a*dim_r : (a+1)*dim_r]
		row_off := l_off[a*dim_r : (a+1)*dim_r]
		row_on[0] = l1_on
		row_off[0] = l1_off
		row_on[1] = 1.0 / r2[a]
		row_on[dim_r-1] = (1.0 - adiabat) * 2.0 * math.Pi * dl * lambda_soil[a] / math.Log(r[dim_r-1]/rz[dim_r-1])
		for i := 2; i < dim_r-1; i++ {
			row_on[i] = 2.0 * math.Pi * dl * lambda_soil[a] / math.Log(rz[i+1]/rz[i])
		}
		copy(row_off[1:], row_on[1:])
	}
	return l_on, l_off
}

/*
	各セルの熱容量

	Returns:
		C, J/K, [a, dim_rad]
*/
func c_matrix(dl float64, r []float64, c_v_fill float64, c_v_soil []float64) []float64 {
	dim_rad := len(r) - 1
	dim_ax := len(c_v_soil)
	c := make([]float64, dim_ax*dim_rad)
	for a := 0; a < dim_ax; a++ {
		// 充填材（4本の管を除く）
		c[a*dim_rad] = math.Pi * c_v_fill * (r[1]*r[1] - 4.0*r[0]*r[0]) * dl
		for i := 1; i < dim_rad; i++ {
			c[a*dim_rad+i] = math.Pi * dl * c_v_soil[a] * (r[i+1]*r[i+1] - r[i]*r[i])
		}
	}
	return c
}

/*
	時間刻みあたりの内部ステップ数

	最小の時定数 C/L を (充填材, 管), (充填材, 土壌側), (第1土壌層, 土壌側) の組から求める。

	Args:
		l: 熱コンダクタンス, W/K, [a, dim_rad+1]
		c: 熱容量, J/K, [a, dim_rad]
		dt: 時間刻み, s
		multiplier: 安全率

	Returns:
		ステップ数（1以上）
*/
func optimal_n_steps(l []float64, c []float64, dim_ax int, dim_rad int, dt float64, multiplier float64) int {
	dt_min := c[0] / l[0]
	pairs := [][2]int{{0, 0}, {0, 1}, {1, 1}}
	for _, p := range pairs {
		for a := 0; a < dim_ax; a++ {
			x := c[a*dim_rad+p[0]] / l[a*(dim_rad+1)+p[1]]
			if x < dt_min {
				dt_min = x
			}
		}
	}
	out := int(multiplier * dt / dt_min)
	if out < 1 {
		return 1
	}
	return out
}

/*
	初期地中温度分布

	Args:
		t0: 計算開始時刻, s
		g_coefs: g関数の多項式係数
		dl: 深さ方向の区間長さ, m
		t_soil_mean: 平均地中温度, degree C
		q_drain: 区間ごとの採熱量, W, [a]
		t_grad: 温度勾配, K/m
		u_min: 多項式の適用下限

	Returns:
		地中温度, degree C, [dim_rad+2, a]
*/
func t_soil_0(
	t0 float64,
	g_coefs [6]float64,
	dim_ax int,
	dl float64,
	c_v_soil []float64,
	lambda_soil []float64,
	rz []float64,
	t_soil_mean float64,
	q_drain []float64,
	t_grad float64,
	u_min float64,
) []float64 {
	dim_r := len(rz)
	rq := make([]float64, dim_ax*dim_r)
	if t0 != 0.0 {
		g := (&GFuncParametersCore{
			GCoefs:  g_coefs,
			L:       float64(dim_ax) * dl,
			GoConst: get_go_const_t_soil_0(),
			UMin:    u_min,
		}).g_func([]float64{t0}, c_v_soil, lambda_soil, rz)
		for i := 0; i < dim_r; i++ {
			for a := 0; a < dim_ax; a++ {
				rq[i*dim_ax+a] = g[a*dim_r+i] / (2.0 * math.Pi * lambda_soil[a])
			}
		}
	}
	out := make([]float64, dim_r*dim_ax)
	l := 0
	for i := 0; i < dim_r; i++ {
		for a := 0; a < dim_ax; a++ {
			out[l] = t_soil_mean + t_grad*dl*(float64(a)+0.5) - rq[i*dim_ax+a]*q_drain[a]/dl
			l++
		}
	}
	return out
}

/*
	ブライン循環の圧力損失

	Args:
		phi_m: 質量流量, kg/s, [n]
		nu_brine: 動粘性係数, m2/s
		rho_brine: 密度, kg/m3
		d: 管径, m
		thickness: 管厚, m
		l: プローブ長さ, m

	Returns:
		圧力損失, Pa, [n]
		層流かどうか, [n]
*/
func PressureDecay(phi_m []float64, nu_brine float64, rho_brine float64, d float64, thickness float64, l float64) ([]float64, []bool) {
	di := d - 2.0*thickness
	dp := make([]float64, len(phi_m))
	laminar := make([]bool, len(phi_m))
	for i, phi := range phi_m {
		wi := phi / (2.0 * math.Pi * (0.5 * di) * (0.5 * di) * rho_brine)
		re := wi * di / nu_brine
		if !(re > 0.0) {
			continue
		}
		var xi float64
		if re < 2300.0 {
			laminar[i] = true
			xi = 64.0 / re
		} else {
			// Petukhov, 1970
			k := 1.82*math.Log10(re) - 1.64
			xi = 1.0 / (k * k)
		}
		dp[i] = 0.5 * l * xi / di * rho_brine * wi * wi
	}
	return dp, laminar
}
