package dhe

import (
	"math"
)

/*
	外側境界条件の無次元温度応答

	g_func は out[k, a, j]（時刻 k, 深さ a, 半径 j、半径が最速）を返す。
	実装は GFuncParametersCore と GConeParameters のみ。
*/
type BoundaryMethod interface {
	g_func(t []float64, c_v_soil []float64, lambda_soil []float64, r []float64) []float64
}

// 多項式近似によるg関数
type GFuncParametersCore struct {
	GCoefs  [6]float64
	UMin    float64
	L       float64
	GoConst float64
}

// Werner の漏斗式
type GConeParameters struct{}

/*
	計算方法に応じた外側境界条件を作成する

	Returns:
		BoundaryMethod
*/
func (g GMethod) Build() (BoundaryMethod, error) {
	switch g.Kind {
	case GMethodGFunc:
		if !(g.L > 0.0) {
			return nil, &ParameterError{Name: "g_method.L", Value: g.L, Reason: "must be positive"}
		}
		u_min, coefs, err := g_poly(g.GCoefs, g.DDHE, get_d_dhe_ref(), get_d_dhe_delta())
		if err != nil {
			return nil, err
		}
		go_const := g.GoConst
		if go_const == 0.0 {
			go_const = get_go_const()
		}
		return &GFuncParametersCore{
			GCoefs:  coefs,
			UMin:    u_min,
			L:       g.L,
			GoConst: go_const,
		}, nil
	case GMethodGCone:
		return &GConeParameters{}, nil
	default:
		return nil, &ParameterError{Name: "g_method.kind", Value: math.NaN(), Reason: "unknown method " + string(g.Kind)}
	}
}

/*
	g関数による外側境界条件

	Args:
		t: 時刻, s, [k]
		c_v_soil: 土壌の容積比熱, J/m3 K, [a]
		lambda_soil: 土壌の熱伝導率, W/m K, [a]
		r: 境界条件を求める半径, m, [j]

	Returns:
		g, -, [k, a, j]
*/
func (p *GFuncParametersCore) g_func(t []float64, c_v_soil []float64, lambda_soil []float64, r []float64) []float64 {
	dim_ax := len(c_v_soil)
	dim_rad := len(r)
	dim_t := len(t)
	out_g := make([]float64, dim_t*dim_ax*dim_rad)

	ts := make([]float64, dim_ax)
	for i := 0; i < dim_ax; i++ {
		ts[i] = p.L * p.L / (9.0 * lambda_soil[i]) * c_v_soil[i]
	}
	log_r := make([]float64, dim_rad)
	for j := 0; j < dim_rad; j++ {
		log_r[j] = math.Log(r[j] / (p.L * 0.0005))
	}

	c := p.GCoefs
	l := 0
	for k := 0; k < dim_t; k++ {
		for i := 0; i < dim_ax; i++ {
			u := math.Log(t[k] / ts[i])
			if u > 2.5 {
				u = 2.5
			}
			g_o := 0.5*u + p.GoConst
			var g float64
			if u < p.UMin {
				g = g_o
			} else {
				g = c[0] + u*(c[1]+u*(c[2]+u*(c[3]+u*(c[4]+u*c[5]))))
			}
			// 短時間側では漸近式を優先
			if u < -2.0 && g_o-0.3 > g {
				g = g_o
			}
			for j := 0; j < dim_rad; j++ {
				out_g[l] = g - log_r[j]
				l++
			}
		}
	}
	return out_g
}

/*
	Werner の漏斗式による外側境界条件

	W(u) = -γ - ln u + u - u^2/(2 2!) + ... を級数展開で求め、W/2 を返す。
	u > 1 では0とする。
*/
func (p *GConeParameters) g_func(t []float64, c_v_soil []float64, lambda_soil []float64, r []float64) []float64 {
	dim_ax := len(c_v_soil)
	dim_rad := len(r)
	dim_t := len(t)
	out_g := make([]float64, dim_t*dim_ax*dim_rad)

	u0 := make([]float64, dim_ax)
	for i := 0; i < dim_ax; i++ {
		u0[i] = c_v_soil[i] / (4.0 * lambda_soil[i])
	}
	rr := make([]float64, dim_rad)
	for j := 0; j < dim_rad; j++ {
		rr[j] = r[j] * r[j]
	}

	l := 0
	for k := 0; k < dim_t; k++ {
		for i := 0; i < dim_ax; i++ {
			for j := 0; j < dim_rad; j++ {
				out_g[l] = well_function(u0[i] * rr[j] / t[k])
				l++
			}
		}
	}
	return out_g
}

/*
	指数積分 W(u) の半分

	級数の項が和の絶対値の1%以下になった時点で打ち切る。
*/
func well_function(u float64) float64 {
	if u > 1.0 || math.IsNaN(u) {
		return 0.0
	}
	w := -get_euler_gamma() - math.Log(u) + u
	sign := 1.0
	u_n := u
	fac := 1.0
	for n := 2; n < 30; n++ {
		sign = -sign
		u_n *= u
		fac *= float64(n)
		delta := u_n / (fac * float64(n))
		keep_going := delta > 0.01*math.Abs(w)
		w += sign * delta
		if !keep_going {
			break
		}
	}
	return 0.5 * w
}

/*
	g関数の5点の値から多項式係数を求める

	プローブ間隔が基準値と異なる場合は外挿する。

	Args:
		g: 5点のg関数値
		d_dhe: プローブ間隔, m
		d_dhe_ref: 基準プローブ間隔, m
		d_dhe_delta: 許容差, m

	Returns:
		u_min: 多項式の適用下限
		多項式係数, [6]
*/
func g_poly(g [5]float64, d_dhe float64, d_dhe_ref float64, d_dhe_delta float64) (float64, [6]float64, error) {
	var out [6]float64
	if math.Abs(d_dhe-d_dhe_ref) > d_dhe_delta {
		// g関数の外挿
		bh := d_dhe / d_dhe_ref
		if bh < 0.4 {
			return 0.0, out, &ParameterError{Name: "d_DHE", Value: d_dhe, Reason: "BH ratio below 0.4"}
		}
		ratio := (g[2] - 6.29) / (g[4] - 6.6)
		if !(ratio > 0.0) {
			return 0.0, out, &ParameterError{Name: "g_coefs", Value: ratio, Reason: "extrapolation ratio (g3-6.29)/(g5-6.6) must be positive"}
		}
		ex_a := g[4] - 6.29
		ex_b := -math.Log(ratio) / 27.0
		g0 := [5]float64{4.82, 5.69, 6.29, 6.57, 6.6}
		g_exp := [5]float64{343.0, 125.0, 27.0, 1.0, 0.0}
		for i := range g0 {
			g[i] = g0[i] + math.Max(0.0, ex_a/bh*math.Exp(-bh*ex_b*g_exp[i]))
		}
	}

	x := []float64{
		-4.0,
		-2.0,
		0.0,
		2.5,
		3.0,
		math.Min(-4.5, -4.0-(g[0]-4.82)/2.0),
	}
	y := []float64{
		g[0],
		g[1],
		g[2],
		g[3],
		g[4] * 0.99,
		(math.Log(0.5/0.0005) + 0.5*x[5]) * 0.95,
	}
	y[3] = (y[3] + y[4]) / 2.0 * 0.99
	u_min := math.Max(x[5]+0.5, -6.0)

	if err := solve_vandermonde(x, y, out[:]); err != nil {
		return 0.0, out, err
	}
	return u_min, out, nil
}
