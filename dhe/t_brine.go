package dhe

/*
	ブライン温度の計算方法

	実装は TBrineDynamicParameters と TBrineStationaryParameters のみ。

	refresh:
		t_soil: 充填材温度, degree C, [a]
		t_u: ブライン温度（往路、復路）, degree C, [2a]（更新される）
		q_wall: 管壁熱流, W, [a]（出力）
		t_sink: 入口温度, degree C
		戻り値: 出口温度, degree C
*/
type TBrineMethod interface {
	refresh(t_soil []float64, t_u []float64, q_wall []float64, dim_ax int, t_sink float64) float64
}

// 非定常（陽解法・サブステップ）モデル
type TBrineDynamicParameters struct {
	NSubSteps   int
	KappaAx     float64   // U_brine / dC_brine * dt_sub
	KappaRad    []float64 // lambda_brine * dt / dC_brine, [a]
	LambdaBrine []float64 // 0.5 * L / n_sub_steps, W/K, [a]
}

// 定常モデル
type TBrineStationaryParameters struct {
	KappaBrine []float64 // U / (0.5 L + U), [a]
	KappaSoil  []float64 // L / (L + 2U), [a]
	L          []float64 // W/K, [a]
}

/*
	ブライン温度の計算方法のパラメータを作成する

	Args:
		dt: 内部ステップの時間刻み, s
		dc_brine: 区間内ブラインの熱容量 2 c_V pi r^2 dl, J/K
		l: 管壁の熱コンダクタンス, W/K, [a]
		n_sub_steps: サブステップ数
		u_brine: ブラインの熱容量流量, W/K
*/
func (m TBrineCalcMethod) build(dt float64, dc_brine float64, l []float64, n_sub_steps int, u_brine float64) TBrineMethod {
	switch m {
	case TBrineDynamic:
		lambda_brine := make([]float64, len(l))
		kappa_rad := make([]float64, len(l))
		for i := range l {
			lambda_brine[i] = 0.5 * l[i] / float64(n_sub_steps)
			kappa_rad[i] = lambda_brine[i] * dt / dc_brine
		}
		return &TBrineDynamicParameters{
			NSubSteps:   n_sub_steps,
			KappaAx:     u_brine / dc_brine * dt / float64(n_sub_steps),
			KappaRad:    kappa_rad,
			LambdaBrine: lambda_brine,
		}
	case TBrineStationary:
		kappa_soil := make([]float64, len(l))
		kappa_brine := make([]float64, len(l))
		for i := range l {
			kappa_soil[i] = l[i] / (l[i] + 2.0*u_brine)
			kappa_brine[i] = u_brine / (0.5*l[i] + u_brine)
		}
		return &TBrineStationaryParameters{
			KappaSoil:  kappa_soil,
			KappaBrine: kappa_brine,
			L:          append([]float64(nil), l...),
		}
	default:
		panic("invalid T_brine_method")
	}
}

func (p *TBrineDynamicParameters) refresh(t_soil []float64, t_u []float64, q_wall []float64, dim_ax int, t_sink float64) float64 {
	n := float64(p.NSubSteps)
	for i := 0; i < dim_ax; i++ {
		q_wall[i] = 2.0 * n * t_soil[i]
	}
	kappa_ax := p.KappaAx
	kappa_rad := p.KappaRad
	t_out := 0.0
	for step := 0; step < p.NSubSteps; step++ {
		t_prev := t_sink
		// 往路
		for i := 0; i < dim_ax; i++ {
			t := t_u[i]
			t += (t_prev-t)*kappa_ax + (t_soil[i]-t)*kappa_rad[i]
			t_prev = t
			t_u[i] = t
			q_wall[i] -= t
		}
		// 復路
		for i := 0; i < dim_ax; i++ {
			a := dim_ax - 1 - i
			t := t_u[dim_ax+i]
			t += (t_prev-t)*kappa_ax + (t_soil[a]-t)*kappa_rad[a]
			t_prev = t
			t_u[dim_ax+i] = t
			q_wall[a] -= t
		}
		t_out += t_u[2*dim_ax-1]
	}
	for i := 0; i < dim_ax; i++ {
		q_wall[i] *= p.LambdaBrine[i]
	}
	return t_out / n
}

func (p *TBrineStationaryParameters) refresh(t_soil []float64, t_u []float64, q_wall []float64, dim_ax int, t_sink float64) float64 {
	kappa_soil := p.KappaSoil
	kappa_brine := p.KappaBrine
	t_u[0] = kappa_soil[0]*t_soil[0] + kappa_brine[0]*t_sink
	for i := 1; i < dim_ax; i++ {
		t_u[i] = kappa_soil[i]*t_soil[i] + kappa_brine[i]*t_u[i-1]
	}
	for i := 0; i < dim_ax; i++ {
		a := dim_ax - 1 - i
		t_u[dim_ax+i] = kappa_soil[a]*t_soil[a] + kappa_brine[a]*t_u[dim_ax+i-1]
	}
	for i := 0; i < dim_ax; i++ {
		q_wall[i] = (2.0*t_soil[i] - t_u[i] - t_u[2*dim_ax-1-i]) * 0.5 * p.L[i]
	}
	return t_u[2*dim_ax-1]
}
