package dhe

import (
	"math"

	log "github.com/sirupsen/logrus"
)

// ポンプ状態の添字
const (
	PumpOff = 0
	PumpOn  = 1
)

/*
	離散化されたプローブ

	構築後は変更しない。
*/
type DHECore struct {
	X           float64
	Y           float64
	L           float64
	R           float64   // 計算半径, m
	G           []float64 // 境界更新時刻ごとのg関数, -, [N, a]
	DLambdaSoil []float64 // 土壌の熱伝導率 * 区間長さ, W/K, [a]
	NSteps      int       // 時間刻みあたりの内部ステップ数
	L1On        float64   // ポンプ運転時のブライン・充填材間の熱コンダクタンス, W/K

	// PumpOff, PumpOn の順
	PumpDependentParameters [2]TSoilParameters
}

/*
	プローブの状態

	Q: 境界更新ごとの平均管壁熱流, W, [N+1, a]
	TSoil: 地中温度, degree C, [dim_rad+2, a]
	TU: ブライン温度（往路、復路）, degree C, [2a]
	TSink: 入口温度, degree C
*/
type DHEState struct {
	Q     []float64
	TSoil []float64
	TU    []float64
	TSink float64

	// 境界更新間の管壁熱流の積算値, W, [a]
	sum_q0 []float64

	// 作業領域
	q_wall     []float64
	t_soil_old []float64
	t_u_old    []float64
	sum_q0_old []float64
	x          []float64
}

func new_dhe_state(t_soil []float64, t_u []float64, n_refresh int, dim_ax int, dim_rad int) *DHEState {
	return &DHEState{
		Q:          make([]float64, (n_refresh+1)*dim_ax),
		TSoil:      t_soil,
		TU:         t_u,
		TSink:      0.0,
		sum_q0:     make([]float64, dim_ax),
		q_wall:     make([]float64, dim_ax),
		t_soil_old: make([]float64, len(t_soil)),
		t_u_old:    make([]float64, len(t_u)),
		sum_q0_old: make([]float64, dim_ax),
		x:          make([]float64, dim_rad),
	}
}

// 作業領域が未確保なら確保する
func (st *DHEState) ensure_scratch(dim_ax int, dim_rad int) {
	if len(st.sum_q0) != dim_ax {
		st.sum_q0 = make([]float64, dim_ax)
	}
	if len(st.q_wall) != dim_ax {
		st.q_wall = make([]float64, dim_ax)
	}
	if len(st.t_soil_old) != len(st.TSoil) {
		st.t_soil_old = make([]float64, len(st.TSoil))
	}
	if len(st.t_u_old) != len(st.TU) {
		st.t_u_old = make([]float64, len(st.TU))
	}
	if len(st.sum_q0_old) != dim_ax {
		st.sum_q0_old = make([]float64, dim_ax)
	}
	if len(st.x) != dim_rad {
		st.x = make([]float64, dim_rad)
	}
}

/*
	プローブを離散化し、初期状態を作成する

	Args:
		env: 計算条件
		g_method: 外側境界条件
		t_boundary_refresh: 境界更新時刻, s, [N]

	Returns:
		離散化されたプローブ
		初期状態
*/
func (d *DHE) WithState(env *GlobalParameters, g_method BoundaryMethod, t_boundary_refresh []float64) (*DHECore, *DHEState, error) {
	if err := env.validate(); err != nil {
		return nil, nil, err
	}
	if err := d.validate(env); err != nil {
		return nil, nil, err
	}

	dim_ax := env.DimAx
	dim_rad := env.DimRad
	dl := d.L / float64(dim_ax)

	c_v_soil, lambda_soil, err := sample_soil_layers(env.SoilLayers, d.L, dim_ax)
	if err != nil {
		return nil, nil, err
	}
	r_domain := env.R - 0.5*d.DBorehole
	r := r_grid(d.D, d.DBorehole, r_domain, dim_rad, env.Gamma)
	rz := rz_grid(r)

	// 初期地中温度
	q_drain := make([]float64, dim_ax)
	u_min, g_values, err := g_poly(d.TSoil0Params.GCoefs, d.TSoil0Params.DDHE, get_d_dhe_ref(), get_d_dhe_delta())
	if err != nil {
		return nil, nil, err
	}
	t_soil := t_soil_0(
		env.T0,
		g_values,
		dim_ax,
		dl,
		c_v_soil,
		lambda_soil,
		rz,
		env.SoilParameters.TSoilMean,
		q_drain,
		env.SoilParameters.TGrad,
		u_min,
	)
	t_u := make([]float64, 2*dim_ax)
	copy(t_u[:dim_ax], t_soil[:dim_ax])
	for a := 0; a < dim_ax; a++ {
		t_u[dim_ax+a] = t_soil[dim_ax-1-a]
	}
	state := new_dhe_state(t_soil, t_u, len(t_boundary_refresh), dim_ax, dim_rad)

	// 熱抵抗・熱コンダクタンス
	u_brine := d.BrineProperties.C * d.PhiM
	alpha := alpha1(&d.BrineProperties, d.PhiM/d.BrineProperties.Rho, d.D, d.Thickness)
	lambda_fill := d.FillProperties.Lambda
	c_v_fill := d.FillProperties.C * d.FillProperties.Rho

	r1 := d.R1
	if r1 <= 0.0 {
		r1 = r_1(dl, r, rz, alpha, lambda_fill, d.Ra, d.Rb)
	}
	r2 := r_2(dl, r, rz, lambda_fill, lambda_soil, d.Ra, d.Rb)
	l1_on := 1.0 / r1
	l1_off := 1.0 / (r1 + (1.0/alpha0(d.BrineProperties.Lambda, d.D)-1.0/alpha)/(8.0*math.Pi*r[0]*dl))
	if !(l1_on > 0.0) || !(l1_off > 0.0) || math.IsInf(l1_on, 0) || math.IsInf(l1_off, 0) {
		return nil, nil, &ParameterError{Name: "R1", Value: r1, Reason: "borehole resistance yields a non-positive conductance"}
	}

	l_on, l_off := l_pump(dl, r, rz, l1_on, l1_off, r2, env.Adiabat, lambda_soil)

	// 熱容量
	c := c_matrix(dl, r, c_v_fill, c_v_soil)

	n_steps := optimal_n_steps(l_on, c, dim_ax, dim_rad, env.Dt, env.OptimalNStepsMultiplier)
	dt_step := env.Dt / float64(n_steps)

	// ブライン
	c_brine := 2.0 * d.BrineProperties.C * d.BrineProperties.Rho * math.Pi * 0.25 * d.D * d.D * dl
	lm_min := c_brine / math.Max(u_brine, l1_on)
	n_steps_on := int(float64(env.NSteps0)*dt_step/lm_min) + 1
	n_steps_off := int(float64(env.NSteps0)*dt_step/c_brine*l1_off) + 1

	l_on_0 := make([]float64, dim_ax)
	l_off_0 := make([]float64, dim_ax)
	for a := 0; a < dim_ax; a++ {
		l_on_0[a] = l_on[a*(dim_rad+1)]
		l_off_0[a] = l_off[a*(dim_rad+1)]
	}

	tensor_off, err := t_soil_evolution(l_off, c, dt_step, dim_ax, dim_rad)
	if err != nil {
		return nil, nil, err
	}
	tensor_on, err := t_soil_evolution(l_on, c, dt_step, dim_ax, dim_rad)
	if err != nil {
		return nil, nil, err
	}
	if env.VerifyTensor {
		if err := verify_tensor(tensor_off, l_off, c, dt_step, dim_ax, dim_rad); err != nil {
			return nil, nil, err
		}
		if err := verify_tensor(tensor_on, l_on, c, dt_step, dim_ax, dim_rad); err != nil {
			return nil, nil, err
		}
	}

	d_lambda_soil := make([]float64, dim_ax)
	for a := range lambda_soil {
		d_lambda_soil[a] = lambda_soil[a] * dl
	}

	core := &DHECore{
		X:           d.X,
		Y:           d.Y,
		L:           d.L,
		R:           env.R,
		L1On:        l1_on,
		NSteps:      n_steps,
		DLambdaSoil: d_lambda_soil,
		G:           g_method.g_func(t_boundary_refresh, c_v_soil, lambda_soil, []float64{env.R}),
		PumpDependentParameters: [2]TSoilParameters{
			{
				L:            l_off_0,
				TSoilTensor:  tensor_off,
				TBrineMethod: env.TBrineMethod.build(dt_step, c_brine, l_off_0, n_steps_off, 0.0),
			},
			{
				L:            l_on_0,
				TSoilTensor:  tensor_on,
				TBrineMethod: env.TBrineMethod.build(dt_step, c_brine, l_on_0, n_steps_on, u_brine),
			},
		},
	}

	tables := []struct {
		name string
		v    []float64
	}{
		{"T_soil", state.TSoil},
		{"L_on", l_on},
		{"L_off", l_off},
		{"C", c},
		{"g", core.G},
		{"T_soil_tensor_on", tensor_on},
		{"T_soil_tensor_off", tensor_off},
	}
	for _, t := range tables {
		if !all_finite(t.v) {
			return nil, nil, &ParameterError{Name: t.name, Value: math.NaN(), Reason: "derived table contains non-finite values"}
		}
	}

	log.WithFields(log.Fields{
		"x":           d.X,
		"y":           d.Y,
		"n_steps":     n_steps,
		"n_steps_on":  n_steps_on,
		"n_steps_off": n_steps_off,
		"L1_on":       l1_on,
		"L1_off":      l1_off,
	}).Debug("probe discretized")

	return core, state, nil
}

/*
	三重対角法の遷移テンソルを密行列解と比較する
*/
func verify_tensor(tensor []float64, l []float64, c []float64, dt_step float64, dim_ax int, dim_rad int) error {
	dense, err := t_soil_evolution_dense(l, c, dt_step, dim_ax, dim_rad)
	if err != nil {
		return &ParameterError{Name: "T_soil_tensor", Value: math.NaN(), Reason: err.Error()}
	}
	if diff := max_abs_diff(tensor, dense); diff > 1e-8 {
		return &ParameterError{Name: "T_soil_tensor", Value: diff, Reason: "tridiagonal and dense construction disagree"}
	}
	return nil
}
