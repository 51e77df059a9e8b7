package dhe

import (
	"math"
)

// ブライン温度の計算方法
type TBrineCalcMethod string

// ブライン温度の計算方法
const (
	TBrineDynamic    TBrineCalcMethod = "dynamic"
	TBrineStationary TBrineCalcMethod = "stationary"
)

// 外側境界条件（g関数）の計算方法
type GMethodKind string

// 外側境界条件（g関数）の計算方法
const (
	GMethodGFunc GMethodKind = "g_func"
	GMethodGCone GMethodKind = "g_cone"
)

// 流体の物性値
type FluidProperties struct {
	Rho    float64 `json:"rho"`    // 密度, kg/m3
	C      float64 `json:"c"`      // 比熱, J/kg K
	Lambda float64 `json:"lambda"` // 熱伝導率, W/m K
	Nu     float64 `json:"nu"`     // 動粘性係数, m2/s
}

// 充填材の物性値
type FillProperties struct {
	Rho    float64 `json:"rho"`    // 密度, kg/m3
	C      float64 `json:"c"`      // 比熱, J/kg K
	Lambda float64 `json:"lambda"` // 熱伝導率, W/m K
}

// 地層の物性値
type SoilLayerProperties struct {
	D      float64 `json:"d"`      // 層厚, m（最下層は +Inf でもよい）
	Rho    float64 `json:"rho"`    // 密度, kg/m3
	C      float64 `json:"c"`      // 比熱, J/kg K
	Lambda float64 `json:"lambda"` // 熱伝導率, W/m K
}

// 地中温度
type SoilParameters struct {
	TSoilMean float64 `json:"T_soil_mean"` // 地表付近の平均地中温度, degree C
	TGrad     float64 `json:"T_grad"`      // 深さ方向の温度勾配, K/m
}

// 初期地中温度分布の計算に用いるg関数のパラメータ
type TSoil0Parameters struct {
	GCoefs [5]float64 `json:"g_coefs"` // 5点のg関数値
	DDHE   float64    `json:"d_DHE"`   // プローブ間隔, m
}

// 1本のプローブ（地中熱交換器）
type DHE struct {
	X               float64          `json:"x"`          // 位置, m
	Y               float64          `json:"y"`          // 位置, m
	L               float64          `json:"L"`          // 長さ, m
	D               float64          `json:"D"`          // 管径, m
	DBorehole       float64          `json:"D_borehole"` // ボアホール径, m
	Thickness       float64          `json:"thickness"`  // 管厚, m
	Ra              float64          `json:"Ra"`         // 内部熱抵抗, m K/W（0で形状から計算）
	Rb              float64          `json:"Rb"`         // ボアホール熱抵抗, m K/W（0で形状から計算）
	R1              float64          `json:"R1"`         // 管内熱抵抗, K/W（0で形状から計算）
	FillProperties  FillProperties   `json:"fill_properties"`
	BrineProperties FluidProperties  `json:"brine_properties"`
	PhiM            float64          `json:"Phi_m"` // ポンプ運転時の質量流量, kg/s
	TSoil0Params    TSoil0Parameters `json:"T_soil_0_parameters"`
}

/*
	外側境界条件の計算方法とそのパラメータ

	Kind が g_func の場合のみ L, GoConst, GCoefs, DDHE を用いる。
*/
type GMethod struct {
	Kind    GMethodKind `json:"kind"`
	L       float64     `json:"L"`        // g関数の基準長さ, m
	GoConst float64     `json:"go_const"` // 漸近式の定数項（0で既定値）
	GCoefs  [5]float64  `json:"g_coefs"`
	DDHE    float64     `json:"d_DHE"`
}

// 全プローブに共通の計算条件
type GlobalParameters struct {
	DimAx                   int                   `json:"dim_ax"`  // 深さ方向の分割数
	DimRad                  int                   `json:"dim_rad"` // 半径方向の分割数
	TBrineMethod            TBrineCalcMethod      `json:"T_brine_method"`
	GMethod                 GMethod               `json:"g_method"`
	SoilLayers              []SoilLayerProperties `json:"soil_layers"`
	SoilParameters          SoilParameters        `json:"soil_parameters"`
	R                       float64               `json:"R"`     // 計算半径, m
	Gamma                   float64               `json:"Gamma"` // 半径方向格子の公比
	Adiabat                 float64               `json:"adiabat"`
	OptimalNStepsMultiplier float64               `json:"optimal_n_steps_multiplier"`
	NSteps0                 int                   `json:"n_steps_0"`
	DtBoundaryRefresh       float64               `json:"dt_boundary_refresh"` // 外側境界条件の更新間隔, s
	Dt                      float64               `json:"dt"`                  // 時間刻み, s
	T0                      float64               `json:"t0"`                  // 計算開始時刻, s
	VerifyTensor            bool                  `json:"verify_tensor"`       // 地中温度遷移テンソルを密行列解で検算する
}

/*
	ブライン温度の計算方法に対応するか検査する
*/
func (m TBrineCalcMethod) validate() error {
	switch m {
	case TBrineDynamic, TBrineStationary:
		return nil
	default:
		return &ParameterError{Name: "T_brine_method", Value: math.NaN(), Reason: "unknown method " + string(m)}
	}
}

/*
	計算条件の検査

	全プローブで dim_ax, dim_rad を共有するため、計算前に一度だけ行う。
*/
func (env *GlobalParameters) validate() error {
	if env.DimAx < 1 {
		return &ParameterError{Name: "dim_ax", Value: float64(env.DimAx), Reason: "must be at least 1"}
	}
	if env.DimRad < 2 {
		return &ParameterError{Name: "dim_rad", Value: float64(env.DimRad), Reason: "must be at least 2"}
	}
	if err := env.TBrineMethod.validate(); err != nil {
		return err
	}
	if len(env.SoilLayers) == 0 {
		return &ParameterError{Name: "soil_layers", Value: 0, Reason: "empty layers"}
	}
	for _, layer := range env.SoilLayers {
		if !(layer.D > 0.0) || !(layer.Rho > 0.0) || !(layer.C > 0.0) || !(layer.Lambda > 0.0) {
			return &ParameterError{Name: "soil_layers", Value: layer.D, Reason: "layer properties must be positive"}
		}
	}
	checks := []struct {
		name string
		v    float64
	}{
		{"R", env.R},
		{"Gamma", env.Gamma},
		{"optimal_n_steps_multiplier", env.OptimalNStepsMultiplier},
		{"dt", env.Dt},
		{"dt_boundary_refresh", env.DtBoundaryRefresh},
	}
	for _, c := range checks {
		if !(c.v > 0.0) || math.IsInf(c.v, 0) {
			return &ParameterError{Name: c.name, Value: c.v, Reason: "must be positive and finite"}
		}
	}
	if env.Adiabat < 0.0 || env.Adiabat > 1.0 {
		return &ParameterError{Name: "adiabat", Value: env.Adiabat, Reason: "must lie in [0, 1]"}
	}
	if env.NSteps0 < 1 {
		return &ParameterError{Name: "n_steps_0", Value: float64(env.NSteps0), Reason: "must be at least 1"}
	}
	if env.DtBoundaryRefresh < env.Dt {
		return &ParameterError{Name: "dt_boundary_refresh", Value: env.DtBoundaryRefresh, Reason: "must not be shorter than dt"}
	}
	if env.T0 < 0.0 {
		return &ParameterError{Name: "t0", Value: env.T0, Reason: "must not be negative"}
	}
	return nil
}

/*
	プローブ諸元の検査
*/
func (d *DHE) validate(env *GlobalParameters) error {
	positive := []struct {
		name string
		v    float64
	}{
		{"L", d.L},
		{"D", d.D},
		{"D_borehole", d.DBorehole},
		{"fill_properties.rho", d.FillProperties.Rho},
		{"fill_properties.c", d.FillProperties.C},
		{"fill_properties.lambda", d.FillProperties.Lambda},
		{"brine_properties.rho", d.BrineProperties.Rho},
		{"brine_properties.c", d.BrineProperties.C},
		{"brine_properties.lambda", d.BrineProperties.Lambda},
		{"brine_properties.nu", d.BrineProperties.Nu},
	}
	for _, c := range positive {
		if !(c.v > 0.0) || math.IsInf(c.v, 0) {
			return &ParameterError{Name: c.name, Value: c.v, Reason: "must be positive and finite"}
		}
	}
	if d.Thickness < 0.0 || 2.0*d.Thickness >= d.D {
		return &ParameterError{Name: "thickness", Value: d.Thickness, Reason: "must lie in [0, D/2)"}
	}
	// 充填材の断面積 (r_1^2 - 4 r_0^2) が正であること
	if d.DBorehole <= 2.0*d.D {
		return &ParameterError{Name: "D_borehole", Value: d.DBorehole, Reason: "must exceed twice the pipe diameter"}
	}
	if env.R-0.5*d.DBorehole <= 0.0 {
		return &ParameterError{Name: "R", Value: env.R, Reason: "calculation radius must exceed the borehole radius"}
	}
	if d.PhiM < 0.0 {
		return &ParameterError{Name: "Phi_m", Value: d.PhiM, Reason: "must not be negative"}
	}
	return nil
}
