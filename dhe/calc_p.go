package dhe

import (
	"math"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

/*
	計算の設定

	Precision: 入口温度の収束判定値, K（0で既定値）
	MaxIterations: 不動点反復の上限回数（0で既定値）
	Parallel: プローブごとの計算を並列に行う
*/
type CalcOptions struct {
	Precision     float64
	MaxIterations int
	Parallel      bool
}

func DefaultCalcOptions() CalcOptions {
	return CalcOptions{
		Precision:     get_default_precision(),
		MaxIterations: get_default_max_iterations(),
	}
}

func (o CalcOptions) normalized() CalcOptions {
	if o.Precision <= 0.0 {
		o.Precision = get_default_precision()
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = get_default_max_iterations()
	}
	return o
}

/*
	計算結果の出力先

	境界更新区間ごと、プローブごとに呼ばれる。スライスは呼び出し後に再利用される。

	Args:
		probe: プローブの番号
		offset: 区間の先頭の時刻番号
		t_sink: 入口温度, degree C, [n]
		t_source: 出口温度, degree C, [n]
		t_soil: 地中温度, degree C, [n, dim_rad+2, a]
*/
type Recorder interface {
	Record(probe int, offset int, t_sink []float64, t_source []float64, t_soil []float64) error
}

// プローブごとの計算結果
type CalcPOutput struct {
	TSink   []float64 // 入口温度, degree C, [t]
	TSource []float64 // 出口温度, degree C, [t]
	TSoil   []float64 // 地中温度, degree C, [t, dim_rad+2, a]
}

// 全時刻の計算結果をメモリ上に保持する
type MemoryRecorder struct {
	Out       []CalcPOutput
	size_soil int
}

func NewMemoryRecorder(n_dhe int, dim_t int, dim_ax int, dim_rad int) *MemoryRecorder {
	size_soil := dim_ax * (dim_rad + 2)
	out := make([]CalcPOutput, n_dhe)
	for k := range out {
		out[k] = CalcPOutput{
			TSink:   make([]float64, dim_t),
			TSource: make([]float64, dim_t),
			TSoil:   make([]float64, dim_t*size_soil),
		}
	}
	return &MemoryRecorder{Out: out, size_soil: size_soil}
}

func (r *MemoryRecorder) Record(probe int, offset int, t_sink []float64, t_source []float64, t_soil []float64) error {
	if probe < 0 || probe >= len(r.Out) {
		return &ShapeError{What: "recorder probe", Want: len(r.Out), Got: probe}
	}
	o := &r.Out[probe]
	if offset+len(t_sink) > len(o.TSink) {
		return &ShapeError{What: "recorder time range", Want: len(o.TSink), Got: offset + len(t_sink)}
	}
	copy(o.TSink[offset:], t_sink)
	copy(o.TSource[offset:], t_source)
	copy(o.TSoil[offset*r.size_soil:], t_soil)
	return nil
}

/*
	ポンプの運転スケジュール

	熱負荷が正（採熱）の時刻のみ on の値をとる。

	Args:
		p: 熱負荷, W, [t]
		on: 運転時の値

	Returns:
		[t]
*/
func PumpSchedule(p []float64, on float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		if v > 0.0 {
			out[i] = on
		}
	}
	return out
}

/*
	任意の時刻列の熱負荷を時間刻み dt の等間隔に線形補間する

	Args:
		t: 時刻, s, [n]（単調増加）
		p: 熱負荷, W, [n]
		dt: 時間刻み, s

	Returns:
		時刻, s
		熱負荷, W
*/
func ResampleLoad(t []float64, p []float64, dt float64) ([]float64, []float64, error) {
	if len(t) != len(p) {
		return nil, nil, &ShapeError{What: "load profile", Want: len(t), Got: len(p)}
	}
	if !(dt > 0.0) {
		return nil, nil, &ParameterError{Name: "dt", Value: dt, Reason: "must be positive"}
	}
	if len(t) == 0 {
		return []float64{}, []float64{}, nil
	}
	if len(t) == 1 {
		return []float64{t[0]}, []float64{p[0]}, nil
	}
	for i := 1; i < len(t); i++ {
		if !(t[i] > t[i-1]) {
			return nil, nil, &ParameterError{Name: "t", Value: t[i], Reason: "time stamps must be strictly increasing"}
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(t, p); err != nil {
		return nil, nil, err
	}
	t_out := arange(t[0], t[len(t)-1]+dt, dt)
	p_out := make([]float64, len(t_out))
	for i, x := range t_out {
		p_out[i] = pl.Predict(x)
	}
	return t_out, p_out, nil
}

/*
	熱負荷から入口・出口温度を計算する

	Args:
		t: 時刻, s, [t]（時間刻み env.Dt の等間隔）
		p: 熱負荷（正で採熱）, W, [t]
		dhe: プローブ
		env: 計算条件
		opt: 計算の設定

	Returns:
		プローブごとの計算結果
*/
func CalcP(t []float64, p []float64, dhe []DHE, env *GlobalParameters, opt CalcOptions) ([]CalcPOutput, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	rec := NewMemoryRecorder(len(dhe), len(t), env.DimAx, env.DimRad)
	if err := CalcPWithRecorder(t, p, dhe, env, opt, rec); err != nil {
		return nil, err
	}
	return rec.Out, nil
}

/*
	CalcP の結果を境界更新区間ごとに rec へ渡す
*/
func CalcPWithRecorder(t []float64, p []float64, dhe []DHE, env *GlobalParameters, opt CalcOptions, rec Recorder) error {
	if err := env.validate(); err != nil {
		return err
	}
	if len(t) != len(p) {
		return &ShapeError{What: "P", Want: len(t), Got: len(p)}
	}
	if len(dhe) == 0 {
		return &ParameterError{Name: "dhe", Value: 0, Reason: "at least one probe is required"}
	}
	if err := check_positions(dhe); err != nil {
		return err
	}
	opt = opt.normalized()
	dim_t := len(t)
	if dim_t == 0 {
		return nil
	}

	g_method, err := env.GMethod.Build()
	if err != nil {
		return err
	}

	n_boundary_refresh := int(env.DtBoundaryRefresh / env.Dt)
	n := (dim_t + n_boundary_refresh - 1) / n_boundary_refresh
	t_boundary_refresh := make([]float64, n)
	for i := range t_boundary_refresh {
		t_boundary_refresh[i] = t[0] + float64(i+1)*env.DtBoundaryRefresh
	}

	phi := make([]float64, len(dhe))
	c := make([]float64, len(dhe))
	for k := range dhe {
		phi[k] = dhe[k].PhiM
		c[k] = dhe[k].BrineProperties.C
	}
	u_brine_on := floats.Dot(c, phi)
	u_brine := PumpSchedule(p, u_brine_on)

	cores := make([]*DHECore, len(dhe))
	states := make([]*DHEState, len(dhe))
	var g errgroup.Group
	if opt.Parallel {
		g.SetLimit(runtime.NumCPU())
	} else {
		g.SetLimit(1)
	}
	for k := range dhe {
		k := k
		g.Go(func() error {
			core, state, err := dhe[k].WithState(env, g_method, t_boundary_refresh)
			if err != nil {
				return &ProbeError{Probe: k, Err: err}
			}
			cores[k] = core
			states[k] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"n_DHE":              len(dhe),
		"dim_t":              dim_t,
		"n_boundary_refresh": n_boundary_refresh,
		"N":                  n,
		"U_brine":            u_brine_on,
	}).Debug("start calc_P")

	return CalcPCore(p, u_brine, env.DimAx, env.DimRad, cores, states, n_boundary_refresh, opt, rec)
}

// 同じ位置のプローブは重ね合わせできない
func check_positions(dhe []DHE) error {
	for k := range dhe {
		for l := k + 1; l < len(dhe); l++ {
			if math.Hypot(dhe[k].X-dhe[l].X, dhe[k].Y-dhe[l].Y) == 0.0 {
				return &ProbeError{Probe: l, Err: &ParameterError{Name: "x, y", Value: dhe[l].X, Reason: "probes must not share a position"}}
			}
		}
	}
	return nil
}

// 境界更新区間ごとの出力用の作業領域
type chunk_buffer struct {
	t_sink   []float64
	t_source []float64
	t_soil   []float64
}

/*
	全プローブの入口・出口温度と地中温度を計算する

	境界更新区間ごとに全プローブを進め、区間の終わりで外側境界条件を重ね合わせにより更新する。

	Args:
		p: 熱負荷, W, [t]
		u_brine: ブラインの熱容量流量（全プローブの合計）, W/K, [t]
		dhe: 離散化されたプローブ
		states: プローブの状態（更新される）
		n_boundary_refresh: 境界更新間隔の時刻数
		opt: 計算の設定
		rec: 出力先
*/
func CalcPCore(
	p []float64,
	u_brine []float64,
	dim_ax int,
	dim_rad int,
	dhe []*DHECore,
	states []*DHEState,
	n_boundary_refresh int,
	opt CalcOptions,
	rec Recorder,
) error {
	opt = opt.normalized()
	n_dhe := len(dhe)
	dim_t := len(p)
	if len(u_brine) != dim_t {
		return &ShapeError{What: "U_brine", Want: dim_t, Got: len(u_brine)}
	}
	if len(states) != n_dhe {
		return &ShapeError{What: "states", Want: n_dhe, Got: len(states)}
	}
	if n_boundary_refresh < 1 {
		return &ParameterError{Name: "n_boundary_refresh", Value: float64(n_boundary_refresh), Reason: "must be at least 1"}
	}
	if dim_t == 0 {
		return nil
	}
	n := (dim_t + n_boundary_refresh - 1) / n_boundary_refresh
	size_t_soil := dim_ax * (dim_rad + 2)
	for k := range dhe {
		if err := check_shapes(dhe[k], states[k], n, dim_ax, dim_rad); err != nil {
			return &ProbeError{Probe: k, Err: err}
		}
	}

	t0 := make([]float64, n_dhe*dim_ax)
	for k, st := range states {
		copy(t0[k*dim_ax:(k+1)*dim_ax], st.TSoil[dim_rad*dim_ax:(dim_rad+1)*dim_ax])
		st.TSink = stat.Mean(st.TSoil[dim_ax:2*dim_ax], nil)
	}

	chunk_size := n_boundary_refresh
	if dim_t < chunk_size {
		chunk_size = dim_t
	}
	buffers := make([]chunk_buffer, n_dhe)
	for k := range buffers {
		buffers[k] = chunk_buffer{
			t_sink:   make([]float64, chunk_size),
			t_source: make([]float64, chunk_size),
			t_soil:   make([]float64, chunk_size*size_t_soil),
		}
	}

	field := NewDHEField(dhe, n, dim_ax)
	for i_chunk := 0; i_chunk < n; i_chunk++ {
		pos := i_chunk * n_boundary_refresh
		size := n_boundary_refresh
		if pos+size > dim_t {
			size = dim_t - pos
		}

		var g errgroup.Group
		if !opt.Parallel {
			g.SetLimit(1)
		}
		for k := 0; k < n_dhe; k++ {
			k := k
			g.Go(func() error {
				buf := &buffers[k]
				return boundary_step(
					p[pos:pos+size],
					u_brine[pos:pos+size],
					dim_ax,
					dim_rad,
					dhe[k].NSteps,
					dhe[k].L1On*float64(n_dhe),
					&dhe[k].PumpDependentParameters,
					states[k],
					opt,
					k,
					pos,
					buf.t_sink[:size],
					buf.t_source[:size],
					buf.t_soil[:size*size_t_soil],
				)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for k := range buffers {
			buf := &buffers[k]
			if err := rec.Record(k, pos, buf.t_sink[:size], buf.t_source[:size], buf.t_soil[:size*size_t_soil]); err != nil {
				return err
			}
		}

		if i_chunk+1 == n {
			break
		}

		// 外側境界条件の更新
		for k, st := range states {
			q := st.Q[(i_chunk+1)*dim_ax : (i_chunk+2)*dim_ax]
			t_soil_boundary := st.TSoil[dim_ax*(dim_rad+1):]
			for j := 0; j < dim_ax; j++ {
				q[j] = st.sum_q0[j] / float64(dhe[k].NSteps*n_boundary_refresh)
				t_soil_boundary[j] = t0[k*dim_ax+j]
				st.sum_q0[j] = 0.0
			}
		}
		field.DeltaTBoundary(states, i_chunk+1, dim_ax, dim_rad)
	}
	return nil
}

type shape_check struct {
	what  string
	want  int
	got   int
	exact bool
}

func check_shapes(core *DHECore, st *DHEState, n int, dim_ax int, dim_rad int) error {
	checks := []shape_check{
		{"T_soil", (dim_rad + 2) * dim_ax, len(st.TSoil), true},
		{"T_U", 2 * dim_ax, len(st.TU), true},
		{"Q", (n + 1) * dim_ax, len(st.Q), false},
		{"g", n * dim_ax, len(core.G), false},
		{"d_lambda_soil", dim_ax, len(core.DLambdaSoil), true},
	}
	for _, prm := range core.PumpDependentParameters {
		checks = append(checks,
			shape_check{"T_soil_tensor", dim_ax * dim_rad * (dim_rad + 2), len(prm.TSoilTensor), true},
			shape_check{"L", dim_ax, len(prm.L), true},
		)
	}
	for _, c := range checks {
		if c.got < c.want || (c.exact && c.got != c.want) {
			return &ShapeError{What: c.what, Want: c.want, Got: c.got}
		}
	}
	if core.NSteps < 1 {
		return &ParameterError{Name: "n_steps", Value: float64(core.NSteps), Reason: "must be at least 1"}
	}
	st.ensure_scratch(dim_ax, dim_rad)
	return nil
}

/*
	1つの境界更新区間について、時刻ごとに入口温度を不動点反復で求める

	ポンプ運転時は入口温度が収束するまで地中温度を巻き戻して再計算する。

	Args:
		p: 熱負荷, W, [n]
		u_brine: ブラインの熱容量流量, W/K, [n]
		u1_on: L1_on * n_DHE, W/K
		pump_dependent_parameters: PumpOff, PumpOn のパラメータ
		st: プローブの状態
		probe: プローブの番号（エラー用）
		offset: 区間の先頭の時刻番号（エラー用）
		out_t_sink: 入口温度, degree C, [n]
		out_t_source: 出口温度, degree C, [n]
		out_t_soil: 地中温度, degree C, [n, dim_rad+2, a]
*/
func boundary_step(
	p []float64,
	u_brine []float64,
	dim_ax int,
	dim_rad int,
	n_steps int,
	u1_on float64,
	pump_dependent_parameters *[2]TSoilParameters,
	st *DHEState,
	opt CalcOptions,
	probe int,
	offset int,
	out_t_sink []float64,
	out_t_source []float64,
	out_t_soil []float64,
) error {
	precision := opt.Precision
	size_t_soil := dim_ax * (dim_rad + 2)
	t_sink := st.TSink

	for i := range p {
		pump_is_on := u_brine[i] > 0.0
		var t_source float64
		if pump_is_on {
			prm := &pump_dependent_parameters[PumpOn]
			dt_brine := p[i] / u_brine[i]
			t_sink -= p[i] * (1.0/u1_on + 1.0/u_brine[i])
			copy(st.t_soil_old, st.TSoil)
			copy(st.t_u_old, st.TU)
			copy(st.sum_q0_old, st.sum_q0)

			// 入口温度 x で1時間刻み分を計算し直し、残差 T_source - P/U - x を返す
			eval := func(x float64) (float64, float64) {
				copy(st.TSoil, st.t_soil_old)
				copy(st.TU, st.t_u_old)
				copy(st.sum_q0, st.sum_q0_old)
				t_out := soil_step(st.TSoil, x, st.sum_q0, dim_ax, dim_rad, n_steps, st.q_wall, st.TU, prm, st.x)
				return t_out, t_out - dt_brine - x
			}

			// 地中温度は入口温度について線形なので、割線法で不動点を求める。
			// 割線法で得た入口温度で再計算した状態のみを採用する。
			x_prev, r_prev := 0.0, 0.0
			has_prev := false
			from_secant := false
			iterations := 0
			for {
				var r float64
				t_source, r = eval(t_sink)
				if r == 0.0 {
					break
				}
				var t_sink_next float64
				if has_prev && r != r_prev {
					t_sink_next = t_sink - r*(t_sink-x_prev)/(r-r_prev)
				} else {
					t_sink_next = t_sink + r
				}
				residual := math.Abs(t_sink_next - t_sink)
				if from_secant && residual <= precision {
					break
				}
				if iterations >= opt.MaxIterations {
					return &ConvergenceError{
						Probe:      probe,
						Step:       offset + i,
						Iterations: iterations,
						TSink:      t_sink,
						Residual:   residual,
					}
				}
				iterations++
				from_secant = has_prev && r != r_prev
				x_prev, r_prev = t_sink, r
				has_prev = true
				t_sink = t_sink_next
				// 発散した場合は初期値を変えて再計算
				if math.Abs(t_sink) > 100.0 {
					t_sink = -1.0
					has_prev = false
					from_secant = false
				}
			}
			if iterations > get_iteration_log_threshold() {
				log.WithFields(log.Fields{
					"probe":      probe,
					"step":       offset + i,
					"iterations": iterations,
				}).Debug("slow convergence of T_sink")
			}
		} else {
			prm := &pump_dependent_parameters[PumpOff]
			soil_step(st.TSoil, t_sink, st.sum_q0, dim_ax, dim_rad, n_steps, st.q_wall, st.TU, prm, st.x)
			// 停止時は充填材温度
			t_sink = st.TSoil[dim_ax]
			t_source = t_sink
		}
		out_t_sink[i] = t_sink
		out_t_source[i] = t_source
		copy(out_t_soil[i*size_t_soil:(i+1)*size_t_soil], st.TSoil)
	}
	st.TSink = t_sink
	return nil
}
