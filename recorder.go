package main

import (
	"io"

	"dhe_calc/dhe"

	"github.com/gocarina/gocsv"
)

// result_probe.csv の行
type ProbeResultRow struct {
	T       float64 `csv:"t"`        // 時刻, s
	Probe   int     `csv:"probe"`    // プローブの番号
	TSink   float64 `csv:"T_sink"`   // 入口温度, degree C
	TSource float64 `csv:"T_source"` // 出口温度, degree C
	PLoss   float64 `csv:"p_loss"`   // 圧力損失, Pa
	Laminar bool    `csv:"laminar"`  // 層流かどうか
}

// result_soil.csv の行
type SoilResultRow struct {
	T     float64 `csv:"t"`      // 時刻, s
	Probe int     `csv:"probe"`  // プローブの番号
	IRad  int     `csv:"i_rad"`  // 半径方向の番号（0: 管壁, dim_rad+1: 外側境界）
	IAx   int     `csv:"i_ax"`   // 深さ方向の番号
	TSoil float64 `csv:"T_soil"` // 地中温度, degree C
}

/*
計算結果を境界更新区間ごとにCSVへ書き出す

dhe.Recorder を満たす。
*/
type Recorder struct {
	t       []float64
	dim_ax  int
	dim_rad int

	// プローブごとの圧力損失, Pa, [n_DHE][t]
	p_loss_ns [][]float64
	// プローブごとの層流判定, [n_DHE][t]
	laminar_ns [][]bool

	w_probe      io.Writer
	w_soil       io.Writer
	header_probe bool
	header_soil  bool
	rows_probe   []*ProbeResultRow
	rows_soil    []*SoilResultRow
}

var _ dhe.Recorder = (*Recorder)(nil)

/*
	Args:
		t: 時刻, s, [t]
		p: 熱負荷, W, [t]
		probes: プローブ
		w: result_probe.csv の書き出し先
*/
func NewRecorder(t []float64, p []float64, probes []dhe.DHE, dim_ax int, dim_rad int, w io.Writer) *Recorder {
	var r Recorder

	r.t = t
	r.dim_ax = dim_ax
	r.dim_rad = dim_rad
	r.w_probe = w

	// ポンプ運転時のみ流量がある
	r.p_loss_ns = make([][]float64, len(probes))
	r.laminar_ns = make([][]bool, len(probes))
	for k, d := range probes {
		phi_m := dhe.PumpSchedule(p, d.PhiM)
		r.p_loss_ns[k], r.laminar_ns[k] = dhe.PressureDecay(
			phi_m,
			d.BrineProperties.Nu,
			d.BrineProperties.Rho,
			d.D,
			d.Thickness,
			d.L,
		)
	}

	return &r
}

// 地中温度も書き出す
func (r *Recorder) SaveSoil(w io.Writer) {
	r.w_soil = w
}

func (r *Recorder) Record(probe int, offset int, t_sink []float64, t_source []float64, t_soil []float64) error {
	r.rows_probe = r.rows_probe[:0]
	for i := range t_sink {
		n := offset + i
		r.rows_probe = append(r.rows_probe, &ProbeResultRow{
			T:       r.t[n],
			Probe:   probe,
			TSink:   t_sink[i],
			TSource: t_source[i],
			PLoss:   r.p_loss_ns[probe][n],
			Laminar: r.laminar_ns[probe][n],
		})
	}
	if err := r.write(r.w_probe, r.rows_probe, &r.header_probe); err != nil {
		return err
	}

	if r.w_soil == nil {
		return nil
	}
	size := r.dim_ax * (r.dim_rad + 2)
	r.rows_soil = r.rows_soil[:0]
	for i := range t_sink {
		snapshot := t_soil[i*size : (i+1)*size]
		for j := 0; j < r.dim_rad+2; j++ {
			for a := 0; a < r.dim_ax; a++ {
				r.rows_soil = append(r.rows_soil, &SoilResultRow{
					T:     r.t[offset+i],
					Probe: probe,
					IRad:  j,
					IAx:   a,
					TSoil: snapshot[j*r.dim_ax+a],
				})
			}
		}
	}
	return r.write(r.w_soil, r.rows_soil, &r.header_soil)
}

// 最初の書き出しのみヘッダを付ける
func (r *Recorder) write(w io.Writer, rows interface{}, header_written *bool) error {
	if *header_written {
		return gocsv.MarshalWithoutHeaders(rows, w)
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return err
	}
	*header_written = true
	return nil
}
