package dhe

import (
	"errors"
	"fmt"
)

// 特異な連立方程式
var ErrSingularMatrix = errors.New("dhe: singular matrix")

// ピボットが0となった行
type SingularMatrixError struct {
	Row int
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("dhe: singular matrix (zero pivot in row %d)", e.Row)
}

func (e *SingularMatrixError) Is(target error) bool {
	return target == ErrSingularMatrix
}

// 物理パラメータが有効範囲外
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("dhe: invalid parameter %s = %g: %s", e.Name, e.Value, e.Reason)
}

/*
	ブライン温度の不動点反復が収束しなかった

	TSink: 最後の反復値, degree C
	Residual: 最後の反復での |T_sink - T_sink_ref|, K
*/
type ConvergenceError struct {
	Probe      int
	Step       int
	Iterations int
	TSink      float64
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf(
		"dhe: probe %d step %d: sink temperature did not converge after %d iterations (T_sink = %g, residual = %g)",
		e.Probe, e.Step, e.Iterations, e.TSink, e.Residual,
	)
}

// 配列の大きさの不整合
type ShapeError struct {
	What string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("dhe: shape mismatch in %s: want %d, got %d", e.What, e.Want, e.Got)
}

// 特定のプローブで発生したエラー
type ProbeError struct {
	Probe int
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("dhe: probe %d: %v", e.Probe, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
