package dhe

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

/*
	三重対角行列の連立方程式をトーマス法で解く（右辺は複数）

	Args:
		diag: 対角成分, [n]
		upper: 上側副対角成分, [n-1]
		lower: 下側副対角成分, [n-1]
		rhs: 右辺, [m, n] 各右辺ベクトルは連続して格納される。解で上書きされる。
		m: 右辺の数

	Returns:
		ピボットが0の場合は SingularMatrixError
*/
func solve_tridiagonal(diag []float64, upper []float64, lower []float64, rhs []float64, m int) error {
	n := len(diag)
	if n == 0 {
		return nil
	}
	if len(upper) < n-1 || len(lower) < n-1 || len(rhs) != n*m {
		return &ShapeError{What: "tridiagonal system", Want: n * m, Got: len(rhs)}
	}

	// 前進消去後の上側副対角成分
	cp := make([]float64, n)

	b := diag[0]
	if b == 0.0 {
		return &SingularMatrixError{Row: 0}
	}
	if n > 1 {
		cp[0] = upper[0] / b
	}
	for k := 0; k < m; k++ {
		rhs[k*n] /= b
	}
	for i := 1; i < n; i++ {
		b = diag[i] - lower[i-1]*cp[i-1]
		if b == 0.0 {
			return &SingularMatrixError{Row: i}
		}
		if i < n-1 {
			cp[i] = upper[i] / b
		}
		for k := 0; k < m; k++ {
			d := rhs[k*n : (k+1)*n]
			d[i] = (d[i] - lower[i-1]*d[i-1]) / b
		}
	}

	// 後退代入
	for k := 0; k < m; k++ {
		d := rhs[k*n : (k+1)*n]
		for i := n - 2; i >= 0; i-- {
			d[i] -= cp[i] * d[i+1]
		}
	}
	return nil
}

/*
	ヴァンデルモンド系を解き、n点を通る n-1 次多項式の係数を求める

	Args:
		x: 標本点, [n]
		y: 標本値, [n]
		out: 多項式の係数（単項式基底、昇べき）, [n]

	Returns:
		標本点が重複している場合は SingularMatrixError
*/
func solve_vandermonde(x []float64, y []float64, out []float64) error {
	n := len(x)
	if len(y) != n || len(out) != n {
		return &ShapeError{What: "vandermonde system", Want: n, Got: len(out)}
	}
	if n == 0 {
		return nil
	}
	if n == 1 {
		out[0] = y[0]
		return nil
	}

	// マスター多項式 prod(x - x_i) の係数（最高次の1は省略）
	m := n - 1
	s := make([]float64, n)
	for i := range out {
		out[i] = 0.0
	}
	s[m] = -x[0]
	for i := 1; i <= m; i++ {
		for j := m - i; j < m; j++ {
			s[j] -= x[i] * s[j+1]
		}
		s[m] -= x[i]
	}

	for j := 0; j <= m; j++ {
		// マスター多項式の x_j における導関数値
		phi := float64(n)
		for k := m; k >= 1; k-- {
			phi = float64(k)*s[k] + x[j]*phi
		}
		if phi == 0.0 {
			return &SingularMatrixError{Row: j}
		}
		ff := y[j] / phi

		// 組立除法
		b := 1.0
		for k := m; k >= 0; k-- {
			out[k] += b * ff
			b = s[k] + x[j]*b
		}
	}
	return nil
}

// start から stop（含まない）まで step 刻みの等差数列
func arange(start float64, stop float64, step float64) []float64 {
	if step <= 0.0 || stop <= start {
		return []float64{}
	}
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// 配列が全て有限値かどうか
func all_finite(x []float64) bool {
	if floats.HasNaN(x) {
		return false
	}
	for _, v := range x {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
