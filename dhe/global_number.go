package dhe

// g関数の漸近式の定数項（外側境界条件）
func get_go_const() float64 {
	return 6.84
}

// g関数の漸近式の定数項（初期地中温度）, ln(0.5/0.0005)
func get_go_const_t_soil_0() float64 {
	return 6.907755
}

// g関数の基準プローブ間隔, m
func get_d_dhe_ref() float64 {
	return 10.0
}

// 基準プローブ間隔とみなす許容差, m
func get_d_dhe_delta() float64 {
	return 0.05
}

// オイラー定数（Werner の漏斗式で用いる近似値）
func get_euler_gamma() float64 {
	return 0.5772
}

// 収束判定値の既定値, K
func get_default_precision() float64 {
	return 0.05
}

// 不動点反復の上限回数の既定値
func get_default_max_iterations() int {
	return 500
}

// 反復回数をログに出す閾値
func get_iteration_log_threshold() int {
	return 20
}
