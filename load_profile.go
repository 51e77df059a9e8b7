package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// 熱負荷CSVファイルの行
type LoadProfileRow struct {
	T float64 `csv:"t"` // 時刻, s
	P float64 `csv:"P"` // 熱負荷（正で採熱）, W
}

/*
熱負荷CSVファイルの読み込み

	Args:
		file_path: 熱負荷CSVファイルのパス

	Returns:
		時刻, s
		熱負荷, W
*/
func read_load_profile(file_path string) ([]float64, []float64, error) {
	// file is exist
	if _, err := os.Stat(file_path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("file %s does not exist", file_path)
	}

	file, err := os.Open(file_path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var rows []*LoadProfileRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file_path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: no rows", file_path)
	}

	t := make([]float64, len(rows))
	p := make([]float64, len(rows))
	for i, row := range rows {
		if i > 0 && !(row.T > t[i-1]) {
			return nil, nil, fmt.Errorf("%s: t must be strictly increasing (row %d)", file_path, i+1)
		}
		t[i] = row.T
		p[i] = row.P
	}
	return t, p, nil
}
