package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dhe_calc/dhe"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// 計算条件JSONファイル
type Case struct {
	Env dhe.GlobalParameters `json:"env"`
	DHE []dhe.DHE            `json:"dhe"`
}

/*
計算条件JSONファイルの読み込み

	Args:
		case_path: ファイルパスまたはURL
*/
func read_case(case_path string) (*Case, error) {
	var body []byte
	if strings.HasPrefix(case_path, "http") {
		resp, err := http.Get(case_path)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err = ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
	} else {
		file, err := os.Open(case_path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		body, err = ioutil.ReadAll(file)
		if err != nil {
			return nil, err
		}
	}

	var c Case
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", case_path, err)
	}
	return &c, nil
}

/*
地中熱交換器の計算の実行

	Args:
		logger
		case_path: 計算条件JSONファイルへのパス
		load_path: 熱負荷CSVファイルへのパス
		output_data_dir: 出力フォルダへのパス
		opt: 計算の設定
		is_soil_saved: 地中温度を出力するか否か
*/
func run(
	logger *log.Entry,
	case_path string,
	load_path string,
	output_data_dir string,
	opt dhe.CalcOptions,
	is_soil_saved bool,
) error {
	// ---- 事前準備 ----

	// 出力ディレクトリの作成
	if err := os.MkdirAll(output_data_dir, 0755); err != nil {
		return err
	}

	logger.Info("計算条件JSONファイルの読み込み開始")
	c, err := read_case(case_path)
	if err != nil {
		return err
	}

	logger.Info("熱負荷CSVファイルの読み込み開始")
	t_raw, p_raw, err := read_load_profile(load_path)
	if err != nil {
		return err
	}
	t, p, err := dhe.ResampleLoad(t_raw, p_raw, c.Env.Dt)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"n_rows": len(t_raw),
		"dim_t":  len(t),
		"dt":     c.Env.Dt,
	}).Info("熱負荷の補間")

	// ---- 計算 ----

	probe_path := filepath.Join(output_data_dir, "result_probe.csv")
	probe_file, err := os.Create(probe_path)
	if err != nil {
		return err
	}
	defer probe_file.Close()

	rec := NewRecorder(t, p, c.DHE, c.Env.DimAx, c.Env.DimRad, probe_file)

	if is_soil_saved {
		soil_path := filepath.Join(output_data_dir, "result_soil.csv")
		soil_file, err := os.Create(soil_path)
		if err != nil {
			return err
		}
		defer soil_file.Close()
		rec.SaveSoil(soil_file)
		logger.Infof("Save soil temperature to `%s`", soil_path)
	}

	logger.WithFields(log.Fields{
		"n_DHE":          len(c.DHE),
		"T_brine_method": c.Env.TBrineMethod,
		"g_method":       c.Env.GMethod.Kind,
	}).Info("計算開始")
	if err := dhe.CalcPWithRecorder(t, p, c.DHE, &c.Env, opt, rec); err != nil {
		return err
	}
	logger.Infof("Save calculation results to `%s`", probe_path)

	return nil
}

func main() {
	var case_data string
	flag.StringVar(&case_data, "input", "", "計算を実行するJSONファイル")

	var load_data string
	flag.StringVar(&load_data, "load", "", "熱負荷のCSVファイル (列: t, P)")

	var output_data_dir string
	flag.StringVar(&output_data_dir, "o", ".", "出力フォルダ")

	var precision float64
	flag.Float64Var(&precision, "precision", 0.05, "入口温度の収束判定値を指定します。")

	var max_iter int
	flag.IntVar(&max_iter, "max_iter", 500, "入口温度の反復計算の上限回数を指定します。")

	var parallel bool
	flag.BoolVar(&parallel, "parallel", false, "プローブごとの計算を並列に行うか否かを指定します。")

	var soil_saved bool
	flag.BoolVar(&soil_saved, "soil_saved", false, "地中温度を出力するか否かを指定します。")

	var logLevel string
	flag.StringVar(&logLevel, "log", "ERROR", "ログレベルを指定します。 (Default=ERROR)")

	// 引数を受け取る
	flag.Parse()

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)
	logger := log.WithField("run_id", uuid.New().String())

	// Print flag values
	fmt.Printf("case_data: %s\n", case_data)
	fmt.Printf("load_data: %s\n", load_data)
	fmt.Printf("output_data_dir: %s\n", output_data_dir)
	fmt.Printf("precision: %g\n", precision)
	fmt.Printf("max_iter: %d\n", max_iter)
	fmt.Printf("parallel: %t\n", parallel)
	fmt.Printf("soil_saved: %t\n", soil_saved)

	start := time.Now()

	opt := dhe.CalcOptions{
		Precision:     precision,
		MaxIterations: max_iter,
		Parallel:      parallel,
	}
	if err := run(logger, case_data, load_data, output_data_dir, opt, soil_saved); err != nil {
		logger.Fatal(err)
	}

	elapsedTime := time.Since(start)
	logger.Printf("elapsed_time: %v [sec]", elapsedTime)
}
