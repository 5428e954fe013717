package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Pipeline lifecycle
		"Starting pipeline":                       "パイプラインを開始します",
		"Stop requested, draining pipeline":       "停止が要求されました。パイプラインを排出しています",
		"Pipeline completed: %d frames processed": "パイプラインが完了しました: %d フレームを処理",
		"Pipeline failed: %s":                     "パイプラインが失敗しました: %s",
		"Reading %s frames at %dx%d":              "%s フレームを %dx%d で読み込み中",

		// Stage failures
		"Failed to start frame source: %s":   "フレームソースの開始に失敗しました: %s",
		"Failed to initialise %s stage: %s":  "%s ステージの初期化に失敗しました: %s",
		"Failed to close %s stage: %s":       "%s ステージの終了に失敗しました: %s",
		"Stage %s failed on frame %d: %s":    "%s ステージがフレーム %d で失敗しました: %s",

		// Stop reasons
		"end of stream":  "ストリーム終了",
		"interrupted":    "中断",
		"source failure": "ソースの障害",
		"stage failure":  "ステージの障害",
		"start failure":  "開始の失敗",

		// Summary
		"Run Summary":             "実行サマリー",
		"Run":                     "実行",
		"Item":                    "項目",
		"Value":                   "値",
		"Started":                 "開始",
		"Finished":                "終了",
		"Duration":                "所要時間",
		"Stop Reason":             "停止理由",
		"Error":                   "エラー",
		"Frames":                  "フレーム",
		"Accepted":                "受理",
		"Processed":               "処理済み",
		"Dropped":                 "破棄",
		"Last Frame Number":       "最終フレーム番号",
		"Throughput":              "スループット",
		"Settings":                "設定",
		"Source":                  "ソース",
		"Input Size":              "入力サイズ",
		"Pose Model":              "姿勢モデル",
		"Net Resolution":          "ネットワーク解像度",
		"Output Resolution":       "出力解像度",
		"Multi-threading":         "マルチスレッド",
		"Queue Size":              "キューサイズ",
		"Enabled":                 "有効",
		"Disabled":                "無効",
		"Outputs":                 "出力",
		"Location":                "場所",
		"Keypoints":               "キーポイント",
		"Images":                  "画像",
		"Heatmaps":                "ヒートマップ",
		"Video":                   "動画",
		"No outputs were written.": "出力は書き込まれませんでした。",
		"Generated at":            "生成日時",
	})
}
