// Package main provides localization for the posestream CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Flag groups
		"Logging":   "ログ",
		"Producer":  "入力",
		"Pose":      "姿勢推定",
		"Face":      "顔",
		"Hand":      "手",
		"Extra":     "拡張",
		"Output":    "出力",
		"Display":   "表示",
		"Execution": "実行",

		// Commands
		"Stream frames through a staged keypoint estimation pipeline": "フレームを段階的なキーポイント推定パイプラインに流します",
		"Run the keypoint pipeline":                                   "キーポイントパイプラインを実行",
		"Show version information":                                    "バージョン情報を表示",
		"posestream version %s":                                       "posestream バージョン %s",
		"YAML file with option values":                                "オプション値を記述したYAMLファイル",

		// Logging
		"Log priority threshold (0-255, 1 shows everything, 255 nothing)": "ログ優先度のしきい値（0-255、1ですべて表示、255で非表示）",
		"Log stage timings every N frames":                                "Nフレームごとにステージの所要時間を記録",

		// Producer
		"Frame source (pattern, dir)":                                "フレームソース（pattern, dir）",
		"Input frame width":                                          "入力フレームの幅",
		"Input frame height":                                         "入力フレームの高さ",
		"Input frame rate":                                           "入力フレームレート",
		"Maximum wait for one frame":                                 "1フレームの最大待ち時間",
		"Directory of images for the dir source":                     "dirソースの画像ディレクトリ",
		"Number of frames the pattern source delivers (0 = unlimited)": "patternソースが出力するフレーム数（0 = 無制限）",

		// Pose
		"Body keypoint estimation (0 off, 1 on)":                                 "体のキーポイント推定（0 無効、1 有効）",
		"Network input resolution, multiples of 16 (-1 keeps aspect ratio)":      "ネットワーク入力解像度、16の倍数（-1 でアスペクト比を維持）",
		"Rendered output resolution (-1x-1 keeps input size)":                    "描画出力の解像度（-1x-1 で入力サイズ）",
		"Pose model (BODY_25, COCO, MPI, MPI_4_layers)":                          "姿勢モデル（BODY_25, COCO, MPI, MPI_4_layers）",
		"Keypoint coordinate scale of written files (0-4)":                       "出力ファイルのキーポイント座標スケール（0-4）",
		"Number of GPUs (-1 all available)":                                      "GPU数（-1 ですべて）",
		"First GPU index":                                                        "最初のGPU番号",
		"Number of scales to average":                                            "平均するスケール数",
		"Scale gap between scales":                                               "スケール間の差",
		"Pose rendering (-1 auto, 0 none, 1 CPU, 2 GPU)":                         "姿勢の描画（-1 自動、0 なし、1 CPU、2 GPU）",
		"Draw keypoints on a black background":                                   "黒背景にキーポイントを描画",
		"Skeleton opacity (0-1)":                                                 "骨格の不透明度（0-1）",
		"Heatmap opacity (0-1)":                                                  "ヒートマップの不透明度（0-1）",
		"Heatmap channel to overlay (0 none)":                                    "重ねるヒートマップのチャンネル（0 なし）",
		"Folder holding the models":                                              "モデルのフォルダ",
		"Output body part heatmaps":                                              "部位ヒートマップを出力",
		"Output the background heatmap":                                          "背景ヒートマップを出力",
		"Output part affinity fields":                                            "PAFを出力",
		"Heatmap value range (0 [-1,1], 1 [0,1], 2 [0,255], 3 raw)":              "ヒートマップの値域（0 [-1,1]、1 [0,1]、2 [0,255]、3 そのまま）",
		"Minimum keypoint score to render":                                       "描画するキーポイントの最小スコア",
		"Keep at most N people (-1 all)":                                         "最大N人を保持（-1 ですべて）",
		"Lower the detection threshold":                                          "検出しきい値を下げる",
		"Maximum processing frame rate (-1 unlimited)":                           "最大処理フレームレート（-1 無制限）",
		"Heatmap upsampling ratio (0 default)":                                   "ヒートマップのアップサンプリング比（0 既定値）",

		// Face and hand
		"Enable face keypoint estimation":                          "顔のキーポイント推定を有効化",
		"Face detector (0 body, 1 OpenCV, 2 provided)":             "顔検出器（0 体、1 OpenCV、2 指定）",
		"Face network resolution":                                  "顔ネットワークの解像度",
		"Face rendering (-1 follow pose, 0 none, 1 CPU, 2 GPU)":    "顔の描画（-1 姿勢に従う、0 なし、1 CPU、2 GPU）",
		"Face keypoint opacity (0-1)":                              "顔キーポイントの不透明度（0-1）",
		"Face heatmap opacity (0-1)":                               "顔ヒートマップの不透明度（0-1）",
		"Minimum face keypoint score to render":                    "描画する顔キーポイントの最小スコア",
		"Enable hand keypoint estimation":                          "手のキーポイント推定を有効化",
		"Hand detector (0 body, 2 provided, 3 body with tracking)": "手検出器（0 体、2 指定、3 体と追跡）",
		"Hand network resolution":                                  "手ネットワークの解像度",
		"Number of hand scales":                                    "手のスケール数",
		"Range between the smallest and largest hand scale":        "手の最小と最大スケールの幅",
		"Hand rendering (-1 follow pose, 0 none, 1 CPU, 2 GPU)":    "手の描画（-1 姿勢に従う、0 なし、1 CPU、2 GPU）",
		"Hand keypoint opacity (0-1)":                              "手キーポイントの不透明度（0-1）",
		"Hand heatmap opacity (0-1)":                               "手ヒートマップの不透明度（0-1）",
		"Minimum hand keypoint score to render":                    "描画する手キーポイントの最小スコア",

		// Extra
		"Enable 3D reconstruction":                          "3D再構成を有効化",
		"Minimum views for 3D reconstruction (-1 all)":      "3D再構成の最小ビュー数（-1 すべて）",
		"Assign identities to people":                       "人物にIDを割り当てる",
		"Track people, estimating every N frames (-1 off)": "人物を追跡し、Nフレームごとに推定（-1 無効）",
		"Inverse kinematics threads":                        "逆運動学のスレッド数",

		// Output
		"Print progress every N frames (-1 off)":             "Nフレームごとに進捗を表示（-1 無効）",
		"Directory for legacy keypoint files (deprecated)":   "旧形式キーポイントファイルのディレクトリ（非推奨）",
		"Legacy keypoint format (json, yml, yaml)":           "旧形式キーポイントの形式（json, yml, yaml）",
		"Directory for per-frame JSON keypoints":             "フレームごとのJSONキーポイントのディレクトリ",
		"Directory for rendered images":                      "描画画像のディレクトリ",
		"Rendered image format (png, jpg)":                   "描画画像の形式（png, jpg）",
		"Path of the rendered MP4 video":                     "描画MP4動画のパス",
		"Video frame rate (-1 input rate)":                   "動画のフレームレート（-1 入力に合わせる）",
		"Directory for heatmaps":                             "ヒートマップのディレクトリ",
		"Heatmap image format (png, jpg)":                    "ヒートマップ画像の形式（png, jpg）",
		"Send keypoints to this UDP host":                    "キーポイントを送信するUDPホスト",
		"UDP port":                                           "UDPポート",
		"Path of the Markdown run summary":                   "Markdown実行サマリーのパス",

		// Display
		"Display mode (-1 auto, 0 none, 1 all, 2 2D, 3 3D)":              "表示モード（-1 自動、0 なし、1 すべて、2 2D、3 3D）",
		"Hide the frame caption":                                          "フレームのキャプションを隠す",
		"Show frames full screen":                                         "フレームを全画面で表示",
		"Listen address of the browser viewer (empty disables it)":        "ブラウザビューアの待ち受けアドレス（空で無効）",

		// Execution
		"Run every stage on one goroutine":  "すべてのステージを1つのgoroutineで実行",
		"Capacity of each stage queue":      "各ステージキューの容量",
		"Read frames on a dedicated goroutine": "専用goroutineでフレームを読み込む",

		// Run messages
		"Failed to load config file: %s":  "設定ファイルの読み込みに失敗しました: %s",
		"Invalid option: %s":              "不正なオプション: %s",
		"Invalid configuration: %s":       "不正な設定: %s",
		"Interrupted, draining pipeline...": "中断されました。パイプラインを排出しています...",
		"Failed to write summary: %s":     "サマリーの書き込みに失敗しました: %s",
		"Summary saved to %s":             "サマリーを保存しました: %s",
		"Run failed: %s":                  "実行に失敗しました: %s",
		"Processed %d frames (%s)":        "%dフレームを処理しました（%s）",
	})
}
