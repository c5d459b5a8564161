package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Describing %s (run %s)":              "%s を解析中 (実行 %s)",
		"Detected %s":                         "%s を検出しました",
		"Accepted %d captions from %d frames": "%d フレームから %d 件のキャプションを採用しました",
		"Run %s completed in %d ms":           "実行 %s が %d ms で完了しました",
		"Stage %s finished in %d ms":          "ステージ %s が %d ms で完了しました",
		"Interrupted, shutting down...":       "中断されました。シャットダウン中...",
		"Listening on %s":                     "%s で待ち受けています",

		// Decode (media component)
		"Detected format %s from %d prefix bytes":          "先頭 %[2]d バイトからフォーマット %[1]s を検出しました",
		"Opened %s stream":                                 "%s ストリームを開きました",
		"Decode finished after %d frames":                  "%d フレームでデコードが終了しました",
		"Decode stopped: %v":                               "デコードが停止しました: %v",
		"Receiver closed, stopping decode after %d frames": "受信側が閉じられたため %d フレームでデコードを停止します",

		// Caption stage
		"Frame %d skipped (score %.3f)":                                  "フレーム %d をスキップしました (スコア %.3f)",
		"Frame %d: %s":                                                   "フレーム %d: %s",
		"Frame %d caption rejected (confidence %.2f)":                    "フレーム %d のキャプションを却下しました (信頼度 %.2f)",
		"Caption limit of %d reached":                                    "キャプション上限 %d に達しました",
		"Captioned %d of %d frames (%d skipped, %d rejected, %d failed)": "%[2]d フレーム中 %[1]d フレームにキャプションを付けました (スキップ %[3]d, 却下 %[4]d, 失敗 %[5]d)",

		// Summarize stage
		"Summarizing %d captions": "%d 件のキャプションを要約中",

		// CLI
		"Inspecting MP4 track failed: %v": "MP4 トラックの解析に失敗しました: %v",

		// Describer and HTTP
		"Cache hit for %s":            "%s のキャッシュを使用します",
		"Joined in-flight run for %s": "%s の実行中の処理に合流しました",
		"%s %s -> %d in %d ms":        "%s %s -> %d (%d ms)",

		// Warnings
		"Decoding stopped early: %s":                   "デコードが途中で停止しました: %s",
		"Frame stream ended early after %d frames: %v": "フレームストリームが %d フレームで途中終了しました: %v",
		"Frame comparison failed, keeping frame: %v":   "フレーム比較に失敗したため、フレームを保持します: %v",
		"Captioning frame %d failed: %v":               "フレーム %d のキャプション生成に失敗しました: %v",
		"Failed to close frame source: %v":             "フレームソースのクローズに失敗しました: %v",
		"Failed to save frame %d: %v":                  "フレーム %d の保存に失敗しました: %v",
		"Failed to save captions: %v":                  "キャプションの保存に失敗しました: %v",
		"Failed to save summary: %v":                   "要約の保存に失敗しました: %v",
		"Failed to write report: %s":                   "レポートの書き込みに失敗しました: %s",

		// Errors
		"Run %s failed: %s":          "実行 %s が失敗しました: %s",
		"Decode worker panicked: %v": "デコードワーカーがパニックしました: %v",
	})
}
