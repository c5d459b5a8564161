// Package main provides localization for the framescribe CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Describe the content of online videos with captioning models": "キャプションモデルでオンライン動画の内容を説明します",

		// Describe command
		"Report saved to %s": "レポートを %s に保存しました",

		// Version command
		"framescribe version %s": "framescribe バージョン %s",
	})
}
