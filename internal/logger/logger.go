// Package logger はJSON構造化ログ（log/slog）のセットアップを提供する。
// 認証系のログは生トークンやCookie値を含めない前提で、user_idや
// token_hashのような識別子のみを属性として出力する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup は指定writerへJSON出力するslog.Loggerを生成して返す。
// nilを渡した場合はos.Stdoutに出力する。
func Setup(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログをプロセス全体のデフォルトロガーとして設定する。
func SetupDefault(w io.Writer) {
	slog.SetDefault(Setup(w))
}
