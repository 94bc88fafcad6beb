// Package authman はCookieベースのセッション認証サービス。
//
// Google OAuthでログインしたユーザーに不透明なセッショントークンを発行し、
// SHA-256ハッシュのみをPostgreSQLに保存する。サーバーの起動は
// cmd/authman を参照。
package authman
