package account

import (
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// 各フィールドの長さ制約
const (
	handleMinLen      = 3
	handleMaxLen      = 50
	displayNameMinLen = 1
	displayNameMaxLen = 100
	passwordMinLen    = 8
	passwordMaxLen    = 128
)

// strictPolicy はdisplay_nameからマークアップを除去するポリシー。
// bluemondayのPolicyは構築後イミュータブルで、複数ゴルーチンから
// 同時に利用できる。
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeDisplayName はdisplay_nameからHTMLマークアップを除去する。
// StrictPolicyはエンティティ参照にエスケープして返すため、
// 平文として保存できるよう逆変換してから返す。
func SanitizeDisplayName(displayName string) string {
	return html.UnescapeString(strictPolicy.Sanitize(displayName))
}

// Validate は登録リクエストの構造的制約を検査する純粋関数。
// 3つの検査は短絡せずすべて実行し、違反を独立に蓄積する
// （3フィールドすべてが不正なら違反はちょうど3件になる）。
// 違反がなければ空スライスを返す。副作用・I/Oなし。
func Validate(handle, displayName, password string) []string {
	var violations []string

	if len(handle) < handleMinLen || len(handle) > handleMaxLen {
		violations = append(violations,
			fmt.Sprintf("username must be between %d and %d characters", handleMinLen, handleMaxLen))
	}

	if len(displayName) < displayNameMinLen || len(displayName) > displayNameMaxLen {
		violations = append(violations,
			fmt.Sprintf("display_name must be between %d and %d characters", displayNameMinLen, displayNameMaxLen))
	}

	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		violations = append(violations,
			fmt.Sprintf("password must be between %d and %d characters", passwordMinLen, passwordMaxLen))
	}

	return violations
}
