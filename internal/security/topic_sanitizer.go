// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TopicSanitizer はユーザーが入力した学習トピックを無害化する。
// トピックはAIへのプロンプトと保存データの両方に埋め込まれる。
type TopicSanitizer interface {
	// Sanitize はマークアップを除去し、前後の空白を取り除いたプレーンテキストを返す。
	Sanitize(raw string) string
}

// 文字実体で二重三重に符号化された入力も、この回数までは復号して再度無害化する。
const maxSanitizePasses = 4

var angleBrackets = strings.NewReplacer("<", "", ">", "")

type topicSanitizer struct {
	policy *bluemonday.Policy
}

// NewTopicSanitizer はbluemondayのStrictPolicyでTopicSanitizerを生成する。
// StrictPolicyは全てのタグを除去し、script/styleは中身ごと削除する。
func NewTopicSanitizer() TopicSanitizer {
	return &topicSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はマークアップを除去したトピックを返す。
// 文字実体は復号してから無害化し、結果が変わらなくなるまで繰り返す。
// 最後に残った山括弧は捨てるため、戻り値がタグとして解釈されることはない。
func (s *topicSanitizer) Sanitize(raw string) string {
	text := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(html.UnescapeString(text)))
		if next == text {
			break
		}
		text = next
	}
	return strings.Join(strings.Fields(angleBrackets.Replace(text)), " ")
}
