package handler

import (
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/security"
)

// generateValidator は生成リクエストのトピックと件数を検証する。
// 件数の上限はプレミアム判定の後にサービス層で検証する。
type generateValidator struct {
	sanitizer security.TopicSanitizer
}

func newGenerateValidator(sanitizer security.TopicSanitizer) generateValidator {
	if sanitizer == nil {
		sanitizer = security.NewTopicSanitizer()
	}
	return generateValidator{sanitizer: sanitizer}
}

// topic はマークアップを除去したトピックを返す。空になった場合はエラー。
func (v generateValidator) topic(raw string) (string, error) {
	topic := v.sanitizer.Sanitize(raw)
	if topic == "" {
		return "", model.NewInvalidTopicError()
	}
	return topic, nil
}

// count は件数の下限を検証する。未指定の場合はdefaultCountを使う。
func (v generateValidator) count(n *int, defaultCount int) (int, error) {
	if n == nil {
		return defaultCount, nil
	}
	if *n < 1 {
		return 0, model.NewInvalidItemCountError(*n, 0)
	}
	return *n, nil
}
