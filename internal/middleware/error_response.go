package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/eduassist/internal/model"
)

// ErrorResponseBody は失敗時のJSONボディ。
// 成功レスポンスと同じくsuccessフィールドを持ち、クライアントはこれで分岐する。
type ErrorResponseBody struct {
	Success  bool   `json:"success"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// StatusCode はエラーコードに対応するHTTPステータスを返す。
// 上流サービスの失敗は呼び出し側の入力起因として400に寄せる。
func StatusCode(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodePremiumRequired:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidTopic, model.ErrCodeInvalidItemCount,
		model.ErrCodeInvalidPayment, model.ErrCodeSignUpFailed, model.ErrCodeSignOutFailed,
		model.ErrCodePaymentFailed, model.ErrCodePaymentStatus:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteAPIError はコードから決まるステータスでエラーを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, StatusCode(apiErr), apiErr)
}

// WriteErrorResponse はステータスを明示してエラーボディを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は詳細を伏せた500を書き込む。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError(""))
}
