package handler

import "net/http"

// Root は稼働確認用のメッセージを返す。
// GET /
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "EduAssist API is running"})
}

// Health はヘルスチェック応答を返す。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
