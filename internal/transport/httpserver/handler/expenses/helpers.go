package expenses

import (
	"net/http"
	"time"

	commonhandler "expense-tracker-go/internal/transport/httpserver/handler/common"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	commonhandler.WriteError(w, status, code, message)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	commonhandler.WriteJSON(w, status, payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return commonhandler.DecodeJSON(r, dst)
}

func parseTime(value string) (time.Time, error) {
	return commonhandler.ParseTime(value)
}

func parseRangeEnd(value string) (time.Time, error) {
	return commonhandler.ParseRangeEnd(value)
}
