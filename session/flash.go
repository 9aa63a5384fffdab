package session

import (
	"encoding/json"

	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

const flashKey = "_flashes"

// Category của flash message, dùng làm class CSS trong template
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash là thông báo hiển thị một lần ở request kế tiếp
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Flash được lưu dạng JSON string để session encoder (gob) không cần đăng ký type
func loadFlashes(sess *fibersession.Session) []Flash {
	raw, ok := sess.Get(flashKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}

func storeFlashes(sess *fibersession.Session, flashes []Flash) {
	if len(flashes) == 0 {
		sess.Delete(flashKey)
		return
	}
	data, _ := json.Marshal(flashes)
	sess.Set(flashKey, string(data))
}
