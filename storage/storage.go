package storage

import (
	"path/filepath"
	"strings"

	"github.com/techmaster-vietnam/blogkit/utils"
)

// pictureName tạo tên file ngẫu nhiên (16 ký tự hex) giữ nguyên phần mở rộng của file upload
func pictureName(original string) (string, error) {
	random, err := utils.RandomHex(8)
	if err != nil {
		return "", err
	}
	return random + strings.ToLower(filepath.Ext(original)), nil
}

// joinURL nối prefix và ref bằng đúng một dấu "/"
func joinURL(prefix, ref string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(ref, "/")
}
