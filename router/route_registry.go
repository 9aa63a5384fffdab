package router

import (
	"sort"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// Access quy định điều kiện truy cập của route
type Access string

const (
	// AccessPublic: ai cũng truy cập được
	AccessPublic Access = "public"
	// AccessLogin: cần đăng nhập, anonymous bị redirect về /login?next=...
	AccessLogin Access = "login"
)

// RouteMetadata lưu thông tin route được khai báo trong code
type RouteMetadata struct {
	Method      string
	Path        string // Relative path (để register vào router)
	FullPath    string // Full path pattern, tham số :id đổi thành *
	Handler     fiber.Handler
	Access      Access
	Description string
}

// RouteRegistry quản lý tất cả routes được đăng ký từ code
type RouteRegistry struct {
	routes []*RouteMetadata
	mutex  sync.RWMutex
}

// NewRouteRegistry tạo mới RouteRegistry
func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{
		routes: make([]*RouteMetadata, 0),
	}
}

// Register đăng ký một route vào registry
func (rr *RouteRegistry) Register(route *RouteMetadata) {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	rr.routes = append(rr.routes, route)
}

// GetAllRoutes trả về tất cả routes đã đăng ký, sắp xếp theo path rồi method
func (rr *RouteRegistry) GetAllRoutes() []*RouteMetadata {
	rr.mutex.RLock()
	defer rr.mutex.RUnlock()

	routes := make([]*RouteMetadata, len(rr.routes))
	copy(routes, rr.routes)
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].FullPath != routes[j].FullPath {
			return routes[i].FullPath < routes[j].FullPath
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}
