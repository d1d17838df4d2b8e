package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Token lifecycle
	RouteTokenGenerate = "/token/generate"
	RouteUsersReissue  = "/users/reissue"
	RouteUsersLogout   = "/users/logout"

	// Social login
	RouteKakaoLogin    = "/auth/kakao/login"
	RouteKakaoCallback = "/auth/kakao/callback"

	// User profile
	RouteUsersMe      = "/users/me"
	RouteUsersAddress = "/users/address"
	RouteUsersMileage = "/users/mileage"

	// Catalog
	RouteCategories    = "/categories"
	RouteCategoryItems = "/categories/{categoryID}/items"
	RouteItems         = "/items"
	RouteItemsNew      = "/items/new"
	RouteItemByID      = "/items/{itemID}"

	// Orders
	RouteOrders      = "/orders"
	RouteOrderByID   = "/orders/{orderID}"
	RouteOrderCancel = "/orders/{orderID}/cancel"
)
