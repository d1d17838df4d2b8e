package server

import "github.com/tangerineshop/shop-server/token"

func (s *Server) initRoutes() {
	// Token lifecycle. The reissue route is the only one that accepts an
	// expired access token, through its dedicated identity filter.
	s.RegisterRouteFunc("POST "+RouteTokenGenerate, ChainMiddleware(s.GenerateTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteUsersReissue, ChainMiddleware(s.ReissueHandler(), s.APIMiddleware(s.ReissueIdentityFilter())...))
	s.RegisterRouteFunc("DELETE "+RouteUsersLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Social login
	if s.kakao != nil {
		s.RegisterRouteFunc("GET "+RouteKakaoLogin, ChainMiddleware(s.KakaoLoginHandler(), s.APIMiddleware()...))
		s.RegisterRouteFunc("GET "+RouteKakaoCallback, ChainMiddleware(s.KakaoCallbackHandler(), s.APIMiddleware()...))
	}

	// User profile
	s.RegisterRouteFunc("GET "+RouteUsersMe, ChainMiddleware(s.UserProfileHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("PUT "+RouteUsersAddress, ChainMiddleware(s.UpdateAddressHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteUsersMileage, ChainMiddleware(s.UserMileageHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("DELETE /users", ChainMiddleware(s.DeleteAccountHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Catalog reads are public; catalog writes need the admin role.
	s.RegisterRouteFunc("GET "+RouteCategories, ChainMiddleware(s.ListCategoriesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCategoryItems, ChainMiddleware(s.ListCategoryItemsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteItemsNew, ChainMiddleware(s.ListNewItemsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteItemByID, ChainMiddleware(s.GetItemHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCategories, ChainMiddleware(s.CreateCategoryHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAuthority(AdminAuthority))...))
	s.RegisterRouteFunc("POST "+RouteItems, ChainMiddleware(s.CreateItemHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAuthority(AdminAuthority))...))

	// Orders
	s.RegisterRouteFunc("POST "+RouteOrders, ChainMiddleware(s.CreateOrderHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAuthority(token.DefaultAuthority))...))
	s.RegisterRouteFunc("GET "+RouteOrders, ChainMiddleware(s.ListOrdersHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteOrderByID, ChainMiddleware(s.GetOrderHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("PUT "+RouteOrderCancel, ChainMiddleware(s.CancelOrderHandler(), s.APIMiddleware(s.RequireAuth())...))
}

// AdminAuthority marks catalog administrators.
const AdminAuthority = "ROLE_ADMIN"
