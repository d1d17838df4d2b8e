package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tangerineshop/shop-server/token"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func doRequest(t *testing.T, s *Server, method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func generatePair(t *testing.T, s *Server, providerID string, authorities ...string) token.Pair {
	t.Helper()

	w, env := doRequest(t, s, http.MethodPost, RouteTokenGenerate, "", map[string]any{
		"providerId":  providerID,
		"nickname":    "tangerine",
		"authorities": authorities,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var pair token.Pair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestGenerateTokenHandler(t *testing.T) {
	s := newBareServer(t)

	t.Run("creates the user on first call", func(t *testing.T) {
		generatePair(t, s, "1000000001")

		exists, err := s.users.ExistsByProviderID(t.Context(), "1000000001")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("requires a provider id", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteTokenGenerate, "", map[string]any{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "BAD_REQUEST", env.Error.Code)
	})
}

func TestReissueAndLogoutFlow(t *testing.T) {
	s := newBareServer(t)
	pair := generatePair(t, s, "1000000002")

	t.Run("reissue rotates the pair", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteUsersReissue, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var renewed token.Pair
		require.NoError(t, json.Unmarshal(env.Data, &renewed))
		require.NotEqual(t, pair.RefreshToken, renewed.RefreshToken)
		pair = renewed
	})

	t.Run("reissue without a token", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteUsersReissue, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "TOKEN_INVALID", env.Error.Code)
	})

	t.Run("reissue with a tampered token", func(t *testing.T) {
		tampered := pair.AccessToken[:len(pair.AccessToken)-1] + "x"
		w, env := doRequest(t, s, http.MethodPost, RouteUsersReissue, tampered, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "TOKEN_INVALID", env.Error.Code)
	})

	t.Run("logout then reissue", func(t *testing.T) {
		w, _ := doRequest(t, s, http.MethodDelete, RouteUsersLogout, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, env := doRequest(t, s, http.MethodPost, RouteUsersReissue, pair.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "NO_ACTIVE_SESSION", env.Error.Code)
	})

	t.Run("logout with an expired token is rejected", func(t *testing.T) {
		fresh := generatePair(t, s, "1000000002")

		token.NowTimeFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
		t.Cleanup(func() { token.NowTimeFunc = time.Now })

		w, env := doRequest(t, s, http.MethodDelete, RouteUsersLogout, fresh.AccessToken, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "TOKEN_EXPIRED", env.Error.Code)
	})
}

func TestUserHandlers(t *testing.T) {
	s := newBareServer(t)
	pair := generatePair(t, s, "1000000003")

	t.Run("profile requires auth", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodGet, RouteUsersMe, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "TOKEN_INVALID", env.Error.Code)
	})

	t.Run("profile", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodGet, RouteUsersMe, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var profile struct {
			ProviderID string `json:"providerId"`
			Nickname   string `json:"nickname"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &profile))
		require.Equal(t, "1000000003", profile.ProviderID)
		require.Equal(t, "tangerine", profile.Nickname)
	})

	t.Run("update address", func(t *testing.T) {
		w, _ := doRequest(t, s, http.MethodPut, RouteUsersAddress, pair.AccessToken, map[string]string{
			"zipcode": "04524",
			"address": "서울특별시 중구 세종대로 110",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w, env := doRequest(t, s, http.MethodGet, RouteUsersMe, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var profile struct {
			Address struct {
				Zipcode string `json:"zipcode"`
			} `json:"address"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &profile))
		require.Equal(t, "04524", profile.Address.Zipcode)
	})

	t.Run("mileage", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodGet, RouteUsersMileage, pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var balance mileageResponse
		require.NoError(t, json.Unmarshal(env.Data, &balance))
		require.Equal(t, 0, balance.Mileage)
	})

	t.Run("delete account blocks a later reissue", func(t *testing.T) {
		w, _ := doRequest(t, s, http.MethodDelete, "/users", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// The identity is gone, so the reissue fails the user check.
		w, env := doRequest(t, s, http.MethodPost, RouteUsersReissue, pair.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "USER_NOT_FOUND", env.Error.Code)
	})
}

func TestCatalogHandlers(t *testing.T) {
	s := newBareServer(t)
	admin := generatePair(t, s, "9000000001", AdminAuthority)
	user := generatePair(t, s, "1000000004")

	t.Run("catalog writes need the admin role", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteCategories, user.AccessToken, map[string]string{"name": "outer"})
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	var categoryID int64
	t.Run("create category and item", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteCategories, admin.AccessToken, map[string]string{"name": "outer"})
		require.Equal(t, http.StatusCreated, w.Code)
		var category struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &category))
		require.NotZero(t, category.ID)
		categoryID = category.ID

		w, _ = doRequest(t, s, http.MethodPost, RouteItems, admin.AccessToken, map[string]any{
			"name":        "hoodie",
			"price":       30000,
			"isNew":       true,
			"categoryIds": []int64{categoryID},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("public reads", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodGet, RouteCategories, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var categories []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &categories))
		require.Len(t, categories, 1)

		w, env = doRequest(t, s, http.MethodGet, RouteItemsNew, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var items []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		require.Equal(t, "hoodie", items[0].Name)
	})

	t.Run("unknown item", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodGet, "/items/42", "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "ITEM_NOT_FOUND", env.Error.Code)
	})

	t.Run("item with unknown category is rejected", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteItems, admin.AccessToken, map[string]any{
			"name":        "socks",
			"price":       5000,
			"categoryIds": []int64{42},
		})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "CATEGORY_NOT_FOUND", env.Error.Code)
	})
}

func TestOrderHandlers(t *testing.T) {
	s := newBareServer(t)
	admin := generatePair(t, s, "9000000002", AdminAuthority)
	buyer := generatePair(t, s, "1000000005")
	other := generatePair(t, s, "1000000006")

	w, env := doRequest(t, s, http.MethodPost, RouteItems, admin.AccessToken, map[string]any{
		"name":  "hoodie",
		"price": 30000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var item struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))

	t.Run("create order", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteOrders, buyer.AccessToken, map[string]any{
			"itemId":   item.ID,
			"quantity": 2,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var order struct {
			OrderID    int64  `json:"orderId"`
			TotalPrice int    `json:"totalPrice"`
			Status     string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &order))
		require.Equal(t, int64(1), order.OrderID)
		require.Equal(t, 60000, order.TotalPrice)
		require.Equal(t, "PROCESSING", order.Status)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodPost, RouteOrders, buyer.AccessToken, map[string]any{
			"itemId":   item.ID,
			"quantity": 0,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "INVALID_QUANTITY", env.Error.Code)
	})

	t.Run("orders are private to their owner", func(t *testing.T) {
		w, env := doRequest(t, s, http.MethodGet, "/orders/1", other.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "ORDER_NOT_FOUND", env.Error.Code)

		w, env = doRequest(t, s, http.MethodGet, RouteOrders, other.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var listed []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &listed))
		require.Empty(t, listed)
	})

	t.Run("cancel", func(t *testing.T) {
		w, _ := doRequest(t, s, http.MethodPut, "/orders/1/cancel", buyer.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, env := doRequest(t, s, http.MethodGet, "/orders/1", buyer.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var order struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &order))
		require.Equal(t, "CANCEL", order.Status)

		w, env = doRequest(t, s, http.MethodPut, "/orders/1/cancel", buyer.AccessToken, nil)
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, "ORDER_CANCEL_FAILED", env.Error.Code)
	})
}
