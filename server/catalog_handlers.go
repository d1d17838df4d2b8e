package server

import (
	"net/http"
	"strconv"

	"github.com/tangerineshop/shop-server/catalog"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) ListCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.catalog.ListCategories(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func (s *Server) ListCategoryItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, ok := pathID(r, "categoryID")
		if !ok {
			badRequest(w, "invalid category id")
			return
		}
		if _, err := s.catalog.GetCategory(r.Context(), categoryID); err != nil {
			writeError(w, err)
			return
		}

		items, err := s.catalog.ListItemsByCategory(r.Context(), categoryID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) ListNewItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.catalog.ListNewItems(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) GetItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := pathID(r, "itemID")
		if !ok {
			badRequest(w, "invalid item id")
			return
		}

		item, err := s.catalog.GetItem(r.Context(), itemID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) CreateCategoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var category catalog.Category
		if err := decodeBody(r, &category); err != nil {
			badRequest(w, "invalid request body")
			return
		}
		if category.Name == "" {
			badRequest(w, "name is required")
			return
		}

		if err := s.catalog.UpsertCategory(r.Context(), &category); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, category)
	}
}

type createItemRequest struct {
	Name        string  `json:"name"`
	Price       int     `json:"price"`
	Brand       string  `json:"brand"`
	ImagePath   string  `json:"imagePath"`
	IsNew       bool    `json:"isNew"`
	CategoryIDs []int64 `json:"categoryIds"`
}

func (s *Server) CreateItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
		if req.Name == "" || req.Price <= 0 {
			badRequest(w, "name and a positive price are required")
			return
		}
		for _, categoryID := range req.CategoryIDs {
			if _, err := s.catalog.GetCategory(r.Context(), categoryID); err != nil {
				writeError(w, err)
				return
			}
		}

		item := catalog.Item{
			Name:        req.Name,
			Price:       req.Price,
			Brand:       req.Brand,
			ImagePath:   req.ImagePath,
			IsNew:       req.IsNew,
			CategoryIDs: req.CategoryIDs,
		}
		if err := s.catalog.UpsertItem(r.Context(), &item); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}
