package handlers

import (
	"errors"
	"strings"

	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/feed"
)

type menuRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (r menuRequest) input() catalog.MenuInput {
	return catalog.MenuInput{ID: strings.TrimSpace(r.ID), Title: r.Title, Description: r.Description}
}

type submenuRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (r submenuRequest) input() catalog.SubmenuInput {
	return catalog.SubmenuInput{ID: strings.TrimSpace(r.ID), Title: r.Title, Description: r.Description}
}

type dishRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
}

var errInvalidPrice = errors.New("price must be a decimal number")

func (r dishRequest) input() (catalog.DishInput, error) {
	price := strings.TrimSpace(r.Price)
	if !feed.ValidPrice(price) {
		return catalog.DishInput{}, errInvalidPrice
	}
	return catalog.DishInput{ID: strings.TrimSpace(r.ID), Title: r.Title, Description: r.Description, Price: price}, nil
}
