package dto

import "github.com/Rengoky/Base-for-films/internal/httpapi/models"

// CreateCategoryDTO for POST /api/v1/categories
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

func (in CreateCategoryDTO) ToModel() models.Category {
	return models.Category{Name: in.Name, Slug: in.Slug}
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CategoryFromModel(c models.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}
