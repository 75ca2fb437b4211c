package dto

import "github.com/Rengoky/Base-for-films/internal/httpapi/models"

// CreateGenreDTO for POST /api/v1/genres
type CreateGenreDTO struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

func (in CreateGenreDTO) ToModel() models.Genre {
	return models.Genre{Name: in.Name, Slug: in.Slug}
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func GenreFromModel(g models.Genre) GenreResponse {
	return GenreResponse{Name: g.Name, Slug: g.Slug}
}
