package dto

import (
	"time"

	"github.com/Rengoky/Base-for-films/internal/httpapi/models"
)

// CreateCommentDTO for POST of a comment under a review.
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentDTO for PATCH/PUT of a comment.
type UpdateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Author   string    `json:"author"`
	ReviewID int64     `json:"review_id"`
	PubDate  time.Time `json:"pub_date"`
}

func CommentFromModel(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:       c.ID,
		Text:     c.Text,
		Author:   c.Author.Username,
		ReviewID: c.ReviewID,
		PubDate:  c.PubDate,
	}
}
