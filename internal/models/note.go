package models

import "time"

// Note конспект, сгенерированный по тексту или PDF. После создания не меняется.
type Note struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	OriginalText string    `json:"originalText"`
	AIOutput     string    `json:"aiOutput"`
	CreatedAt    time.Time `json:"createdAt"`
}
