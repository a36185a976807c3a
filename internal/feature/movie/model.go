package movie

import "time"

type Type string

const (
	TypeAction      Type = "ACTION"
	TypeSport       Type = "SPORT"
	TypeAdventure   Type = "ADVENTURE"
	TypeRomantic    Type = "ROMANTIC"
	TypeComedy      Type = "COMEDY"
	TypeDocumentary Type = "DOCUMENTARY"
	TypeHistoric    Type = "HISTORIC"
	TypeCartoon     Type = "CARTOON"
	TypeThriller    Type = "THRILLER"
)

var Types = []Type{
	TypeAction, TypeSport, TypeAdventure, TypeRomantic, TypeComedy,
	TypeDocumentary, TypeHistoric, TypeCartoon, TypeThriller,
}

func IsValidType(s string) bool {
	for _, t := range Types {
		if string(t) == s {
			return true
		}
	}
	return false
}

// MovieModel 同时作为 CRUD 的入参/出参
type MovieModel struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	Title       string    `json:"title" gorm:"size:255;not null" binding:"required,max=255"`
	Description string    `json:"description" gorm:"type:text" binding:"omitempty,max=4000"`
	Type        string    `json:"type" gorm:"size:16;not null;index" binding:"required,movietype"`
	TrailerLink string    `json:"trailerLink" gorm:"size:512" binding:"omitempty,url,max=512"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (MovieModel) TableName() string { return "movies" }
