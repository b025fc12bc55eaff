package domain

import (
	"time"

	"github.com/google/uuid"
)

type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// ParseChoice accepts exactly "yes" or "no". Matching is case-sensitive.
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case ChoiceYes, ChoiceNo:
		return c, nil
	}
	return "", &ValidationError{Field: "choice", Err: ErrInvalidChoice}
}

func (c Choice) String() string {
	return string(c)
}

type Vote struct {
	ID        uuid.UUID `json:"id"`
	Choice    Choice    `json:"choice"`
	CreatedAt time.Time `json:"created_at"`
}
