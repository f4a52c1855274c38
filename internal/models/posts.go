package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/vaughan-dsouza/thepath/internal/validation"
)

// Post is a row of the posts table.
type Post struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Published bool      `db:"published"`
	CreatedAt time.Time `db:"created_at"`
}

// PostCreate is the body accepted by create and update. Pointers let the
// validator tell a missing key from an empty value.
type PostCreate struct {
	Title     *string      `json:"title" validate:"required"`
	Content   *string      `json:"content" validate:"required"`
	Published OptionalBool `json:"published"`
}

func (p *PostCreate) Validate() error {
	var errs []error
	if err := validation.Struct(p); err != nil {
		errs = append(errs, err)
	}
	if custom := p.Published.check("published"); len(custom) > 0 {
		errs = append(errs, custom)
	}
	return errors.Join(errs...)
}

// IsPublished applies the default of true when published was omitted.
func (p PostCreate) IsPublished() bool {
	if !p.Published.Set {
		return true
	}
	return p.Published.Value
}

// OptionalBool is a boolean that may be left out of a body but, when given,
// must be true or false. Null and other JSON types are recorded for Validate
// instead of failing the whole decode.
type OptionalBool struct {
	Value   bool
	Set     bool
	null    bool
	invalid bool
}

// Bool returns a present OptionalBool holding v.
func Bool(v bool) OptionalBool {
	return OptionalBool{Value: v, Set: true}
}

func (b *OptionalBool) UnmarshalJSON(data []byte) error {
	*b = OptionalBool{}
	if string(data) == "null" {
		b.null = true
		return nil
	}
	if err := json.Unmarshal(data, &b.Value); err != nil {
		b.invalid = true
		return nil
	}
	b.Set = true
	return nil
}

func (b OptionalBool) check(field string) validation.CustomValidationErrors {
	switch {
	case b.null:
		return validation.CustomValidationErrors{{
			Field:   field,
			Message: "none is not an allowed value",
			Type:    "type_error.none.not_allowed",
		}}
	case b.invalid:
		return validation.CustomValidationErrors{{
			Field:   field,
			Message: "value is not a valid bool",
			Type:    "type_error.bool",
		}}
	}
	return nil
}

// PostOut is what the API returns for a post. Its fields are those of
// PostCreate plus ID and CreatedAt, all always populated.
type PostOut struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPostOut(p Post) PostOut {
	return PostOut{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		CreatedAt: p.CreatedAt.UTC(),
	}
}

func NewPostOuts(posts []Post) []PostOut {
	out := make([]PostOut, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostOut(p))
	}
	return out
}
