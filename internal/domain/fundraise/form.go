package fundraise

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ImageRef points at a picked image on the local staging area.
type ImageRef struct {
	URI string `json:"uri"`
}

// FormState holds the editable fields of one fundraising screen.
type FormState struct {
	Title           string    `json:"title"`
	AmountRequested string    `json:"amountRequested"`
	Description     string    `json:"description"`
	PickedImage     *ImageRef `json:"pickedImage"`
}

func (f *FormState) Reset() {
	*f = FormState{}
}

// Clone returns a copy that does not share the image reference.
func (f FormState) Clone() FormState {
	if f.PickedImage != nil {
		img := *f.PickedImage
		f.PickedImage = &img
	}
	return f
}

// Draft is a validated form ready to be submitted.
type Draft struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	ImageURI    string
}

// Validate checks title, amount, description and image in that order and
// stops at the first failure.
func (f FormState) Validate() (Draft, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return Draft{}, &ValidationError{Field: "title"}
	}

	amount, ok := ParseAmount(f.AmountRequested)
	if !ok {
		return Draft{}, &ValidationError{Field: "amountRequested"}
	}

	description := strings.TrimSpace(f.Description)
	if description == "" {
		return Draft{}, &ValidationError{Field: "description"}
	}

	if f.PickedImage == nil || f.PickedImage.URI == "" {
		return Draft{}, &ValidationError{Field: "pickedImage"}
	}

	return Draft{
		Title:       title,
		Description: description,
		Amount:      amount,
		ImageURI:    f.PickedImage.URI,
	}, nil
}

// AmountScale and MaxAmount match the numeric(18,2) amount columns.
const AmountScale = 2

var MaxAmount = decimal.New(1, 16).Sub(decimal.New(1, -AmountScale))

// ParseAmount accepts numeric text and reports whether it is strictly positive
// and storable without rounding.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	if !d.Equal(d.Round(AmountScale)) || d.GreaterThan(MaxAmount) {
		return decimal.Decimal{}, false
	}
	return d, true
}
