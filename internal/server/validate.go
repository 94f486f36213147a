package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

// productRequest is the JSON body of product writes.
type productRequest struct {
	ID             catalog.ID    `json:"id" validate:"required,productid"`
	Nome           string        `json:"nome" validate:"max=200"`
	Descricao      string        `json:"descricao" validate:"max=2000"`
	Especificacoes catalog.Specs `json:"especificacoes" validate:"max=50"`
}

func (r productRequest) product() catalog.Product {
	return catalog.Product{
		ID:             r.ID,
		Nome:           r.Nome,
		Descricao:      r.Descricao,
		Especificacoes: r.Especificacoes,
	}
}

// productValidator wraps go-playground/validator with the product rules.
type productValidator struct {
	v *validator.Validate
}

func newProductValidator() *productValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// IDs name image files, so they must be usable as a basename.
	_ = v.RegisterValidation("productid", func(fl validator.FieldLevel) bool {
		return catalog.ValidateID(catalog.ID(fl.Field().String())) == nil
	})
	return &productValidator{v: v}
}

// Struct validates req and returns a readable message on failure.
func (pv *productValidator) Struct(req productRequest) error {
	err := pv.v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: obrigatório", field)
	case "max":
		return fmt.Sprintf("%s: máximo %s", field, fe.Param())
	case "productid":
		return fmt.Sprintf("%s: não pode conter separadores de caminho", field)
	default:
		return fmt.Sprintf("%s: inválido (%s)", field, fe.Tag())
	}
}
