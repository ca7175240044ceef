package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"mercacomp/internal/errs"
)

var v = validator.New(validator.WithRequiredStructEnabled())

var fieldNames = map[string]string{
	"Street":       "Rua",
	"Number":       "Número",
	"Complement":   "Complemento",
	"Neighborhood": "Bairro",
	"City":         "Cidade",
	"State":        "Estado",
	"Zipcode":      "CEP",
	"Name":         "Nome",
	"CPF":          "CPF",
	"Phone":        "Telefone",
	"Email":        "E-mail",
	"Password":     "Senha",
	"Holder":       "Nome do titular",
}

// Struct runs the `validate` tags of s and reports the first failure as a
// validation error with a Portuguese message.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validate")
	}
	fe := verrs[0]
	name := fieldNames[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return errs.Validation(fmt.Sprintf("%s é obrigatório.", name))
	case "email":
		return errs.Validation("E-mail inválido.")
	case "len", "numeric", "alpha":
		return errs.Validation(fmt.Sprintf("%s inválido.", name))
	default:
		return errs.Validation(fmt.Sprintf("%s inválido (%s).", name, strings.TrimSpace(fe.Tag()+" "+fe.Param())))
	}
}
