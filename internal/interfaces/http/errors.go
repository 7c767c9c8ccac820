package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var validate = newValidator()

// newValidator usa los nombres de los tags json/query en los mensajes.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validateStruct valida los tags `validate` y devuelve ErrInvalidInput con el detalle.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Namespace()+": "+validationMessage(e))
	}
	return domain.Invalid("%s", strings.Join(msgs, "; "))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "requerido"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "min":
		return "mínimo " + e.Param()
	case "max":
		return "máximo " + e.Param()
	default:
		return "inválido (" + e.Tag() + ")"
	}
}

// errorStatus traduce la taxonomía de errores de dominio a HTTP.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInactive):
		return fiber.StatusUnprocessableEntity, "INACTIVE"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable, "UNAVAILABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// writeError responde con el código correspondiente. Los 500 no exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	switch status {
	case fiber.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		msg = "error interno"
	case fiber.StatusServiceUnavailable:
		log.Warn().Err(err).Str("path", c.Path()).Msg("almacenamiento no disponible")
		msg = "servicio no disponible, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
