package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"svcdir/internal/domain"
)

// RegisterValidators agrega la regla "phone" al validador de gin y reporta
// los campos por su nombre JSON. La region define el formato aceptado.
func RegisterValidators(region string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return domain.ValidPhone(fl.Field().String(), region)
	})
}

// bindingField devuelve el primer campo que fallo la validacion de binding.
func bindingField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}

func writeBindingError(c *gin.Context, err error) {
	body := gin.H{"error": "invalid request"}
	if field := bindingField(err); field != "" {
		body["field"] = field
	}
	c.JSON(http.StatusBadRequest, body)
}
