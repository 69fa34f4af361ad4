// Package httpx padroniza decodificação, validação e respostas JSON da API.
package httpx

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodifica o corpo em dest e aplica as tags validate.
// Campos desconhecidos são recusados.
func DecodeJSONBody(r *http.Request, dest interface{}) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return apperror.NewValidationError(fmt.Sprintf("Payload inválido. Verifique o formato JSON: %s", err.Error()))
	}
	return Validate(dest)
}

// Validate aplica as tags validate de uma struct já preenchida.
func Validate(dest interface{}) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stdErrors.As(err, &fieldErrs) {
		return apperror.NewValidationError(err.Error())
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, fmt.Sprintf("%s %s", fieldPath(fe), validationMessage(fe)))
	}
	return apperror.NewViolationsError(violations)
}

// fieldPath remove o nome da struct raiz: "CreateReturnInput.lines[0].product_id" -> "lines[0].product_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "é obrigatório"
	case "min":
		return fmt.Sprintf("deve ter no mínimo %s", fe.Param())
	case "max":
		return fmt.Sprintf("deve ter no máximo %s", fe.Param())
	case "len":
		return fmt.Sprintf("deve ter exatamente %s caracteres", fe.Param())
	case "email":
		return "deve ser um email válido"
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	}
	return "é inválido"
}

// WriteJSON serializa data com o status informado.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError traduz o erro para ErrorResponse. Erros 5xx são registrados como erro;
// os demais apenas em debug.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
		} else {
			log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
				"path": r.URL.Path,
			})
		}
	}

	_ = WriteJSON(w, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
		Details:  apperror.Violations(err),
	})
}

// Respond envia data com successStatus quando err é nil, ou a resposta de erro padronizada.
func Respond(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		WriteError(w, r, log, err)
		return
	}
	if jsonErr := WriteJSON(w, successStatus, data); jsonErr != nil && log != nil {
		log.Error("Falha ao codificar JSON de resposta", jsonErr)
	}
}
