package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Detail is the body of errors that are not tied to a single field
type Detail struct {
	Detail string `json:"detail"`
}

// MessageFunc renders a failed validator tag and its parameter as text
type MessageFunc func(tag, param string) string

var (
	messageFunc MessageFunc = func(tag, param string) string { return tag }
	setupOnce   sync.Once
)

// Setup makes gin's validator report JSON field names and installs the
// message renderer used for field errors
func Setup(render MessageFunc) {
	if render != nil {
		messageFunc = render
	}
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// Success sends a 200 response with data as the body
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with data as the body
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with a detail message
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Detail{Detail: message})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 response with an empty body
func NotFound(c *gin.Context) {
	c.Status(http.StatusNotFound)
}

// InternalError sends a 500 error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// FieldErrors sends a 400 response mapping field names to messages
func FieldErrors(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, fields)
}

// BindError turns an error from ShouldBindJSON into a 400 response. Validation
// failures are reported per field, decoding failures as a detail message.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], messageFunc(fe.Tag(), fe.Param()))
		}
		FieldErrors(c, fields)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		FieldErrors(c, map[string][]string{typeErr.Field: {"Invalid type, expected " + typeErr.Type.String() + "."}})
		return
	}

	if errors.Is(err, io.EOF) {
		BadRequest(c, "request body is empty")
		return
	}

	BadRequest(c, err.Error())
}
