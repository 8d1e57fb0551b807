// Package controllers adapts HTTP requests to the services and writes their JSON responses.
package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go-storefront/middleware"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Please provide all required fields"
	case "email":
		return "Please provide a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// decode reads a JSON body into dst and validates its struct tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.Validation("Invalid input")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return utils.Validation("%s", validationMessage(fieldErrs[0]))
		}
		return utils.Validation("Invalid input")
	}
	return nil
}

// objectID parses an id from a string, reporting name in the error.
func objectID(raw, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, utils.Validation("Invalid %s", name)
	}
	return id, nil
}

// pathID parses the named route variable as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return objectID(mux.Vars(r)[name], name)
}

// currentUser returns the account id set by the auth middleware.
func currentUser(r *http.Request) (primitive.ObjectID, error) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, utils.Unauthorized("Not authorized")
	}
	return id, nil
}

// pageFrom reads page and limit from the query string. Bad or missing values take the defaults.
func pageFrom(r *http.Request, defaultLimit int) store.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return services.PageOf(page, limit, defaultLimit)
}

// pageFields renders paging metadata with the collection-specific total key.
func pageFields[T any](p services.Paged[T], itemsKey, totalKey string) utils.H {
	return utils.H{
		itemsKey:      p.Items,
		totalKey:      p.Total,
		"totalPages":  p.TotalPages(),
		"currentPage": p.CurrentPage,
	}
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

func (c CookieConfig) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

// Cross-site SPAs need SameSite=None, which browsers only accept on secure cookies.
func (c CookieConfig) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
