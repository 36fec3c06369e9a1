package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"gymconnect/backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags to gin's validator. It is safe to
// call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not validator/v10")
			return
		}
		rules := map[string]validator.Func{
			"calendardate":   validCalendarDate,
			"objectid":       validObjectID,
			"paymentstatus":  validEnum(func(s string) bool { return domain.PaymentStatus(s).Valid() }),
			"taskstatus":     validEnum(func(s string) bool { return domain.TaskStatus(s).Valid() }),
			"exercisestatus": validEnum(func(s string) bool { return domain.ExerciseStatus(s).Valid() }),
			"audience":       validEnum(func(s string) bool { return domain.Audience(s).Valid() }),
			"reporttype":     validEnum(func(s string) bool { return domain.ReportType(s).Valid() }),
		}
		for tag, fn := range rules {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

// validCalendarDate accepts empty strings; pair it with required when needed.
func validCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := domain.ParseTimestamp(s)
	return err == nil
}

func validObjectID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || primitive.IsValidObjectID(s)
}

func validEnum(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || valid(s)
	}
}

// bindJSON binds the body of c into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage renders validator errors as "field: rule" pairs.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Sprintf("Validation error: %v", err)
	}
	parts := make([]string, len(ve))
	for i, fe := range ve {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	}
	return "Validation error: " + strings.Join(parts, ", ")
}
