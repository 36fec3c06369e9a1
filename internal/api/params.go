package api

import (
	"net/http"
	"strconv"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pathID parses the ObjectID path parameter name. It answers 400 and returns
// false when the value is malformed.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathWeekday parses the weekday path parameter, 0 (Sunday) to 6.
func pathWeekday(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("diaSemana"))
	if err != nil || !domain.ValidWeekday(day) {
		respondError(c, service.ErrInvalidWeekday)
		return 0, false
	}
	return day, true
}

// optionalID parses an optional hex id from a request body or query.
func optionalID(c *gin.Context, name, hex string) (*primitive.ObjectID, bool) {
	if hex == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	return &id, true
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	return &v, true
}
