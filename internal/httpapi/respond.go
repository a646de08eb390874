package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/cheminee/search-engine/pkg/errors"
)

// writeError maps any error through its AppError code's HTTP status; errors
// originating outside pkg/errors fall back to 500 via GetCode's CodeUnknown
// default.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(code.HTTPStatus(), gin.H{"error": err.Error()})
}

func decodeJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.Wrap(err, errors.CodeParseError, "failed to decode request body")
	}
	return nil
}

func queryBool(c *gin.Context, key string, def bool) bool {
	v := c.Query(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n := 0
	neg := false
	for i, ch := range v {
		if i == 0 && ch == '-' {
			neg = true
			continue
		}
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func queryFloat(c *gin.Context, key string, def float64) float64 {
	v := c.Query(key)
	if v == "" {
		return def
	}
	var whole, frac float64
	var fracDiv float64 = 1
	seenDot := false
	neg := false
	for i, ch := range v {
		if i == 0 && ch == '-' {
			neg = true
			continue
		}
		if ch == '.' {
			seenDot = true
			continue
		}
		if ch < '0' || ch > '9' {
			return def
		}
		if seenDot {
			frac = frac*10 + float64(ch-'0')
			fracDiv *= 10
		} else {
			whole = whole*10 + float64(ch-'0')
		}
	}
	result := whole + frac/fracDiv
	if neg {
		result = -result
	}
	return result
}
