package middleware

import (
	"net/http"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
)

// ProblemDetails renders the first handler error as Problem Details.
// Handlers choose the status by attaching a *problems.Problem as meta;
// anything else becomes 500.
func ProblemDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		first := c.Errors[0]
		var problem problems.Problem
		if existing, ok := first.Meta.(*problems.Problem); ok {
			problem = *existing
			if problem.Status == 0 {
				problem.Status = http.StatusInternalServerError
				problem.Title = http.StatusText(problem.Status)
			}
		} else {
			status := c.Writer.Status()
			if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
			problem = *problems.New(status, first.Error())
			if fields, ok := first.Meta.(map[string]string); ok {
				problem.WithFields(fields)
			}
		}

		writeProblem(c, &problem)
	}
}
