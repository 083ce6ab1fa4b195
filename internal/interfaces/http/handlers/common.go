// Package handlers implements the HTTP endpoints of MolScope.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
	"github.com/turtacn/MolScope/pkg/errors"
)

// writeAppError maps err to its HTTP status and writes the JSON envelope.
// Internal details never reach the client.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)
	middleware.AbortWithAppError(c, err)
}

// sessionTable returns the table stored in the request's session.
func sessionTable(c *gin.Context) (molecule.Table, error) {
	state := middleware.GetSession(c)
	if !state.Data.HasTable() {
		return nil, errors.New(errors.ErrCodeMoleculeTableMissing, "Please upload a file first.")
	}
	return state.Data.Table, nil
}
